package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func captureAuditLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	original := util.GetAuditLoggerForTest()
	util.SetAuditLoggerForTest(log.New(&buf, "[AUDIT] ", log.LstdFlags|log.Lmsgprefix))
	t.Cleanup(func() {
		util.SetAuditLoggerForTest(original)
	})
	return &buf
}

func TestEndpointCallLogger_BasicRequest(t *testing.T) {
	buf := captureAuditLog(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	r.Use(DatabaseMiddleware(db))
	r.Use(EndpointCallLogger())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test?foo=bar", nil)
	req.RemoteAddr = "192.168.1.100:1234"
	req.Header.Set("User-Agent", "TestAgent/1.0")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Event=ENDPOINT_CALL") {
		t.Error("Expected log to contain Event=ENDPOINT_CALL")
	}
	if !strings.Contains(logOutput, "GET /test -> 200") {
		t.Error("Expected log to contain request method and status")
	}
	if !strings.Contains(logOutput, "192.168.1.100") {
		t.Error("Expected log to contain IP address")
	}
	if !strings.Contains(logOutput, "TestAgent/1.0") {
		t.Error("Expected log to contain User-Agent")
	}
}

func TestEndpointCallLogger_WithUserContext(t *testing.T) {
	buf := captureAuditLog(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.Exec("CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT)").Error
	if err != nil {
		t.Fatalf("Failed to create users table: %v", err)
	}
	err = db.Exec("INSERT INTO users (id, email) VALUES (42, 'testuser@example.com')").Error
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}

	util.InitUserEmailCache(10)

	r.Use(DatabaseMiddleware(db))
	r.Use(EndpointCallLogger())
	r.GET("/test", func(c *gin.Context) {
		c.Set(ContextKeyUserID, uint(42))
		c.Set(ContextKeyRole, "DOCTOR")
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.100:1234"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "UserID=42") {
		t.Error("Expected log to contain UserID=42")
	}
	if !strings.Contains(logOutput, "testuser@example.com") {
		t.Error("Expected log to contain user email")
	}
}

func TestEndpointCallLogger_NoUserContext(t *testing.T) {
	buf := captureAuditLog(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	r.Use(DatabaseMiddleware(db))
	r.Use(EndpointCallLogger())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Event=ENDPOINT_CALL") {
		t.Error("Expected log to contain Event=ENDPOINT_CALL")
	}
	// UserID is 0 when no actor is attached
	if !strings.Contains(logOutput, "UserID=0") {
		t.Error("Expected log to contain UserID=0")
	}
}

func TestEndpointCallLogger_ErrorStatus(t *testing.T) {
	buf := captureAuditLog(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	r.Use(DatabaseMiddleware(db))
	r.Use(EndpointCallLogger())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	if !strings.Contains(buf.String(), "GET /test -> 404") {
		t.Error("Expected log to contain status 404")
	}
}

func TestEndpointCallLogger_PersistsAuditRow(t *testing.T) {
	captureAuditLog(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()

	db := newInMemoryDB(t)
	if err := db.AutoMigrate(&model.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate audit log: %v", err)
	}
	util.SetAuditLoggerDB(db)
	t.Cleanup(func() { util.SetAuditLoggerDB(nil) })

	r.Use(DatabaseMiddleware(db))
	r.Use(EndpointCallLogger())
	r.POST("/test", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"created": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/test", strings.NewReader(`{"data":"test"}`)))

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}

	var count int64
	if err := db.Model(&model.AuditLog{}).Where("event_type = ?", string(util.EventEndpointCall)).Count(&count).Error; err != nil {
		t.Fatalf("failed to count audit rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 persisted audit row, got %d", count)
	}
}
