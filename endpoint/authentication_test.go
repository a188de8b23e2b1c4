package endpoint

import (
	"net/http"
	"testing"

	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/stretchr/testify/assert"
)

func TestLogin_Success(t *testing.T) {
	db := setupTestDB(t)
	user := model.User{
		Name:     "Login Doctor",
		Email:    "login@clinic.ph",
		Password: util.HashPassword("correct-password"),
		Role:     model.RoleDoctor,
	}
	assert.NoError(t, db.Create(&user).Error)

	r := newTestRouter(db, nil)
	r.POST("/login", Login)

	w := doJSON(r, "POST", "/login", LoginRequest{Email: "login@clinic.ph", Password: "correct-password"})
	assert.Equal(t, http.StatusOK, w.Code)

	data := parseData(t, w)
	token, _ := data["token"].(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, model.RoleDoctor, data["role"])

	var session model.Session
	err := db.Where("session_token = ?", token).First(&session).Error
	assert.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.False(t, session.Expired())
}

func TestLogin_WrongPassword(t *testing.T) {
	db := setupTestDB(t)
	user := model.User{
		Name:     "Wrong Pass",
		Email:    "wrongpass@clinic.ph",
		Password: util.HashPassword("right"),
		Role:     model.RoleFinance,
	}
	assert.NoError(t, db.Create(&user).Error)

	r := newTestRouter(db, nil)
	r.POST("/login", Login)

	w := doJSON(r, "POST", "/login", LoginRequest{Email: "wrongpass@clinic.ph", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&model.Session{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLogin_UnknownEmail(t *testing.T) {
	db := setupTestDB(t)

	r := newTestRouter(db, nil)
	r.POST("/login", Login)

	w := doJSON(r, "POST", "/login", LoginRequest{Email: "nobody@clinic.ph", Password: "whatever"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateToken_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	user := model.User{
		Name:     "Token User",
		Email:    "token@clinic.ph",
		Password: util.HashPassword("password"),
		Role:     model.RoleSecretary,
	}
	assert.NoError(t, db.Create(&user).Error)

	r := newTestRouter(db, nil)
	r.POST("/login", Login)
	r.GET("/token/validate", ValidateToken)

	w := doJSON(r, "POST", "/login", LoginRequest{Email: "token@clinic.ph", Password: "password"})
	assert.Equal(t, http.StatusOK, w.Code)
	token, _ := parseData(t, w)["token"].(string)

	w = doJSONHeaders(r, "GET", "/token/validate", nil, map[string]string{"session-token": token})
	assert.Equal(t, http.StatusOK, w.Code)

	data := parseData(t, w)
	assert.Equal(t, model.RoleSecretary, data["role"])
}

func TestValidateToken_RejectsTamperedToken(t *testing.T) {
	db := setupTestDB(t)

	r := newTestRouter(db, nil)
	r.GET("/token/validate", ValidateToken)

	w := doJSONHeaders(r, "GET", "/token/validate", nil, map[string]string{"session-token": "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	db := setupTestDB(t)
	user := model.User{
		Name:     "Logout User",
		Email:    "logout@clinic.ph",
		Password: util.HashPassword("password"),
		Role:     model.RoleDoctor,
	}
	assert.NoError(t, db.Create(&user).Error)

	r := newTestRouter(db, nil)
	r.POST("/login", Login)
	r.POST("/logout", Logout)
	r.GET("/token/validate", ValidateToken)

	w := doJSON(r, "POST", "/login", LoginRequest{Email: "logout@clinic.ph", Password: "password"})
	assert.Equal(t, http.StatusOK, w.Code)
	token, _ := parseData(t, w)["token"].(string)

	w = doJSONHeaders(r, "POST", "/logout", nil, map[string]string{"session-token": token})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSONHeaders(r, "GET", "/token/validate", nil, map[string]string{"session-token": token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_MissingToken(t *testing.T) {
	db := setupTestDB(t)

	r := newTestRouter(db, nil)
	r.POST("/logout", Logout)

	w := doJSON(r, "POST", "/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
