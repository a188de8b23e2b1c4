package endpoint

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gocotano/ekonsulta/middleware"
	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a uniquified in-memory SQLite database and migrates the
// full model set.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:endpointdb_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{}, &model.Session{},
		&model.DoctorProfile{}, &model.SecretaryProfile{}, &model.FinanceProfile{},
		&model.Patient{}, &model.Medicine{},
		&model.Appointment{}, &model.Consultation{}, &model.Prescription{},
		&model.Billing{}, &model.BillingItem{}, &model.Transaction{},
	)
	if err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}

	return db
}

// testActor is the authenticated identity injected into the request context in
// place of the full session middleware.
type testActor struct {
	UserID uint
	Role   string
}

// newTestRouter builds a gin engine with the database middleware and, when an
// actor is given, a stub that injects the actor the way RequireAuth would.
func newTestRouter(db *gorm.DB, actor *testActor) *gin.Engine {
	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	if actor != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUserID, actor.UserID)
			c.Set(middleware.ContextKeyRole, actor.Role)
			c.Next()
		})
	}
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	return doJSONHeaders(r, method, path, body, nil)
}

func doJSONHeaders(r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == nil {
		reader = strings.NewReader("")
	} else {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v; body: %s", err, w.Body.String())
	}
	var data map[string]interface{}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("parse data failed: %v; data: %s", err, string(resp.Data))
	}
	return data
}

// seedDoctor creates a doctor account with its profile and returns both.
func seedDoctor(t *testing.T, db *gorm.DB, email string) (model.User, model.DoctorProfile) {
	t.Helper()

	user := model.User{
		Name:     "Dr. " + email,
		Email:    email,
		Password: util.HashPassword("doctorpass"),
		Role:     model.RoleDoctor,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed doctor user: %v", err)
	}
	profile := model.DoctorProfile{
		UserID:        user.ID,
		FirstName:     "Test",
		LastName:      "Doctor",
		EmployeeID:    fmt.Sprintf("EMP-%d", user.ID),
		LicenseNumber: fmt.Sprintf("PRC-%d", user.ID),
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("seed doctor profile: %v", err)
	}
	return user, profile
}

func seedPatient(t *testing.T, db *gorm.DB, first, last string) model.Patient {
	t.Helper()
	patient := model.Patient{FirstName: first, LastName: last}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return patient
}

func seedMedicine(t *testing.T, db *gorm.DB, name string, price float64) model.Medicine {
	t.Helper()
	medicine := model.Medicine{Name: name, Price: price, IsActive: true}
	if err := db.Create(&medicine).Error; err != nil {
		t.Fatalf("seed medicine: %v", err)
	}
	return medicine
}

func seedAppointment(t *testing.T, db *gorm.DB, patientID, doctorID uint, status string) model.Appointment {
	t.Helper()
	appt := model.Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      "2025-01-15",
		Time:      fmt.Sprintf("%02d:00", 8+int(patientID+doctorID)%10),
		Status:    status,
	}
	if err := db.Create(&appt).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	return appt
}

// seedCompletedVisit seeds patient, doctor, appointment and consultation with
// prescriptions priced at the given line totals. Returns the consultation.
func seedCompletedVisit(t *testing.T, db *gorm.DB, doctorEmail string, lineTotals ...float64) (model.Consultation, model.DoctorProfile) {
	t.Helper()

	_, profile := seedDoctor(t, db, doctorEmail)
	patient := seedPatient(t, db, "Completed", "Visit")
	appt := seedAppointment(t, db, patient.ID, profile.ID, model.AppointmentCompleted)

	consultation := model.Consultation{
		AppointmentID: appt.ID,
		DoctorID:      profile.ID,
		Diagnosis:     "Test diagnosis",
	}
	if err := db.Create(&consultation).Error; err != nil {
		t.Fatalf("seed consultation: %v", err)
	}
	for i, lt := range lineTotals {
		medicine := seedMedicine(t, db, fmt.Sprintf("Med %s %d", doctorEmail, i), lt)
		p := model.Prescription{
			ConsultationID: consultation.ID,
			MedicineID:     medicine.ID,
			Quantity:       1,
			LineTotal:      lt,
		}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed prescription: %v", err)
		}
	}
	return consultation, profile
}
