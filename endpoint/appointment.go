package endpoint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocotano/ekonsulta/middleware"
	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrSlotTaken rejects a second appointment for an occupied (doctor, date, time) slot.
var ErrSlotTaken = errors.New("appointment slot already taken")

type AppointmentRequest struct {
	PatientID uint   `json:"patient_id" binding:"required" example:"1"`
	DoctorID  uint   `json:"doctor_id" binding:"required" example:"1"`
	Date      string `json:"date" binding:"required" example:"2025-01-15"`
	Time      string `json:"time" binding:"required" example:"09:30"`
	Notes     string `json:"notes" example:"Follow-up check"`
}

type AppointmentStatusRequest struct {
	Status string `json:"status" binding:"required" example:"APPROVE"`
}

// ListAppointmentResponse joins patient and doctor names onto the appointment row.
type ListAppointmentResponse struct {
	model.Appointment
	PatientFirstName string `json:"patient_first_name" gorm:"column:patient_first_name" example:"Jose"`
	PatientLastName  string `json:"patient_last_name" gorm:"column:patient_last_name" example:"Rizal"`
	DoctorFirstName  string `json:"doctor_first_name" gorm:"column:doctor_first_name" example:"Maria"`
	DoctorLastName   string `json:"doctor_last_name" gorm:"column:doctor_last_name" example:"Santos"`
}

func validateAppointmentRequest(req *AppointmentRequest) error {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return fmt.Errorf("date must be in YYYY-MM-DD format: %w", err)
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return fmt.Errorf("time must be in HH:MM format: %w", err)
	}
	return nil
}

// slotTaken reports whether any appointment, regardless of status, already
// occupies the (doctor, date, time) slot.
func slotTaken(db *gorm.DB, doctorID uint, date, timeStr string) (bool, error) {
	var existing model.Appointment
	err := db.Where("doctor_id = ? AND date = ? AND time = ?", doctorID, date, timeStr).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateAppointment godoc
// @Summary      Schedule an appointment
// @Description  Assign a patient to a doctor at a date/time slot (secretary only)
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body AppointmentRequest true "Appointment details"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment created"
// @Failure      400 {object} util.APIResponse "Invalid input data"
// @Failure      404 {object} util.APIResponse "Patient or doctor not found"
// @Failure      409 {object} util.APIResponse "Slot already taken"
// @Router       /appointment [post]
func CreateAppointment(c *gin.Context) {
	var req AppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}
	if err := validateAppointmentRequest(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid appointment slot", Err: err})
		return
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var patient model.Patient
	if err := db.First(&patient, req.PatientID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: fmt.Errorf("patient %d does not exist", req.PatientID)})
		return
	}
	var doctor model.DoctorProfile
	if err := db.First(&doctor, req.DoctorID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: fmt.Errorf("doctor %d does not exist", req.DoctorID)})
		return
	}

	appointment := model.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Status:    model.AppointmentPending,
		Notes:     req.Notes,
	}

	// Conflict check and insert share one transaction so a concurrent request
	// cannot slip into the same slot between them.
	err := db.Transaction(func(tx *gorm.DB) error {
		taken, err := slotTaken(tx, req.DoctorID, req.Date, req.Time)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}
		return tx.Create(&appointment).Error
	})
	if errors.Is(err, ErrSlotTaken) {
		util.CallConflict(c, util.APIErrorParams{
			Msg: "An appointment already exists for this doctor at this date and time",
			Err: fmt.Errorf("slot conflict"),
		})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment created successfully", Data: appointment})
}

func fetchAppointments(db *gorm.DB, q listQuery, doctorID uint) ([]ListAppointmentResponse, int64, error) {
	var appointments []ListAppointmentResponse
	var total int64

	order := "appointments.date ASC, appointments.time ASC"
	if strings.ToLower(q.SortDir) == "desc" {
		order = "appointments.date DESC, appointments.time DESC"
	}

	query := db.Table("appointments").
		Joins("LEFT JOIN patients ON patients.id = appointments.patient_id").
		Joins("LEFT JOIN doctor_profiles ON doctor_profiles.id = appointments.doctor_id").
		Select("appointments.*, patients.first_name AS patient_first_name, patients.last_name AS patient_last_name, doctor_profiles.first_name AS doctor_first_name, doctor_profiles.last_name AS doctor_last_name").
		Where("appointments.deleted_at IS NULL").
		Order(order)

	countQuery := db.Table("appointments").
		Joins("LEFT JOIN patients ON patients.id = appointments.patient_id").
		Where("appointments.deleted_at IS NULL")

	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		cond := "patients.first_name LIKE ? OR patients.last_name LIKE ?"
		query = query.Where(cond, kw, kw)
		countQuery = countQuery.Where(cond, kw, kw)
	}
	if q.Status != "" {
		query = query.Where("appointments.status = ?", q.Status)
		countQuery = countQuery.Where("appointments.status = ?", q.Status)
	}
	if doctorID != 0 {
		query = query.Where("appointments.doctor_id = ?", doctorID)
		countQuery = countQuery.Where("appointments.doctor_id = ?", doctorID)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	if err := query.Find(&appointments).Error; err != nil {
		return nil, 0, err
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

// ListAppointments godoc
// @Summary      List appointments
// @Description  List appointments sorted by date; doctors see their own schedule, secretaries see all
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Param        keyword query string false "Search substring over patient name"
// @Param        status query string false "Exact status filter (PENDING|APPROVE|CANCELLED|COMPLETED)"
// @Param        sort_dir query string false "date sort direction: asc (default) or desc"
// @Success      200 {object} util.APIResponse{data=object} "Appointments retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /appointment [get]
func ListAppointments(c *gin.Context) {
	db, ok := ensureDB(c)
	if !ok {
		return
	}

	// Doctors are scoped to their own schedule; other roles see everything.
	var doctorID uint
	if role, _ := middleware.GetRole(c); role == model.RoleDoctor {
		userID, ok := requireActor(c)
		if !ok {
			return
		}
		profile, err := doctorProfileForUser(db, userID)
		if err != nil {
			util.CallAccessDenied(c, util.APIErrorParams{
				Msg: "No doctor profile for this account",
				Err: fmt.Errorf("doctor profile not found"),
			})
			return
		}
		doctorID = profile.ID
	}

	appointments, total, err := fetchAppointments(db, parseListQuery(c), doctorID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Appointments fetched successfully",
		Data: map[string]interface{}{"total": total, "total_fetched": len(appointments), "appointments": appointments},
	})
}

// UpdateAppointmentStatus godoc
// @Summary      Transition appointment status
// @Description  Move an appointment to APPROVE, CANCELLED, or COMPLETED (assigned doctor only)
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Param        request body AppointmentStatusRequest true "Target status"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Status updated"
// @Failure      400 {object} util.APIResponse "Invalid target status"
// @Failure      403 {object} util.APIResponse "Actor is not the assigned doctor"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointment/{id}/status [patch]
func UpdateAppointmentStatus(c *gin.Context) {
	id, ok := getIDParam(c)
	if !ok {
		return
	}

	var req AppointmentStatusRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}
	if !model.IsTransitionTarget(req.Status) {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Status must be one of APPROVE, CANCELLED, COMPLETED",
			Err: fmt.Errorf("invalid target status %q", req.Status),
		})
		return
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var appointment model.Appointment
	if err := db.First(&appointment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch appointment", Err: err})
		return
	}

	if _, ok := requireAssignedDoctor(c, db, &appointment); !ok {
		return
	}

	// Any current status may move to any of the three targets; the workflow
	// intentionally leaves source states unrestricted.
	previous := appointment.Status
	appointment.Status = req.Status
	if err := db.Save(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update appointment status", Err: err})
		return
	}

	userID, _ := middleware.GetUserID(c)
	util.LogAppointmentStatus(userID, c.ClientIP(), appointment.ID, previous, appointment.Status)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment status updated", Data: appointment})
}
