package endpoint

import (
	"errors"
	"fmt"

	"github.com/gocotano/ekonsulta/middleware"
	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Sentinel errors for the complete-visit operation
var (
	ErrConsultationExists     = errors.New("consultation already exists for this appointment")
	ErrAppointmentNotApproved = errors.New("appointment is not in APPROVE status")
)

type PrescriptionRequest struct {
	MedicineID   uint   `json:"medicine_id" example:"1"`
	Quantity     int    `json:"quantity" example:"2"`
	Instructions string `json:"instructions" example:"One capsule every 8 hours"`
}

type CompleteVisitRequest struct {
	Diagnosis     string                `json:"diagnosis" binding:"required" example:"Acute bronchitis"`
	ReasonNotes   string                `json:"reason_notes" example:"Persistent cough for two weeks"`
	Notes         string                `json:"notes" example:"Advise rest and hydration"`
	Prescriptions []PrescriptionRequest `json:"prescriptions"`
}

// buildPrescriptions resolves each prescription request against the medicine
// catalog. Entries with an unknown medicine or a non-positive quantity are
// skipped rather than rejecting the whole visit.
func buildPrescriptions(tx *gorm.DB, requests []PrescriptionRequest) []model.Prescription {
	var prescriptions []model.Prescription
	for _, pr := range requests {
		if pr.Quantity < 1 {
			continue
		}
		var medicine model.Medicine
		if err := tx.First(&medicine, pr.MedicineID).Error; err != nil {
			continue
		}
		prescriptions = append(prescriptions, model.Prescription{
			MedicineID:   medicine.ID,
			Quantity:     pr.Quantity,
			Instructions: pr.Instructions,
			// Priced from the catalog at completion time, not a frozen snapshot.
			LineTotal: medicine.Price * float64(pr.Quantity),
		})
	}
	return prescriptions
}

// CompleteVisit godoc
// @Summary      Complete a visit
// @Description  Record the consultation and prescriptions for an approved appointment and mark it COMPLETED (assigned doctor only)
// @Tags         Consultation
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Param        request body CompleteVisitRequest true "Consultation details"
// @Success      200 {object} util.APIResponse{data=model.Consultation} "Visit completed"
// @Failure      400 {object} util.APIResponse "Invalid input or appointment not approved"
// @Failure      403 {object} util.APIResponse "Actor is not the assigned doctor"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      409 {object} util.APIResponse "Consultation already exists"
// @Router       /appointment/{id}/consultation [post]
func CompleteVisit(c *gin.Context) {
	appointmentID, ok := getIDParam(c)
	if !ok {
		return
	}

	var req CompleteVisitRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var appointment model.Appointment
	if err := db.First(&appointment, appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch appointment", Err: err})
		return
	}

	doctor, ok := requireAssignedDoctor(c, db, &appointment)
	if !ok {
		return
	}

	consultation := model.Consultation{
		AppointmentID: appointment.ID,
		DoctorID:      doctor.ID,
		Diagnosis:     req.Diagnosis,
		ReasonNotes:   req.ReasonNotes,
		Notes:         req.Notes,
	}

	// Consultation, prescriptions, and the COMPLETED flip are one atomic
	// write; a failure anywhere leaves the appointment untouched.
	err := db.Transaction(func(tx *gorm.DB) error {
		// A repeat call reports the existing consultation as a conflict, not
		// a status error, even though the appointment is COMPLETED by then.
		var existing model.Consultation
		if err := tx.Where("appointment_id = ?", appointment.ID).First(&existing).Error; err == nil {
			return ErrConsultationExists
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		if appointment.Status != model.AppointmentApproved {
			return ErrAppointmentNotApproved
		}

		if err := tx.Create(&consultation).Error; err != nil {
			return err
		}

		prescriptions := buildPrescriptions(tx, req.Prescriptions)
		for i := range prescriptions {
			prescriptions[i].ConsultationID = consultation.ID
			if err := tx.Create(&prescriptions[i]).Error; err != nil {
				return err
			}
		}
		consultation.Prescriptions = prescriptions

		appointment.Status = model.AppointmentCompleted
		return tx.Save(&appointment).Error
	})

	switch {
	case errors.Is(err, ErrAppointmentNotApproved):
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Appointment must be in APPROVE status before completing the visit",
			Err: err,
		})
		return
	case errors.Is(err, ErrConsultationExists):
		util.CallConflict(c, util.APIErrorParams{
			Msg: "A consultation already exists for this appointment",
			Err: err,
		})
		return
	case err != nil:
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to complete visit", Err: err})
		return
	}

	userID, _ := middleware.GetUserID(c)
	util.LogAuditEvent(util.AuditEvent{
		EventType: util.EventVisitCompleted,
		UserID:    fmt.Sprintf("%d", userID),
		IP:        c.ClientIP(),
		Message:   fmt.Sprintf("Visit completed for appointment %d", appointment.ID),
		Details: map[string]interface{}{
			"appointment_id":  appointment.ID,
			"consultation_id": consultation.ID,
			"prescriptions":   len(consultation.Prescriptions),
		},
	})

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Visit completed successfully", Data: consultation})
}

// GetConsultation godoc
// @Summary      Get consultation detail
// @Description  Fetch a consultation with its prescriptions and computed total
// @Tags         Consultation
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Consultation ID"
// @Success      200 {object} util.APIResponse{data=object} "Consultation retrieved"
// @Failure      404 {object} util.APIResponse "Consultation not found"
// @Router       /consultation/{id} [get]
func GetConsultation(c *gin.Context) {
	id, ok := getIDParam(c)
	if !ok {
		return
	}
	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var consultation model.Consultation
	if err := db.Preload("Prescriptions").First(&consultation, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Consultation not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch consultation", Err: err})
		return
	}

	total, err := consultation.TotalAmount(db)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to compute consultation total", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Consultation retrieved",
		Data: map[string]interface{}{"consultation": consultation, "total_amount": total},
	})
}
