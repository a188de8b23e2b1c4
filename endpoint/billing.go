package endpoint

import (
	"errors"
	"fmt"

	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var ErrAppointmentNotCompleted = errors.New("appointment is not COMPLETED")

type PaymentRequest struct {
	Amount          float64 `json:"amount" example:"400.00"`
	PaymentMethod   string  `json:"payment_method" example:"CASH"`
	ReferenceNumber string  `json:"reference_number" example:"OR-2024-00123"`
	Remarks         string  `json:"remarks" example:"Partial payment"`
}

type PhilhealthRequest struct {
	ReferenceNumber string `json:"reference_number" example:"PH-2024-00045"`
	Remarks         string `json:"remarks" example:"eKonsulta full coverage"`
}

// ListBillingResponse flattens the billing row with the patient it bills.
type ListBillingResponse struct {
	model.Billing
	PatientFirstName string `json:"patient_first_name" gorm:"column:patient_first_name"`
	PatientLastName  string `json:"patient_last_name" gorm:"column:patient_last_name"`
	AppointmentID    uint   `json:"appointment_id" gorm:"column:appointment_id"`
}

// ensureBilling is the single get-or-create path for billing rows. The first
// call for a consultation seeds total_amount from the prescription rollup and
// writes one MEDICINE item per prescription; later calls return the existing
// row untouched.
func ensureBilling(db *gorm.DB, consultationID uint) (model.Billing, error) {
	var billing model.Billing
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("consultation_id = ?", consultationID).First(&billing).Error; err == nil {
			return nil
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		var consultation model.Consultation
		if err := tx.Preload("Prescriptions").First(&consultation, consultationID).Error; err != nil {
			return err
		}

		var appointment model.Appointment
		if err := tx.First(&appointment, consultation.AppointmentID).Error; err != nil {
			return err
		}
		if appointment.Status != model.AppointmentCompleted {
			return ErrAppointmentNotCompleted
		}

		total, err := consultation.TotalAmount(tx)
		if err != nil {
			return err
		}

		billing = model.Billing{
			ConsultationID: consultation.ID,
			TotalAmount:    total,
			Status:         model.BillingPending,
		}
		if err := tx.Create(&billing).Error; err != nil {
			return err
		}

		for _, p := range consultation.Prescriptions {
			var medicine model.Medicine
			description := fmt.Sprintf("Medicine #%d", p.MedicineID)
			if err := tx.First(&medicine, p.MedicineID).Error; err == nil {
				description = medicine.Name
			}
			item := model.BillingItem{
				BillingID:   billing.ID,
				ItemType:    model.ItemMedicine,
				Description: description,
				Quantity:    p.Quantity,
				UnitPrice:   p.LineTotal / float64(p.Quantity),
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return billing, err
}

// EnsureBilling godoc
// @Summary      Ensure billing exists
// @Description  Idempotently create the billing ledger for a completed consultation
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Consultation ID"
// @Success      200 {object} util.APIResponse{data=model.Billing} "Billing ensured"
// @Failure      400 {object} util.APIResponse "Appointment not completed"
// @Failure      404 {object} util.APIResponse "Consultation not found"
// @Router       /consultation/{id}/billing [post]
func EnsureBilling(c *gin.Context) {
	consultationID, ok := getIDParam(c)
	if !ok {
		return
	}
	db, ok := ensureDB(c)
	if !ok {
		return
	}

	billing, err := ensureBilling(db, consultationID)
	switch {
	case errors.Is(err, ErrAppointmentNotCompleted):
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Billing requires a COMPLETED appointment",
			Err: err,
		})
		return
	case err == gorm.ErrRecordNotFound:
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Consultation not found", Err: err})
		return
	case err != nil:
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to ensure billing", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Billing ensured", Data: billing})
}

// ensureBillingsForCompleted backfills billing rows for completed
// consultations that do not have one yet. Failures on individual rows are
// skipped so one broken consultation does not block the list view.
func ensureBillingsForCompleted(db *gorm.DB) {
	var consultationIDs []uint
	err := db.Model(&model.Consultation{}).
		Joins("JOIN appointments ON appointments.id = consultations.appointment_id").
		Where("appointments.status = ?", model.AppointmentCompleted).
		Where("consultations.id NOT IN (?)",
			db.Model(&model.Billing{}).Select("consultation_id")).
		Pluck("consultations.id", &consultationIDs).Error
	if err != nil {
		return
	}
	for _, id := range consultationIDs {
		_, _ = ensureBilling(db, id)
	}
}

// ListBilling godoc
// @Summary      List billings
// @Description  List billing ledgers with patient-name search and status filter
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        keyword query string false "Patient name substring"
// @Param        status query string false "Billing status filter"
// @Param        limit query int false "Page size"
// @Param        offset query int false "Page offset"
// @Success      200 {object} util.APIResponse{data=[]ListBillingResponse} "Billings retrieved"
// @Router       /billing [get]
func ListBilling(c *gin.Context) {
	db, ok := ensureDB(c)
	if !ok {
		return
	}
	q := parseListQuery(c)

	ensureBillingsForCompleted(db)

	query := db.Model(&model.Billing{}).
		Select("billings.*, patients.first_name AS patient_first_name, " +
			"patients.last_name AS patient_last_name, appointments.id AS appointment_id").
		Joins("JOIN consultations ON consultations.id = billings.consultation_id").
		Joins("JOIN appointments ON appointments.id = consultations.appointment_id").
		Joins("JOIN patients ON patients.id = appointments.patient_id")

	if q.Keyword != "" {
		pattern := "%" + q.Keyword + "%"
		query = query.Where("patients.first_name LIKE ? OR patients.last_name LIKE ?", pattern, pattern)
	}
	if q.Status != "" {
		query = query.Where("billings.status = ?", q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count billings", Err: err})
		return
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var billings []ListBillingResponse
	if err := query.Order("billings.created_at DESC").Find(&billings).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch billings", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Billings retrieved",
		Data: map[string]interface{}{"total": total, "billings": billings},
	})
}

// GetBilling godoc
// @Summary      Get billing detail
// @Description  Fetch a billing with its items, prescriptions, transactions and outstanding balance
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Billing ID"
// @Success      200 {object} util.APIResponse{data=object} "Billing retrieved"
// @Failure      404 {object} util.APIResponse "Billing not found"
// @Router       /billing/{id} [get]
func GetBilling(c *gin.Context) {
	id, ok := getIDParam(c)
	if !ok {
		return
	}
	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var billing model.Billing
	err := db.Preload("Items").
		Preload("Transactions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC")
		}).
		First(&billing, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Billing not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch billing", Err: err})
		return
	}

	var consultation model.Consultation
	if err := db.Preload("Prescriptions").First(&consultation, billing.ConsultationID).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch consultation", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Billing retrieved",
		Data: map[string]interface{}{
			"billing":      billing,
			"consultation": consultation,
			"balance":      billing.Balance(),
		},
	})
}

// ProcessPayment godoc
// @Summary      Process a payment
// @Description  Record a payment transaction and update the billing totals and status
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Billing ID"
// @Param        request body PaymentRequest true "Payment details"
// @Success      200 {object} util.APIResponse{data=model.Billing} "Payment processed"
// @Failure      400 {object} util.APIResponse "Invalid amount"
// @Failure      404 {object} util.APIResponse "Billing not found"
// @Router       /billing/{id}/payment [post]
func ProcessPayment(c *gin.Context) {
	id, ok := getIDParam(c)
	if !ok {
		return
	}
	var req PaymentRequest
	if !bindJSONOrRespond(c, &req, "Invalid payment data") {
		return
	}
	if req.Amount <= 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Payment amount must be greater than zero",
			Err: fmt.Errorf("amount %.2f is not positive", req.Amount),
		})
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = model.PaymentCash
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}
	userID, ok := requireActor(c)
	if !ok {
		return
	}

	var billing model.Billing
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&billing, id).Error; err != nil {
			return err
		}

		transaction := model.Transaction{
			BillingID:       billing.ID,
			Amount:          req.Amount,
			PaymentMethod:   req.PaymentMethod,
			ReferenceNumber: req.ReferenceNumber,
			Remarks:         req.Remarks,
			ProcessedBy:     userID,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		billing.ApplyAmount(req.Amount, req.PaymentMethod)
		return tx.Save(&billing).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Billing not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to process payment", Err: err})
		return
	}

	util.LogPaymentProcessed(userID, c.ClientIP(), billing.ID, req.Amount, req.PaymentMethod)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment processed successfully", Data: billing})
}

// ApplyPhilhealthCoverage godoc
// @Summary      Apply full PhilHealth coverage
// @Description  Record a PHILHEALTH transaction for the outstanding balance and set coverage to the full total
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Billing ID"
// @Param        request body PhilhealthRequest true "Coverage reference"
// @Success      200 {object} util.APIResponse{data=model.Billing} "Coverage applied"
// @Failure      404 {object} util.APIResponse "Billing not found"
// @Router       /billing/{id}/philhealth [post]
func ApplyPhilhealthCoverage(c *gin.Context) {
	id, ok := getIDParam(c)
	if !ok {
		return
	}
	var req PhilhealthRequest
	if !bindJSONOrRespond(c, &req, "Invalid coverage data") {
		return
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}
	userID, ok := requireActor(c)
	if !ok {
		return
	}

	var billing model.Billing
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&billing, id).Error; err != nil {
			return err
		}

		transaction := model.Transaction{
			BillingID:       billing.ID,
			Amount:          billing.Balance(),
			PaymentMethod:   model.PaymentPhilhealth,
			ReferenceNumber: req.ReferenceNumber,
			Remarks:         req.Remarks,
			ProcessedBy:     userID,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		billing.ApplyFullCoverage()
		return tx.Save(&billing).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Billing not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to apply PhilHealth coverage", Err: err})
		return
	}

	util.LogAuditEvent(util.AuditEvent{
		EventType: util.EventPhilhealthCoverage,
		UserID:    fmt.Sprintf("%d", userID),
		IP:        c.ClientIP(),
		Message:   fmt.Sprintf("Full PhilHealth coverage applied to billing %d", billing.ID),
		Details: map[string]interface{}{
			"billing_id":       billing.ID,
			"coverage":         billing.PhilhealthCoverage,
			"reference_number": req.ReferenceNumber,
		},
	})
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "PhilHealth coverage applied", Data: billing})
}

// ListTransactions godoc
// @Summary      List billing transactions
// @Description  Fetch the payment history of a billing, newest first
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Billing ID"
// @Success      200 {object} util.APIResponse{data=[]model.Transaction} "Transactions retrieved"
// @Failure      404 {object} util.APIResponse "Billing not found"
// @Router       /billing/{id}/transactions [get]
func ListTransactions(c *gin.Context) {
	id, ok := getIDParam(c)
	if !ok {
		return
	}
	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var billing model.Billing
	if err := db.First(&billing, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Billing not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch billing", Err: err})
		return
	}

	var transactions []model.Transaction
	if err := db.Where("billing_id = ?", billing.ID).
		Order("created_at DESC").Find(&transactions).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch transactions", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Transactions retrieved", Data: transactions})
}

// RecalculateBilling godoc
// @Summary      Recalculate billing total
// @Description  Recompute total_amount from the current prescription rollup and re-derive the status
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Billing ID"
// @Success      200 {object} util.APIResponse{data=model.Billing} "Billing recalculated"
// @Failure      404 {object} util.APIResponse "Billing not found"
// @Router       /billing/{id}/recalculate [post]
func RecalculateBilling(c *gin.Context) {
	id, ok := getIDParam(c)
	if !ok {
		return
	}
	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var billing model.Billing
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&billing, id).Error; err != nil {
			return err
		}
		var consultation model.Consultation
		if err := tx.First(&consultation, billing.ConsultationID).Error; err != nil {
			return err
		}
		total, err := consultation.TotalAmount(tx)
		if err != nil {
			return err
		}
		billing.TotalAmount = total
		// Re-derive status from the new total without crediting anything.
		// PAID and PHILHEALTH are terminal and survive total corrections.
		if !billing.Settled() {
			billing.ApplyAmount(0, model.PaymentCash)
		}
		return tx.Save(&billing).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Billing not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to recalculate billing", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Billing recalculated", Data: billing})
}
