package endpoint

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gocotano/ekonsulta/model"
	"github.com/stretchr/testify/assert"
)

func TestEnsureBilling_SeedsFromRollup(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "ensure@clinic.ph", 5.50, 12.00)

	r := newTestRouter(db, &testActor{UserID: 50, Role: model.RoleFinance})
	r.POST("/consultation/:id/billing", EnsureBilling)

	w := doJSON(r, "POST", fmt.Sprintf("/consultation/%d/billing", consultation.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var billing model.Billing
	err := db.Where("consultation_id = ?", consultation.ID).First(&billing).Error
	assert.NoError(t, err)
	assert.Equal(t, 17.50, billing.TotalAmount)
	assert.Equal(t, model.BillingPending, billing.Status)

	var items []model.BillingItem
	db.Where("billing_id = ?", billing.ID).Find(&items)
	assert.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, model.ItemMedicine, item.ItemType)
	}
}

func TestEnsureBilling_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "idempotent@clinic.ph", 100.00)

	r := newTestRouter(db, &testActor{UserID: 50, Role: model.RoleFinance})
	r.POST("/consultation/:id/billing", EnsureBilling)

	path := fmt.Sprintf("/consultation/%d/billing", consultation.ID)
	w := doJSON(r, "POST", path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Pay something, then ensure again; the existing ledger must survive.
	var billing model.Billing
	db.Where("consultation_id = ?", consultation.ID).First(&billing)
	billing.ApplyAmount(40, model.PaymentCash)
	db.Save(&billing)

	w = doJSON(r, "POST", path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var billings []model.Billing
	db.Where("consultation_id = ?", consultation.ID).Find(&billings)
	assert.Len(t, billings, 1)
	assert.Equal(t, 40.0, billings[0].AmountPaid)
	assert.Equal(t, model.BillingPartial, billings[0].Status)

	var itemCount int64
	db.Model(&model.BillingItem{}).Where("billing_id = ?", billings[0].ID).Count(&itemCount)
	assert.Equal(t, int64(1), itemCount)
}

func TestEnsureBilling_RequiresCompletedAppointment(t *testing.T) {
	db := setupTestDB(t)
	_, profile := seedDoctor(t, db, "incomplete-bill@clinic.ph")
	patient := seedPatient(t, db, "Not", "Done")
	appt := seedAppointment(t, db, patient.ID, profile.ID, model.AppointmentApproved)

	consultation := model.Consultation{AppointmentID: appt.ID, DoctorID: profile.ID, Diagnosis: "Ongoing"}
	assert.NoError(t, db.Create(&consultation).Error)

	r := newTestRouter(db, &testActor{UserID: 50, Role: model.RoleFinance})
	r.POST("/consultation/:id/billing", EnsureBilling)

	w := doJSON(r, "POST", fmt.Sprintf("/consultation/%d/billing", consultation.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&model.Billing{}).Where("consultation_id = ?", consultation.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestProcessPayment_PartialThenPhilhealthSettles(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "pay-flow@clinic.ph", 1000.00)
	billing, err := ensureBilling(db, consultation.ID)
	assert.NoError(t, err)

	r := newTestRouter(db, &testActor{UserID: 77, Role: model.RoleFinance})
	r.POST("/billing/:id/payment", ProcessPayment)

	path := fmt.Sprintf("/billing/%d/payment", billing.ID)
	w := doJSON(r, "POST", path, PaymentRequest{Amount: 400, PaymentMethod: model.PaymentCash, ReferenceNumber: "OR-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&billing, billing.ID)
	assert.Equal(t, model.BillingPartial, billing.Status)
	assert.Equal(t, 600.0, billing.Balance())

	w = doJSON(r, "POST", path, PaymentRequest{Amount: 600, PaymentMethod: model.PaymentPhilhealth, ReferenceNumber: "PH-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&billing, billing.ID)
	assert.Equal(t, model.BillingPaid, billing.Status)
	assert.Equal(t, 0.0, billing.Balance())
	assert.Equal(t, 400.0, billing.AmountPaid)
	assert.Equal(t, 600.0, billing.PhilhealthCoverage)
}

func TestProcessPayment_RejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "zero-pay@clinic.ph", 50.00)
	billing, err := ensureBilling(db, consultation.ID)
	assert.NoError(t, err)

	r := newTestRouter(db, &testActor{UserID: 77, Role: model.RoleFinance})
	r.POST("/billing/:id/payment", ProcessPayment)

	path := fmt.Sprintf("/billing/%d/payment", billing.ID)
	for _, amount := range []float64{0, -25} {
		w := doJSON(r, "POST", path, PaymentRequest{Amount: amount, PaymentMethod: model.PaymentCash})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	var txCount int64
	db.Model(&model.Transaction{}).Where("billing_id = ?", billing.ID).Count(&txCount)
	assert.Equal(t, int64(0), txCount)
}

func TestProcessPayment_OverpaymentGoesNegative(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "overpay@clinic.ph", 100.00)
	billing, err := ensureBilling(db, consultation.ID)
	assert.NoError(t, err)

	r := newTestRouter(db, &testActor{UserID: 77, Role: model.RoleFinance})
	r.POST("/billing/:id/payment", ProcessPayment)

	w := doJSON(r, "POST", fmt.Sprintf("/billing/%d/payment", billing.ID),
		PaymentRequest{Amount: 150, PaymentMethod: model.PaymentCash})
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&billing, billing.ID)
	assert.Equal(t, model.BillingPaid, billing.Status)
	assert.Equal(t, -50.0, billing.Balance())
}

func TestProcessPayment_TransactionSumReconciles(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "reconcile@clinic.ph", 500.00)
	billing, err := ensureBilling(db, consultation.ID)
	assert.NoError(t, err)

	r := newTestRouter(db, &testActor{UserID: 77, Role: model.RoleFinance})
	r.POST("/billing/:id/payment", ProcessPayment)

	path := fmt.Sprintf("/billing/%d/payment", billing.ID)
	payments := []PaymentRequest{
		{Amount: 120, PaymentMethod: model.PaymentCash},
		{Amount: 80, PaymentMethod: model.PaymentCash},
		{Amount: 200, PaymentMethod: model.PaymentPhilhealth},
	}
	for _, p := range payments {
		w := doJSON(r, "POST", path, p)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	db.First(&billing, billing.ID)

	var cashSum, coverageSum float64
	db.Model(&model.Transaction{}).
		Where("billing_id = ? AND payment_method != ?", billing.ID, model.PaymentPhilhealth).
		Select("COALESCE(SUM(amount), 0)").Scan(&cashSum)
	db.Model(&model.Transaction{}).
		Where("billing_id = ? AND payment_method = ?", billing.ID, model.PaymentPhilhealth).
		Select("COALESCE(SUM(amount), 0)").Scan(&coverageSum)

	assert.Equal(t, billing.AmountPaid, cashSum)
	assert.Equal(t, billing.PhilhealthCoverage, coverageSum)
}

func TestApplyPhilhealthCoverage_FullOverride(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "full-cover@clinic.ph", 500.00)
	billing, err := ensureBilling(db, consultation.ID)
	assert.NoError(t, err)

	actor := &testActor{UserID: 77, Role: model.RoleFinance}
	r := newTestRouter(db, actor)
	r.POST("/billing/:id/payment", ProcessPayment)
	r.POST("/billing/:id/philhealth", ApplyPhilhealthCoverage)

	// Pay 100 cash first, then claim full coverage.
	w := doJSON(r, "POST", fmt.Sprintf("/billing/%d/payment", billing.ID),
		PaymentRequest{Amount: 100, PaymentMethod: model.PaymentCash})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "POST", fmt.Sprintf("/billing/%d/philhealth", billing.ID),
		PhilhealthRequest{ReferenceNumber: "PH-FULL-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&billing, billing.ID)
	assert.Equal(t, model.BillingPhilhealth, billing.Status)
	assert.Equal(t, 500.0, billing.PhilhealthCoverage)
	assert.Equal(t, 100.0, billing.AmountPaid)
	assert.Equal(t, -100.0, billing.Balance())

	// The coverage transaction records the balance outstanding at claim time.
	var coverageTx model.Transaction
	err = db.Where("billing_id = ? AND payment_method = ?", billing.ID, model.PaymentPhilhealth).
		First(&coverageTx).Error
	assert.NoError(t, err)
	assert.Equal(t, 400.0, coverageTx.Amount)
}

func TestListTransactions_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "tx-list@clinic.ph", 300.00)
	billing, err := ensureBilling(db, consultation.ID)
	assert.NoError(t, err)

	for i, amount := range []float64{50, 75, 100} {
		tx := model.Transaction{
			BillingID:       billing.ID,
			Amount:          amount,
			PaymentMethod:   model.PaymentCash,
			ReferenceNumber: fmt.Sprintf("OR-%d", i),
			ProcessedBy:     77,
		}
		assert.NoError(t, db.Create(&tx).Error)
	}

	r := newTestRouter(db, &testActor{UserID: 77, Role: model.RoleFinance})
	r.GET("/billing/:id/transactions", ListTransactions)

	w := doJSON(r, "GET", fmt.Sprintf("/billing/%d/transactions", billing.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetBilling_IncludesBalance(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "get-billing@clinic.ph", 250.00)
	billing, err := ensureBilling(db, consultation.ID)
	assert.NoError(t, err)

	billing.ApplyAmount(100, model.PaymentCash)
	db.Save(&billing)

	r := newTestRouter(db, &testActor{UserID: 77, Role: model.RoleFinance})
	r.GET("/billing/:id", GetBilling)

	w := doJSON(r, "GET", fmt.Sprintf("/billing/%d", billing.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := parseData(t, w)
	assert.Equal(t, 150.0, data["balance"])
}

func TestListBilling_LazilyEnsuresCompletedConsultations(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "lazy-list@clinic.ph", 80.00)

	// No billing row yet; the list view must create it.
	var before int64
	db.Model(&model.Billing{}).Count(&before)
	assert.Equal(t, int64(0), before)

	r := newTestRouter(db, &testActor{UserID: 77, Role: model.RoleFinance})
	r.GET("/billing", ListBilling)

	w := doJSON(r, "GET", "/billing", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var billing model.Billing
	err := db.Where("consultation_id = ?", consultation.ID).First(&billing).Error
	assert.NoError(t, err)
	assert.Equal(t, 80.0, billing.TotalAmount)

	data := parseData(t, w)
	assert.Equal(t, float64(1), data["total"])
}

func TestListBilling_StatusFilter(t *testing.T) {
	db := setupTestDB(t)
	first, _ := seedCompletedVisit(t, db, "filter-a@clinic.ph", 100.00)
	second, _ := seedCompletedVisit(t, db, "filter-b@clinic.ph", 200.00)

	a, err := ensureBilling(db, first.ID)
	assert.NoError(t, err)
	_, err = ensureBilling(db, second.ID)
	assert.NoError(t, err)

	a.ApplyAmount(100, model.PaymentCash)
	db.Save(&a)

	r := newTestRouter(db, &testActor{UserID: 77, Role: model.RoleFinance})
	r.GET("/billing", ListBilling)

	w := doJSON(r, "GET", "/billing?status=PAID", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := parseData(t, w)
	assert.Equal(t, float64(1), data["total"])
}

func TestRecalculateBilling_PicksUpNewRollup(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "recalc@clinic.ph", 60.00)
	billing, err := ensureBilling(db, consultation.ID)
	assert.NoError(t, err)
	assert.Equal(t, 60.0, billing.TotalAmount)

	// A correction adds a prescription line after billing was created.
	extra := seedMedicine(t, db, "Recalc Extra", 40.00)
	db.Create(&model.Prescription{
		ConsultationID: consultation.ID,
		MedicineID:     extra.ID,
		Quantity:       1,
		LineTotal:      40.00,
	})

	r := newTestRouter(db, &testActor{UserID: 77, Role: model.RoleFinance})
	r.POST("/billing/:id/recalculate", RecalculateBilling)

	w := doJSON(r, "POST", fmt.Sprintf("/billing/%d/recalculate", billing.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&billing, billing.ID)
	assert.Equal(t, 100.0, billing.TotalAmount)
}

func TestRecalculateBilling_SettledStatusSurvivesCorrection(t *testing.T) {
	db := setupTestDB(t)
	consultation, _ := seedCompletedVisit(t, db, "recalc-settled@clinic.ph", 60.00)
	billing, err := ensureBilling(db, consultation.ID)
	assert.NoError(t, err)

	billing.ApplyAmount(60, model.PaymentCash)
	assert.NoError(t, db.Save(&billing).Error)
	assert.Equal(t, model.BillingPaid, billing.Status)

	// A correction raises the total after the ledger was settled.
	extra := seedMedicine(t, db, "Recalc Settled Extra", 40.00)
	db.Create(&model.Prescription{
		ConsultationID: consultation.ID,
		MedicineID:     extra.ID,
		Quantity:       1,
		LineTotal:      40.00,
	})

	r := newTestRouter(db, &testActor{UserID: 77, Role: model.RoleFinance})
	r.POST("/billing/:id/recalculate", RecalculateBilling)

	w := doJSON(r, "POST", fmt.Sprintf("/billing/%d/recalculate", billing.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&billing, billing.ID)
	assert.Equal(t, 100.0, billing.TotalAmount)
	assert.Equal(t, model.BillingPaid, billing.Status)
	assert.Equal(t, 40.0, billing.Balance())

	// PHILHEALTH ledgers keep their status the same way.
	second, _ := seedCompletedVisit(t, db, "recalc-cover@clinic.ph", 200.00)
	covered, err := ensureBilling(db, second.ID)
	assert.NoError(t, err)
	covered.ApplyFullCoverage()
	assert.NoError(t, db.Save(&covered).Error)

	more := seedMedicine(t, db, "Recalc Cover Extra", 25.00)
	db.Create(&model.Prescription{
		ConsultationID: second.ID,
		MedicineID:     more.ID,
		Quantity:       1,
		LineTotal:      25.00,
	})

	w = doJSON(r, "POST", fmt.Sprintf("/billing/%d/recalculate", covered.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&covered, covered.ID)
	assert.Equal(t, 225.0, covered.TotalAmount)
	assert.Equal(t, model.BillingPhilhealth, covered.Status)
}
