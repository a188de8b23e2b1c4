package model

import "gorm.io/gorm"

// Consultation is the permanent record of a completed visit. Exactly one
// consultation exists per appointment; it is written once, together with its
// prescriptions, when the doctor completes the visit.
// @Description Consultation record for a completed appointment
type Consultation struct {
	gorm.Model
	AppointmentID uint   `json:"appointment_id" gorm:"column:appointment_id;uniqueIndex" example:"1"`
	DoctorID      uint   `json:"doctor_id" gorm:"column:doctor_id;not null" example:"1"`
	Diagnosis     string `json:"diagnosis" gorm:"column:diagnosis;type:text;not null" example:"Acute bronchitis"`
	ReasonNotes   string `json:"reason_notes" gorm:"column:reason_notes;type:text" example:"Persistent cough for two weeks"`
	Notes         string `json:"notes" gorm:"column:notes;type:text" example:"Advise rest and hydration"`

	Prescriptions []Prescription `json:"prescriptions,omitempty" gorm:"foreignKey:ConsultationID"`
}

// Prescription is one medicine line item of a consultation. LineTotal is
// computed from the medicine's catalog price at the moment the visit is
// completed; later catalog edits do not rewrite it.
type Prescription struct {
	gorm.Model
	ConsultationID uint    `json:"consultation_id" gorm:"column:consultation_id;index"`
	MedicineID     uint    `json:"medicine_id" gorm:"column:medicine_id;not null"`
	Quantity       int     `json:"quantity" gorm:"column:quantity;not null;default:1"`
	Instructions   string  `json:"instructions" gorm:"column:instructions;type:text"`
	LineTotal      float64 `json:"line_total" gorm:"column:line_total;type:decimal(10,2)"`
}

// TotalAmount sums the prescription line totals of the consultation. This is
// the authoritative figure the billing ledger is seeded from.
func (con *Consultation) TotalAmount(db *gorm.DB) (float64, error) {
	var total float64
	err := db.Model(&Prescription{}).
		Where("consultation_id = ?", con.ID).
		Select("COALESCE(SUM(line_total), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
