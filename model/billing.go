package model

import "gorm.io/gorm"

// Billing statuses. PAID and PHILHEALTH are terminal.
const (
	BillingPending    = "PENDING"
	BillingPartial    = "PARTIAL"
	BillingPaid       = "PAID"
	BillingPhilhealth = "PHILHEALTH"
)

// Billing item types.
const (
	ItemConsultation = "CONSULTATION"
	ItemMedicine     = "MEDICINE"
	ItemOther        = "OTHER"
)

// Payment methods recorded on transactions.
const (
	PaymentCash       = "CASH"
	PaymentPhilhealth = "PHILHEALTH"
)

// Billing is the ledger derived 1:1 from a consultation. TotalAmount is fixed
// when the billing is created and only changes through the explicit
// recalculation operation.
// @Description Billing ledger for a consultation
type Billing struct {
	gorm.Model
	ConsultationID     uint    `json:"consultation_id" gorm:"column:consultation_id;uniqueIndex" example:"1"`
	TotalAmount        float64 `json:"total_amount" gorm:"column:total_amount;type:decimal(10,2);not null" example:"1000.00"`
	PhilhealthCoverage float64 `json:"philhealth_coverage" gorm:"column:philhealth_coverage;type:decimal(10,2);default:0" example:"0.00"`
	AmountPaid         float64 `json:"amount_paid" gorm:"column:amount_paid;type:decimal(10,2);default:0" example:"400.00"`
	Status             string  `json:"status" gorm:"column:status;type:varchar(20);default:PENDING" example:"PARTIAL"`

	Items        []BillingItem `json:"items,omitempty" gorm:"foreignKey:BillingID"`
	Transactions []Transaction `json:"transactions,omitempty" gorm:"foreignKey:BillingID"`
}

// Balance is the outstanding amount owed. Overpayment is allowed, so the
// result can be negative; it is never clamped.
func (b *Billing) Balance() float64 {
	return b.TotalAmount - b.PhilhealthCoverage - b.AmountPaid
}

// ApplyAmount credits amount against the ledger under the given payment method
// and re-derives the status. PHILHEALTH amounts accrue as coverage, everything
// else as cash paid. Status stays untouched when nothing has been credited yet.
func (b *Billing) ApplyAmount(amount float64, method string) {
	if method == PaymentPhilhealth {
		b.PhilhealthCoverage += amount
	} else {
		b.AmountPaid += amount
	}

	switch {
	case b.Balance() <= 0:
		b.Status = BillingPaid
	case b.AmountPaid > 0 || b.PhilhealthCoverage > 0:
		b.Status = BillingPartial
	}
}

// ApplyFullCoverage overrides the coverage side of the ledger with the full
// total and marks the billing PHILHEALTH. Prior cash payments stay recorded in
// AmountPaid, which can push the balance negative.
func (b *Billing) ApplyFullCoverage() {
	b.PhilhealthCoverage = b.TotalAmount
	b.Status = BillingPhilhealth
}

// Settled reports whether the ledger reached a terminal status. A settled
// billing keeps its status even when the total is corrected afterwards.
func (b *Billing) Settled() bool {
	return b.Status == BillingPaid || b.Status == BillingPhilhealth
}

// BillingItem is one charge line on a billing. TotalPrice is recomputed from
// unit price and quantity on every write.
type BillingItem struct {
	gorm.Model
	BillingID   uint    `json:"billing_id" gorm:"column:billing_id;index"`
	ItemType    string  `json:"item_type" gorm:"column:item_type;type:varchar(20)"`
	Description string  `json:"description" gorm:"column:description"`
	Quantity    int     `json:"quantity" gorm:"column:quantity;not null;default:1"`
	UnitPrice   float64 `json:"unit_price" gorm:"column:unit_price;type:decimal(10,2)"`
	TotalPrice  float64 `json:"total_price" gorm:"column:total_price;type:decimal(10,2)"`
}

// BeforeSave keeps TotalPrice consistent with UnitPrice and Quantity.
func (bi *BillingItem) BeforeSave(tx *gorm.DB) error {
	bi.TotalPrice = bi.UnitPrice * float64(bi.Quantity)
	return nil
}

// Transaction is one append-only payment event applied to a billing. Rows are
// never updated or deleted; they are the audit trail the running totals
// reconcile against.
type Transaction struct {
	gorm.Model
	BillingID       uint    `json:"billing_id" gorm:"column:billing_id;index"`
	Amount          float64 `json:"amount" gorm:"column:amount;type:decimal(10,2);not null"`
	PaymentMethod   string  `json:"payment_method" gorm:"column:payment_method;type:varchar(20)"`
	ReferenceNumber string  `json:"reference_number" gorm:"column:reference_number;size:100"`
	Remarks         string  `json:"remarks" gorm:"column:remarks;type:text"`
	ProcessedBy     uint    `json:"processed_by" gorm:"column:processed_by"`
}
