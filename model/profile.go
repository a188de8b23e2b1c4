package model

import "gorm.io/gorm"

// DoctorProfile holds the clinical identity of a DOCTOR user.
// Appointments reference the profile, not the account, so account
// changes never touch the scheduling chain.
type DoctorProfile struct {
	gorm.Model
	UserID         uint   `json:"user_id" gorm:"column:user_id;uniqueIndex"`
	FirstName      string `json:"first_name" gorm:"column:first_name"`
	LastName       string `json:"last_name" gorm:"column:last_name"`
	EmployeeID     string `json:"employee_id" gorm:"column:employee_id;uniqueIndex;size:50"`
	Specialization string `json:"specialization" gorm:"column:specialization"`
	LicenseNumber  string `json:"license_number" gorm:"column:license_number;uniqueIndex;size:50"`
	Phone          string `json:"phone" gorm:"column:phone;size:15"`
	Email          string `json:"email" gorm:"column:email"`
}

// SecretaryProfile holds the identity of a SECRETARY user.
type SecretaryProfile struct {
	gorm.Model
	UserID     uint   `json:"user_id" gorm:"column:user_id;uniqueIndex"`
	FirstName  string `json:"first_name" gorm:"column:first_name"`
	LastName   string `json:"last_name" gorm:"column:last_name"`
	EmployeeID string `json:"employee_id" gorm:"column:employee_id;uniqueIndex;size:50"`
	Department string `json:"department" gorm:"column:department"`
	Phone      string `json:"phone" gorm:"column:phone;size:15"`
	Email      string `json:"email" gorm:"column:email"`
}

// FinanceProfile holds the identity of a FINANCE user.
type FinanceProfile struct {
	gorm.Model
	UserID     uint   `json:"user_id" gorm:"column:user_id;uniqueIndex"`
	FirstName  string `json:"first_name" gorm:"column:first_name"`
	LastName   string `json:"last_name" gorm:"column:last_name"`
	EmployeeID string `json:"employee_id" gorm:"column:employee_id;uniqueIndex;size:50"`
	Position   string `json:"position" gorm:"column:position"`
	Phone      string `json:"phone" gorm:"column:phone;size:15"`
	Email      string `json:"email" gorm:"column:email"`
}
