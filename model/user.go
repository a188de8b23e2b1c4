package model

import "gorm.io/gorm"

// Staff roles. Every authenticated actor carries exactly one of these.
const (
	RoleSuperadmin = "SUPERADMIN"
	RoleSecretary  = "SECRETARY"
	RoleDoctor     = "DOCTOR"
	RoleFinance    = "FINANCE"
)

// User represents an authenticated staff account
// @Description Staff account information
type User struct {
	gorm.Model
	Name     string `json:"name" gorm:"column:name" example:"Juan Dela Cruz"`
	Email    string `json:"email" gorm:"column:email;uniqueIndex;size:191" example:"juan@clinic.ph"`
	Password string `json:"-" gorm:"column:password"`
	Role     string `json:"role" gorm:"column:role;type:varchar(20);index" example:"DOCTOR"`
}

// IsValidRole reports whether the given role is one of the known staff roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleSuperadmin, RoleSecretary, RoleDoctor, RoleFinance:
		return true
	}
	return false
}
