package model

import "gorm.io/gorm"

type Patient struct {
	gorm.Model
	FirstName      string `json:"first_name" gorm:"column:first_name;not null"`
	LastName       string `json:"last_name" gorm:"column:last_name;not null"`
	BirthDate      string `json:"birth_date" gorm:"column:birth_date"`
	Gender         string `json:"gender" gorm:"column:gender;size:10"`
	ContactNumber  string `json:"contact_number" gorm:"column:contact_number;size:15"`
	Email          string `json:"email" gorm:"column:email"`
	Address        string `json:"address" gorm:"column:address;type:text"`
	MedicalHistory string `json:"medical_history" gorm:"column:medical_history;type:text"`
}
