package model

import "gorm.io/gorm"

// Medicine represents a catalog medicine entry
// @Description Medicine catalog information
type Medicine struct {
	gorm.Model
	Name        string  `json:"name" gorm:"column:name;not null" example:"Amoxicillin 500mg"`
	Price       float64 `json:"price" gorm:"column:price;type:decimal(10,2);not null" example:"12.50"`
	Description string  `json:"description" gorm:"column:description;type:text" example:"Antibiotic capsule"`
	IsActive    bool    `json:"is_active" gorm:"column:is_active;default:true" example:"true"`
}
