package endpoint

import (
	"fmt"
	"strings"

	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MedicineRequest struct {
	Name        string  `json:"name" example:"Amoxicillin 500mg"`
	Price       float64 `json:"price" example:"12.50"`
	Description string  `json:"description" example:"Antibiotic capsule"`
	IsActive    *bool   `json:"is_active,omitempty" example:"true"`
}

// ListMedicines godoc
// @Summary      List medicines
// @Description  Get the medicine catalog, active entries only unless include_inactive=true
// @Tags         Medicine
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        include_inactive query bool false "Include inactive medicines"
// @Success      200 {object} util.APIResponse{data=[]model.Medicine} "Medicines retrieved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /medicine [get]
func ListMedicines(c *gin.Context) {
	db, ok := ensureDB(c)
	if !ok {
		return
	}

	query := db.Order("name ASC")
	if c.Query("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var medicines []model.Medicine
	if err := query.Find(&medicines).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve medicines", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Medicines retrieved", Data: medicines})
}

// CreateMedicine godoc
// @Summary      Add a medicine
// @Description  Create a medicine catalog entry (superadmin only)
// @Tags         Medicine
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body MedicineRequest true "Medicine details"
// @Success      200 {object} util.APIResponse{data=model.Medicine} "Medicine created"
// @Failure      400 {object} util.APIResponse "Invalid input data"
// @Failure      409 {object} util.APIResponse "Duplicate medicine name"
// @Router       /medicine [post]
func CreateMedicine(c *gin.Context) {
	var req MedicineRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}

	req.Name = util.NormalizeName(req.Name)
	if req.Name == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Medicine name is required",
			Err: fmt.Errorf("name is empty"),
		})
		return
	}
	if req.Price < 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Price must not be negative",
			Err: fmt.Errorf("invalid price %.2f", req.Price),
		})
		return
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var existing model.Medicine
	if err := db.Where("LOWER(name) = ?", strings.ToLower(req.Name)).First(&existing).Error; err == nil {
		util.CallConflict(c, util.APIErrorParams{
			Msg: "Medicine with this name already exists",
			Err: fmt.Errorf("duplicate medicine name"),
		})
		return
	}

	medicine := model.Medicine{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		medicine.IsActive = *req.IsActive
	}

	if err := db.Create(&medicine).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create medicine", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Medicine created successfully", Data: medicine})
}

// UpdateMedicine godoc
// @Summary      Update a medicine
// @Description  Update price, description, or active flag of a medicine (superadmin only)
// @Tags         Medicine
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Medicine ID"
// @Param        request body MedicineRequest true "Fields to update"
// @Success      200 {object} util.APIResponse{data=model.Medicine} "Medicine updated"
// @Failure      404 {object} util.APIResponse "Medicine not found"
// @Router       /medicine/{id} [patch]
func UpdateMedicine(c *gin.Context) {
	id, ok := getIDParam(c)
	if !ok {
		return
	}

	var req MedicineRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var medicine model.Medicine
	if err := db.First(&medicine, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Medicine not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch medicine", Err: err})
		return
	}

	if name := util.NormalizeName(req.Name); name != "" {
		medicine.Name = name
	}
	if req.Price > 0 {
		medicine.Price = req.Price
	}
	if req.Description != "" {
		medicine.Description = req.Description
	}
	if req.IsActive != nil {
		medicine.IsActive = *req.IsActive
	}

	if err := db.Save(&medicine).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update medicine", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Medicine updated successfully", Data: medicine})
}
