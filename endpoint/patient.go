package endpoint

import (
	"fmt"

	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PatientRequest struct {
	FirstName      string `json:"first_name" example:"Jose"`
	LastName       string `json:"last_name" example:"Rizal"`
	BirthDate      string `json:"birth_date" example:"1990-06-19"`
	Gender         string `json:"gender" example:"Male"`
	ContactNumber  string `json:"contact_number" example:"09171234567"`
	Email          string `json:"email" example:"jose@example.com"`
	Address        string `json:"address" example:"Calamba, Laguna"`
	MedicalHistory string `json:"medical_history" example:"Hypertension"`
}

func fetchPatients(db *gorm.DB, q listQuery) ([]model.Patient, int64, error) {
	var patients []model.Patient
	var total int64

	query := db.Model(&model.Patient{}).Order("created_at DESC")
	countQuery := db.Model(&model.Patient{})
	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		cond := "first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR contact_number LIKE ? OR address LIKE ?"
		query = query.Where(cond, kw, kw, kw, kw, kw)
		countQuery = countQuery.Where(cond, kw, kw, kw, kw, kw)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	if err := query.Find(&patients).Error; err != nil {
		return nil, 0, err
	}

	countQuery.Count(&total)
	return patients, total, nil
}

// ListPatients godoc
// @Summary      List all patients
// @Description  Get a paginated list of patients with optional search
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Param        keyword query string false "Search keyword for name, email, contact number, or address"
// @Success      200 {object} util.APIResponse{data=object} "Patients retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient [get]
func ListPatients(c *gin.Context) {
	db, ok := ensureDB(c)
	if !ok {
		return
	}

	patients, total, err := fetchPatients(db, parseListQuery(c))
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch patients", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patients fetched successfully",
		Data: map[string]interface{}{"total": total, "total_fetched": len(patients), "patients": patients},
	})
}

// GetPatient godoc
// @Summary      Get patient detail
// @Description  Fetch a single patient by ID
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Success      200 {object} util.APIResponse{data=model.Patient} "Patient retrieved"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patient/{id} [get]
func GetPatient(c *gin.Context) {
	id, ok := getIDParam(c)
	if !ok {
		return
	}
	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var patient model.Patient
	if err := db.First(&patient, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch patient", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient retrieved", Data: patient})
}

// CreatePatient godoc
// @Summary      Register a patient
// @Description  Create a new patient record
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body PatientRequest true "Patient details"
// @Success      200 {object} util.APIResponse{data=model.Patient} "Patient created"
// @Failure      400 {object} util.APIResponse "Invalid input data"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /patient [post]
func CreatePatient(c *gin.Context) {
	var req PatientRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}

	req.FirstName = util.NormalizeName(req.FirstName)
	req.LastName = util.NormalizeName(req.LastName)
	if req.FirstName == "" || req.LastName == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "First name and last name are required",
			Err: fmt.Errorf("patient name is empty"),
		})
		return
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}

	patient := model.Patient{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		BirthDate:      req.BirthDate,
		Gender:         req.Gender,
		ContactNumber:  req.ContactNumber,
		Email:          req.Email,
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
	}
	if err := db.Create(&patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create patient", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient created successfully", Data: patient})
}

// UpdatePatient godoc
// @Summary      Update patient demographics
// @Description  Update mutable demographic fields of an existing patient
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Param        request body PatientRequest true "Fields to update"
// @Success      200 {object} util.APIResponse{data=model.Patient} "Patient updated"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patient/{id} [patch]
func UpdatePatient(c *gin.Context) {
	id, ok := getIDParam(c)
	if !ok {
		return
	}

	var req PatientRequest
	if !bindJSONOrRespond(c, &req, "Invalid input data") {
		return
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var patient model.Patient
	if err := db.First(&patient, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch patient", Err: err})
		return
	}

	// Identity is immutable once created; only demographics change.
	if req.BirthDate != "" {
		patient.BirthDate = req.BirthDate
	}
	if req.Gender != "" {
		patient.Gender = req.Gender
	}
	if req.ContactNumber != "" {
		patient.ContactNumber = req.ContactNumber
	}
	if req.Email != "" {
		patient.Email = req.Email
	}
	if req.Address != "" {
		patient.Address = req.Address
	}
	if req.MedicalHistory != "" {
		patient.MedicalHistory = req.MedicalHistory
	}

	if err := db.Save(&patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update patient", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient updated successfully", Data: patient})
}
