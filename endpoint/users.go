package endpoint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Sentinel errors for staff registration
var (
	ErrEmailAlreadyExists      = errors.New("email already exists")
	ErrEmployeeIDAlreadyExists = errors.New("employee id already exists")
	ErrLicenseAlreadyExists    = errors.New("license number already exists")
)

type RegisterStaffRequest struct {
	Email     string `json:"email" binding:"required,email" example:"staff@clinic.ph"`
	Password  string `json:"password" binding:"required" example:"password123"`
	FirstName string `json:"first_name" binding:"required" example:"Maria"`
	LastName  string `json:"last_name" binding:"required" example:"Santos"`
	EmployeeID string `json:"employee_id" binding:"required" example:"EMP-0042"`
	Phone      string `json:"phone" example:"09171234567"`

	// Role-specific fields; only the ones matching the registration route are used.
	Specialization string `json:"specialization,omitempty" example:"Internal Medicine"`
	LicenseNumber  string `json:"license_number,omitempty" example:"PRC-123456"`
	Department     string `json:"department,omitempty" example:"Front Desk"`
	Position       string `json:"position,omitempty" example:"Billing Officer"`
}

func normalizeStaffRequest(req *RegisterStaffRequest) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = util.NormalizeName(req.FirstName)
	req.LastName = util.NormalizeName(req.LastName)
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
}

// checkStaffUniqueness rejects duplicate emails, employee IDs and license
// numbers before any write.
func checkStaffUniqueness(db *gorm.DB, role string, req *RegisterStaffRequest) error {
	var existing model.User
	err := db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return ErrEmailAlreadyExists
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	var table string
	switch role {
	case model.RoleDoctor:
		table = "doctor_profiles"
	case model.RoleSecretary:
		table = "secretary_profiles"
	case model.RoleFinance:
		table = "finance_profiles"
	default:
		return fmt.Errorf("unsupported staff role: %s", role)
	}

	var count int64
	if err := db.Table(table).Where("employee_id = ?", req.EmployeeID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmployeeIDAlreadyExists
	}

	if role == model.RoleDoctor {
		if err := db.Table(table).Where("license_number = ?", req.LicenseNumber).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrLicenseAlreadyExists
		}
	}
	return nil
}

// createStaff creates the user account and its role profile in one transaction.
func createStaff(db *gorm.DB, role string, req *RegisterStaffRequest) (model.User, error) {
	user := model.User{
		Name:     fmt.Sprintf("%s %s", req.FirstName, req.LastName),
		Email:    req.Email,
		Password: util.HashPassword(req.Password),
		Role:     role,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		switch role {
		case model.RoleDoctor:
			return tx.Create(&model.DoctorProfile{
				UserID:         user.ID,
				FirstName:      req.FirstName,
				LastName:       req.LastName,
				EmployeeID:     req.EmployeeID,
				Specialization: req.Specialization,
				LicenseNumber:  req.LicenseNumber,
				Phone:          req.Phone,
				Email:          req.Email,
			}).Error
		case model.RoleSecretary:
			return tx.Create(&model.SecretaryProfile{
				UserID:     user.ID,
				FirstName:  req.FirstName,
				LastName:   req.LastName,
				EmployeeID: req.EmployeeID,
				Department: req.Department,
				Phone:      req.Phone,
				Email:      req.Email,
			}).Error
		case model.RoleFinance:
			return tx.Create(&model.FinanceProfile{
				UserID:     user.ID,
				FirstName:  req.FirstName,
				LastName:   req.LastName,
				EmployeeID: req.EmployeeID,
				Position:   req.Position,
				Phone:      req.Phone,
				Email:      req.Email,
			}).Error
		}
		return fmt.Errorf("unsupported staff role: %s", role)
	})
	return user, err
}

func registerStaff(c *gin.Context, role string) {
	var req RegisterStaffRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	normalizeStaffRequest(&req)

	if role == model.RoleDoctor && req.LicenseNumber == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "License number is required for doctors",
			Err: fmt.Errorf("license number is empty"),
		})
		return
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}

	if err := checkStaffUniqueness(db, role, &req); err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			util.CallConflict(c, util.APIErrorParams{Msg: "Email already registered", Err: err})
		case errors.Is(err, ErrEmployeeIDAlreadyExists):
			util.CallConflict(c, util.APIErrorParams{Msg: "Employee ID already registered", Err: err})
		case errors.Is(err, ErrLicenseAlreadyExists):
			util.CallConflict(c, util.APIErrorParams{Msg: "License number already registered", Err: err})
		default:
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to validate staff uniqueness", Err: err})
		}
		return
	}

	user, err := createStaff(db, role, &req)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to register staff", Err: err})
		return
	}

	util.LogAuditEvent(util.AuditEvent{
		EventType: util.EventStaffRegistered,
		UserID:    fmt.Sprintf("%d", user.ID),
		Email:     user.Email,
		IP:        c.ClientIP(),
		Message:   fmt.Sprintf("Registered %s account", role),
	})

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  fmt.Sprintf("%s registered successfully", role),
		Data: map[string]interface{}{"user_id": user.ID, "email": user.Email, "role": user.Role},
	})
}

// RegisterDoctor godoc
// @Summary      Register a doctor account
// @Description  Create a doctor user and profile (superadmin only)
// @Tags         Registration
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body RegisterStaffRequest true "Doctor details"
// @Success      200 {object} util.APIResponse "Doctor registered"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      409 {object} util.APIResponse "Duplicate email"
// @Router       /register/doctor [post]
func RegisterDoctor(c *gin.Context) { registerStaff(c, model.RoleDoctor) }

// RegisterSecretary godoc
// @Summary      Register a secretary account
// @Description  Create a secretary user and profile (superadmin only)
// @Tags         Registration
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body RegisterStaffRequest true "Secretary details"
// @Success      200 {object} util.APIResponse "Secretary registered"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      409 {object} util.APIResponse "Duplicate email"
// @Router       /register/secretary [post]
func RegisterSecretary(c *gin.Context) { registerStaff(c, model.RoleSecretary) }

// RegisterFinance godoc
// @Summary      Register a finance staff account
// @Description  Create a finance user and profile (superadmin only)
// @Tags         Registration
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body RegisterStaffRequest true "Finance staff details"
// @Success      200 {object} util.APIResponse "Finance staff registered"
// @Failure      400 {object} util.APIResponse "Invalid request"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      409 {object} util.APIResponse "Duplicate email"
// @Router       /register/finance [post]
func RegisterFinance(c *gin.Context) { registerStaff(c, model.RoleFinance) }
