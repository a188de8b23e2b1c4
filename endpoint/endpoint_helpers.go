package endpoint

import (
	"fmt"
	"strconv"

	"github.com/gocotano/ekonsulta/middleware"
	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// bindJSONOrRespond binds the request body into dst, responding with a user
// error when the payload is malformed.
func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

// ensureDB fetches the request-scoped DB handle or responds with a server error.
func ensureDB(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Database connection not available",
			Err: fmt.Errorf("db is nil"),
		})
		return nil, false
	}
	return db, true
}

// getIDParam reads and validates the numeric :id path parameter.
func getIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid ID parameter",
			Err: fmt.Errorf("id %q is not a positive integer", raw),
		})
		return 0, false
	}
	return uint(id), true
}

// requireActor returns the authenticated actor's user ID, responding when the
// auth middleware did not run or the session carried no user.
func requireActor(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == 0 {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "User not authenticated",
			Err: fmt.Errorf("user id not found in context"),
		})
		return 0, false
	}
	return userID, true
}

// doctorProfileForUser resolves the DoctorProfile belonging to the actor's
// user account.
func doctorProfileForUser(db *gorm.DB, userID uint) (model.DoctorProfile, error) {
	var profile model.DoctorProfile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	return profile, err
}

// requireAssignedDoctor is the ownership half of the policy check: the actor
// must be the doctor the appointment is assigned to. It responds and returns
// false on any failure.
func requireAssignedDoctor(c *gin.Context, db *gorm.DB, appointment *model.Appointment) (model.DoctorProfile, bool) {
	userID, ok := requireActor(c)
	if !ok {
		return model.DoctorProfile{}, false
	}
	profile, err := doctorProfileForUser(db, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallAccessDenied(c, util.APIErrorParams{
				Msg: "No doctor profile for this account",
				Err: fmt.Errorf("doctor profile not found"),
			})
		} else {
			util.CallServerError(c, util.APIErrorParams{
				Msg: "Failed to resolve doctor profile",
				Err: err,
			})
		}
		return model.DoctorProfile{}, false
	}
	if appointment.DoctorID != profile.ID {
		util.LogUnauthorizedAccess(fmt.Sprintf("%d", userID), "", c.ClientIP(), c.FullPath(),
			"actor is not the assigned doctor")
		util.CallAccessDenied(c, util.APIErrorParams{
			Msg: "Only the assigned doctor may perform this operation",
			Err: fmt.Errorf("appointment assigned to another doctor"),
		})
		return model.DoctorProfile{}, false
	}
	return profile, true
}

// listQuery carries the common list-view parameters.
type listQuery struct {
	Limit   int
	Offset  int
	Keyword string
	Status  string
	SortDir string
}

func parseListQuery(c *gin.Context) listQuery {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return listQuery{
		Limit:   limit,
		Offset:  offset,
		Keyword: c.Query("keyword"),
		Status:  c.Query("status"),
		SortDir: c.Query("sort_dir"),
	}
}
