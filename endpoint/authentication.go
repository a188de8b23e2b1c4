package endpoint

import (
	"fmt"
	"time"

	"github.com/gocotano/ekonsulta/config"
	"github.com/gocotano/ekonsulta/middleware"
	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@clinic.ph"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type LoginResponse struct {
	Token  string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Role   string `json:"role" example:"DOCTOR"`
	UserID uint   `json:"user_id" example:"1"`
}

// clientInfo captures request metadata for audit logging.
type clientInfo struct {
	IP    string
	Agent string
}

// issueSessionToken signs a JWT carrying the user identity and role. The same
// token doubles as the session token persisted in the sessions table.
func issueSessionToken(user *model.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(util.GetJWTSecretByte())
}

// Login godoc
// @Summary      User login
// @Description  Authenticate staff with email and password
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid request payload or credentials"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}

	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}

	var user model.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.LogLoginFailure(req.Email, ci.IP, ci.Agent, "user not found")
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Invalid email or password",
				Err: fmt.Errorf("invalid credentials"),
			})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load user", Err: err})
		return
	}

	if !util.VerifyPassword(req.Password, user.Password) {
		util.LogLoginFailure(req.Email, ci.IP, ci.Agent, "wrong password")
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid email or password",
			Err: fmt.Errorf("invalid credentials"),
		})
		return
	}

	cfg := config.LoadConfig()
	expiresAt := time.Now().Add(time.Duration(cfg.SessionHours) * time.Hour)

	token, err := issueSessionToken(&user, expiresAt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to issue session token", Err: err})
		return
	}

	session := model.Session{
		UserID:       user.ID,
		SessionToken: token,
		ExpiredAt:    expiresAt,
	}
	if err := db.Create(&session).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create session", Err: err})
		return
	}

	// Best-effort Redis mirrors; login succeeds without them.
	_ = util.AddSessionToUserSet(user.ID, token)
	_ = util.CacheSessionActor(token, user.ID, user.Role, time.Until(expiresAt))
	util.UserRoleCacheSet(user.ID, user.Role)

	util.LogLoginSuccess(user.ID, user.Email, ci.IP, ci.Agent)

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Login successful",
		Data: LoginResponse{Token: token, Role: user.Role, UserID: user.ID},
	})
}

// Logout godoc
// @Summary      User logout
// @Description  Invalidate the current session token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse "Logout successful"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /logout [post]
func Logout(c *gin.Context) {
	token := c.GetHeader("session-token")
	if token == "" {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "Session token is missing in 'session-token' header",
			Err: fmt.Errorf("session token is empty"),
		})
		return
	}

	db, ok := ensureDB(c)
	if !ok {
		return
	}

	var session model.Session
	if err := db.Where("session_token = ?", token).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session not found or has expired",
				Err: fmt.Errorf("session not found"),
			})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to resolve session", Err: err})
		return
	}

	if err := db.Delete(&session).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete session", Err: err})
		return
	}
	_ = util.RemoveSessionTokenFromUserSet(session.UserID, token)
	_ = util.DropCachedSession(token)

	userID, _ := middleware.GetUserID(c)
	util.LogLogout(userID, "", c.ClientIP(), c.Request.UserAgent())

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful", Data: map[string]interface{}{}})
}
