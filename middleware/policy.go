package middleware

import (
	"fmt"
	"time"

	"github.com/gocotano/ekonsulta/model"
	"github.com/gocotano/ekonsulta/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// sessionActorTTL bounds how long a resolved session may be served from the
// Redis cache before the session row is consulted again.
const sessionActorTTL = 5 * time.Minute

// RequireAuth resolves the session-token header to an actor (user id + role)
// and stores it in the request context. Requests without a valid, unexpired
// session are rejected before any handler runs.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("session-token")
		if token == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session token is missing in 'session-token' header",
				Err: fmt.Errorf("session token is empty"),
			})
			c.Abort()
			return
		}

		// Fast path: resolved actor cached in Redis.
		if userID, role, ok := util.GetCachedSessionActor(token); ok {
			c.Set(ContextKeyUserID, userID)
			c.Set(ContextKeyRole, role)
			c.Next()
			return
		}

		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{
				Msg: "Database connection not available",
				Err: fmt.Errorf("db is nil"),
			})
			c.Abort()
			return
		}

		var session model.Session
		if err := db.Where("session_token = ?", token).First(&session).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.CallUserNotAuthorized(c, util.APIErrorParams{
					Msg: "Session not found or has expired",
					Err: fmt.Errorf("session not found"),
				})
			} else {
				util.CallServerError(c, util.APIErrorParams{
					Msg: "Failed to resolve session",
					Err: err,
				})
			}
			c.Abort()
			return
		}
		if session.Expired() {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Session not found or has expired",
				Err: fmt.Errorf("session expired"),
			})
			c.Abort()
			return
		}

		role := util.GetUserRole(db, session.UserID)
		if role == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "User associated with the session was not found",
				Err: fmt.Errorf("user not found for session"),
			})
			c.Abort()
			return
		}

		_ = util.CacheSessionActor(token, session.UserID, role, sessionActorTTL)

		c.Set(ContextKeyUserID, session.UserID)
		c.Set(ContextKeyRole, role)
		c.Next()
	}
}

// RequireRole is the single policy-check gate applied before every operation
// that is restricted to specific roles. It assumes RequireAuth already ran.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "User not authenticated",
				Err: fmt.Errorf("role not found in context"),
			})
			c.Abort()
			return
		}
		if !util.Contains(role, roles) {
			userID, _ := GetUserID(c)
			util.LogUnauthorizedAccess(fmt.Sprintf("%d", userID), "", c.ClientIP(), c.FullPath(),
				fmt.Sprintf("role %s not allowed", role))
			util.CallAccessDenied(c, util.APIErrorParams{
				Msg: "Access denied for your role",
				Err: fmt.Errorf("requires one of %v", roles),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
