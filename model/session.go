package model

import (
	"time"

	"gorm.io/gorm"
)

// Session is a server-side login session. The session token is handed to the
// client at login and resolved back to a user on every request.
type Session struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"column:user_id;index"`
	SessionToken string    `json:"session_token" gorm:"column:session_token;uniqueIndex;size:191"`
	ExpiredAt    time.Time `json:"expired_at" gorm:"column:expired_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiredAt)
}
