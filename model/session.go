package model

import (
	"time"

	"gorm.io/gorm"
)

// Session represents an active login session backed by a session token.
type Session struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"column:user_id;index;not null"`
	SessionToken string    `json:"session_token" gorm:"column:session_token;uniqueIndex;type:varchar(191);not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"column:expires_at;not null"`
	ClientIP     string    `json:"client_ip" gorm:"column:client_ip;type:varchar(45)"`
	Browser      string    `json:"browser" gorm:"column:browser;type:varchar(512)"`
}
