package model

import "gorm.io/gorm"

// User represents an account of any role (admin, nurse, or patient).
// @Description User account information
type User struct {
	gorm.Model
	Username       string `json:"username" gorm:"column:username;uniqueIndex;type:varchar(100);not null" example:"perawat1"`
	Name           string `json:"name" gorm:"column:name" example:"Ani Perawat"`
	Password       string `json:"-" gorm:"column:password"`
	PasswordSalt   string `json:"-" gorm:"column:password_salt"`
	RoleID         uint32 `json:"role_id" gorm:"column:role_id;not null" example:"2"`
	NurseID        *uint  `json:"nurse_id,omitempty" gorm:"column:nurse_id;index" example:"1"`
	FailedAttempts int    `json:"-" gorm:"column:failed_attempts;default:0"`
	LockedUntil    *int64 `json:"-" gorm:"column:locked_until"`
}

// CreateUserRequest represents the payload for admin user creation
// @Description New user information
type CreateUserRequest struct {
	Username string `json:"username" example:"pasien3"`
	Password string `json:"password" example:"password123"`
	Name     string `json:"name" example:"Budi Santoso"`
	Role     string `json:"role" example:"patient"`
	NurseID  uint   `json:"nurse_id,omitempty" example:"2"`
}

// UserResponse is the public projection of a user, without credentials.
type UserResponse struct {
	ID       uint   `json:"id" example:"3"`
	Username string `json:"username" example:"pasien1"`
	Name     string `json:"name" example:"Budi Santoso"`
	Role     string `json:"role" example:"Patient"`
	NurseID  *uint  `json:"nurse_id,omitempty" example:"2"`
}
