package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enumerates user roles.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleMentor  Role = "MENTOR"
	RoleStudent Role = "STUDENT"
)

// IsStaff reports whether the role may manage content and grades.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleMentor
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMentor, RoleStudent:
		return true
	}
	return false
}

// User represents an account (admin, mentor, or student).
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null;default:'STUDENT'" json:"role"`
	AvatarPath   string    `json:"avatar_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// BeforeCreate assigns a UUID so the schema does not depend on a database
// default.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// LoginRequest is the payload for email/password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterRequest is the payload for staff creating a new user.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role" binding:"required,oneof=ADMIN MENTOR STUDENT"`
}

// ChangePasswordRequest is the payload for changing the caller's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// UpdateRoleRequest is the payload for an admin changing a user's role.
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=ADMIN MENTOR STUDENT"`
}

// UpdateProfileRequest is the payload for self-service profile updates.
type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
}
