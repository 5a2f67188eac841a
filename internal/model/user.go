package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName    string     `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	PhoneNumber string     `gorm:"type:varchar(20)" json:"phone_number"`
	Role        string     `gorm:"type:varchar(30);not null;index" json:"role" validate:"required"`
	Zones       ZoneList   `gorm:"serializer:json" json:"zones"`
	CompanyID   *uuid.UUID `gorm:"type:uuid;index" json:"company_id,omitempty"` // set for VENDOR / COMPANY_MANAGER
	Company     *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`

	TokenVersion string `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number"`
	Role        string     `json:"role"`
	Zones       ZoneList   `json:"zones"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		Zones:       u.Zones,
		CompanyID:   u.CompanyID,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}
