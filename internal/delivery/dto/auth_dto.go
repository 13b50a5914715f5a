package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// LoginRequest accepts either the email or the phone number as contact
type LoginRequest struct {
	Contact  string `json:"contact" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"omitempty"`
}

type RegisterPatientRequest = RegistrationInfo

type RegisterDoctorRequest struct {
	Email           string           `json:"email" validate:"required,email"`
	PhoneNumber     string           `json:"phone_number" validate:"omitempty,min=10,max=20"`
	Password        string           `json:"password" validate:"required,min=6"`
	FullName        string           `json:"full_name" validate:"required,min=2"`
	STRNumber       string           `json:"str_number" validate:"required"`
	Specialization  string           `json:"specialization" validate:"required"`
	Biography       string           `json:"biography" validate:"omitempty"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee" validate:"omitempty"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	FullName    string    `json:"full_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RegisterAdminRequest is used by the admin bootstrap command
type RegisterAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=3,max=255"`
}
