package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type UpdateDoctorSelfRequest struct {
	FullName        string           `json:"full_name" validate:"omitempty,min=2"`
	Specialization  string           `json:"specialization" validate:"omitempty"`
	Biography       string           `json:"biography" validate:"omitempty"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee" validate:"omitempty"`
}

// Response DTOs

type DoctorResponse struct {
	ID              uuid.UUID       `json:"id"`
	Email           string          `json:"email,omitempty"`
	FullName        string          `json:"full_name"`
	STRNumber       string          `json:"str_number"`
	Specialization  string          `json:"specialization"`
	Biography       string          `json:"biography,omitempty"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	IsActive        *bool           `json:"is_active"`
	// BookingEnabled drives whether the public profile shows a booking widget.
	BookingEnabled bool `json:"booking_enabled"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
