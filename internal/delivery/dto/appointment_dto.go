package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// BookingSlotRequest identifies the slot a patient wants.
type BookingSlotRequest struct {
	DoctorID uuid.UUID  `json:"doctor_id" validate:"required"`
	Date     string     `json:"date" validate:"required,datetime=2006-01-02"` // Format: YYYY-MM-DD
	TimeFrom string     `json:"time_from" validate:"required,clock"`          // Format: HH:MM
	TimeTo   string     `json:"time_to" validate:"required,clock"`            // Format: HH:MM
	Mode     string     `json:"mode" validate:"required,oneof=online offline"`
	ClinicID *uuid.UUID `json:"clinic_id" validate:"omitempty"`
}

// RegistrationInfo is what a first-time patient submits. Either email or
// phone number must be given; both become login contacts.
type RegistrationInfo struct {
	FullName    string `json:"full_name" validate:"required,min=2"`
	Email       string `json:"email" validate:"required_without=PhoneNumber,omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"required_without=Email,omitempty,min=10,max=20"`
	Password    string `json:"password" validate:"required,min=6"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"` // Format: YYYY-MM-DD
	Gender      string `json:"gender" validate:"omitempty,oneof=M F"`
	Address     string `json:"address" validate:"omitempty"`
}

type BookNewPatientRequest struct {
	BookingSlotRequest
	Patient RegistrationInfo `json:"patient" validate:"required"`
}

type BookExistingPatientRequest struct {
	BookingSlotRequest
	Contact  string `json:"contact" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// Response DTOs

type AppointmentResponse struct {
	ID            uuid.UUID       `json:"id"`
	BookingCode   string          `json:"booking_code"`
	DoctorID      uuid.UUID       `json:"doctor_id"`
	DoctorName    string          `json:"doctor_name,omitempty"`
	PatientID     uuid.UUID       `json:"patient_id"`
	PatientName   string          `json:"patient_name,omitempty"`
	Date          string          `json:"date"`
	TimeFrom      string          `json:"time_from"`
	TimeTo        string          `json:"time_to"`
	Mode          string          `json:"mode"`
	Clinic        *ClinicResponse `json:"clinic,omitempty"`
	ClinicID      *uuid.UUID      `json:"clinic_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus string          `json:"payment_status"`
	VisitStatus   string          `json:"visit_status"`
	IsCancelled   bool            `json:"is_cancelled"`
	CancelReason  string          `json:"cancel_reason,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
