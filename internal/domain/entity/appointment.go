package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentMode is how the consultation takes place
type AppointmentMode string

const (
	AppointmentModeOnline  AppointmentMode = "online"
	AppointmentModeOffline AppointmentMode = "offline"
)

func (m AppointmentMode) Valid() bool {
	return m == AppointmentModeOnline || m == AppointmentModeOffline
}

// PaymentStatus of an appointment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// VisitStatus of an appointment
type VisitStatus string

const (
	VisitStatusScheduled VisitStatus = "scheduled"
	VisitStatusVisited   VisitStatus = "visited"
)

// Appointment is a booked slot in a doctor's ledger.
// At most one non-cancelled row may exist per (doctor, date, time_from, time_to);
// the partial unique index ux_appointments_slot enforces it.
type Appointment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:ux_appointments_slot,priority:1,where:is_cancelled = false" json:"doctor_id"`
	PatientID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"patient_id"`
	Date          time.Time       `gorm:"type:date;not null;uniqueIndex:ux_appointments_slot,priority:2,where:is_cancelled = false" json:"date"`
	TimeFrom      ClockTime       `gorm:"type:time;not null;uniqueIndex:ux_appointments_slot,priority:3,where:is_cancelled = false" json:"time_from"`
	TimeTo        ClockTime       `gorm:"type:time;not null;uniqueIndex:ux_appointments_slot,priority:4,where:is_cancelled = false" json:"time_to"`
	Mode          AppointmentMode `gorm:"type:varchar(10);not null" json:"mode"`
	ClinicID      *uuid.UUID      `gorm:"type:uuid" json:"clinic_id,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
	BookingCode   string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"booking_code"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	VisitStatus   VisitStatus     `gorm:"type:varchar(20);not null;default:'scheduled'" json:"visit_status"`
	IsCancelled   bool            `gorm:"not null;default:false;index" json:"is_cancelled"`
	CancelReason  string          `gorm:"type:text" json:"cancel_reason,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor  DoctorProfile  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient PatientProfile `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Clinic  *Clinic        `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// Slot returns the time window the appointment occupies.
func (a *Appointment) Slot() Slot {
	return Slot{TimeFrom: a.TimeFrom, TimeTo: a.TimeTo}
}

// IsVisited checks if the patient showed up
func (a *Appointment) IsVisited() bool {
	return a.VisitStatus == VisitStatusVisited
}

// IsPaid checks if the consultation fee was settled
func (a *Appointment) IsPaid() bool {
	return a.PaymentStatus == PaymentStatusPaid
}

// Cancel marks the appointment cancelled; the row is kept for history.
func (a *Appointment) Cancel(reason string, at time.Time) {
	a.IsCancelled = true
	a.CancelReason = reason
	a.CancelledAt = &at
}

// AppointmentFilter narrows a doctor's ledger listing.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	From             *time.Time
	To               *time.Time
	IncludeCancelled bool
}
