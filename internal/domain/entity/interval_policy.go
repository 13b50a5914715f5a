package entity

import (
	"time"

	"github.com/google/uuid"
)

// MaxIntervalMinutes caps the booking granularity at one full day.
const MaxIntervalMinutes = MinutesPerDay

// IntervalPolicy is the doctor-level booking granularity. One row per doctor, upserted.
type IntervalPolicy struct {
	DoctorID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"doctor_id"`
	IntervalMinutes int       `gorm:"not null;check:interval_minutes > 0" json:"interval_minutes"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor *DoctorProfile `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (IntervalPolicy) TableName() string {
	return "interval_policies"
}

// ValidInterval reports whether minutes can quantize a day.
func ValidInterval(minutes int) bool {
	return minutes > 0 && minutes <= MaxIntervalMinutes
}
