package entity

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DayAvailability is one of the seven fixed weekday rows of a doctor's schedule.
type DayAvailability struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID  uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:ux_day_availability_doctor_day,priority:1" json:"doctor_id"`
	DayOfWeek DayOfWeek   `gorm:"type:varchar(9);not null;uniqueIndex:ux_day_availability_doctor_day,priority:2" json:"day_of_week"`
	IsActive  bool        `gorm:"not null;default:false" json:"is_active"`
	Ranges    []TimeRange `gorm:"foreignKey:DayAvailabilityID;constraint:OnDelete:CASCADE" json:"ranges"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DayAvailability) TableName() string {
	return "day_availabilities"
}

// TimeRange is a [StartTime, EndTime) window owned by one DayAvailability.
// Position keeps the order in which the doctor submitted the ranges.
type TimeRange struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	DayAvailabilityID int64     `gorm:"not null;index" json:"-"`
	Position          int       `gorm:"not null;default:0" json:"-"`
	StartTime         ClockTime `gorm:"type:time;not null" json:"start_time"`
	EndTime           ClockTime `gorm:"type:time;not null" json:"end_time"`
}

func (TimeRange) TableName() string {
	return "time_ranges"
}

// Valid reports whether the range is non-empty and within one day.
func (r TimeRange) Valid() bool {
	return r.StartTime >= 0 && r.EndTime <= MinutesPerDay && r.StartTime < r.EndTime
}

// Overlaps reports whether two half-open ranges share any minute.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.StartTime < other.EndTime && other.StartTime < r.EndTime
}

// DefaultWeek returns the seven inactive rows created on a doctor's first save.
func DefaultWeek(doctorID uuid.UUID) []DayAvailability {
	days := make([]DayAvailability, 0, 7)
	for _, d := range AllDays() {
		days = append(days, DayAvailability{DoctorID: doctorID, DayOfWeek: d})
	}
	return days
}

// SortWeek orders rows Sunday to Saturday.
func SortWeek(days []DayAvailability) {
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].DayOfWeek < days[j].DayOfWeek
	})
}

// HasActiveDay is true when at least one weekday accepts bookings.
func HasActiveDay(days []DayAvailability) bool {
	for _, d := range days {
		if d.IsActive {
			return true
		}
	}
	return false
}
