package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type SetIntervalRequest struct {
	IntervalMinutes int `json:"interval_minutes" validate:"required,min=1,max=1440"`
}

type TimeRangeRequest struct {
	StartTime string `json:"start_time" validate:"required,clock"` // Format: HH:MM
	EndTime   string `json:"end_time" validate:"required,clock"`   // Format: HH:MM
}

// SetDayScheduleRequest replaces one weekday's configuration wholesale
type SetDayScheduleRequest struct {
	IsActive *bool              `json:"is_active" validate:"required"`
	Ranges   []TimeRangeRequest `json:"ranges" validate:"omitempty,dive"`
}

// Response DTOs

type IntervalResponse struct {
	DoctorID        uuid.UUID `json:"doctor_id"`
	IntervalMinutes int       `json:"interval_minutes"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type TimeRangeResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type DayScheduleResponse struct {
	DayOfWeek string              `json:"day_of_week"`
	IsActive  bool                `json:"is_active"`
	Ranges    []TimeRangeResponse `json:"ranges"`
}

type WeekScheduleResponse struct {
	DoctorID        uuid.UUID             `json:"doctor_id"`
	IntervalMinutes *int                  `json:"interval_minutes,omitempty"`
	HasActiveDay    bool                  `json:"has_active_day"`
	Days            []DayScheduleResponse `json:"days"`
}
