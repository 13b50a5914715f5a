package dto

import "github.com/google/uuid"

type SlotResponse struct {
	TimeFrom string `json:"time_from"`
	TimeTo   string `json:"time_to"`
}

type SlotListResponse struct {
	DoctorID        uuid.UUID      `json:"doctor_id"`
	Date            string         `json:"date"`
	DayOfWeek       string         `json:"day_of_week"`
	IntervalMinutes int            `json:"interval_minutes"`
	Slots           []SlotResponse `json:"slots"`
	Total           int            `json:"total"`
}

type SlotFreeResponse struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	TimeFrom string    `json:"time_from"`
	TimeTo   string    `json:"time_to"`
	IsFree   bool      `json:"is_free"`
}
