package converter

import (
	"time"

	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

func SlotsToResponses(slots []entity.Slot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i, s := range slots {
		responses[i] = dto.SlotResponse{
			TimeFrom: s.TimeFrom.String(),
			TimeTo:   s.TimeTo.String(),
		}
	}
	return responses
}

func SlotListToResponse(doctorID uuid.UUID, date time.Time, day entity.DayOfWeek, intervalMinutes int, slots []entity.Slot) *dto.SlotListResponse {
	return &dto.SlotListResponse{
		DoctorID:        doctorID,
		Date:            date.Format("2006-01-02"),
		DayOfWeek:       day.String(),
		IntervalMinutes: intervalMinutes,
		Slots:           SlotsToResponses(slots),
		Total:           len(slots),
	}
}
