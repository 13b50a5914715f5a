package converter

import (
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// TimeRangesFromRequest parses the submitted ranges, keeping their order.
func TimeRangesFromRequest(ranges []dto.TimeRangeRequest) ([]entity.TimeRange, error) {
	result := make([]entity.TimeRange, len(ranges))
	for i, r := range ranges {
		start, err := entity.ParseClockTime(r.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := entity.ParseClockTime(r.EndTime)
		if err != nil {
			return nil, err
		}
		result[i] = entity.TimeRange{Position: i, StartTime: start, EndTime: end}
	}
	return result, nil
}

func IntervalToResponse(policy *entity.IntervalPolicy) *dto.IntervalResponse {
	if policy == nil {
		return nil
	}
	return &dto.IntervalResponse{
		DoctorID:        policy.DoctorID,
		IntervalMinutes: policy.IntervalMinutes,
		UpdatedAt:       policy.UpdatedAt,
	}
}

// DayToResponse converts a DayAvailability entity to DayScheduleResponse DTO
func DayToResponse(day *entity.DayAvailability) *dto.DayScheduleResponse {
	if day == nil {
		return nil
	}

	ranges := make([]dto.TimeRangeResponse, len(day.Ranges))
	for i, r := range day.Ranges {
		ranges[i] = dto.TimeRangeResponse{
			StartTime: r.StartTime.String(),
			EndTime:   r.EndTime.String(),
		}
	}

	return &dto.DayScheduleResponse{
		DayOfWeek: day.DayOfWeek.String(),
		IsActive:  day.IsActive,
		Ranges:    ranges,
	}
}

// WeekToResponse converts the seven weekday rows to WeekScheduleResponse DTO.
// intervalMinutes is nil when the doctor has no interval yet.
func WeekToResponse(doctorID uuid.UUID, days []entity.DayAvailability, hasActiveDay bool, intervalMinutes *int) *dto.WeekScheduleResponse {
	responses := make([]dto.DayScheduleResponse, len(days))
	for i := range days {
		responses[i] = *DayToResponse(&days[i])
	}

	return &dto.WeekScheduleResponse{
		DoctorID:        doctorID,
		IntervalMinutes: intervalMinutes,
		HasActiveDay:    hasActiveDay,
		Days:            responses,
	}
}
