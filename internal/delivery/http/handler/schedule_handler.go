package handler

import (
	"errors"
	"net/http"

	"go-clinic-scheduling/internal/converter"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/usecase"
	"go-clinic-scheduling/pkg/response"
	"go-clinic-scheduling/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ScheduleHandler serves the doctor's interval and weekly availability.
type ScheduleHandler struct {
	intervalUsecase     usecase.IntervalPolicyUsecase
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewScheduleHandler(
	intervalUsecase usecase.IntervalPolicyUsecase,
	availabilityUsecase usecase.AvailabilityUsecase,
	validator *validator.CustomValidator,
) *ScheduleHandler {
	return &ScheduleHandler{
		intervalUsecase:     intervalUsecase,
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

func (h *ScheduleHandler) GetInterval(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	policy, err := h.intervalUsecase.GetInterval(r.Context(), doctorID)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get interval")
		return
	}

	response.Success(w, http.StatusOK, "Interval retrieved successfully", converter.IntervalToResponse(policy))
}

func (h *ScheduleHandler) SetInterval(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.SetIntervalRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	policy, err := h.intervalUsecase.SetInterval(r.Context(), doctorID, req.IntervalMinutes)
	if err != nil {
		writeUsecaseError(w, err, "Failed to set interval")
		return
	}

	response.Success(w, http.StatusOK, "Interval saved successfully", converter.IntervalToResponse(policy))
}

// GetMyWeek returns the authenticated doctor's week.
func (h *ScheduleHandler) GetMyWeek(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	h.writeWeek(w, r, doctorID)
}

// GetDoctorWeek is the public view of a doctor's week.
func (h *ScheduleHandler) GetDoctorWeek(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor ID")
	if !ok {
		return
	}
	h.writeWeek(w, r, doctorID)
}

func (h *ScheduleHandler) SetDaySchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	day, err := entity.ParseDayOfWeek(mux.Vars(r)["day"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid day of week", nil)
		return
	}

	var req dto.SetDayScheduleRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	ranges, err := converter.TimeRangesFromRequest(req.Ranges)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	saved, err := h.availabilityUsecase.SetDaySchedule(r.Context(), doctorID, day, *req.IsActive, ranges)
	if err != nil {
		writeUsecaseError(w, err, "Failed to save schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule saved successfully", converter.DayToResponse(saved))
}

func (h *ScheduleHandler) writeWeek(w http.ResponseWriter, r *http.Request, doctorID uuid.UUID) {
	week, err := h.availabilityUsecase.GetWeekSchedule(r.Context(), doctorID)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get schedule")
		return
	}

	var intervalMinutes *int
	policy, err := h.intervalUsecase.GetInterval(r.Context(), doctorID)
	switch {
	case err == nil:
		intervalMinutes = &policy.IntervalMinutes
	case !errors.Is(err, usecase.ErrNotConfigured):
		writeUsecaseError(w, err, "Failed to get schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule retrieved successfully",
		converter.WeekToResponse(week.DoctorID, week.Days, week.HasActiveDay, intervalMinutes))
}
