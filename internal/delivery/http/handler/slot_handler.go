package handler

import (
	"net/http"

	"go-clinic-scheduling/internal/converter"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/usecase"
	"go-clinic-scheduling/pkg/response"
)

type SlotHandler struct {
	slotUsecase        usecase.SlotUsecase
	appointmentUsecase usecase.AppointmentUsecase
}

func NewSlotHandler(slotUsecase usecase.SlotUsecase, appointmentUsecase usecase.AppointmentUsecase) *SlotHandler {
	return &SlotHandler{
		slotUsecase:        slotUsecase,
		appointmentUsecase: appointmentUsecase,
	}
}

// GetOpenSlots lists the slots a patient can still book: GET /doctors/{id}/slots?date=YYYY-MM-DD
func (h *SlotHandler) GetOpenSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor ID")
	if !ok {
		return
	}
	date, ok := queryDate(w, r, "date")
	if !ok {
		return
	}
	if date == nil {
		response.Error(w, http.StatusBadRequest, "date is required", nil)
		return
	}

	slots, err := h.slotUsecase.GetOpenSlots(r.Context(), doctorID, *date)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully",
		converter.SlotListToResponse(slots.DoctorID, slots.Date, slots.DayOfWeek, slots.IntervalMinutes, slots.Slots))
}

// GetMySlots lists every configured slot of the doctor for a date, booked or not.
func (h *SlotHandler) GetMySlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	date, ok := queryDate(w, r, "date")
	if !ok {
		return
	}
	if date == nil {
		response.Error(w, http.StatusBadRequest, "date is required", nil)
		return
	}

	slots, err := h.slotUsecase.ResolveSlotsForDate(r.Context(), doctorID, *date)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully",
		converter.SlotListToResponse(slots.DoctorID, slots.Date, slots.DayOfWeek, slots.IntervalMinutes, slots.Slots))
}

// IsSlotFree: GET /doctor/slots/free?date=&time_from=&time_to=
func (h *SlotHandler) IsSlotFree(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	date, ok := queryDate(w, r, "date")
	if !ok {
		return
	}
	if date == nil {
		response.Error(w, http.StatusBadRequest, "date is required", nil)
		return
	}

	query := r.URL.Query()
	timeFrom, err := entity.ParseClockTime(query.Get("time_from"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid time_from, use HH:MM", nil)
		return
	}
	timeTo, err := entity.ParseClockTime(query.Get("time_to"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid time_to, use HH:MM", nil)
		return
	}

	free, err := h.appointmentUsecase.IsSlotFree(r.Context(), doctorID, *date, entity.Slot{TimeFrom: timeFrom, TimeTo: timeTo})
	if err != nil {
		writeUsecaseError(w, err, "Failed to check slot")
		return
	}

	response.Success(w, http.StatusOK, "Slot checked successfully", dto.SlotFreeResponse{
		DoctorID: doctorID,
		Date:     date.Format(dateLayout),
		TimeFrom: timeFrom.String(),
		TimeTo:   timeTo.String(),
		IsFree:   free,
	})
}
