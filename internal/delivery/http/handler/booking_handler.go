package handler

import (
	"net/http"

	"go-clinic-scheduling/internal/converter"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/usecase"
	"go-clinic-scheduling/pkg/response"
	"go-clinic-scheduling/pkg/validator"
)

// BookingHandler serves the public booking widget. No session is needed:
// new patients register inline, returning patients send their credentials.
type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

// BookForNewPatient handles registration plus booking
// @Summary Book a slot as a new patient
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.BookNewPatientRequest true "Booking Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bookings/new-patient [post]
func (h *BookingHandler) BookForNewPatient(w http.ResponseWriter, r *http.Request) {
	var req dto.BookNewPatientRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.bookingUsecase.BookForNewPatient(r.Context(), &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to create booking")
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", converter.AppointmentToResponse(appointment))
}

// BookForExistingPatient handles booking with login credentials
// @Summary Book a slot as a returning patient
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.BookExistingPatientRequest true "Booking Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bookings/existing-patient [post]
func (h *BookingHandler) BookForExistingPatient(w http.ResponseWriter, r *http.Request) {
	var req dto.BookExistingPatientRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.bookingUsecase.BookForExistingPatient(r.Context(), &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to create booking")
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", converter.AppointmentToResponse(appointment))
}
