package handler

import (
	"errors"
	"net/http"

	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/usecase"
	"go-clinic-scheduling/pkg/response"
)

// writeUsecaseError maps domain errors to an actionable status and message.
// Anything unknown is reported as fallback with a 500; the usecase has
// already logged it.
func writeUsecaseError(w http.ResponseWriter, err error, fallback string) {
	switch {
	// Configuration errors
	case errors.Is(err, usecase.ErrInvalidInterval),
		errors.Is(err, usecase.ErrInvalidRange),
		errors.Is(err, usecase.ErrInvalidMode),
		errors.Is(err, usecase.ErrInvalidDate),
		errors.Is(err, usecase.ErrInvalidFee),
		errors.Is(err, entity.ErrInvalidDayOfWeek),
		errors.Is(err, entity.ErrInvalidClockTime):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrNotConfigured):
		response.Conflict(w, "Doctor has not configured booking interval yet")

	// Booking errors
	case errors.Is(err, usecase.ErrSlotNotOffered):
		response.BadRequest(w, "Selected time is not an offered slot for that date")
	case errors.Is(err, usecase.ErrSlotInPast):
		response.BadRequest(w, "Selected slot is in the past")
	case errors.Is(err, usecase.ErrSlotTaken):
		response.Conflict(w, "This slot was just taken, please choose another")
	case errors.Is(err, usecase.ErrSlotBusy):
		response.Conflict(w, "This slot is being booked by someone else, try again shortly")
	case errors.Is(err, usecase.ErrDuplicateUser):
		response.Conflict(w, "An account with this contact already exists, please log in instead")
	case errors.Is(err, usecase.ErrSTRAlreadyExists):
		response.Conflict(w, "STR number already exists")
	case errors.Is(err, usecase.ErrAppointmentAlreadyCancelled):
		response.Conflict(w, "Appointment is already cancelled")

	// Auth errors
	case errors.Is(err, usecase.ErrAuthFailed):
		response.Unauthorized(w, "Invalid credentials")
	case errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrTokenRevoked):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, usecase.ErrAppointmentNotOwned):
		response.Forbidden(w, "Appointment does not belong to you")

	// Not found
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrClinicNotFound):
		response.NotFound(w, "Clinic not found")
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, usecase.ErrAuditLogNotFound):
		response.NotFound(w, "Audit log not found")

	default:
		response.InternalServerError(w, fallback)
	}
}
