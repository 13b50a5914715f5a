package converter

import (
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Doctor, patient and clinic details are included when preloaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:            appointment.ID,
		BookingCode:   appointment.BookingCode,
		DoctorID:      appointment.DoctorID,
		PatientID:     appointment.PatientID,
		Date:          appointment.Date.Format("2006-01-02"),
		TimeFrom:      appointment.TimeFrom.String(),
		TimeTo:        appointment.TimeTo.String(),
		Mode:          string(appointment.Mode),
		ClinicID:      appointment.ClinicID,
		Amount:        appointment.Amount,
		PaymentStatus: string(appointment.PaymentStatus),
		VisitStatus:   string(appointment.VisitStatus),
		IsCancelled:   appointment.IsCancelled,
		CancelReason:  appointment.CancelReason,
		CancelledAt:   appointment.CancelledAt,
		CreatedAt:     appointment.CreatedAt,
		UpdatedAt:     appointment.UpdatedAt,
	}

	if appointment.Doctor.User.ID != uuid.Nil {
		response.DoctorName = appointment.Doctor.User.FullName
	}
	if appointment.Patient.User.ID != uuid.Nil {
		response.PatientName = appointment.Patient.User.FullName
	}
	if appointment.Clinic != nil {
		response.Clinic = ClinicToResponse(appointment.Clinic)
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to AppointmentListResponse DTO
func AppointmentsToResponses(appointments []entity.Appointment) *dto.AppointmentListResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return &dto.AppointmentListResponse{
		Appointments: responses,
		Total:        len(responses),
	}
}
