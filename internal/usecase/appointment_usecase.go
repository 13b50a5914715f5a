package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/service"
	"go-clinic-scheduling/pkg/clock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrSlotTaken                   = errors.New("this slot was just taken, please choose another")
	ErrInvalidMode                 = errors.New("mode must be online, or offline with a clinic")
	ErrAppointmentNotFound         = errors.New("appointment not found")
	ErrAppointmentAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrAppointmentNotOwned         = errors.New("appointment does not belong to you")
	ErrClinicNotFound              = errors.New("clinic not found")
)

// slotConstraint is the partial unique index that arbitrates concurrent bookings.
const slotConstraint = "ux_appointments_slot"

type BookAppointmentParams struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      time.Time
	Slot      entity.Slot
	Mode      entity.AppointmentMode
	ClinicID  *uuid.UUID
	Amount    decimal.Decimal
}

type AppointmentUsecase interface {
	IsSlotFree(ctx context.Context, doctorID uuid.UUID, date time.Time, slot entity.Slot) (bool, error)
	// ValidateMode returns the clinic to store: nil for online, the doctor's clinic for offline.
	ValidateMode(ctx context.Context, doctorID uuid.UUID, mode entity.AppointmentMode, clinicID *uuid.UUID) (*uuid.UUID, error)
	BookAppointment(ctx context.Context, params BookAppointmentParams) (*entity.Appointment, error)
	CancelAppointment(ctx context.Context, appointmentID uuid.UUID, reason string) error
	MarkVisited(ctx context.Context, appointmentID uuid.UUID) (*entity.Appointment, error)
	MarkPaid(ctx context.Context, appointmentID uuid.UUID) (*entity.Appointment, error)
	DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error
	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*entity.Appointment, error)
	ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	ListPatientAppointments(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error)
}

type appointmentUsecase struct {
	tx              repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	clinicRepo      repository.ClinicRepository
	auditService    service.AuditService
	clock           clock.Clock
}

func NewAppointmentUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	clinicRepo repository.ClinicRepository,
	auditService service.AuditService,
	clk clock.Clock,
) AppointmentUsecase {
	return &appointmentUsecase{
		tx:              tx,
		log:             log,
		appointmentRepo: appointmentRepo,
		clinicRepo:      clinicRepo,
		auditService:    auditService,
		clock:           clk,
	}
}

func (u *appointmentUsecase) IsSlotFree(ctx context.Context, doctorID uuid.UUID, date time.Time, slot entity.Slot) (bool, error) {
	existing, err := u.appointmentRepo.FindActiveBySlot(ctx, u.tx.Conn(ctx), doctorID, clock.Date(u.clock, date), slot)
	if err != nil {
		u.log.Warnf("Failed to check slot %s for doctor %s: %+v", slot, doctorID, err)
		return false, err
	}
	return existing == nil, nil
}

func (u *appointmentUsecase) ValidateMode(ctx context.Context, doctorID uuid.UUID, mode entity.AppointmentMode, clinicID *uuid.UUID) (*uuid.UUID, error) {
	switch mode {
	case entity.AppointmentModeOnline:
		return nil, nil
	case entity.AppointmentModeOffline:
		if clinicID == nil || *clinicID == uuid.Nil {
			return nil, ErrInvalidMode
		}
	default:
		return nil, ErrInvalidMode
	}

	clinic, err := u.clinicRepo.FindByID(ctx, u.tx.Conn(ctx), *clinicID)
	if err != nil {
		u.log.Warnf("Failed to find clinic %s: %+v", *clinicID, err)
		return nil, err
	}
	if clinic == nil || clinic.DoctorID != doctorID {
		return nil, ErrClinicNotFound
	}
	return &clinic.ID, nil
}

// BookAppointment inserts the appointment. The pre-check gives a clean
// ErrSlotTaken in the common case; the unique index decides real races.
func (u *appointmentUsecase) BookAppointment(ctx context.Context, params BookAppointmentParams) (*entity.Appointment, error) {
	clinicID, err := u.ValidateMode(ctx, params.DoctorID, params.Mode, params.ClinicID)
	if err != nil {
		return nil, err
	}

	date := clock.Date(u.clock, params.Date)
	appointment := &entity.Appointment{
		DoctorID:      params.DoctorID,
		PatientID:     params.PatientID,
		Date:          date,
		TimeFrom:      params.Slot.TimeFrom,
		TimeTo:        params.Slot.TimeTo,
		Mode:          params.Mode,
		ClinicID:      clinicID,
		Amount:        params.Amount,
		BookingCode:   generateBookingCode(date),
		PaymentStatus: entity.PaymentStatusPending,
		VisitStatus:   entity.VisitStatusScheduled,
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := u.appointmentRepo.FindActiveBySlot(ctx, tx, params.DoctorID, date, params.Slot)
		if err != nil {
			u.log.Warnf("Failed to check slot %s for doctor %s: %+v", params.Slot, params.DoctorID, err)
			return err
		}
		if existing != nil {
			return ErrSlotTaken
		}

		if err := u.appointmentRepo.Create(ctx, tx, appointment); err != nil {
			if isDuplicateKeyError(err, slotConstraint) {
				return ErrSlotTaken
			}
			u.log.Warnf("Failed to create appointment: %+v", err)
			return err
		}

		return u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionAppointmentCreate,
			"appointment", appointment.ID.String(), map[string]interface{}{
				"doctor_id":  params.DoctorID,
				"patient_id": params.PatientID,
				"date":       date.Format(dateLayout),
				"slot":       params.Slot.String(),
				"mode":       params.Mode,
			})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment booked: id=%s, doctor=%s, date=%s, slot=%s, code=%s",
		appointment.ID, params.DoctorID, date.Format(dateLayout), params.Slot, appointment.BookingCode)
	return appointment, nil
}

// CancelAppointment keeps the row; only the slot is released.
// The patient who booked, the doctor and admins may cancel.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, appointmentID uuid.UUID, reason string) error {
	appointment, err := u.findAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	if !canAccess(ctx, appointment, true) {
		return ErrAppointmentNotOwned
	}
	if appointment.IsCancelled {
		return ErrAppointmentAlreadyCancelled
	}

	now := u.clock.Now()
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.appointmentRepo.Cancel(ctx, tx, appointmentID, reason, now)
		if err != nil {
			u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
			return err
		}
		if affected == 0 {
			return ErrAppointmentAlreadyCancelled
		}
		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionAppointmentCancel,
			"appointment", appointmentID.String(),
			map[string]interface{}{"is_cancelled": false},
			map[string]interface{}{"is_cancelled": true, "reason": reason})
	})
	if err != nil {
		return err
	}

	u.log.Infof("Appointment cancelled: id=%s, slot=%s", appointmentID, appointment.Slot())
	return nil
}

func (u *appointmentUsecase) MarkVisited(ctx context.Context, appointmentID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !canAccess(ctx, appointment, false) {
		return nil, ErrAppointmentNotOwned
	}
	if appointment.IsCancelled {
		return nil, ErrAppointmentAlreadyCancelled
	}
	if appointment.IsVisited() {
		return appointment, nil
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.appointmentRepo.UpdateVisitStatus(ctx, tx, appointmentID, entity.VisitStatusVisited); err != nil {
			u.log.Warnf("Failed to mark appointment %s visited: %+v", appointmentID, err)
			return err
		}
		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionAppointmentVisited,
			"appointment", appointmentID.String(), appointment.VisitStatus, entity.VisitStatusVisited)
	})
	if err != nil {
		return nil, err
	}

	appointment.VisitStatus = entity.VisitStatusVisited
	return appointment, nil
}

func (u *appointmentUsecase) MarkPaid(ctx context.Context, appointmentID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !canAccess(ctx, appointment, false) {
		return nil, ErrAppointmentNotOwned
	}
	if appointment.IsCancelled {
		return nil, ErrAppointmentAlreadyCancelled
	}
	if appointment.IsPaid() {
		return appointment, nil
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.appointmentRepo.UpdatePaymentStatus(ctx, tx, appointmentID, entity.PaymentStatusPaid); err != nil {
			u.log.Warnf("Failed to mark appointment %s paid: %+v", appointmentID, err)
			return err
		}
		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionAppointmentPaid,
			"appointment", appointmentID.String(), appointment.PaymentStatus, entity.PaymentStatusPaid)
	})
	if err != nil {
		return nil, err
	}

	appointment.PaymentStatus = entity.PaymentStatusPaid
	return appointment, nil
}

// DeleteAppointment removes the row for good. Use CancelAppointment to keep history.
func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	appointment, err := u.findAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	if !canAccess(ctx, appointment, false) {
		return ErrAppointmentNotOwned
	}

	return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.appointmentRepo.Delete(ctx, tx, appointmentID)
		if err != nil {
			u.log.Warnf("Failed to delete appointment %s: %+v", appointmentID, err)
			return err
		}
		if affected == 0 {
			return ErrAppointmentNotFound
		}
		return u.auditService.LogDelete(ctx, tx, actorFromContext(ctx), entity.AuditActionAppointmentDelete,
			"appointment", appointmentID.String(), map[string]interface{}{
				"booking_code": appointment.BookingCode,
				"date":         appointment.Date.Format(dateLayout),
				"slot":         appointment.Slot().String(),
			})
	})
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !canAccess(ctx, appointment, true) {
		return nil, ErrAppointmentNotOwned
	}
	return appointment, nil
}

func (u *appointmentUsecase) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	appointments, err := u.appointmentRepo.FindByDoctorID(ctx, u.tx.Conn(ctx), doctorID, filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return appointments, nil
}

func (u *appointmentUsecase) ListPatientAppointments(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	appointments, err := u.appointmentRepo.FindByPatientID(ctx, u.tx.Conn(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", patientID, err)
		return nil, err
	}
	return appointments, nil
}

func (u *appointmentUsecase) findAppointment(ctx context.Context, appointmentID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.tx.Conn(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

// canAccess allows admins and the appointment's doctor, plus its patient
// when patientAllowed is set.
func canAccess(ctx context.Context, appointment *entity.Appointment, patientAllowed bool) bool {
	if isAdmin(ctx) {
		return true
	}
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return false
	}
	if userID == appointment.DoctorID {
		return true
	}
	return patientAllowed && userID == appointment.PatientID
}

// generateBookingCode generates a booking code: AP-YYYYMMDD-XXXXXX
func generateBookingCode(date time.Time) string {
	randomBytes := make([]byte, 3)
	rand.Read(randomBytes)
	return fmt.Sprintf("AP-%s-%06X", date.Format("20060102"), randomBytes)
}
