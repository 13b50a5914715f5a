package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/service"
	"go-clinic-scheduling/pkg/clock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrSlotNotOffered = errors.New("selected time is not an offered slot for that date")
	ErrSlotInPast     = errors.New("selected slot is in the past")
	// ErrSlotBusy means another request holds the slot right now. That
	// booking may still fail, so the slot is not reported as taken.
	ErrSlotBusy    = errors.New("this slot is being booked by someone else, try again shortly")
	ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")
)

// IdentityProvider creates and verifies patient accounts for the booking flow.
type IdentityProvider interface {
	// CreatePatientIdentity fails with ErrDuplicateUser when the contact is taken.
	CreatePatientIdentity(ctx context.Context, info *dto.RegistrationInfo) (uuid.UUID, error)
	// VerifyCredentials fails with ErrAuthFailed without saying why.
	VerifyCredentials(ctx context.Context, contact, password string) (uuid.UUID, error)
	// DeactivateIdentity undoes CreatePatientIdentity when the booking fails.
	DeactivateIdentity(ctx context.Context, userID uuid.UUID) error
}

// FeeProvider stamps the consultation fee onto new appointments.
type FeeProvider interface {
	GetFee(ctx context.Context, doctorID uuid.UUID) (decimal.Decimal, error)
}

type BookingUsecase interface {
	BookForNewPatient(ctx context.Context, req *dto.BookNewPatientRequest) (*entity.Appointment, error)
	BookForExistingPatient(ctx context.Context, req *dto.BookExistingPatientRequest) (*entity.Appointment, error)
}

type bookingUsecase struct {
	log          *logrus.Logger
	slots        SlotUsecase
	appointments AppointmentUsecase
	identity     IdentityProvider
	fees         FeeProvider
	holder       service.SlotHolder
	clock        clock.Clock
}

func NewBookingUsecase(
	log *logrus.Logger,
	slots SlotUsecase,
	appointments AppointmentUsecase,
	identity IdentityProvider,
	fees FeeProvider,
	holder service.SlotHolder,
	clk clock.Clock,
) BookingUsecase {
	return &bookingUsecase{
		log:          log,
		slots:        slots,
		appointments: appointments,
		identity:     identity,
		fees:         fees,
		holder:       holder,
		clock:        clk,
	}
}

// bookingTarget is a validated slot request.
type bookingTarget struct {
	doctorID uuid.UUID
	date     time.Time
	slot     entity.Slot
	mode     entity.AppointmentMode
	clinicID *uuid.UUID
	amount   decimal.Decimal
}

// BookForNewPatient registers the patient and books in three phases:
// hold the slot, create the identity, insert the appointment.
// If the insert fails, the new identity is deactivated so the same
// contact can retry.
func (u *bookingUsecase) BookForNewPatient(ctx context.Context, req *dto.BookNewPatientRequest) (*entity.Appointment, error) {
	target, err := u.prepare(ctx, &req.BookingSlotRequest)
	if err != nil {
		return nil, err
	}

	return u.withHold(ctx, target, func() (*entity.Appointment, error) {
		patientID, err := u.identity.CreatePatientIdentity(ctx, &req.Patient)
		if err != nil {
			return nil, err
		}

		appointment, err := u.book(ctx, target, patientID)
		if err != nil {
			u.compensate(patientID, err)
			return nil, err
		}
		return appointment, nil
	})
}

// BookForExistingPatient is BookForNewPatient with a credential check in
// place of registration. Nothing needs compensating.
func (u *bookingUsecase) BookForExistingPatient(ctx context.Context, req *dto.BookExistingPatientRequest) (*entity.Appointment, error) {
	target, err := u.prepare(ctx, &req.BookingSlotRequest)
	if err != nil {
		return nil, err
	}

	return u.withHold(ctx, target, func() (*entity.Appointment, error) {
		patientID, err := u.identity.VerifyCredentials(ctx, req.Contact, req.Password)
		if err != nil {
			return nil, err
		}
		return u.book(ctx, target, patientID)
	})
}

// prepare validates everything that needs no side effects, so a bad
// request never creates an identity.
func (u *bookingUsecase) prepare(ctx context.Context, req *dto.BookingSlotRequest) (*bookingTarget, error) {
	parsed, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	date := clock.Date(u.clock, parsed)

	slot, err := parseSlot(req.TimeFrom, req.TimeTo)
	if err != nil {
		return nil, err
	}

	if date.Before(clock.Today(u.clock)) || slotStarted(date, slot, u.clock.Now()) {
		return nil, ErrSlotInPast
	}

	offered, err := u.slots.ResolveSlotsForDate(ctx, req.DoctorID, date)
	if err != nil {
		return nil, err
	}
	if !entity.ContainsSlot(offered.Slots, slot) {
		return nil, ErrSlotNotOffered
	}

	mode := entity.AppointmentMode(req.Mode)
	clinicID, err := u.appointments.ValidateMode(ctx, req.DoctorID, mode, req.ClinicID)
	if err != nil {
		return nil, err
	}

	amount, err := u.fees.GetFee(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	return &bookingTarget{
		doctorID: req.DoctorID,
		date:     date,
		slot:     slot,
		mode:     mode,
		clinicID: clinicID,
		amount:   amount,
	}, nil
}

// withHold runs fn while the slot is held in Redis. The hold keeps two
// patients from both registering for a slot only one can get.
func (u *bookingUsecase) withHold(ctx context.Context, target *bookingTarget, fn func() (*entity.Appointment, error)) (*entity.Appointment, error) {
	token, err := u.holder.Hold(ctx, target.doctorID, target.date, target.slot)
	if err != nil {
		if errors.Is(err, service.ErrSlotHeld) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := u.holder.Release(releaseCtx, target.doctorID, target.date, target.slot, token); err != nil {
			u.log.Warnf("Failed to release hold on slot %s (expires on its own): %+v", target.slot, err)
		}
	}()

	free, err := u.appointments.IsSlotFree(ctx, target.doctorID, target.date, target.slot)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrSlotTaken
	}

	return fn()
}

func (u *bookingUsecase) book(ctx context.Context, target *bookingTarget, patientID uuid.UUID) (*entity.Appointment, error) {
	return u.appointments.BookAppointment(ctx, BookAppointmentParams{
		DoctorID:  target.doctorID,
		PatientID: patientID,
		Date:      target.date,
		Slot:      target.slot,
		Mode:      target.mode,
		ClinicID:  target.clinicID,
		Amount:    target.amount,
	})
}

func (u *bookingUsecase) compensate(patientID uuid.UUID, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := u.identity.DeactivateIdentity(ctx, patientID); err != nil {
		u.log.Errorf("CRITICAL: Failed to deactivate patient %s after booking failure (%v): %+v", patientID, cause, err)
		return
	}
	u.log.Infof("Patient %s deactivated after booking failure: %v", patientID, cause)
}

func parseSlot(from, to string) (entity.Slot, error) {
	timeFrom, err := entity.ParseClockTime(from)
	if err != nil {
		return entity.Slot{}, fmt.Errorf("%w: %v", ErrSlotNotOffered, err)
	}
	timeTo, err := entity.ParseClockTime(to)
	if err != nil {
		return entity.Slot{}, fmt.Errorf("%w: %v", ErrSlotNotOffered, err)
	}
	return entity.Slot{TimeFrom: timeFrom, TimeTo: timeTo}, nil
}
