package usecase

import (
	"context"
	"time"

	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/pkg/clock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DaySlots is the slot sequence for one doctor on one calendar date.
type DaySlots struct {
	DoctorID        uuid.UUID
	Date            time.Time
	DayOfWeek       entity.DayOfWeek
	IntervalMinutes int
	Slots           []entity.Slot
}

type SlotUsecase interface {
	// ResolveSlotsForDate is configuration only: booked slots are still included.
	ResolveSlotsForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*DaySlots, error)
	// GetOpenSlots drops booked slots and slots that already started.
	GetOpenSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*DaySlots, error)
}

type slotUsecase struct {
	tx              repository.Transactor
	log             *logrus.Logger
	intervals       IntervalPolicyUsecase
	availability    AvailabilityUsecase
	appointmentRepo repository.AppointmentRepository
	clock           clock.Clock
}

func NewSlotUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	intervals IntervalPolicyUsecase,
	availability AvailabilityUsecase,
	appointmentRepo repository.AppointmentRepository,
	clk clock.Clock,
) SlotUsecase {
	return &slotUsecase{
		tx:              tx,
		log:             log,
		intervals:       intervals,
		availability:    availability,
		appointmentRepo: appointmentRepo,
		clock:           clk,
	}
}

func (u *slotUsecase) ResolveSlotsForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*DaySlots, error) {
	date = clock.Date(u.clock, date)

	policy, err := u.intervals.GetInterval(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	weekday := entity.DayOfWeekOf(date)
	day, err := u.availability.GetDay(ctx, doctorID, weekday)
	if err != nil {
		return nil, err
	}

	return &DaySlots{
		DoctorID:        doctorID,
		Date:            date,
		DayOfWeek:       weekday,
		IntervalMinutes: policy.IntervalMinutes,
		Slots:           entity.GenerateSlots(day, policy.IntervalMinutes),
	}, nil
}

func (u *slotUsecase) GetOpenSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*DaySlots, error) {
	result, err := u.ResolveSlotsForDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	if result.Date.Before(clock.Today(u.clock)) || len(result.Slots) == 0 {
		result.Slots = []entity.Slot{}
		return result, nil
	}

	booked, err := u.appointmentRepo.FindActiveByDoctorAndDate(ctx, u.tx.Conn(ctx), doctorID, result.Date)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s on %s: %+v", doctorID, result.Date.Format(dateLayout), err)
		return nil, err
	}
	taken := make(map[entity.Slot]struct{}, len(booked))
	for i := range booked {
		taken[booked[i].Slot()] = struct{}{}
	}

	open := make([]entity.Slot, 0, len(result.Slots))
	for _, s := range result.Slots {
		if _, ok := taken[s]; ok {
			continue
		}
		if slotStarted(result.Date, s, now) {
			continue
		}
		open = append(open, s)
	}
	result.Slots = open
	return result, nil
}

const dateLayout = "2006-01-02"

// slotStarted reports whether the slot's start on date is at or before now.
func slotStarted(date time.Time, slot entity.Slot, now time.Time) bool {
	return !slot.TimeFrom.On(date).After(now)
}
