package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidRange = errors.New("invalid time range")

// WeekSchedule is the doctor's seven weekday rows, Sunday first.
type WeekSchedule struct {
	DoctorID     uuid.UUID
	Days         []entity.DayAvailability
	HasActiveDay bool
}

type AvailabilityUsecase interface {
	EnsureDefaultSchedule(ctx context.Context, doctorID uuid.UUID) error
	SetDaySchedule(ctx context.Context, doctorID uuid.UUID, day entity.DayOfWeek, isActive bool, ranges []entity.TimeRange) (*entity.DayAvailability, error)
	GetWeekSchedule(ctx context.Context, doctorID uuid.UUID) (*WeekSchedule, error)
	GetDay(ctx context.Context, doctorID uuid.UUID, day entity.DayOfWeek) (*entity.DayAvailability, error)
}

type availabilityUsecase struct {
	tx               repository.Transactor
	log              *logrus.Logger
	availabilityRepo repository.AvailabilityRepository
	doctorRepo       repository.DoctorProfileRepository
	auditService     service.AuditService
}

func NewAvailabilityUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	availabilityRepo repository.AvailabilityRepository,
	doctorRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) AvailabilityUsecase {
	return &availabilityUsecase{
		tx:               tx,
		log:              log,
		availabilityRepo: availabilityRepo,
		doctorRepo:       doctorRepo,
		auditService:     auditService,
	}
}

// EnsureDefaultSchedule creates the seven inactive weekday rows if missing.
func (u *availabilityUsecase) EnsureDefaultSchedule(ctx context.Context, doctorID uuid.UUID) error {
	return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		return u.ensureWeek(ctx, tx, doctorID)
	})
}

// SetDaySchedule replaces one weekday's flag and ranges as a unit.
// An inactive day always ends up with no ranges.
func (u *availabilityUsecase) SetDaySchedule(ctx context.Context, doctorID uuid.UUID, day entity.DayOfWeek, isActive bool, ranges []entity.TimeRange) (*entity.DayAvailability, error) {
	if !day.Valid() {
		return nil, entity.ErrInvalidDayOfWeek
	}
	if !isActive {
		ranges = nil
	}
	if err := validateRanges(ranges); err != nil {
		return nil, err
	}

	var saved *entity.DayAvailability
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.ensureWeek(ctx, tx, doctorID); err != nil {
			return err
		}

		// Row lock serializes concurrent saves of the same weekday
		current, err := u.availabilityRepo.FindDay(ctx, tx, doctorID, day, true)
		if err != nil {
			u.log.Warnf("Failed to find %s availability for doctor %s: %+v", day, doctorID, err)
			return err
		}
		if current == nil {
			return fmt.Errorf("availability row for %s missing after initialization", day)
		}
		oldValue := daySnapshot(current)

		if err := u.availabilityRepo.UpdateActive(ctx, tx, current.ID, isActive); err != nil {
			u.log.Warnf("Failed to update %s availability for doctor %s: %+v", day, doctorID, err)
			return err
		}
		if err := u.availabilityRepo.ReplaceRanges(ctx, tx, current.ID, ranges); err != nil {
			u.log.Warnf("Failed to replace %s ranges for doctor %s: %+v", day, doctorID, err)
			return err
		}

		current.IsActive = isActive
		current.Ranges = make([]entity.TimeRange, len(ranges))
		for i, r := range ranges {
			current.Ranges[i] = entity.TimeRange{
				DayAvailabilityID: current.ID,
				Position:          i,
				StartTime:         r.StartTime,
				EndTime:           r.EndTime,
			}
		}
		saved = current

		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionScheduleUpdate,
			"day_availability", fmt.Sprintf("%s:%s", doctorID, day), oldValue, daySnapshot(current))
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// GetWeekSchedule never writes. A doctor who has not saved yet gets the
// default inactive week.
func (u *availabilityUsecase) GetWeekSchedule(ctx context.Context, doctorID uuid.UUID) (*WeekSchedule, error) {
	db := u.tx.Conn(ctx)
	doctor, err := u.doctorRepo.FindByUserID(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	stored, err := u.availabilityRepo.FindWeek(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find week schedule for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	byDay := make(map[entity.DayOfWeek]entity.DayAvailability, len(stored))
	for _, d := range stored {
		byDay[d.DayOfWeek] = d
	}

	days := entity.DefaultWeek(doctorID)
	for i := range days {
		if d, ok := byDay[days[i].DayOfWeek]; ok {
			days[i] = d
		}
	}

	return &WeekSchedule{
		DoctorID:     doctorID,
		Days:         days,
		HasActiveDay: entity.HasActiveDay(days),
	}, nil
}

// GetDay looks a weekday up by key. Returns nil when the doctor has no row for it.
func (u *availabilityUsecase) GetDay(ctx context.Context, doctorID uuid.UUID, day entity.DayOfWeek) (*entity.DayAvailability, error) {
	availability, err := u.availabilityRepo.FindDay(ctx, u.tx.Conn(ctx), doctorID, day, false)
	if err != nil {
		u.log.Warnf("Failed to find %s availability for doctor %s: %+v", day, doctorID, err)
		return nil, err
	}
	return availability, nil
}

func (u *availabilityUsecase) ensureWeek(ctx context.Context, tx *gorm.DB, doctorID uuid.UUID) error {
	existing, err := u.availabilityRepo.FindWeek(ctx, tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find week schedule for doctor %s: %+v", doctorID, err)
		return err
	}
	if len(existing) == len(entity.AllDays()) {
		return nil
	}

	doctor, err := u.doctorRepo.FindByUserID(ctx, tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	inserted, err := u.availabilityRepo.CreateWeek(ctx, tx, entity.DefaultWeek(doctorID))
	if err != nil {
		u.log.Warnf("Failed to create default week for doctor %s: %+v", doctorID, err)
		return err
	}
	// A concurrent first save already created the week.
	if inserted == 0 {
		return nil
	}
	return u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionScheduleInit,
		"day_availability", doctorID.String(), nil)
}

// validateRanges rejects empty, inverted and overlapping ranges.
// Ranges that only touch at an endpoint are allowed.
func validateRanges(ranges []entity.TimeRange) error {
	for _, r := range ranges {
		if !r.Valid() {
			return fmt.Errorf("%w: %s-%s, start must be before end", ErrInvalidRange, r.StartTime, r.EndTime)
		}
	}

	sorted := make([]entity.TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Overlaps(sorted[i]) {
			return fmt.Errorf("%w: %s-%s overlaps %s-%s", ErrInvalidRange,
				sorted[i-1].StartTime, sorted[i-1].EndTime, sorted[i].StartTime, sorted[i].EndTime)
		}
	}
	return nil
}

func daySnapshot(day *entity.DayAvailability) map[string]interface{} {
	ranges := make([]string, len(day.Ranges))
	for i, r := range day.Ranges {
		ranges[i] = r.StartTime.String() + "-" + r.EndTime.String()
	}
	return map[string]interface{}{
		"is_active": day.IsActive,
		"ranges":    ranges,
	}
}
