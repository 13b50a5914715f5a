package repository

import (
	"context"
	"errors"

	"go-clinic-scheduling/internal/domain/entity"
	domainRepo "go-clinic-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type availabilityRepository struct{}

func NewAvailabilityRepository() domainRepo.AvailabilityRepository {
	return &availabilityRepository{}
}

func (r *availabilityRepository) CreateWeek(ctx context.Context, db *gorm.DB, days []entity.DayAvailability) (int64, error) {
	if len(days) == 0 {
		return 0, nil
	}
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("Ranges").
		Create(&days)
	return result.RowsAffected, result.Error
}

// FindWeek returns the doctor's rows with ranges in submitted order.
// Rows are sorted Sunday..Saturday in Go since names do not sort canonically in SQL.
func (r *availabilityRepository) FindWeek(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.DayAvailability, error) {
	var days []entity.DayAvailability
	err := db.WithContext(ctx).
		Preload("Ranges", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Where("doctor_id = ?", doctorID).
		Find(&days).Error
	if err != nil {
		return nil, err
	}
	entity.SortWeek(days)
	return days, nil
}

func (r *availabilityRepository) FindDay(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, day entity.DayOfWeek, forUpdate bool) (*entity.DayAvailability, error) {
	var availability entity.DayAvailability
	query := db.WithContext(ctx).Where("doctor_id = ? AND day_of_week = ?", doctorID, day)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&availability).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	err := db.WithContext(ctx).
		Where("day_availability_id = ?", availability.ID).
		Order("position ASC, id ASC").
		Find(&availability.Ranges).Error
	if err != nil {
		return nil, err
	}
	return &availability, nil
}

func (r *availabilityRepository) UpdateActive(ctx context.Context, db *gorm.DB, dayID int64, isActive bool) error {
	return db.WithContext(ctx).Model(&entity.DayAvailability{}).
		Where("id = ?", dayID).
		Update("is_active", isActive).Error
}

// ReplaceRanges deletes every range of the day and inserts the new set.
// Callers run it inside a transaction so readers never see a partial set.
func (r *availabilityRepository) ReplaceRanges(ctx context.Context, db *gorm.DB, dayID int64, ranges []entity.TimeRange) error {
	if err := db.WithContext(ctx).Where("day_availability_id = ?", dayID).Delete(&entity.TimeRange{}).Error; err != nil {
		return err
	}
	if len(ranges) == 0 {
		return nil
	}

	rows := make([]entity.TimeRange, len(ranges))
	for i, rg := range ranges {
		rows[i] = entity.TimeRange{
			DayAvailabilityID: dayID,
			Position:          i,
			StartTime:         rg.StartTime,
			EndTime:           rg.EndTime,
		}
	}
	return db.WithContext(ctx).Create(&rows).Error
}
