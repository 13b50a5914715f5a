package repository

import (
	"context"

	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AvailabilityRepository interface {
	// CreateWeek inserts the default rows, ignoring rows that already exist.
	// It returns how many rows were actually inserted.
	CreateWeek(ctx context.Context, db *gorm.DB, days []entity.DayAvailability) (int64, error)
	FindWeek(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.DayAvailability, error)
	// FindDay locks the row when db is a transaction and forUpdate is set.
	FindDay(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, day entity.DayOfWeek, forUpdate bool) (*entity.DayAvailability, error)
	UpdateActive(ctx context.Context, db *gorm.DB, dayID int64, isActive bool) error
	ReplaceRanges(ctx context.Context, db *gorm.DB, dayID int64, ranges []entity.TimeRange) error
}
