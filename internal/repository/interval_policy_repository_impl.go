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

type intervalPolicyRepository struct{}

func NewIntervalPolicyRepository() domainRepo.IntervalPolicyRepository {
	return &intervalPolicyRepository{}
}

// Upsert keeps a single row per doctor; the last write wins.
func (r *intervalPolicyRepository) Upsert(ctx context.Context, db *gorm.DB, policy *entity.IntervalPolicy) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doctor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"interval_minutes", "updated_at"}),
	}).Omit("Doctor").Create(policy).Error
}

func (r *intervalPolicyRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) (*entity.IntervalPolicy, error) {
	var policy entity.IntervalPolicy
	err := db.WithContext(ctx).Where("doctor_id = ?", doctorID).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}
