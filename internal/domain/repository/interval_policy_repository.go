package repository

import (
	"context"

	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IntervalPolicyRepository interface {
	Upsert(ctx context.Context, db *gorm.DB, policy *entity.IntervalPolicy) error
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) (*entity.IntervalPolicy, error)
}
