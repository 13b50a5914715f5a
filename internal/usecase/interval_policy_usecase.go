package usecase

import (
	"context"
	"errors"

	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidInterval = errors.New("interval must be between 1 and 1440 minutes")
	ErrNotConfigured   = errors.New("doctor has not configured booking interval yet")
	ErrDoctorNotFound  = errors.New("doctor not found")
)

type IntervalPolicyUsecase interface {
	SetInterval(ctx context.Context, doctorID uuid.UUID, minutes int) (*entity.IntervalPolicy, error)
	GetInterval(ctx context.Context, doctorID uuid.UUID) (*entity.IntervalPolicy, error)
}

type intervalPolicyUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	intervalRepo repository.IntervalPolicyRepository
	doctorRepo   repository.DoctorProfileRepository
	auditService service.AuditService
}

func NewIntervalPolicyUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	intervalRepo repository.IntervalPolicyRepository,
	doctorRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) IntervalPolicyUsecase {
	return &intervalPolicyUsecase{
		tx:           tx,
		log:          log,
		intervalRepo: intervalRepo,
		doctorRepo:   doctorRepo,
		auditService: auditService,
	}
}

// SetInterval upserts the doctor's booking granularity. No history is kept
// beyond the audit row.
func (u *intervalPolicyUsecase) SetInterval(ctx context.Context, doctorID uuid.UUID, minutes int) (*entity.IntervalPolicy, error) {
	if !entity.ValidInterval(minutes) {
		return nil, ErrInvalidInterval
	}

	policy := &entity.IntervalPolicy{
		DoctorID:        doctorID,
		IntervalMinutes: minutes,
	}

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		doctor, err := u.doctorRepo.FindByUserID(ctx, tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
			return err
		}
		if doctor == nil {
			return ErrDoctorNotFound
		}

		previous, err := u.intervalRepo.FindByDoctorID(ctx, tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find interval policy for doctor %s: %+v", doctorID, err)
			return err
		}

		if err := u.intervalRepo.Upsert(ctx, tx, policy); err != nil {
			u.log.Warnf("Failed to upsert interval policy for doctor %s: %+v", doctorID, err)
			return err
		}

		var oldValue interface{}
		if previous != nil {
			oldValue = previous.IntervalMinutes
		}
		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionIntervalUpdate,
			"interval_policy", doctorID.String(), oldValue, minutes)
	})
	if err != nil {
		return nil, err
	}

	return policy, nil
}

// GetInterval fails with ErrNotConfigured when the doctor never saved one.
func (u *intervalPolicyUsecase) GetInterval(ctx context.Context, doctorID uuid.UUID) (*entity.IntervalPolicy, error) {
	policy, err := u.intervalRepo.FindByDoctorID(ctx, u.tx.Conn(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find interval policy for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if policy == nil {
		return nil, ErrNotConfigured
	}
	return policy, nil
}
