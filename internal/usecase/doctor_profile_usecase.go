package usecase

import (
	"context"

	"go-clinic-scheduling/internal/converter"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DoctorProfileUsecase interface {
	FeeProvider
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	UpdateSelfProfile(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorSelfRequest) (*dto.DoctorResponse, error)
}

type doctorProfileUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	intervalRepo      repository.IntervalPolicyRepository
	availabilityRepo  repository.AvailabilityRepository
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	intervalRepo repository.IntervalPolicyRepository,
	availabilityRepo repository.AvailabilityRepository,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		tx:                tx,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		intervalRepo:      intervalRepo,
		availabilityRepo:  availabilityRepo,
		auditService:      auditService,
	}
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	db := u.tx.Conn(ctx)
	profile, err := u.doctorProfileRepo.FindByUserID(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	enabled, err := u.bookingEnabled(ctx, db, doctorID)
	if err != nil {
		return nil, err
	}
	return converter.DoctorProfileToResponse(profile, enabled), nil
}

func (u *doctorProfileUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	db := u.tx.Conn(ctx)
	profiles, err := u.doctorProfileRepo.FindAll(ctx, db)
	if err != nil {
		u.log.Warnf("Failed to find all doctor profiles: %+v", err)
		return nil, err
	}

	doctors := make([]dto.DoctorResponse, len(profiles))
	for i := range profiles {
		enabled, err := u.bookingEnabled(ctx, db, profiles[i].UserID)
		if err != nil {
			return nil, err
		}
		doctors[i] = *converter.DoctorProfileToResponse(&profiles[i], enabled)
	}

	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

func (u *doctorProfileUsecase) UpdateSelfProfile(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorSelfRequest) (*dto.DoctorResponse, error) {
	if req.ConsultationFee != nil && req.ConsultationFee.IsNegative() {
		return nil, ErrInvalidFee
	}

	var profile *entity.DoctorProfile
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		profile, err = u.doctorProfileRepo.FindByUserID(ctx, tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find doctor profile: %+v", err)
			return err
		}
		if profile == nil {
			return ErrDoctorNotFound
		}

		// Capture old value for audit
		oldValue := converter.DoctorProfileToResponse(profile, false)

		if req.FullName != "" && req.FullName != profile.User.FullName {
			profile.User.FullName = req.FullName
			if err := u.userRepo.Update(ctx, tx, &profile.User); err != nil {
				u.log.Warnf("Failed to update doctor name: %+v", err)
				return err
			}
		}
		if req.Specialization != "" {
			profile.Specialization = req.Specialization
		}
		if req.Biography != "" {
			profile.Biography = req.Biography
		}
		if req.ConsultationFee != nil {
			profile.ConsultationFee = *req.ConsultationFee
		}

		if err := u.doctorProfileRepo.Update(ctx, tx, profile); err != nil {
			u.log.Warnf("Failed to update doctor profile: %+v", err)
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, &doctorID, entity.AuditActionDoctorUpdate,
			"doctor_profile", doctorID.String(), oldValue, converter.DoctorProfileToResponse(profile, false))
	})
	if err != nil {
		return nil, err
	}

	return u.GetDoctor(ctx, doctorID)
}

// GetFee is the amount stamped on new appointments.
func (u *doctorProfileUsecase) GetFee(ctx context.Context, doctorID uuid.UUID) (decimal.Decimal, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(ctx, u.tx.Conn(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return decimal.Zero, err
	}
	if profile == nil {
		return decimal.Zero, ErrDoctorNotFound
	}
	return profile.ConsultationFee, nil
}

// bookingEnabled is true once the doctor has an interval and at least one active day.
func (u *doctorProfileUsecase) bookingEnabled(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) (bool, error) {
	policy, err := u.intervalRepo.FindByDoctorID(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find interval policy for doctor %s: %+v", doctorID, err)
		return false, err
	}
	if policy == nil {
		return false, nil
	}

	week, err := u.availabilityRepo.FindWeek(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find week schedule for doctor %s: %+v", doctorID, err)
		return false, err
	}
	return entity.HasActiveDay(week), nil
}
