package usecase

import (
	"context"

	"go-clinic-scheduling/internal/converter"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ClinicUsecase interface {
	Create(ctx context.Context, doctorID uuid.UUID, req *dto.CreateClinicRequest) (*dto.ClinicResponse, error)
	GetByDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.ClinicListResponse, error)
	Delete(ctx context.Context, doctorID, clinicID uuid.UUID) error
}

type clinicUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	clinicRepo   repository.ClinicRepository
	doctorRepo   repository.DoctorProfileRepository
	auditService service.AuditService
}

func NewClinicUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	clinicRepo repository.ClinicRepository,
	doctorRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) ClinicUsecase {
	return &clinicUsecase{
		tx:           tx,
		log:          log,
		clinicRepo:   clinicRepo,
		doctorRepo:   doctorRepo,
		auditService: auditService,
	}
}

func (u *clinicUsecase) Create(ctx context.Context, doctorID uuid.UUID, req *dto.CreateClinicRequest) (*dto.ClinicResponse, error) {
	clinic := &entity.Clinic{
		DoctorID: doctorID,
		Name:     req.Name,
		Address:  req.Address,
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

		if err := u.clinicRepo.Create(ctx, tx, clinic); err != nil {
			u.log.Warnf("Failed to create clinic: %+v", err)
			return err
		}
		return u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionClinicCreate,
			"clinic", clinic.ID.String(), converter.ClinicToResponse(clinic))
	})
	if err != nil {
		return nil, err
	}

	return converter.ClinicToResponse(clinic), nil
}

func (u *clinicUsecase) GetByDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.ClinicListResponse, error) {
	clinics, err := u.clinicRepo.FindByDoctorID(ctx, u.tx.Conn(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find clinics for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.ClinicListResponse{
		Clinics: converter.ClinicsToResponses(clinics),
		Total:   len(clinics),
	}, nil
}

// Delete only removes the doctor's own clinic. Past offline appointments
// keep their row with the clinic reference cleared.
func (u *clinicUsecase) Delete(ctx context.Context, doctorID, clinicID uuid.UUID) error {
	return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		clinic, err := u.clinicRepo.FindByID(ctx, tx, clinicID)
		if err != nil {
			u.log.Warnf("Failed to find clinic %s: %+v", clinicID, err)
			return err
		}
		if clinic == nil || clinic.DoctorID != doctorID {
			return ErrClinicNotFound
		}

		affected, err := u.clinicRepo.Delete(ctx, tx, doctorID, clinicID)
		if err != nil {
			u.log.Warnf("Failed to delete clinic %s: %+v", clinicID, err)
			return err
		}
		if affected == 0 {
			return ErrClinicNotFound
		}
		return u.auditService.LogDelete(ctx, tx, actorFromContext(ctx), entity.AuditActionClinicDelete,
			"clinic", clinicID.String(), converter.ClinicToResponse(clinic))
	})
}
