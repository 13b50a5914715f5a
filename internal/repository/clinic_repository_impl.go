package repository

import (
	"context"
	"errors"

	"go-clinic-scheduling/internal/domain/entity"
	domainRepo "go-clinic-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type clinicRepository struct{}

func NewClinicRepository() domainRepo.ClinicRepository {
	return &clinicRepository{}
}

func (r *clinicRepository) Create(ctx context.Context, db *gorm.DB, clinic *entity.Clinic) error {
	return db.WithContext(ctx).Create(clinic).Error
}

func (r *clinicRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Clinic, error) {
	var clinic entity.Clinic
	err := db.WithContext(ctx).Where("id = ?", id).First(&clinic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &clinic, nil
}

func (r *clinicRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.Clinic, error) {
	var clinics []entity.Clinic
	if err := db.WithContext(ctx).Where("doctor_id = ?", doctorID).Order("created_at ASC").Find(&clinics).Error; err != nil {
		return nil, err
	}
	return clinics, nil
}

// Delete is scoped by doctor so one tenant cannot remove another's clinic.
func (r *clinicRepository) Delete(ctx context.Context, db *gorm.DB, doctorID, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ? AND doctor_id = ?", id, doctorID).Delete(&entity.Clinic{})
	return result.RowsAffected, result.Error
}
