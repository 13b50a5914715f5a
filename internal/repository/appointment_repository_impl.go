package repository

import (
	"context"
	"errors"
	"time"

	"go-clinic-scheduling/internal/domain/entity"
	domainRepo "go-clinic-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Omit("Doctor", "Patient", "Clinic").Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Doctor.User").
		Preload("Patient.User").
		Preload("Clinic").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveBySlot(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time, slot entity.Slot) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND date = ? AND time_from = ? AND time_to = ? AND is_cancelled = ?",
			doctorID, date.Format(dateLayout), slot.TimeFrom, slot.TimeTo, false).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveByDoctorAndDate(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND date = ? AND is_cancelled = ?", doctorID, date.Format(dateLayout), false).
		Order("time_from ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindByDoctorID lists a doctor's ledger with optional date bounds (inclusive).
func (r *appointmentRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.WithContext(ctx).
		Preload("Patient.User").
		Preload("Clinic").
		Where("doctor_id = ?", doctorID)

	if filter != nil {
		if filter.From != nil {
			query = query.Where("date >= ?", filter.From.Format(dateLayout))
		}
		if filter.To != nil {
			query = query.Where("date <= ?", filter.To.Format(dateLayout))
		}
		if !filter.IncludeCancelled {
			query = query.Where("is_cancelled = ?", false)
		}
	}

	err := query.Order("date ASC, time_from ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Preload("Doctor.User").
		Preload("Clinic").
		Where("patient_id = ?", patientID).
		Order("date DESC, time_from DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) Cancel(ctx context.Context, db *gorm.DB, id uuid.UUID, reason string, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND is_cancelled = ?", id, false).
		Updates(map[string]interface{}{
			"is_cancelled":  true,
			"cancel_reason": reason,
			"cancelled_at":  at,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) UpdateVisitStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.VisitStatus) error {
	return db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("visit_status", status).Error
}

func (r *appointmentRepository) UpdatePaymentStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.PaymentStatus) error {
	return db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}

func (r *appointmentRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) CountByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("patient_id = ?", patientID).
		Count(&count).Error
	return count, err
}
