package repository

import (
	"context"
	"time"

	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindActiveBySlot(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time, slot entity.Slot) (*entity.Appointment, error)
	FindActiveByDoctorAndDate(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error)
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	// Cancel flips is_cancelled only if the row is still active.
	// Returns affected rows: 1 = cancelled now, 0 = already cancelled or missing.
	Cancel(ctx context.Context, db *gorm.DB, id uuid.UUID, reason string, at time.Time) (int64, error)
	UpdateVisitStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.VisitStatus) error
	UpdatePaymentStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.PaymentStatus) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
	CountByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) (int64, error)
}
