package usecase

import (
	"context"
	"errors"
	"testing"

	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func setupTestDoctorUsecase(env *testEnv) DoctorProfileUsecase {
	return NewDoctorProfileUsecase(env.tx, quietLogger(), env.users, env.doctors, env.intervals, env.availability, env.auditService)
}

func TestDoctorProfileUsecase_BookingEnabled(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	uc := setupTestDoctorUsecase(env)
	doctorID := env.doctors.addDoctor("Dr. Sari", 100000)

	resp, err := uc.GetDoctor(ctx, doctorID)
	if err != nil {
		t.Fatalf("GetDoctor: %v", err)
	}
	if resp.BookingEnabled {
		t.Error("new doctor should not accept bookings")
	}

	if _, err := env.intervalUC.SetInterval(ctx, doctorID, 30); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}
	if resp, _ = uc.GetDoctor(ctx, doctorID); resp.BookingEnabled {
		t.Error("interval without an active day should not enable booking")
	}

	if _, err := env.availabilityUC.SetDaySchedule(ctx, doctorID, entity.Saturday, true,
		[]entity.TimeRange{rng("08:00", "10:00")}); err != nil {
		t.Fatalf("SetDaySchedule: %v", err)
	}
	if resp, _ = uc.GetDoctor(ctx, doctorID); !resp.BookingEnabled {
		t.Error("doctor with interval and active day should accept bookings")
	}

	list, err := uc.GetAllDoctors(ctx)
	if err != nil || list.Total != 1 || !list.Doctors[0].BookingEnabled {
		t.Errorf("GetAllDoctors = %+v, %v", list, err)
	}
}

func TestDoctorProfileUsecase_UpdateSelfProfile(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	uc := setupTestDoctorUsecase(env)
	doctorID := env.doctors.addDoctor("Dr. Sari", 100000)

	fee := decimal.NewFromInt(250000)
	resp, err := uc.UpdateSelfProfile(ctx, doctorID, &dto.UpdateDoctorSelfRequest{
		FullName:        "Dr. Sari Dewi",
		Specialization:  "Pediatrics",
		ConsultationFee: &fee,
	})
	if err != nil {
		t.Fatalf("UpdateSelfProfile: %v", err)
	}
	if resp.FullName != "Dr. Sari Dewi" || resp.Specialization != "Pediatrics" || !resp.ConsultationFee.Equal(fee) {
		t.Errorf("response = %+v", resp)
	}

	got, err := uc.GetFee(ctx, doctorID)
	if err != nil || !got.Equal(fee) {
		t.Errorf("GetFee = %s, %v", got, err)
	}

	negative := decimal.NewFromInt(-5)
	if _, err := uc.UpdateSelfProfile(ctx, doctorID, &dto.UpdateDoctorSelfRequest{ConsultationFee: &negative}); !errors.Is(err, ErrInvalidFee) {
		t.Errorf("negative fee error = %v, want ErrInvalidFee", err)
	}
	if _, err := uc.UpdateSelfProfile(ctx, uuid.New(), &dto.UpdateDoctorSelfRequest{}); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("unknown doctor error = %v, want ErrDoctorNotFound", err)
	}
	if _, err := uc.GetFee(ctx, uuid.New()); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("GetFee unknown doctor error = %v", err)
	}
}
