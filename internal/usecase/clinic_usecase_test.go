package usecase

import (
	"context"
	"errors"
	"testing"

	"go-clinic-scheduling/internal/delivery/dto"

	"github.com/google/uuid"
)

func TestClinicUsecase(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	uc := NewClinicUsecase(env.tx, quietLogger(), env.clinics, env.doctors, env.auditService)
	doctorID := env.doctors.addDoctor("Dr. Sari", 0)
	otherID := env.doctors.addDoctor("Dr. Lain", 0)

	created, err := uc.Create(ctx, doctorID, &dto.CreateClinicRequest{Name: "Klinik Sehat", Address: "Jl. Merdeka 1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.DoctorID != doctorID || created.ID == uuid.Nil {
		t.Errorf("created = %+v", created)
	}

	if _, err := uc.Create(ctx, uuid.New(), &dto.CreateClinicRequest{Name: "Ghost"}); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("unknown doctor error = %v, want ErrDoctorNotFound", err)
	}

	list, err := uc.GetByDoctor(ctx, doctorID)
	if err != nil || list.Total != 1 {
		t.Fatalf("GetByDoctor = %+v, %v", list, err)
	}

	if err := uc.Delete(ctx, otherID, created.ID); !errors.Is(err, ErrClinicNotFound) {
		t.Errorf("deleting another doctor's clinic error = %v, want ErrClinicNotFound", err)
	}
	if err := uc.Delete(ctx, doctorID, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := uc.Delete(ctx, doctorID, created.ID); !errors.Is(err, ErrClinicNotFound) {
		t.Errorf("second delete error = %v, want ErrClinicNotFound", err)
	}
}
