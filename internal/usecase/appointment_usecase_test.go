package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

func setupBookedAppointment(t *testing.T, env *testEnv) (doctorID, patientID uuid.UUID, appointment *entity.Appointment) {
	t.Helper()
	doctorID = env.seedDoctor(t, 30)
	patientID = env.users.addPatient("Wati")

	appointment, err := env.appointmentUC.BookAppointment(context.Background(), BookAppointmentParams{
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      date(2026, time.March, 9),
		Slot:      slot("09:30", "10:00"),
		Mode:      entity.AppointmentModeOnline,
	})
	if err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}
	return doctorID, patientID, appointment
}

func TestAppointmentUsecase_BookAppointment(t *testing.T) {
	env := newTestEnv(testNow)
	_, _, appointment := setupBookedAppointment(t, env)

	if !strings.HasPrefix(appointment.BookingCode, "AP-20260309-") {
		t.Errorf("booking code = %q", appointment.BookingCode)
	}
	if appointment.PaymentStatus != entity.PaymentStatusPending || appointment.VisitStatus != entity.VisitStatusScheduled {
		t.Errorf("initial statuses = %s/%s", appointment.PaymentStatus, appointment.VisitStatus)
	}
	if appointment.ClinicID != nil {
		t.Error("online appointment must not carry a clinic")
	}
}

func TestAppointmentUsecase_BookAppointment_ConcurrentSameSlot(t *testing.T) {
	env := newTestEnv(testNow)
	doctorID := env.seedDoctor(t, 30)
	day := date(2026, time.March, 9)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		taken     int
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.appointmentUC.BookAppointment(context.Background(), BookAppointmentParams{
				DoctorID:  doctorID,
				PatientID: uuid.New(),
				Date:      day,
				Slot:      slot("11:00", "11:30"),
				Mode:      entity.AppointmentModeOnline,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrSlotTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if succeeded != 1 || taken != attempts-1 {
		t.Fatalf("succeeded=%d taken=%d, want 1 and %d", succeeded, taken, attempts-1)
	}
	if n := env.appointments.count(); n != 1 {
		t.Errorf("ledger has %d rows, want 1", n)
	}
}

func TestAppointmentUsecase_BookAppointment_DuplicateKeyMapsToSlotTaken(t *testing.T) {
	env := newTestEnv(testNow)
	doctorID := env.seedDoctor(t, 30)
	env.appointments.createErr = &mockUniqueViolation

	_, err := env.appointmentUC.BookAppointment(context.Background(), BookAppointmentParams{
		DoctorID:  doctorID,
		PatientID: uuid.New(),
		Date:      date(2026, time.March, 9),
		Slot:      slot("09:00", "09:30"),
		Mode:      entity.AppointmentModeOnline,
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("error = %v, want ErrSlotTaken", err)
	}
}

func TestAppointmentUsecase_ValidateMode(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	doctorID := env.doctors.addDoctor("Dr. Sari", 0)
	otherDoctor := env.doctors.addDoctor("Dr. Lain", 0)

	own := &entity.Clinic{DoctorID: doctorID, Name: "Klinik Sehat"}
	foreign := &entity.Clinic{DoctorID: otherDoctor, Name: "Klinik Lain"}
	_ = env.clinics.Create(ctx, nil, own)
	_ = env.clinics.Create(ctx, nil, foreign)
	missing := uuid.New()

	tests := []struct {
		name     string
		mode     entity.AppointmentMode
		clinicID *uuid.UUID
		want     *uuid.UUID
		wantErr  error
	}{
		{"online ignores clinic", entity.AppointmentModeOnline, &own.ID, nil, nil},
		{"offline with own clinic", entity.AppointmentModeOffline, &own.ID, &own.ID, nil},
		{"offline without clinic", entity.AppointmentModeOffline, nil, nil, ErrInvalidMode},
		{"offline with another doctor's clinic", entity.AppointmentModeOffline, &foreign.ID, nil, ErrClinicNotFound},
		{"offline with unknown clinic", entity.AppointmentModeOffline, &missing, nil, ErrClinicNotFound},
		{"unknown mode", entity.AppointmentMode("home-visit"), nil, nil, ErrInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.appointmentUC.ValidateMode(ctx, doctorID, tt.mode, tt.clinicID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("clinic = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppointmentUsecase_CancelAppointment(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	doctorID, patientID, appointment := setupBookedAppointment(t, env)

	patientCtx := asUser(ctx, patientID, entity.RoleIDPatient)
	if err := env.appointmentUC.CancelAppointment(patientCtx, appointment.ID, "sick"); err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}

	stored, _ := env.appointments.FindByID(ctx, nil, appointment.ID)
	if !stored.IsCancelled || stored.CancelReason != "sick" || stored.CancelledAt == nil {
		t.Errorf("stored = %+v", stored)
	}

	err := env.appointmentUC.CancelAppointment(patientCtx, appointment.ID, "again")
	if !errors.Is(err, ErrAppointmentAlreadyCancelled) {
		t.Errorf("second cancel error = %v, want ErrAppointmentAlreadyCancelled", err)
	}

	free, err := env.appointmentUC.IsSlotFree(ctx, doctorID, appointment.Date, appointment.Slot())
	if err != nil || !free {
		t.Fatalf("slot free = %v, %v after cancel", free, err)
	}
	if _, err := env.appointmentUC.BookAppointment(ctx, BookAppointmentParams{
		DoctorID:  doctorID,
		PatientID: uuid.New(),
		Date:      appointment.Date,
		Slot:      appointment.Slot(),
		Mode:      entity.AppointmentModeOnline,
	}); err != nil {
		t.Fatalf("rebooking a cancelled slot: %v", err)
	}
}

func TestAppointmentUsecase_Access(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	doctorID, patientID, appointment := setupBookedAppointment(t, env)

	stranger := asUser(ctx, uuid.New(), entity.RoleIDPatient)
	otherDoctor := asUser(ctx, uuid.New(), entity.RoleIDDoctor)
	patient := asUser(ctx, patientID, entity.RoleIDPatient)
	doctor := asUser(ctx, doctorID, entity.RoleIDDoctor)

	for name, c := range map[string]context.Context{"anonymous": ctx, "stranger": stranger, "other doctor": otherDoctor} {
		if _, err := env.appointmentUC.GetAppointment(c, appointment.ID); !errors.Is(err, ErrAppointmentNotOwned) {
			t.Errorf("%s get: error = %v, want ErrAppointmentNotOwned", name, err)
		}
		if err := env.appointmentUC.CancelAppointment(c, appointment.ID, ""); !errors.Is(err, ErrAppointmentNotOwned) {
			t.Errorf("%s cancel: error = %v, want ErrAppointmentNotOwned", name, err)
		}
	}

	for name, c := range map[string]context.Context{"patient": patient, "doctor": doctor, "admin": asAdmin(ctx)} {
		if _, err := env.appointmentUC.GetAppointment(c, appointment.ID); err != nil {
			t.Errorf("%s get: %v", name, err)
		}
	}

	if _, err := env.appointmentUC.MarkVisited(patient, appointment.ID); !errors.Is(err, ErrAppointmentNotOwned) {
		t.Errorf("patient mark visited: error = %v, want ErrAppointmentNotOwned", err)
	}
	if err := env.appointmentUC.DeleteAppointment(patient, appointment.ID); !errors.Is(err, ErrAppointmentNotOwned) {
		t.Errorf("patient delete: error = %v, want ErrAppointmentNotOwned", err)
	}

	if _, err := env.appointmentUC.GetAppointment(doctor, uuid.New()); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("unknown id: error = %v, want ErrAppointmentNotFound", err)
	}
}

func TestAppointmentUsecase_MarkVisitedAndPaid(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	doctorID, _, appointment := setupBookedAppointment(t, env)
	doctor := asUser(ctx, doctorID, entity.RoleIDDoctor)

	visited, err := env.appointmentUC.MarkVisited(doctor, appointment.ID)
	if err != nil || !visited.IsVisited() {
		t.Fatalf("MarkVisited = %+v, %v", visited, err)
	}
	paid, err := env.appointmentUC.MarkPaid(doctor, appointment.ID)
	if err != nil || !paid.IsPaid() {
		t.Fatalf("MarkPaid = %+v, %v", paid, err)
	}

	before := len(env.auditLogs.actions())
	if _, err := env.appointmentUC.MarkPaid(doctor, appointment.ID); err != nil {
		t.Fatalf("repeated MarkPaid: %v", err)
	}
	if len(env.auditLogs.actions()) != before {
		t.Error("repeated MarkPaid should not write another audit row")
	}

	stored, _ := env.appointments.FindByID(ctx, nil, appointment.ID)
	if !stored.IsVisited() || !stored.IsPaid() {
		t.Errorf("stored statuses = %s/%s", stored.VisitStatus, stored.PaymentStatus)
	}
}

func TestAppointmentUsecase_MarkVisited_RejectsCancelled(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := asAdmin(context.Background())
	_, _, appointment := setupBookedAppointment(t, env)

	if err := env.appointmentUC.CancelAppointment(ctx, appointment.ID, ""); err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	if _, err := env.appointmentUC.MarkVisited(ctx, appointment.ID); !errors.Is(err, ErrAppointmentAlreadyCancelled) {
		t.Errorf("MarkVisited error = %v, want ErrAppointmentAlreadyCancelled", err)
	}
	if _, err := env.appointmentUC.MarkPaid(ctx, appointment.ID); !errors.Is(err, ErrAppointmentAlreadyCancelled) {
		t.Errorf("MarkPaid error = %v, want ErrAppointmentAlreadyCancelled", err)
	}
}

func TestAppointmentUsecase_DeleteAppointment(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	doctorID, _, appointment := setupBookedAppointment(t, env)
	doctor := asUser(ctx, doctorID, entity.RoleIDDoctor)

	if err := env.appointmentUC.DeleteAppointment(doctor, appointment.ID); err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if env.appointments.count() != 0 {
		t.Error("row still present")
	}
	if err := env.appointmentUC.DeleteAppointment(doctor, appointment.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("second delete error = %v, want ErrAppointmentNotFound", err)
	}
}

func TestAppointmentUsecase_ListDoctorAppointments_Filter(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	doctorID, _, first := setupBookedAppointment(t, env)

	second, err := env.appointmentUC.BookAppointment(ctx, BookAppointmentParams{
		DoctorID:  doctorID,
		PatientID: uuid.New(),
		Date:      date(2026, time.March, 16),
		Slot:      slot("09:00", "09:30"),
		Mode:      entity.AppointmentModeOnline,
	})
	if err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}
	if err := env.appointmentUC.CancelAppointment(asAdmin(ctx), first.ID, ""); err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}

	active, _ := env.appointmentUC.ListDoctorAppointments(ctx, doctorID, &entity.AppointmentFilter{})
	if len(active) != 1 || active[0].ID != second.ID {
		t.Errorf("active = %v", active)
	}

	all, _ := env.appointmentUC.ListDoctorAppointments(ctx, doctorID, &entity.AppointmentFilter{IncludeCancelled: true})
	if len(all) != 2 {
		t.Errorf("with cancelled = %d rows, want 2", len(all))
	}

	to := date(2026, time.March, 10)
	early, _ := env.appointmentUC.ListDoctorAppointments(ctx, doctorID, &entity.AppointmentFilter{To: &to, IncludeCancelled: true})
	if len(early) != 1 || early[0].ID != first.ID {
		t.Errorf("up to 10 March = %v", early)
	}
}
