package usecase

import (
	"context"
	"testing"
	"time"

	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/service"
	"go-clinic-scheduling/pkg/clock"

	"github.com/google/uuid"
)

// Monday 2 March 2026, 08:00 in the clinic's zone.
var testNow = time.Date(2026, time.March, 2, 8, 0, 0, 0, jakarta())

func jakarta() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

type testEnv struct {
	tx           mockTransactor
	users        *mockUserRepo
	roles        *mockRoleRepo
	doctors      *mockDoctorRepo
	patients     *mockPatientRepo
	intervals    *mockIntervalRepo
	availability *mockAvailabilityRepo
	appointments *mockAppointmentRepo
	clinics      *mockClinicRepo
	auditLogs    *mockAuditLogRepo
	holder       *mockSlotHolder
	clock        clock.Clock
	auditService service.AuditService

	intervalUC     IntervalPolicyUsecase
	availabilityUC AvailabilityUsecase
	slotUC         SlotUsecase
	appointmentUC  AppointmentUsecase
}

func newTestEnv(now time.Time) *testEnv {
	log := quietLogger()
	env := &testEnv{
		users:        newMockUserRepo(),
		roles:        newMockRoleRepo(),
		doctors:      newMockDoctorRepo(),
		patients:     newMockPatientRepo(),
		intervals:    newMockIntervalRepo(),
		availability: newMockAvailabilityRepo(),
		appointments: newMockAppointmentRepo(),
		clinics:      newMockClinicRepo(),
		auditLogs:    newMockAuditLogRepo(),
		holder:       newMockSlotHolder(),
		clock:        clock.Fixed(now),
	}
	env.auditService = service.NewAuditService(log, env.auditLogs)
	env.intervalUC = NewIntervalPolicyUsecase(env.tx, log, env.intervals, env.doctors, env.auditService)
	env.availabilityUC = NewAvailabilityUsecase(env.tx, log, env.availability, env.doctors, env.auditService)
	env.appointmentUC = NewAppointmentUsecase(env.tx, log, env.appointments, env.clinics, env.auditService, env.clock)
	env.slotUC = NewSlotUsecase(env.tx, log, env.intervalUC, env.availabilityUC, env.appointments, env.clock)
	return env
}

// seedDoctor creates a doctor working Mondays 09:00-12:00 with the given interval.
func (e *testEnv) seedDoctor(t *testing.T, interval int) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	doctorID := e.doctors.addDoctor("Dr. Sari", 150000)

	if _, err := e.intervalUC.SetInterval(ctx, doctorID, interval); err != nil {
		t.Fatalf("set interval: %v", err)
	}
	if _, err := e.availabilityUC.SetDaySchedule(ctx, doctorID, entity.Monday, true,
		[]entity.TimeRange{rng("09:00", "12:00")}); err != nil {
		t.Fatalf("set monday: %v", err)
	}
	return doctorID
}

func rng(from, to string) entity.TimeRange {
	return entity.TimeRange{StartTime: entity.MustClockTime(from), EndTime: entity.MustClockTime(to)}
}

func slot(from, to string) entity.Slot {
	return entity.Slot{TimeFrom: entity.MustClockTime(from), TimeTo: entity.MustClockTime(to)}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, jakarta())
}

// addPatient seeds an active patient account.
func (m *mockUserRepo) addPatient(name string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	active := true
	m.users[id] = &entity.User{ID: id, FullName: name, RoleID: entity.RoleIDPatient, IsActive: &active}
	return id
}

func asAdmin(ctx context.Context) context.Context {
	return middleware.WithUser(ctx, uuid.New(), entity.RoleIDAdmin)
}

func asUser(ctx context.Context, userID uuid.UUID, roleID int) context.Context {
	return middleware.WithUser(ctx, userID, roleID)
}
