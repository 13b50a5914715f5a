package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go-clinic-scheduling/internal/domain/entity"
)

func TestSlotUsecase_ResolveSlotsForDate_NotConfigured(t *testing.T) {
	env := newTestEnv(testNow)
	doctorID := env.doctors.addDoctor("Dr. Andi", 0)

	_, err := env.slotUC.ResolveSlotsForDate(context.Background(), doctorID, date(2026, time.March, 9))
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}

func TestSlotUsecase_ResolveSlotsForDate(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	doctorID := env.seedDoctor(t, 45)

	monday, err := env.slotUC.ResolveSlotsForDate(ctx, doctorID, date(2026, time.March, 9))
	if err != nil {
		t.Fatalf("ResolveSlotsForDate: %v", err)
	}
	want := []entity.Slot{
		slot("09:00", "09:45"), slot("09:45", "10:30"), slot("10:30", "11:15"), slot("11:15", "12:00"),
	}
	if !reflect.DeepEqual(monday.Slots, want) {
		t.Errorf("slots = %v, want %v", monday.Slots, want)
	}
	if monday.DayOfWeek != entity.Monday || monday.IntervalMinutes != 45 {
		t.Errorf("got day %s interval %d", monday.DayOfWeek, monday.IntervalMinutes)
	}

	tuesday, err := env.slotUC.ResolveSlotsForDate(ctx, doctorID, date(2026, time.March, 10))
	if err != nil {
		t.Fatalf("ResolveSlotsForDate: %v", err)
	}
	if tuesday.Slots == nil || len(tuesday.Slots) != 0 {
		t.Errorf("inactive day should give an empty, non-nil list, got %v", tuesday.Slots)
	}
}

func TestSlotUsecase_ResolveSlotsForDate_NoScheduleRows(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	doctorID := env.doctors.addDoctor("Dr. Andi", 0)
	if _, err := env.intervalUC.SetInterval(ctx, doctorID, 30); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}

	result, err := env.slotUC.ResolveSlotsForDate(ctx, doctorID, date(2026, time.March, 9))
	if err != nil {
		t.Fatalf("ResolveSlotsForDate: %v", err)
	}
	if len(result.Slots) != 0 {
		t.Errorf("got %v, want no slots", result.Slots)
	}
}

func TestSlotUsecase_GetOpenSlots_PastDateIsEmpty(t *testing.T) {
	env := newTestEnv(testNow)
	doctorID := env.seedDoctor(t, 30)

	result, err := env.slotUC.GetOpenSlots(context.Background(), doctorID, date(2026, time.February, 23))
	if err != nil {
		t.Fatalf("GetOpenSlots: %v", err)
	}
	if len(result.Slots) != 0 {
		t.Errorf("past date offered %v", result.Slots)
	}
}

func TestSlotUsecase_GetOpenSlots_DropsStartedSlots(t *testing.T) {
	at := time.Date(2026, time.March, 2, 10, 0, 0, 0, jakarta())
	env := newTestEnv(at)
	doctorID := env.seedDoctor(t, 30)

	result, err := env.slotUC.GetOpenSlots(context.Background(), doctorID, date(2026, time.March, 2))
	if err != nil {
		t.Fatalf("GetOpenSlots: %v", err)
	}
	want := []entity.Slot{slot("10:30", "11:00"), slot("11:00", "11:30"), slot("11:30", "12:00")}
	if !reflect.DeepEqual(result.Slots, want) {
		t.Errorf("slots = %v, want %v", result.Slots, want)
	}
}

func TestSlotUsecase_GetOpenSlots_HidesBookedUntilCancelled(t *testing.T) {
	env := newTestEnv(testNow)
	ctx := context.Background()
	doctorID := env.seedDoctor(t, 60)
	day := date(2026, time.March, 9)

	booked, err := env.appointmentUC.BookAppointment(ctx, BookAppointmentParams{
		DoctorID:  doctorID,
		PatientID: env.users.addPatient("Wati"),
		Date:      day,
		Slot:      slot("10:00", "11:00"),
		Mode:      entity.AppointmentModeOnline,
	})
	if err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}

	open, err := env.slotUC.GetOpenSlots(ctx, doctorID, day)
	if err != nil {
		t.Fatalf("GetOpenSlots: %v", err)
	}
	want := []entity.Slot{slot("09:00", "10:00"), slot("11:00", "12:00")}
	if !reflect.DeepEqual(open.Slots, want) {
		t.Fatalf("open = %v, want %v", open.Slots, want)
	}

	resolved, _ := env.slotUC.ResolveSlotsForDate(ctx, doctorID, day)
	if len(resolved.Slots) != 3 {
		t.Errorf("ResolveSlotsForDate must ignore bookings, got %v", resolved.Slots)
	}

	if err := env.appointmentUC.CancelAppointment(asAdmin(ctx), booked.ID, ""); err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	open, _ = env.slotUC.GetOpenSlots(ctx, doctorID, day)
	if len(open.Slots) != 3 {
		t.Errorf("cancelled slot not offered again: %v", open.Slots)
	}
}
