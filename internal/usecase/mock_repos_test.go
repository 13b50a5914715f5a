package usecase

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// ── Mock Transactor ──

// mockTransactor runs fn directly. Repositories below ignore the *gorm.DB.
type mockTransactor struct{}

func (mockTransactor) Conn(context.Context) *gorm.DB { return nil }

func (mockTransactor) WithinTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
	// lockedLookups counts FindByContact calls that asked for a row lock.
	lockedLookups int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (m *mockUserRepo) Create(_ context.Context, _ *gorm.DB, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if sameContact(u.Email, user.Email) || sameContact(u.PhoneNumber, user.PhoneNumber) {
			return &pgconn.PgError{Code: "23505", ConstraintName: "ux_users_email"}
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepo) FindByContact(_ context.Context, _ *gorm.DB, contact string, forUpdate bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if forUpdate {
		m.lockedLookups++
	}
	for _, u := range m.users {
		if (u.Email != nil && *u.Email == contact) || (u.PhoneNumber != nil && *u.PhoneNumber == contact) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *mockUserRepo) Update(_ context.Context, _ *gorm.DB, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepo) SetActive(_ context.Context, _ *gorm.DB, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.IsActive = &active
	}
	return nil
}

func sameContact(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

// ── Mock RoleRepository ──

type mockRoleRepo struct {
	roles []entity.Role
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{roles: []entity.Role{
		{ID: entity.RoleIDAdmin, RoleName: entity.RoleAdmin},
		{ID: entity.RoleIDDoctor, RoleName: entity.RoleDoctor},
		{ID: entity.RoleIDPatient, RoleName: entity.RolePatient},
	}}
}

func (m *mockRoleRepo) FindByName(_ context.Context, _ *gorm.DB, name string) (*entity.Role, error) {
	for i := range m.roles {
		if m.roles[i].RoleName == name {
			return &m.roles[i], nil
		}
	}
	return nil, nil
}

// ── Mock DoctorProfileRepository ──

type mockDoctorRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*entity.DoctorProfile
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{profiles: make(map[uuid.UUID]*entity.DoctorProfile)}
}

func (m *mockDoctorRepo) Create(_ context.Context, _ *gorm.DB, profile *entity.DoctorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *profile
	m.profiles[profile.UserID] = &copied
	return nil
}

func (m *mockDoctorRepo) FindByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (m *mockDoctorRepo) FindAll(_ context.Context, _ *gorm.DB) ([]entity.DoctorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]entity.DoctorProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].User.FullName < result[j].User.FullName })
	return result, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, _ *gorm.DB, profile *entity.DoctorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *profile
	m.profiles[profile.UserID] = &copied
	return nil
}

// addDoctor seeds a doctor profile with the given fee.
func (m *mockDoctorRepo) addDoctor(name string, fee int64) uuid.UUID {
	id := uuid.New()
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@clinic.test"
	m.profiles[id] = &entity.DoctorProfile{
		UserID:          id,
		STRNumber:       "STR-" + id.String()[:8],
		Specialization:  "General",
		ConsultationFee: decimal.NewFromInt(fee),
		User:            entity.User{ID: id, FullName: name, Email: &email, RoleID: entity.RoleIDDoctor},
	}
	return id
}

// ── Mock PatientProfileRepository ──

type mockPatientRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*entity.PatientProfile
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{profiles: make(map[uuid.UUID]*entity.PatientProfile)}
}

func (m *mockPatientRepo) Create(_ context.Context, _ *gorm.DB, profile *entity.PatientProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *profile
	m.profiles[profile.UserID] = &copied
	return nil
}

func (m *mockPatientRepo) FindByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

// ── Mock IntervalPolicyRepository ──

type mockIntervalRepo struct {
	mu       sync.Mutex
	policies map[uuid.UUID]*entity.IntervalPolicy
}

func newMockIntervalRepo() *mockIntervalRepo {
	return &mockIntervalRepo{policies: make(map[uuid.UUID]*entity.IntervalPolicy)}
}

func (m *mockIntervalRepo) Upsert(_ context.Context, _ *gorm.DB, policy *entity.IntervalPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *policy
	m.policies[policy.DoctorID] = &copied
	return nil
}

func (m *mockIntervalRepo) FindByDoctorID(_ context.Context, _ *gorm.DB, doctorID uuid.UUID) (*entity.IntervalPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.policies[doctorID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

// ── Mock AvailabilityRepository ──

type mockAvailabilityRepo struct {
	mu     sync.Mutex
	nextID int64
	days   map[int64]*entity.DayAvailability
}

func newMockAvailabilityRepo() *mockAvailabilityRepo {
	return &mockAvailabilityRepo{days: make(map[int64]*entity.DayAvailability)}
}

func (m *mockAvailabilityRepo) CreateWeek(_ context.Context, _ *gorm.DB, days []entity.DayAvailability) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var inserted int64
	for _, d := range days {
		if m.find(d.DoctorID, d.DayOfWeek) != nil {
			continue
		}
		inserted++
		m.nextID++
		row := d
		row.ID = m.nextID
		row.Ranges = nil
		m.days[row.ID] = &row
	}
	return inserted, nil
}

func (m *mockAvailabilityRepo) FindWeek(_ context.Context, _ *gorm.DB, doctorID uuid.UUID) ([]entity.DayAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entity.DayAvailability
	for _, d := range m.days {
		if d.DoctorID == doctorID {
			result = append(result, cloneDay(d))
		}
	}
	entity.SortWeek(result)
	return result, nil
}

func (m *mockAvailabilityRepo) FindDay(_ context.Context, _ *gorm.DB, doctorID uuid.UUID, day entity.DayOfWeek, _ bool) (*entity.DayAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.find(doctorID, day); d != nil {
		copied := cloneDay(d)
		return &copied, nil
	}
	return nil, nil
}

func (m *mockAvailabilityRepo) UpdateActive(_ context.Context, _ *gorm.DB, dayID int64, isActive bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.days[dayID]; ok {
		d.IsActive = isActive
	}
	return nil
}

func (m *mockAvailabilityRepo) ReplaceRanges(_ context.Context, _ *gorm.DB, dayID int64, ranges []entity.TimeRange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.days[dayID]
	if !ok {
		return nil
	}
	d.Ranges = make([]entity.TimeRange, len(ranges))
	for i, r := range ranges {
		d.Ranges[i] = entity.TimeRange{DayAvailabilityID: dayID, Position: i, StartTime: r.StartTime, EndTime: r.EndTime}
	}
	return nil
}

func (m *mockAvailabilityRepo) find(doctorID uuid.UUID, day entity.DayOfWeek) *entity.DayAvailability {
	for _, d := range m.days {
		if d.DoctorID == doctorID && d.DayOfWeek == day {
			return d
		}
	}
	return nil
}

func cloneDay(d *entity.DayAvailability) entity.DayAvailability {
	copied := *d
	copied.Ranges = append([]entity.TimeRange(nil), d.Ranges...)
	return copied
}

// ── Mock AppointmentRepository ──

// mockAppointmentRepo enforces the partial unique index on
// (doctor, date, slot) among non-cancelled rows, like Postgres does.
type mockAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*entity.Appointment
	createErr    error
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[uuid.UUID]*entity.Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, _ *gorm.DB, appointment *entity.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.activeBySlot(appointment.DoctorID, appointment.Date, appointment.Slot()) != nil {
		return &pgconn.PgError{Code: "23505", ConstraintName: slotConstraint}
	}
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	copied := *appointment
	m.appointments[appointment.ID] = &copied
	return nil
}

func (m *mockAppointmentRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.appointments[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (m *mockAppointmentRepo) FindActiveBySlot(_ context.Context, _ *gorm.DB, doctorID uuid.UUID, date time.Time, slot entity.Slot) (*entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a := m.activeBySlot(doctorID, date, slot); a != nil {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (m *mockAppointmentRepo) FindActiveByDoctorAndDate(_ context.Context, _ *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entity.Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && sameDate(a.Date, date) && !a.IsCancelled {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAppointmentRepo) FindByDoctorID(_ context.Context, _ *gorm.DB, doctorID uuid.UUID, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entity.Appointment
	for _, a := range m.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		if filter != nil {
			if !filter.IncludeCancelled && a.IsCancelled {
				continue
			}
			if filter.From != nil && a.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && a.Date.After(*filter.To) {
				continue
			}
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockAppointmentRepo) FindByPatientID(_ context.Context, _ *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entity.Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAppointmentRepo) Cancel(_ context.Context, _ *gorm.DB, id uuid.UUID, reason string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok || a.IsCancelled {
		return 0, nil
	}
	a.Cancel(reason, at)
	return 1, nil
}

func (m *mockAppointmentRepo) UpdateVisitStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status entity.VisitStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.appointments[id]; ok {
		a.VisitStatus = status
	}
	return nil
}

func (m *mockAppointmentRepo) UpdatePaymentStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status entity.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.appointments[id]; ok {
		a.PaymentStatus = status
	}
	return nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[id]; !ok {
		return 0, nil
	}
	delete(m.appointments, id)
	return 1, nil
}

func (m *mockAppointmentRepo) CountByPatientID(_ context.Context, _ *gorm.DB, patientID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			n++
		}
	}
	return n, nil
}

func (m *mockAppointmentRepo) activeBySlot(doctorID uuid.UUID, date time.Time, slot entity.Slot) *entity.Appointment {
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && sameDate(a.Date, date) && a.Slot() == slot && !a.IsCancelled {
			return a
		}
	}
	return nil
}

func (m *mockAppointmentRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.appointments)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// ── Mock ClinicRepository ──

type mockClinicRepo struct {
	mu      sync.Mutex
	clinics map[uuid.UUID]*entity.Clinic
}

func newMockClinicRepo() *mockClinicRepo {
	return &mockClinicRepo{clinics: make(map[uuid.UUID]*entity.Clinic)}
}

func (m *mockClinicRepo) Create(_ context.Context, _ *gorm.DB, clinic *entity.Clinic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if clinic.ID == uuid.Nil {
		clinic.ID = uuid.New()
	}
	copied := *clinic
	m.clinics[clinic.ID] = &copied
	return nil
}

func (m *mockClinicRepo) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.Clinic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clinics[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (m *mockClinicRepo) FindByDoctorID(_ context.Context, _ *gorm.DB, doctorID uuid.UUID) ([]entity.Clinic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entity.Clinic
	for _, c := range m.clinics {
		if c.DoctorID == doctorID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockClinicRepo) Delete(_ context.Context, _ *gorm.DB, doctorID, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clinics[id]
	if !ok || c.DoctorID != doctorID {
		return 0, nil
	}
	delete(m.clinics, id)
	return 1, nil
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct {
	mu     sync.Mutex
	nextID int64
	logs   []entity.AuditLog
}

func newMockAuditLogRepo() *mockAuditLogRepo {
	return &mockAuditLogRepo{}
}

func (m *mockAuditLogRepo) Create(_ context.Context, _ *gorm.DB, log *entity.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	log.ID = m.nextID
	log.CreatedAt = time.Now()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditLogRepo) FindAll(_ context.Context, _ *gorm.DB, limit, offset int) ([]entity.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := int64(len(m.logs))
	if offset >= len(m.logs) {
		return []entity.AuditLog{}, total, nil
	}
	end := offset + limit
	if end > len(m.logs) {
		end = len(m.logs)
	}
	return append([]entity.AuditLog(nil), m.logs[offset:end]...), total, nil
}

func (m *mockAuditLogRepo) FindByID(_ context.Context, _ *gorm.DB, id int64) (*entity.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.logs {
		if m.logs[i].ID == id {
			copied := m.logs[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockAuditLogRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.logs))
	for i, l := range m.logs {
		result[i] = l.Action
	}
	return result
}

// ── Mock SlotHolder ──

type mockSlotHolder struct {
	mu       sync.Mutex
	held     map[string]string
	released int
}

func newMockSlotHolder() *mockSlotHolder {
	return &mockSlotHolder{held: make(map[string]string)}
}

func (m *mockSlotHolder) Hold(_ context.Context, doctorID uuid.UUID, date time.Time, slot entity.Slot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := service.SlotHoldKey(doctorID, date, slot)
	if _, ok := m.held[key]; ok {
		return "", service.ErrSlotHeld
	}
	token := uuid.NewString()
	m.held[key] = token
	return token, nil
}

func (m *mockSlotHolder) Release(_ context.Context, doctorID uuid.UUID, date time.Time, slot entity.Slot, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := service.SlotHoldKey(doctorID, date, slot)
	if m.held[key] == token {
		delete(m.held, key)
		m.released++
	}
	return nil
}

func (m *mockSlotHolder) heldCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
}

var mockUniqueViolation = pgconn.PgError{Code: "23505", ConstraintName: slotConstraint}
