package http

import (
	"net/http"

	"go-clinic-scheduling/internal/delivery/http/handler"
	"go-clinic-scheduling/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Doctor      *handler.DoctorHandler
	Schedule    *handler.ScheduleHandler
	Slot        *handler.SlotHandler
	Booking     *handler.BookingHandler
	Appointment *handler.AppointmentHandler
	Clinic      *handler.ClinicHandler
	AuditLog    *handler.AuditLogHandler
}

type Router struct {
	router         *mux.Router
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	corsMiddleware *middleware.CORSMiddleware
}

func NewRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:         mux.NewRouter(),
		handlers:       handlers,
		authMiddleware: authMiddleware,
		corsMiddleware: corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	h := r.handlers

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", h.Auth.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", h.Auth.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", h.Auth.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", h.Auth.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", h.Auth.GetCurrentUser).Methods(http.MethodGet)

	// Public doctor directory and booking widget
	api.HandleFunc("/doctors", h.Doctor.GetAllDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}", h.Doctor.GetDoctor).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/schedule", h.Schedule.GetDoctorWeek).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/slots", h.Slot.GetOpenSlots).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/clinics", h.Clinic.GetByDoctor).Methods(http.MethodGet)
	api.HandleFunc("/bookings/new-patient", h.Booking.BookForNewPatient).Methods(http.MethodPost)
	api.HandleFunc("/bookings/existing-patient", h.Booking.BookForExistingPatient).Methods(http.MethodPost)

	// Doctor routes (protected - doctor only)
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)

	doctor.HandleFunc("/profile", h.Doctor.GetSelfProfile).Methods(http.MethodGet)
	doctor.HandleFunc("/profile", h.Doctor.UpdateSelfProfile).Methods(http.MethodPut)

	doctor.HandleFunc("/interval", h.Schedule.GetInterval).Methods(http.MethodGet)
	doctor.HandleFunc("/interval", h.Schedule.SetInterval).Methods(http.MethodPut)
	doctor.HandleFunc("/schedule", h.Schedule.GetMyWeek).Methods(http.MethodGet)
	doctor.HandleFunc("/schedule/{day}", h.Schedule.SetDaySchedule).Methods(http.MethodPut)

	doctor.HandleFunc("/slots", h.Slot.GetMySlots).Methods(http.MethodGet)
	doctor.HandleFunc("/slots/free", h.Slot.IsSlotFree).Methods(http.MethodGet)

	doctor.HandleFunc("/appointments", h.Appointment.GetMyDoctorAppointments).Methods(http.MethodGet)
	doctor.HandleFunc("/appointments/{id}/visited", h.Appointment.MarkVisited).Methods(http.MethodPatch)
	doctor.HandleFunc("/appointments/{id}/paid", h.Appointment.MarkPaid).Methods(http.MethodPatch)
	doctor.HandleFunc("/appointments/{id}", h.Appointment.DeleteAppointment).Methods(http.MethodDelete)

	doctor.HandleFunc("/clinics", h.Clinic.Create).Methods(http.MethodPost)
	doctor.HandleFunc("/clinics", h.Clinic.GetMine).Methods(http.MethodGet)
	doctor.HandleFunc("/clinics/{id}", h.Clinic.Delete).Methods(http.MethodDelete)

	// Patient routes (protected - patient only)
	patient := api.PathPrefix("/patient").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("/appointments", h.Appointment.GetMyPatientAppointments).Methods(http.MethodGet)

	// Shared appointment routes; ownership is checked by the usecase
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.Use(middleware.RequireAnyRole)
	appointments.HandleFunc("/{id}", h.Appointment.GetAppointment).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/cancel", h.Appointment.CancelAppointment).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", h.AuditLog.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", h.AuditLog.GetAuditLog).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}/appointments", h.Appointment.GetDoctorAppointments).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
