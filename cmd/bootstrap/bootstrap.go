package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-clinic-scheduling/config"
	deliveryHttp "go-clinic-scheduling/internal/delivery/http"
	"go-clinic-scheduling/internal/delivery/http/handler"
	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/infrastructure/cache"
	"go-clinic-scheduling/internal/infrastructure/database"
	"go-clinic-scheduling/internal/infrastructure/logger"
	"go-clinic-scheduling/internal/repository"
	"go-clinic-scheduling/internal/service"
	"go-clinic-scheduling/internal/usecase"
	"go-clinic-scheduling/pkg/clock"
	"go-clinic-scheduling/pkg/jwt"
	"go-clinic-scheduling/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Usecases    *Usecases
}

// Usecases exposes the parts of the business layer the CLI commands need
type Usecases struct {
	Auth usecase.AuthUsecase
}

// LoadBase loads configuration, sets up logging and opens the database.
// It is enough for the migrate command.
func LoadBase() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Setup(cfg.Log)
	log.Info("Configuration loaded successfully")

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.IsDevelopment())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connected successfully")

	return &App{Config: cfg, Log: log, DB: db}, nil
}

// New creates a new App instance with all dependencies initialized
func New(ctx context.Context) (*App, error) {
	app, err := LoadBase()
	if err != nil {
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(ctx, app.Config.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	app.Log.Info("Redis connected successfully")

	loc, err := app.Config.App.Location()
	if err != nil {
		app.Close()
		return nil, err
	}

	app.initialize(clock.New(loc))
	return app, nil
}

// initialize wires every layer and builds the HTTP server
func (app *App) initialize(clk clock.Clock) {
	cfg := app.Config
	log := app.Log

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Initialize repositories
	tx := repository.NewTransactor(app.DB)
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	intervalRepo := repository.NewIntervalPolicyRepository()
	availabilityRepo := repository.NewAvailabilityRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	clinicRepo := repository.NewClinicRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	tokenStore := service.NewTokenStore(app.RedisClient)
	slotHolder := service.NewSlotHoldService(app.RedisClient, log, cfg.Booking.SlotHoldTTL)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(tx, log, userRepo, roleRepo, doctorProfileRepo, patientProfileRepo,
		appointmentRepo, auditService, jwtService, tokenStore)
	doctorUsecase := usecase.NewDoctorProfileUsecase(tx, log, userRepo, doctorProfileRepo, intervalRepo,
		availabilityRepo, auditService)
	intervalUsecase := usecase.NewIntervalPolicyUsecase(tx, log, intervalRepo, doctorProfileRepo, auditService)
	availabilityUsecase := usecase.NewAvailabilityUsecase(tx, log, availabilityRepo, doctorProfileRepo, auditService)
	slotUsecase := usecase.NewSlotUsecase(tx, log, intervalUsecase, availabilityUsecase, appointmentRepo, clk)
	appointmentUsecase := usecase.NewAppointmentUsecase(tx, log, appointmentRepo, clinicRepo, auditService, clk)
	bookingUsecase := usecase.NewBookingUsecase(log, slotUsecase, appointmentUsecase, authUsecase, doctorUsecase,
		slotHolder, clk)
	clinicUsecase := usecase.NewClinicUsecase(tx, log, clinicRepo, doctorProfileRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(tx, log, auditLogRepo)

	app.Usecases = &Usecases{Auth: authUsecase}

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:        handler.NewAuthHandler(authUsecase, customValidator),
		Doctor:      handler.NewDoctorHandler(doctorUsecase, customValidator),
		Schedule:    handler.NewScheduleHandler(intervalUsecase, availabilityUsecase, customValidator),
		Slot:        handler.NewSlotHandler(slotUsecase, appointmentUsecase),
		Booking:     handler.NewBookingHandler(bookingUsecase, customValidator),
		Appointment: handler.NewAppointmentHandler(appointmentUsecase, customValidator),
		Clinic:      handler.NewClinicHandler(clinicUsecase, customValidator),
		AuditLog:    handler.NewAuditLogHandler(auditLogUsecase),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS)

	router := deliveryHttp.NewRouter(handlers, authMiddleware, corsMiddleware)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
