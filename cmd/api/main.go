package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hospitaldao/appointments-api/internal/api/router"
	"github.com/hospitaldao/appointments-api/internal/appointments"
	appconfig "github.com/hospitaldao/appointments-api/internal/config"
	"github.com/hospitaldao/appointments-api/internal/doctors"
	"github.com/hospitaldao/appointments-api/internal/events"
	"github.com/hospitaldao/appointments-api/internal/notify"
	"github.com/hospitaldao/appointments-api/internal/observability/metrics"
	"github.com/hospitaldao/appointments-api/internal/patients"
	"github.com/hospitaldao/appointments-api/internal/records"
	"github.com/hospitaldao/appointments-api/internal/reminders"
	"github.com/hospitaldao/appointments-api/internal/reports"
	"github.com/hospitaldao/appointments-api/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting appointments API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	apptMetrics := metrics.NewAppointmentMetrics(nil)
	reminderMetrics := metrics.NewReminderMetrics(nil)

	// Stores
	apptStore := appointments.NewStore(pool)
	patientStore := patients.NewStore(pool)
	doctorStore := doctors.NewStore(pool)
	specialtyStore := doctors.NewSpecialtyStore(pool)
	workingHourStore := doctors.NewWorkingHourStore(pool)
	recordStore := records.NewStore(pool)
	reminderStore := reminders.NewStore(pool)
	reportStore := reports.NewStore(pool)

	// Event bus with the appointment-created side effects. The reminder row
	// is created before the confirmation email goes out.
	bus := events.NewBus(logger)
	bus.Subscribe(events.AppointmentCreated,
		reminders.NewCreator(reminderStore, cfg.ReminderLeadTime, logger).WithMetrics(reminderMetrics))

	sender := buildEmailSender(ctx, cfg, logger)
	bus.Subscribe(events.AppointmentCreated,
		notify.NewConfirmationNotifier(sender, cfg.HospitalName, logger))

	apptService := appointments.NewService(apptStore, bus, logger).WithMetrics(apptMetrics)

	// Report cache (optional)
	var reportCache *reports.Cache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, report caching disabled", "error", err)
		} else {
			reportCache = reports.NewCache(redisClient, cfg.ReportCacheTTL, logger)
		}
	}

	// Reminder scheduler
	scheduler := reminders.NewScheduler(apptStore, reminderStore, sender, logger).
		WithIntervals(cfg.ReminderGenerateInterval, cfg.ReminderDispatchInterval).
		WithWindow(cfg.ReminderLookahead, cfg.ReminderLeadTime).
		WithHospitalName(cfg.HospitalName).
		WithMetrics(reminderMetrics)
	go scheduler.Run(ctx)

	// Setup router
	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(apptService, logger),
		PatientsHandler:     patients.NewHandler(patientStore, logger),
		DoctorsHandler:      doctors.NewHandler(doctorStore, logger),
		SpecialtiesHandler:  doctors.NewSpecialtyHandler(specialtyStore, logger),
		WorkingHoursHandler: doctors.NewWorkingHourHandler(workingHourStore, logger),
		RecordsHandler:      records.NewHandler(recordStore, logger),
		RemindersHandler:    reminders.NewHandler(reminderStore, logger),
		ReportsHandler:      reports.NewHandler(reportStore, reportCache, logger).WithPageSize(cfg.ReportPageSize),
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Stop the reminder scheduler, then drain in-flight requests.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildEmailSender picks the delivery backend from EMAIL_PROVIDER. The stub
// sender logs instead of sending, which keeps local development quiet.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			return s
		}
		logger.Warn("SENDGRID_API_KEY not set, falling back to stub email sender")
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Warn("failed to load AWS config, falling back to stub email sender", "error", err)
			break
		}
		if s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); s != nil {
			return s
		}
	}
	return notify.NewStubEmailSender(logger)
}
