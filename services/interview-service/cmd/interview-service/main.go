package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tanvir-ahmed/hirecal/libs/config"
	"github.com/tanvir-ahmed/hirecal/libs/db"
	"github.com/tanvir-ahmed/hirecal/libs/httpx"
	"github.com/tanvir-ahmed/hirecal/libs/kafkax"
	otelx "github.com/tanvir-ahmed/hirecal/libs/otel"
	"github.com/tanvir-ahmed/hirecal/libs/runtime"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/handlers"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/outbox"
	"github.com/tanvir-ahmed/hirecal/services/interview-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "interview-service")
	port, err := config.Port("PORT", "8086")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	workingHoursRepo := storage.NewWorkingHoursRepository(pool)
	timeOffRepo := storage.NewTimeOffRepository(pool)
	interviewRepo := storage.NewInterviewRepository(pool)
	rescheduleRepo := storage.NewRescheduleRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	workingHoursHandler := handlers.NewWorkingHoursHandler(workingHoursRepo, logger)
	timeOffHandler := handlers.NewTimeOffHandler(timeOffRepo, outboxRepo, pool, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(workingHoursRepo, timeOffRepo, interviewRepo, logger)
	interviewHandler := handlers.NewInterviewHandler(workingHoursRepo, timeOffRepo, interviewRepo, rescheduleRepo, outboxRepo, pool, logger)
	calendarHandler := handlers.NewCalendarHandler(workingHoursRepo, timeOffRepo, interviewRepo, logger)
	statsHandler := handlers.NewStatisticsHandler(workingHoursRepo, timeOffRepo, interviewRepo, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/working-hours", workingHoursHandler.SetDay)
	mux.HandleFunc("/api/v1/working-hours/week", workingHoursHandler.SetWeek)
	mux.HandleFunc("/api/v1/working-hours/view", workingHoursHandler.GetWeek)
	mux.HandleFunc("/api/v1/time-off", timeOffHandler.Request)
	mux.HandleFunc("/api/v1/time-off/list", timeOffHandler.List)
	mux.HandleFunc("/api/v1/time-off/approve", timeOffHandler.Approve)
	mux.HandleFunc("/api/v1/time-off/cancel", timeOffHandler.Cancel)
	mux.HandleFunc("/api/v1/availability/check", availabilityHandler.Check)
	mux.HandleFunc("/api/v1/availability/slots", availabilityHandler.Slots)
	mux.HandleFunc("/api/v1/availability/dates", availabilityHandler.Dates)
	mux.HandleFunc("/api/v1/interviews/schedule", interviewHandler.Schedule)
	mux.HandleFunc("/api/v1/interviews/get", interviewHandler.Get)
	mux.HandleFunc("/api/v1/interviews/confirm", interviewHandler.Confirm)
	mux.HandleFunc("/api/v1/interviews/complete", interviewHandler.Complete)
	mux.HandleFunc("/api/v1/interviews/cancel", interviewHandler.Cancel)
	mux.HandleFunc("/api/v1/interviews/no-show", interviewHandler.NoShow)
	mux.HandleFunc("/api/v1/interviews/details", interviewHandler.UpdateDetails)
	mux.HandleFunc("/api/v1/interviews/reschedule", interviewHandler.Reschedule)
	mux.HandleFunc("/api/v1/interviews/reschedule/respond", interviewHandler.RespondReschedule)
	mux.HandleFunc("/api/v1/interviews/reschedule/list", interviewHandler.ListReschedules)
	mux.HandleFunc("/api/v1/calendar/daily", calendarHandler.Daily)
	mux.HandleFunc("/api/v1/calendar/weekly", calendarHandler.Weekly)
	mux.HandleFunc("/api/v1/calendar/monthly", calendarHandler.Monthly)
	mux.HandleFunc("/api/v1/calendar/candidate", calendarHandler.Candidate)
	mux.HandleFunc("/api/v1/statistics", statsHandler.Summary)
	mux.HandleFunc("/api/v1/suggestions", statsHandler.Suggest)

	rateLimit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	var limiter httpx.Middleware
	if redisAddr := config.String("REDIS_ADDR", ""); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer func() { _ = rdb.Close() }()
		limiter = httpx.NewRedisRateLimiter(rdb, rateLimit, time.Minute, service).Middleware(logger, true)
	} else {
		limiter = httpx.NewRateLimiter(rateLimit, time.Minute).Middleware()
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   splitList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   splitList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PATCH,OPTIONS")),
			AllowedHeaders:   splitList(config.String("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id,Idempotency-Key,X-Recruiter-Id,X-Candidate-Id,X-Admin-Id")),
			AllowCredentials: config.String("CORS_ALLOW_CREDENTIALS", "false") == "true",
			MaxAge:           config.Duration("CORS_MAX_AGE", 10*time.Minute),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT", 30*time.Second)),
		limiter,
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "interview")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
