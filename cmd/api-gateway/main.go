package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-api/internal/handler"
	"github.com/noah-isme/course-enrollment-api/internal/repository"
	"github.com/noah-isme/course-enrollment-api/internal/service"
	"github.com/noah-isme/course-enrollment-api/pkg/cache"
	"github.com/noah-isme/course-enrollment-api/pkg/config"
	"github.com/noah-isme/course-enrollment-api/pkg/database"
	"github.com/noah-isme/course-enrollment-api/pkg/logger"
	"github.com/noah-isme/course-enrollment-api/pkg/tracing"
)

// @title Course Enrollment API
// @version 1.0.0
// @description Class enrollment with capacity limits, freezes and ordered waitlists.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		logr.Fatal("failed to init tracing", zap.Error(err))
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to open database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, serving reads uncached", zap.Error(err))
			redisClient = nil
		}
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	txRunner := repository.NewTxRunner(db, cfg.Database.TxRetries, logr)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	dropRepo := repository.NewDropRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "enrollment", logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)
	waitlist := service.NewWaitlistManager(waitlistRepo)

	events := service.NewEventDispatcher(cfg.Events.Workers, cfg.Events.Retries, metrics, logr)
	events.Start(ctx)

	enrollmentSvc := service.NewEnrollmentService(service.EnrollmentServiceDeps{
		Tx:          txRunner,
		Classes:     classRepo,
		Students:    studentRepo,
		Enrollments: enrollmentRepo,
		Drops:       dropRepo,
		Waitlist:    waitlist,
		Views:       waitlistRepo,
		Policy:      service.NewPolicy(cfg.Enrollment.MaxWaitingLists),
		Cache:       cacheSvc,
		Events:      events,
		Metrics:     metrics,
		Logger:      logr,
	})
	sectionSvc := service.NewSectionService(txRunner, classRepo, instructorRepo, enrollmentRepo, dropRepo, waitlist, cacheSvc, metrics, validate, logr)
	viewSvc := service.NewInstructorViewService(classRepo, instructorRepo, dropRepo, waitlistRepo, cacheSvc, logr)
	rosterSvc := service.NewRosterService(classRepo, enrollmentRepo, waitlistRepo, validate, logr)

	router := newRouter(cfg, logr, metrics, routeHandlers{
		classes:     handler.NewClassHandler(sectionSvc),
		enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		instructors: handler.NewInstructorHandler(viewSvc, rosterSvc),
		health:      handler.NewHealthHandler(txRunner),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("db_driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown", zap.Error(err))
	}
	events.Stop()
	if err := cacheRepo.Close(); err != nil {
		logr.Warn("redis close", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		logr.Error("database close", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logr.Warn("tracer shutdown", zap.Error(err))
	}
}
