package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	attendanceapp "github.com/coursehub/backend/internal/application/attendance"
	"github.com/coursehub/backend/internal/domain/shared"
	"github.com/coursehub/backend/internal/infrastructure/config"
	"github.com/coursehub/backend/internal/infrastructure/logger"
	"github.com/coursehub/backend/internal/infrastructure/notify"
	"github.com/coursehub/backend/internal/infrastructure/persistence"
	"github.com/coursehub/backend/internal/infrastructure/scheduler"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting worker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	sessionRepo := persistence.NewGormCheckinSessionRepository(db.DB)
	checkinRepo := persistence.NewGormCheckinRepository(db.DB)
	courseRepo := persistence.NewGormCourseRepository(db.DB)
	enrollmentRepo := persistence.NewGormEnrollmentRepository(db.DB)

	txManager := persistence.NewGormTransactionManager(db.DB)

	// Initialize notifier: Redis pub/sub when configured, log sink otherwise
	var notifier shared.Notifier
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, falling back to log notifier", zap.Error(err))
		notifier = notify.NewLogNotifier(log)
	} else {
		notifier = notify.NewRedisNotifier(redisClient)
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}
	cancelPing()

	// Initialize attendance service
	attendanceService := attendanceapp.NewService(
		sessionRepo,
		checkinRepo,
		courseRepo,
		enrollmentRepo,
		txManager,
		notifier,
		log,
	)

	// Initialize session sweeper
	sweeper := scheduler.NewSessionSweeper(
		scheduler.SessionSweeperConfig{SweepInterval: cfg.Scheduler.SweepInterval},
		attendanceService,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Scheduler.Enabled {
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("Failed to start session sweeper", zap.Error(err))
		}
	} else {
		log.Info("Session sweeper disabled by configuration")
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if cfg.Scheduler.Enabled {
		if err := sweeper.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop session sweeper", zap.Error(err))
		}
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis client", zap.Error(err))
	}

	log.Info("Worker exited")
}
