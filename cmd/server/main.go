package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"

	echoapi "go.pilab.hu/coursehub/api/echo"
	redislock "go.pilab.hu/coursehub/cache/redis"
	"go.pilab.hu/coursehub/config"
	"go.pilab.hu/coursehub/internal/metrics"
	"go.pilab.hu/coursehub/log"
	"go.pilab.hu/coursehub/mongodb"
	"go.pilab.hu/coursehub/services"
	"go.pilab.hu/coursehub/session"
	"go.pilab.hu/coursehub/token"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Setup(cfg.LogLevel, cfg.LogPretty)
	zlog.Info().
		Str("http_port", cfg.HTTPPort).
		Str("mongo_db_name", cfg.MongoDBName).
		Int("max_active_devices", cfg.MaxActiveDevices).
		Bool("single_session", cfg.SingleSession).
		Msg("Starting coursehub server")

	ctx := context.Background()
	if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize MongoDB")
	}
	defer mongodb.CloseMongoDB(context.Background())
	db := mongodb.GetDB()

	sessionRepo, err := mongodb.NewSessionRepositoryMongo(ctx, db)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize session repository")
	}
	userRepo, err := mongodb.NewUserRepositoryMongo(ctx, db)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize user repository")
	}
	courseRepo, err := mongodb.NewCourseRepositoryMongo(ctx, db)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize course repository")
	}
	departmentRepo, err := mongodb.NewDepartmentRepositoryMongo(ctx, db)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize department repository")
	}
	enrollmentRepo, err := mongodb.NewEnrollmentRepositoryMongo(ctx, db)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize enrollment repository")
	}
	deviceResetRepo, err := mongodb.NewDeviceResetRepositoryMongo(ctx, db)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize device reset repository")
	}

	var locks session.Locker
	if cfg.RedisAddr != "" {
		redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			zlog.Fatal().Err(err).Msg("Failed to ping Redis")
		}
		locks = redislock.NewUserLock(redisClient, "coursehub")
		zlog.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis-backed user locks")
	} else {
		locks = session.NewKeyedMutex()
	}

	sessionCfg := session.Config{
		MaxActiveDevices: cfg.MaxActiveDevices,
		SingleSession:    cfg.SingleSession,
	}
	if err := sessionCfg.Validate(); err != nil {
		zlog.Fatal().Err(err).Msg("Invalid session configuration")
	}
	sessionManager := session.NewManager(sessionRepo, locks, sessionCfg)

	tokenManager := token.NewManager(cfg.JWTSecretKey, time.Duration(cfg.AccessTokenTTLMin)*time.Minute)
	hasher := services.NewBcryptHasher(0)

	enrollmentService := services.NewEnrollmentService(courseRepo, enrollmentRepo)
	authService := services.NewAuthService(userRepo, sessionManager, tokenManager, hasher)
	userService := services.NewUserService(userRepo, hasher, enrollmentService, sessionManager)
	deviceResetService := services.NewDeviceResetService(deviceResetRepo, sessionManager)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	registry.MustRegister(collectors.NewGoCollector())

	e := echo.New()
	e.HideBanner = true
	api := echoapi.NewAPI(echoapi.Deps{
		Auth:        authService,
		Users:       userService,
		Enrollment:  enrollmentService,
		DeviceReset: deviceResetService,
		Sessions:    sessionManager,
		Tokens:      tokenManager,
		Courses:     courseRepo,
		Departments: departmentRepo,
		UserRepo:    userRepo,
		Enrollments: enrollmentRepo,
		PingStore:   mongodb.Ping,
		MetricsReg:  registry,
	})
	api.RegisterRoutes(e)

	go func() {
		if err := e.Start(":" + cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	zlog.Info().Str("port", cfg.HTTPPort).Msg("HTTP server listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("HTTP server shutdown error")
	}
	zlog.Info().Msg("Server stopped")
}
