package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cleverheal-api/internal/cache"
	"cleverheal-api/internal/config"
	"cleverheal-api/internal/database"
	"cleverheal-api/internal/events"
	"cleverheal-api/internal/handlers"
	"cleverheal-api/internal/identity"
	"cleverheal-api/internal/logger"
	"cleverheal-api/internal/policy"
	"cleverheal-api/internal/repository"
	"cleverheal-api/internal/retry"
	"cleverheal-api/internal/router"
	"cleverheal-api/internal/services"
	"cleverheal-api/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "cleverheal-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode(log, run(cfg, log)))
}

// exitCode logs err, flushes the logger and returns the process status.
func exitCode(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("server exited", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	return code
}

func run(cfg *config.Config, log *zap.Logger) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("database migrated")
	}

	var (
		redisClient *redis.Client
		kv          cache.KV         = cache.Nop{}
		publisher   events.Publisher = events.Nop{}
	)
	if cfg.RedisEnabled() {
		redisClient = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisClient.Close()
		kv = cache.NewRedisKV(redisClient)
		publisher = events.NewStreamPublisher(redisClient, cfg.EventsStream, log)
		log.Info("redis enabled", zap.String("addr", cfg.RedisAddr), zap.String("stream", cfg.EventsStream))
	}

	statusPolicy, err := policy.NewStatusPolicy(cfg.StatusPolicy)
	if err != nil {
		return err
	}

	tokens := identity.NewTokens(cfg.JWTSecret, cfg.JWTAudience, cfg.TokenTTL)
	provider := newProvider(cfg, db, tokens, log)

	store := repository.New(db)
	resolver := session.NewResolver(store, kv, cfg.SessionCacheTTL, retry.Policy{
		Attempts: cfg.FetchRetries,
		Delay:    cfg.FetchRetryDelay,
	}, log)
	stats := services.NewStatsService(store, kv, cfg.StatsCacheTTL, log)
	auth := services.NewAuthService(provider, store, resolver, log)

	if cfg.BootstrapAdminEmail != "" {
		err := auth.EnsureAdmin(context.Background(), services.AdminInput{
			Email:     cfg.BootstrapAdminEmail,
			Password:  cfg.BootstrapAdminPassword,
			FirstName: cfg.BootstrapAdminFirstName,
			LastName:  cfg.BootstrapAdminLastName,
		})
		if err != nil {
			log.Error("bootstrap admin failed", zap.String("email", cfg.BootstrapAdminEmail), zap.Error(err))
		}
	}

	h := handlers.New(handlers.Deps{
		Auth:         auth,
		Profiles:     services.NewProfileService(store, resolver),
		Doctors:      services.NewDoctorService(store),
		Appointments: services.NewAppointmentService(store, statusPolicy, publisher, log),
		Patients:     services.NewPatientService(store),
		Users:        services.NewUserAdminService(provider, store, resolver, stats, log),
		Stats:        stats,
		Dashboard:    services.NewDashboardService(store, stats),
		Tokens:       tokens,
		Resolver:     resolver,
		DB:           db,
		Redis:        redisClient,
		ServiceKey:   cfg.ServiceKey,
		Logger:       log,
	})

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router.New(h, cfg.CORSAllowOrigins, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("auth_provider", cfg.AuthProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newProvider(cfg *config.Config, db *gorm.DB, tokens *identity.Tokens, log *zap.Logger) identity.Provider {
	if cfg.AuthProvider == config.AuthProviderRemote {
		return identity.NewRemoteProvider(cfg.AuthPlatformURL, cfg.AuthPlatformAnonKey, cfg.AuthPlatformServiceKey, log)
	}
	return identity.NewLocalProvider(db, tokens, cfg.RequireEmailConfirmation, log)
}
