package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	_ "github.com/noah-isme/salon-booking-api/api/swagger"
	"github.com/noah-isme/salon-booking-api/internal/handler"
	"github.com/noah-isme/salon-booking-api/internal/middleware"
	"github.com/noah-isme/salon-booking-api/internal/notify"
	"github.com/noah-isme/salon-booking-api/internal/repository"
	"github.com/noah-isme/salon-booking-api/internal/service"
	"github.com/noah-isme/salon-booking-api/pkg/cloud"
	"github.com/noah-isme/salon-booking-api/pkg/config"
	"github.com/noah-isme/salon-booking-api/pkg/database"
	"github.com/noah-isme/salon-booking-api/pkg/logger"
	"github.com/noah-isme/salon-booking-api/pkg/storage"
)

// @title Salon Booking API
// @version 1.0.0
// @description Appointment booking backend for salons, their staff and clients
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	binding.EnableDecoderDisallowUnknownFields = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	awsCfg, err := cloud.LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		logr.Fatal("aws config failed", zap.Error(err))
	}

	sender, err := notify.New(cfg.Email, awsCfg, logr.Named("notify"))
	if err != nil {
		logr.Fatal("email sender setup failed", zap.Error(err))
	}

	var s3Client storage.S3API
	if cfg.Storage.Driver == config.StorageDriverS3 {
		s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.AWS.EndpointOverride != ""
		})
	}
	photos, err := storage.New(cfg.Storage, awsCfg, s3Client)
	if err != nil {
		logr.Fatal("storage setup failed", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	loc := cfg.Scheduling.Location()

	userRepo := repository.NewUserRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	hoursRepo := repository.NewWorkingHoursRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)

	authSvc := service.NewAuthService(userRepo, nil, logr.Named("auth"), service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, providerRepo, nil, logr.Named("users"))
	providerSvc := service.NewProviderService(db, providerRepo, inquiryRepo, userRepo, photos, userRepo, nil, logr.Named("providers"))
	inquirySvc := service.NewInquiryService(db, inquiryRepo, userRepo, metrics, nil, logr.Named("inquiries"))
	catalogSvc := service.NewCatalogService(catalogRepo, providerRepo, userRepo, nil, logr.Named("catalog"))
	hoursSvc := service.NewWorkingHoursService(db, hoursRepo, providerRepo, userRepo, nil, logr.Named("working_hours"))
	notifier := service.NewNotificationService(sender, loc, logr.Named("notifications"))
	appointmentSvc := service.NewAppointmentService(db, appointmentRepo, hoursRepo, catalogRepo, userRepo, notifier, metrics, nil, logr.Named("appointments"), loc)

	routerCfg := handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Tokens:         authSvc,
		Audit:          userRepo,
		Requests:       metrics,
		Logger:         logr,
	}
	if local, ok := photos.(*storage.LocalStorage); ok {
		routerCfg.UploadsDir = local.Dir()
		routerCfg.UploadsPath = "/uploads"
	}
	if cfg.RateLimit.Enabled {
		rdb, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			if !cfg.RateLimit.FailOpen {
				logr.Fatal("redis connection failed", zap.Error(err))
			}
			logr.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			routerCfg.Limiter = middleware.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.FailOpen, metrics, logr.Named("ratelimit"))
		}
	}

	router := handler.NewRouter(routerCfg, handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Users:        handler.NewUserHandler(userSvc),
		Appointments: handler.NewAppointmentHandler(appointmentSvc),
		Inquiries:    handler.NewInquiryHandler(inquirySvc),
		Providers:    handler.NewProviderHandler(providerSvc),
		Catalog:      handler.NewCatalogHandler(catalogSvc),
		WorkingHours: handler.NewWorkingHoursHandler(hoursSvc),
		Ops:          handler.NewMetricsHandler(metrics.Handler(), db),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
