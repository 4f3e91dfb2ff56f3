package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/raksha-app/sos-api/internal/config"
	"github.com/raksha-app/sos-api/internal/email"
	"github.com/raksha-app/sos-api/internal/handler"
	contactHandler "github.com/raksha-app/sos-api/internal/handler/contact"
	deviceHandler "github.com/raksha-app/sos-api/internal/handler/device"
	offlineHandler "github.com/raksha-app/sos-api/internal/handler/offline"
	sosHandler "github.com/raksha-app/sos-api/internal/handler/sos"
	trackingHandler "github.com/raksha-app/sos-api/internal/handler/tracking"
	"github.com/raksha-app/sos-api/internal/middleware"
	"github.com/raksha-app/sos-api/internal/repository/postgres"
	"github.com/raksha-app/sos-api/internal/router"
	contactService "github.com/raksha-app/sos-api/internal/service/contact"
	deviceService "github.com/raksha-app/sos-api/internal/service/device"
	notificationService "github.com/raksha-app/sos-api/internal/service/notification"
	sosService "github.com/raksha-app/sos-api/internal/service/sos"
	"github.com/raksha-app/sos-api/internal/sms"
	"github.com/raksha-app/sos-api/internal/tracking"
	"github.com/raksha-app/sos-api/internal/worker"
	"github.com/raksha-app/sos-api/pkg/logger"
	"github.com/raksha-app/sos-api/pkg/metrics"
)

const (
	sessionMaxAge = 24 * time.Hour
	sweepInterval = 15 * time.Minute
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	deviceRepo := postgres.NewDeviceRepository(db)
	contactRepo := postgres.NewContactRepository(db)
	eventRepo := postgres.NewSOSEventRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	offlineRepo := postgres.NewOfflineRepository(db)
	rateLimitRepo := postgres.NewRateLimitRepository(db)

	// Tracking session store: Redis when configured, else in-process.
	var sessionStore tracking.Store
	if cfg.Redis.URL != "" {
		redisStore, err := tracking.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisStore.Close()
		sessionStore = redisStore
	} else {
		sessionStore = tracking.NewMemoryStore()
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Channel senders
	smsSvc := sms.NewGatewayService(sms.Config{
		BaseURL: cfg.SMS.GatewayURL,
		APIKey:  cfg.SMS.APIKey,
		Sender:  cfg.SMS.Sender,
		Timeout: cfg.SMS.Timeout,
	})
	emailSvc := email.NewSMTPService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	// Live tracking feed
	feed := trackingHandler.NewFeed(appLogger)

	// Initialize services
	deviceSvc := deviceService.NewService(deviceRepo, appLogger)
	contactSvc := contactService.NewService(contactRepo, deviceRepo, appLogger)
	notifierSvc := notificationService.NewService(notificationRepo, contactRepo, eventRepo, smsSvc, emailSvc, m, appLogger)
	sosSvc := sosService.NewService(eventRepo, locationRepo, deviceRepo, offlineRepo, rateLimitRepo, sessionStore, feed, m, appLogger)

	// Initialize handlers
	h := handler.NewHandler(db)
	deviceH := deviceHandler.NewHandler(deviceSvc)
	contactH := contactHandler.NewHandler(contactSvc)
	sosH := sosHandler.NewHandler(sosSvc, deviceSvc, notifierSvc)
	offlineH := offlineHandler.NewHandler(sosSvc)
	trackingH := trackingHandler.NewHandler(sessionStore, feed, appLogger)

	// Setup router
	r := router.NewRouter(h, deviceH, contactH, sosH, offlineH, trackingH, router.Config{
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
		CORSConfig:     middleware.DefaultCORSConfig(),
	})
	r.Setup()

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	sweeper := worker.NewTrackingSweepWorker(sessionStore, sessionMaxAge, sweepInterval, m, appLogger)
	go sweeper.Start(workerCtx)

	expirer := worker.NewEventExpiryWorker(eventRepo, sessionStore, sessionMaxAge, sweepInterval, m, appLogger)
	go expirer.Start(workerCtx)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
