package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/raksha-app/sos-api/internal/config"
	"github.com/raksha-app/sos-api/internal/repository/postgres"
	"github.com/raksha-app/sos-api/internal/tracking"
	"github.com/raksha-app/sos-api/internal/worker"
	"github.com/raksha-app/sos-api/pkg/logger"
	"github.com/raksha-app/sos-api/pkg/metrics"
)

// Spec is the worker binary's flat environment configuration.
type Spec struct {
	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        int           `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBPassword    string        `envconfig:"DB_PASSWORD" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSLMODE" default:"disable"`
	RedisURL      string        `envconfig:"REDIS_URL"`
	SessionMaxAge time.Duration `envconfig:"SESSION_MAX_AGE" default:"24h"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"15m"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	var spec Spec
	if err := envconfig.Process("sos", &spec); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	appLogger := logger.New(&logger.Config{Level: logger.ParseLevel(spec.LogLevel)})

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     spec.DBHost,
		Port:     spec.DBPort,
		User:     spec.DBUser,
		Password: spec.DBPassword,
		Name:     spec.DBName,
		SSLMode:  spec.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var sessionStore tracking.Store
	if spec.RedisURL != "" {
		redisStore, err := tracking.NewRedisStore(spec.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer redisStore.Close()
		sessionStore = redisStore
	} else {
		// Without Redis the sweeper only sees this process's sessions.
		sessionStore = tracking.NewMemoryStore()
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	eventRepo := postgres.NewSOSEventRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := worker.NewTrackingSweepWorker(sessionStore, spec.SessionMaxAge, spec.SweepInterval, m, appLogger)
	go sweeper.Start(ctx)

	expirer := worker.NewEventExpiryWorker(eventRepo, sessionStore, spec.SessionMaxAge, spec.SweepInterval, m, appLogger)
	go expirer.Start(ctx)

	log.Info().Msg("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("worker shutting down")
	cancel()
}
