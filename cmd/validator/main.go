package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointment/internal/api"
	"appointment/internal/cache"
	"appointment/internal/config"
	"appointment/internal/database"
	"appointment/internal/events"
	"appointment/internal/metrics"
	"appointment/internal/models"
	"appointment/internal/timeslot"
	"appointment/internal/validation"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("failed to load .env")
	}

	cfg, err := config.Load(os.Getenv("APPT_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		logger = logger.Level(level)
	} else {
		logger.Warn().Str("level", cfg.Logging.Level).Msg("unknown log level, using info")
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid timezone")
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()
	logger.Info().Str("path", db.Path()).Msg("database opened")

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}
	lookup := cache.NewLookup(db, rdb, cfg.CacheTTL(), &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := &config.DoctorsWatcher{
		Path:     cfg.Doctors.ConfigPath,
		Interval: cfg.DoctorsReloadInterval(),
		OnUpdate: func(updated *config.DoctorsConfig) {
			applyDoctors(ctx, db, lookup, updated, &logger)
		},
		OnError: func(err error) {
			logger.Error().Err(err).Msg("doctors config reload failed")
		},
	}
	if err := watcher.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("doctors watch failed")
	}

	bus := events.NewEventBus()
	bus.OnError(func(e events.Event, err error) {
		logger.Error().Err(err).Str("event", e.Type).Msg("event handler failed")
	})
	subscribeAudit(ctx, bus, db, &logger)

	handler := validation.NewHandler(lookup, timeslot.New(loc), bus, &logger)

	opts := api.Options{
		Port:           cfg.API.Port,
		APIKeys:        cfg.API.APIKeys,
		RateLimitRPS:   cfg.API.RateLimitRPS,
		RateLimitBurst: cfg.API.RateLimitBurst,
	}
	if rdb != nil {
		opts.Cache = lookup
	}
	server := api.NewHTTPServer(handler, db, opts, &logger)

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, server.Handler(), &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		go database.NewBackupService(db, cfg.Backup, &logger).Start(ctx)
	}

	logger.Info().Msg("appointment validator started")
	if err := server.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("api server error")
	}
}

func applyDoctors(ctx context.Context, db *database.DB, lookup *cache.Lookup, cfg *config.DoctorsConfig, logger *zerolog.Logger) {
	if cfg == nil {
		return
	}
	if err := db.SyncDoctorsFromConfig(ctx, cfg); err != nil {
		logger.Error().Err(err).Msg("failed to apply doctors config")
		return
	}
	for _, d := range cfg.MalformedWorkingHours() {
		logger.Warn().Int64("doctor_id", d.ID).Str("working_hours", d.WorkingHours).Msg("working hours are not configured properly")
	}
	if n, err := lookup.Purge(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to purge working hours cache")
	} else if n > 0 {
		logger.Debug().Int("purged", n).Msg("working hours cache purged")
	}
	metrics.IncDoctorsReloaded()

	event := logger.Info().Str("summary", cfg.String()).Time("reloaded_at", time.Now())
	if active, err := db.ListActiveDoctors(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to list active doctors")
	} else {
		event = event.Int("active_in_db", len(active))
	}
	event.Msg("doctors config applied")
}

func subscribeAudit(ctx context.Context, bus *events.EventBus, db *database.DB, logger *zerolog.Logger) {
	bus.Subscribe(events.TypeTimeslotValidated, func(e events.Event) error {
		p, err := events.DecodeTimeslotValidated(e)
		if err != nil {
			return err
		}
		if p.Outcome != models.OutcomeValid {
			logger.Info().
				Str("doctor", p.DoctorID).
				Str("timeslot", p.Timeslot).
				Str("outcome", p.Outcome).
				Str("request_id", p.RequestID).
				Msg("timeslot rejected")
		}
		return db.RecordValidation(ctx, &models.ValidationRecord{
			RequestID:  p.RequestID,
			DoctorID:   p.DoctorID,
			Timeslot:   p.Timeslot,
			Normalized: p.Normalized,
			Outcome:    p.Outcome,
			Message:    p.Message,
			CreatedAt:  e.CreatedAt,
		})
	})
}

// startHealthServer exposes /healthz and /readyz on a separate port.
func startHealthServer(ctx context.Context, port int, apiHandler http.Handler, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/healthz", apiHandler)
	mux.Handle("/readyz", apiHandler)
	serve(ctx, port, mux, "health", logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	serve(ctx, port, mux, "metrics", logger)
}

func serve(ctx context.Context, port int, handler http.Handler, name string, logger *zerolog.Logger) {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Str("server", name).Msg("server error")
	}
}
