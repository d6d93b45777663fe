package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/YosefHayim/get-barber-sub001/internal/clock"
	"github.com/YosefHayim/get-barber-sub001/internal/config"
	"github.com/YosefHayim/get-barber-sub001/internal/notify"
	"github.com/YosefHayim/get-barber-sub001/internal/service/schedules"
	"github.com/YosefHayim/get-barber-sub001/internal/service/waitlist"
	"github.com/YosefHayim/get-barber-sub001/internal/store/postgres"
	transport "github.com/YosefHayim/get-barber-sub001/internal/transport/http"
	"github.com/YosefHayim/get-barber-sub001/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "barberd"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "barberd"),
	)
	slog.SetDefault(log)

	log.Info("starting", slog.String("http_addr", cfg.HTTPAddr), slog.String("log_level", cfg.LogLevel))

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	var notifier notify.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := kafkaNotifier.Close(); err != nil {
				log.Warn("kafka writer close failed", slog.Any("err", err))
			}
		}()
		notifier = kafkaNotifier
		log.Info("kafka notifier enabled", slog.String("topic", cfg.KafkaTopic))
	} else {
		notifier = notify.NewLogNotifier(log)
	}

	clk := clock.System()
	scheduleRepo := postgres.NewScheduleRepo(db)
	waitlistRepo := postgres.NewWaitlistRepo(db)

	scheduleSvc := schedules.NewService(scheduleRepo, clk)
	processor := schedules.NewProcessor(scheduleRepo, notifier, clk, log)
	waitlistSvc := waitlist.NewService(waitlistRepo, clk)
	matcher := waitlist.NewMatcher(waitlistRepo, notifier, clk, cfg.OfferExpiry, log)
	sweeper := waitlist.NewSweeper(waitlistRepo, clk, log)

	validate := transport.NewValidator()
	router := transport.NewRouter(
		transport.NewSchedulesHandler(scheduleSvc, processor, validate, log),
		transport.NewWaitlistHandler(waitlistSvc, matcher, sweeper, validate, log),
	)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		worker.NewRunner("processor", cfg.ProcessorInterval, func(ctx context.Context) error {
			_, err := processor.RunTick(ctx)
			return err
		}, log).Run(ctx)
	}()
	go func() {
		defer wg.Done()
		worker.NewRunner("sweeper", cfg.SweepInterval, func(ctx context.Context) error {
			_, err := sweeper.RunTick(ctx)
			return err
		}, log).Run(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown failed; forcing close", slog.Any("err", err))
			_ = server.Close()
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped with error", slog.Any("err", err))
			stop()
			wg.Wait()
			os.Exit(1)
		}
	}

	stop()
	wg.Wait()
	log.Info("stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
