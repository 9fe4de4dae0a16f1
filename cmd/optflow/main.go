package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/optflow/config"
	"github.com/alejandrodnm/optflow/internal/adapters/csvout"
	"github.com/alejandrodnm/optflow/internal/adapters/notify"
	"github.com/alejandrodnm/optflow/internal/adapters/polygon"
	"github.com/alejandrodnm/optflow/internal/adapters/storage"
	"github.com/alejandrodnm/optflow/internal/domain"
	"github.com/alejandrodnm/optflow/internal/features"
)

const dateLayout = "2006-01-02"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	ticker := flag.String("ticker", "", "underlying equity ticker (required)")
	expiry := flag.String("expiry", "", "fixed expiry YYYY-MM-DD (fixed-expiry mode)")
	start := flag.String("start", "", "start date YYYY-MM-DD (rolling mode)")
	end := flag.String("end", "", "end date YYYY-MM-DD (rolling mode)")
	store := flag.Bool("store", false, "persist the run to the SQLite history")
	table := flag.Bool("table", false, "print full per-day table (default: compact 1-line)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if *ticker == "" {
		slog.Error("missing required -ticker flag")
		os.Exit(1)
	}

	// Credenciales resueltas en la construcción — sin api key no se llega
	// a hacer ninguna llamada de red.
	client, err := polygon.NewClient(cfg.API.BaseURL, cfg.API.APIKey)
	if err != nil {
		slog.Error("failed to create provider client", "err", err)
		os.Exit(1)
	}

	builderCfg := features.Config{
		ContractsLimit:         cfg.Features.ContractsLimit,
		TradesLimitPerContract: cfg.Features.TradesLimitPerContract,
		MinTradesPerDay:        cfg.Features.MinTradesPerDay,
		FetchWorkers:           cfg.Features.FetchWorkers,
	}
	builder := features.New(builderCfg, client, client)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("optflow starting",
		"ticker", *ticker,
		"config", *configPath,
		"workers", builderCfg.FetchWorkers,
	)

	result, err := build(ctx, builder, cfg, *ticker, *expiry, *start, *end)
	if err != nil {
		if errors.Is(err, features.ErrInvalidRange) {
			slog.Error("invalid date range", "err", err)
		} else {
			slog.Error("build failed", "err", err)
		}
		os.Exit(1)
	}

	writer := csvout.NewWriter(cfg.Output.Dir)
	path, err := writer.Write(result)
	if err != nil {
		slog.Error("failed to write CSV", "err", err)
		os.Exit(1)
	}

	notifier := notify.NewConsole(*table)
	if err := notifier.Notify(ctx, result); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if *store {
		saveRun(ctx, cfg.Storage.DSN, result)
	}

	slog.Info("optflow done", "rows", len(result.Rows), "csv", path)
}

// build despacha al modo correcto según los flags: -expiry → fixed,
// -start/-end → rolling.
func build(ctx context.Context, b *features.Builder, cfg *config.Config, ticker, expiry, start, end string) (*domain.FeatureTable, error) {
	if expiry != "" {
		expiryDate, err := parseDate(expiry)
		if err != nil {
			return nil, err
		}
		return b.BuildFixed(ctx, ticker, expiryDate,
			cfg.Features.DaysBeforeExpiry, cfg.Features.DaysAfterExpiry)
	}

	if start == "" || end == "" {
		return nil, errors.New("either -expiry or both -start and -end are required")
	}
	startDate, err := parseDate(start)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return nil, err
	}
	return b.BuildRolling(ctx, ticker, startDate, endDate, cfg.Features.DaysToExpiry)
}

// saveRun persiste el run en el historial SQLite. Un fallo de storage no
// invalida el run — el CSV ya está escrito.
func saveRun(ctx context.Context, dsn string, table *domain.FeatureTable) {
	st, err := storage.NewSQLiteStorage(dsn)
	if err != nil {
		slog.Warn("failed to open storage, skipping history", "err", err, "dsn", dsn)
		return
	}
	defer st.Close()

	runID := uuid.New().String()
	if err := st.SaveTable(ctx, runID, table); err != nil {
		slog.Warn("failed to save run", "err", err, "run_id", runID)
		return
	}
	slog.Info("run saved", "run_id", runID, "rows", len(table.Rows))
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
