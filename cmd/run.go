package cmd

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studytrack/internal/config"
	"github.com/abhisek/studytrack/internal/logging"
	"github.com/abhisek/studytrack/internal/progress"
	"github.com/abhisek/studytrack/internal/questionbank"
	"github.com/abhisek/studytrack/internal/store"
	"github.com/abhisek/studytrack/internal/study"
	"github.com/abhisek/studytrack/internal/testgen"
)

// app bundles what every command needs once the config is resolved.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	db       *store.Store // nil for the file backend
	svc      *study.Service
}

func (a *app) progress() *progress.Store    { return a.svc.Progress }
func (a *app) generator() *testgen.Generator { return a.svc.Generator }

// loadConfig resolves the config file, environment and flags, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	overrides := map[string]*string{
		"data":         &cfg.DataPath,
		"backend":      &cfg.Backend,
		"bank":         &cfg.BankPath,
		"log-level":    &cfg.Logging.Level,
		"metrics-file": &cfg.MetricsFile,
	}
	for name, dst := range overrides {
		if v, _ := cmd.Flags().GetString(name); v != "" {
			*dst = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openApp loads config, the question bank and the progress store. Callers
// must Close the returned app.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	bank := questionbank.Default()
	if cfg.BankPath != "" {
		bank, err = questionbank.Load(cfg.BankPath)
		if err != nil {
			return nil, fmt.Errorf("load question bank: %w", err)
		}
		logger.Debug("loaded question bank", zap.String("path", cfg.BankPath), zap.Int("topics", len(bank.Topics())))
	}

	dataPath, err := cfg.ResolveDataPath()
	if err != nil {
		return nil, fmt.Errorf("resolve data path: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	var repo store.SnapshotRepo
	switch cfg.Backend {
	case config.BackendSQLite:
		a.db, err = store.Open(dataPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		repo = a.db.SnapshotRepo()
	default:
		repo = store.NewFileRepo(dataPath)
	}
	logger.Debug("opening progress", zap.String("backend", cfg.Backend), zap.String("path", dataPath))

	p := progress.Open(cmd.Context(), repo,
		progress.WithLogger(logger),
		progress.WithMetrics(progress.NewMetrics(a.registry)),
		progress.WithKeepSnapshots(cfg.KeepSnapshots),
	)
	a.svc = study.NewService(p, testgen.New(bank), study.WithLogger(logger))
	return a, nil
}

// Close writes the metrics file, if configured, and releases the store.
func (a *app) Close() error {
	var errs []error
	if a.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

// withApp runs fn with an opened app and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args, a)
	}
}
