package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nhle/siteledger/internal/auth"
	"github.com/nhle/siteledger/internal/credential"
	"github.com/nhle/siteledger/internal/files"
	"github.com/nhle/siteledger/internal/kv"
	"github.com/nhle/siteledger/internal/logger"
	"github.com/nhle/siteledger/internal/metrics"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/quota"
	"github.com/nhle/siteledger/internal/seed"
	"github.com/nhle/siteledger/internal/store"
	"github.com/nhle/siteledger/internal/upload"
)

// env is the wired application state shared by every subcommand.
type env struct {
	cfg     *model.AppConfig
	log     *logger.Logger
	kv      kv.Store
	files   *files.Registry
	uploads *upload.Pipeline
	metrics *metrics.Metrics
	store   *store.MemStore
	gate    *auth.Gate
}

// openEnv loads the config and wires the application. toFile sends log
// output to the configured log file so it stays out of the terminal UI.
func openEnv(ctx context.Context, toFile bool) (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg.Log, toFile)
	if err != nil {
		return nil, err
	}

	state, err := kv.Open(cfg.KV, log)
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}

	e := &env{cfg: cfg, log: log, kv: state}
	if err := e.wire(ctx); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

func newLogger(cfg model.LogConfig, toFile bool) (*logger.Logger, error) {
	if !toFile && cfg.File == "" {
		return logger.New(cfg.Mode)
	}
	path := cfg.File
	if path == "" {
		path = filepath.Join(filepath.Dir(configPath), "siteledger.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return logger.NewFile(cfg.Mode, path)
}

func (e *env) wire(ctx context.Context) error {
	reg, err := files.New(ctx, e.kv, e.log)
	if err != nil {
		return err
	}
	e.files = reg
	e.uploads = upload.New(reg, quota.FromConfig(e.cfg.Storage), e.cfg.Upload, e.log)
	e.metrics = metrics.New(e.uploads.Usage)
	e.store = store.New(reg,
		store.WithLogger(e.log),
		store.WithMutationHook(e.metrics.ObserveMutation),
	)

	e.gate, err = auth.NewGate(e.cfg.Auth, e.kv,
		auth.WithPasswordOverride(credential.AdminPassword),
		auth.WithLogger(e.log),
	)
	if err != nil {
		return err
	}

	if e.cfg.Seed.Enabled {
		if _, err := e.loadSeed(ctx); err != nil {
			return err
		}
	}
	return nil
}

// loadSeed loads the bundled sample data into an empty store.
func (e *env) loadSeed(ctx context.Context) (seed.Summary, error) {
	snap := e.store.Snapshot(ctx)
	if len(snap.Projects)+len(snap.Clients)+len(snap.Labourers)+len(snap.Resources) > 0 {
		return seed.Summary{}, nil
	}
	data, err := seed.Default()
	if err != nil {
		return seed.Summary{}, err
	}
	return seed.Load(ctx, e.store, data, e.log)
}

// Close flushes the logger and closes the kv store.
func (e *env) Close() error {
	e.log.Sync()
	return e.kv.Close()
}
