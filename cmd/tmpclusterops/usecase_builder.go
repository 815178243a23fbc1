package main

import (
	"fmt"

	"github.com/spf13/cobra"

	providerdrv "github.com/kompox/tmpcluster/adapters/drivers/provider"
	"github.com/kompox/tmpcluster/adapters/store/inmem"
	"github.com/kompox/tmpcluster/adapters/store/rdb"
	"github.com/kompox/tmpcluster/adapters/store/snapshot"
	"github.com/kompox/tmpcluster/config/opscfg"
	"github.com/kompox/tmpcluster/domain"
	"github.com/kompox/tmpcluster/internal/metrics"
	"github.com/kompox/tmpcluster/usecase/cluster"
)

// runtime holds everything a command needs, built from one config file.
type runtime struct {
	configPath string
	cfg        *opscfg.Root
	store      *snapshot.Store
	metrics    *metrics.Collector
	driver     providerdrv.Driver
	clusters   *cluster.UseCase
}

// loadConfig reads and validates the file named by --config.
func loadConfig(cmd *cobra.Command) (string, *opscfg.Root, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := opscfg.Load(path)
	if err != nil {
		return "", nil, err
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	return path, cfg, nil
}

// requirement selects which snapshot halves must load for a command to start.
type requirement int

const (
	// requireNone tolerates missing settings and templates; operations report
	// model.ErrNotConfigured until a reload succeeds.
	requireNone requirement = iota
	requireSettings
	requireAll
)

// buildRuntime loads config, publishes the first snapshot and wires the
// cluster use case to the configured provider driver. A snapshot half that
// fails to load is left unpublished unless req demands it.
func buildRuntime(cmd *cobra.Command, req requirement) (*runtime, error) {
	path, cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	m := metrics.NewCollector()
	store := snapshot.NewStore(m)
	if _, err := store.RebuildSettings(ctx, cfg.RawSettings()); err != nil && req >= requireSettings {
		return nil, err
	}
	if _, err := store.RebuildTemplates(ctx, cfg.TemplateFiles()); err != nil && req >= requireAll {
		return nil, err
	}
	driver, err := providerdrv.New(cfg.Provider.Driver, cfg.Provider.Options)
	if err != nil {
		return nil, err
	}
	journal, err := buildJournal(cfg)
	if err != nil {
		return nil, err
	}
	return &runtime{
		configPath: path,
		cfg:        cfg,
		store:      store,
		metrics:    m,
		driver:     driver,
		clusters: &cluster.UseCase{
			Snapshots:  store,
			TokenPort:  driver.TokenPort(),
			RemotePort: driver.RemotePort(),
			Retry:      cfg.RetryPolicy(),
			Metrics:    m,
			Journal:    journal,
		},
	}, nil
}

// buildJournal opens the configured operation journal. The database stays
// open for the lifetime of the process.
func buildJournal(cfg *opscfg.Root) (domain.OperationRepository, error) {
	url := cfg.JournalURL()
	if url == "" {
		return inmem.NewJournal(), nil
	}
	db, err := rdb.OpenFromURL(url)
	if err != nil {
		return nil, err
	}
	if err := rdb.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return rdb.NewJournal(db), nil
}
