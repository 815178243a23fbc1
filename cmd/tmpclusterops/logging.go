package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kompox/tmpcluster/config/opscfg"
	"github.com/kompox/tmpcluster/internal/logging"
)

// newLogger builds the run logger. The logging section of the config file is
// used when the file exists; flags and environment override it.
func newLogger(cmd *cobra.Command) (logging.Logger, error) {
	cfg := &logging.LogConfig{}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if root, err := opscfg.Load(path); err == nil {
			cfg = root.LogConfig()
		}
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Format = v
	}
	if env := os.Getenv(envLogFormat); env != "" { // env overrides flag
		cfg.Format = env
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-output"); v != "" {
		cfg.Output = v
	}

	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	lf, err := logging.NewLogFile(cfg)
	if err != nil {
		return nil, err
	}
	if lf.Path != "" && cfg.Dir != "" {
		_ = logging.CleanupOldLogFiles(cfg.Dir, cfg.RetentionDays)
	}
	// The log file stays open for the lifetime of the process.
	return logging.NewWithWriter(cfg.Format, level, lf.Writer())
}

// withCmdRunLogger implements the Span pattern for CLI command logging.
// It emits a start log line and returns a context with logger attributes attached,
// plus a cleanup function to emit the success or failure log line.
//
// Usage:
//
//	ctx, cleanup := withCmdRunLogger(ctx, "cluster.create", name)
//	defer func() { cleanup(err) }()
//
// Log message format:
// - Start:   CMD:<operation>/S (with resourceId in logger attributes)
// - Success: CMD:<operation>/EOK (with err, elapsed in logger attributes)
// - Failure: CMD:<operation>/EFAIL (with err, elapsed in logger attributes)
//
// All logs use INFO level. The runId is inherited from the context logger
// (set in PersistentPreRunE).
func withCmdRunLogger(ctx context.Context, operation, resourceID string) (context.Context, func(err error)) {
	startAt := time.Now()
	logger := logging.FromContext(ctx).With("resourceId", resourceID)
	ctx = logging.WithLogger(ctx, logger)
	logger.Info(ctx, "CMD:"+operation+"/S")

	return ctx, func(err error) {
		elapsed := time.Since(startAt).Seconds()
		if err == nil {
			logger.Info(ctx, "CMD:"+operation+"/EOK", "err", "", "elapsed", elapsed)
			return
		}
		logger.Info(ctx, "CMD:"+operation+"/EFAIL", "err", logging.ShortError(err), "elapsed", elapsed)
	}
}
