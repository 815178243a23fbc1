package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	_ "github.com/kompox/tmpcluster/adapters/drivers/provider/arm"
	_ "github.com/kompox/tmpcluster/adapters/drivers/provider/inmem"
	"github.com/kompox/tmpcluster/config/opscfg"
	"github.com/kompox/tmpcluster/internal/logging"
)

// Environment variables overriding flags.
const (
	envConfig    = "TMPCLUSTER_CONFIG"
	envLogFormat = "TMPCLUSTER_LOG_FORMAT"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tmpclusterops",
		Short:   "Provision short-lived templated clusters on Azure Resource Manager",
		Long:    "Provision short-lived templated clusters on Azure Resource Manager",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help by default when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultConfig := os.Getenv(envConfig)
	if defaultConfig == "" {
		defaultConfig = opscfg.DefaultPath
	}
	cmd.PersistentFlags().StringP("config", "C", defaultConfig, "Path to tmpclusterops.yml (env "+envConfig+")")
	cmd.PersistentFlags().String("log-format", "", "Log format (human|text|json) (env "+envLogFormat+")")
	cmd.PersistentFlags().String("log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")
	cmd.PersistentFlags().String("log-output", "", "Log output (- for stderr, none, auto, or a file path)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		l, err := newLogger(c)
		if err != nil {
			return err
		}
		l = l.With("runId", uuid.NewString())
		ctx := logging.WithLogger(c.Context(), l)
		c.SetContext(ctx)
		return nil
	}

	// Add subcommands
	cmd.AddCommand(newCmdVersion())
	cmd.AddCommand(newCmdConfig())
	cmd.AddCommand(newCmdCluster())
	cmd.AddCommand(newCmdServe())
	return cmd
}

func main() {
	root := newRootCmd()
	root.SetContext(context.Background())
	executed, err := root.ExecuteC()
	if err != nil {
		ctx := root.Context()
		if executed != nil {
			ctx = executed.Context()
		}
		logging.FromContext(ctx).Errorf(ctx, "Failed: %s", err)
		os.Exit(1)
	}
}
