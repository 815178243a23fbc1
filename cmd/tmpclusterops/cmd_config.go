package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/params"
)

func newCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "config",
		Short:              "Inspect tmpclusterops.yml",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("invalid command")
		},
	}
	cmd.AddCommand(newCmdConfigShow())
	return cmd
}

// configView is the redacted form printed by config show.
type configView struct {
	Config       string                  `yaml:"config"`
	Driver       string                  `yaml:"driver"`
	Settings     *model.OperatorSettings `yaml:"settings"`
	Template     string                  `yaml:"template"`
	Parameters   string                  `yaml:"parameters"`
	Placeholders []string                `yaml:"placeholders"`
	Generation   uint64                  `yaml:"generation"`
}

func newCmdConfigShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Validate configuration and print it with credentials redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(cmd, requireAll)
			if err != nil {
				return err
			}
			snap := rt.store.Current()
			template, parameters := rt.cfg.TemplateFiles().Paths()
			view := configView{
				Config:       rt.configPath,
				Driver:       rt.driver.ID(),
				Settings:     snap.Settings,
				Template:     template,
				Parameters:   parameters,
				Placeholders: params.Placeholders(snap.Templates.Parameters),
				Generation:   snap.Generation,
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(view); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
