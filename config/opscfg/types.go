// Package opscfg defines the configuration schema (structs) for tmpclusterops.yml.
// This package is intended for YAML -> struct deserialization.
package opscfg

import "time"

// Root is the root structure of tmpclusterops.yml.
type Root struct {
	Version   string            `yaml:"version"`
	Provider  Provider          `yaml:"provider"`
	Settings  map[string]string `yaml:"settings"` // Region, ClientID, ... (${ENV} expanded)
	Templates Templates         `yaml:"templates"`
	Retry     Retry             `yaml:"retry"`
	Logging   Logging           `yaml:"logging"`
	Server    Server            `yaml:"server"`
	Journal   Journal           `yaml:"journal"`

	// BaseDir is the directory of the loaded file. Relative paths resolve against it.
	BaseDir string `yaml:"-"`
}

// Provider selects the cloud driver.
type Provider struct {
	Driver  string            `yaml:"driver"`  // "azure" or "inmem"
	Options map[string]string `yaml:"options"` // driver-specific options
}

// Templates locates the ARM template bundle.
type Templates struct {
	Dir            string `yaml:"dir"`
	TemplateFile   string `yaml:"templateFile"`   // default template.json
	ParametersFile string `yaml:"parametersFile"` // default parameters.json
}

// Retry configures retries around remote calls. Zero values take defaults.
type Retry struct {
	Attempts    int           `yaml:"attempts"`
	Delay       time.Duration `yaml:"delay"`
	MaxDelay    time.Duration `yaml:"maxDelay"`
	MaxDuration time.Duration `yaml:"maxDuration"`
}

// Logging mirrors logging.LogConfig.
type Logging struct {
	Format        string `yaml:"format"`
	Level         string `yaml:"level"`
	Output        string `yaml:"output"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retentionDays"`
}

// Server configures the serve command.
type Server struct {
	Listen         string        `yaml:"listen"`
	ReloadDebounce time.Duration `yaml:"reloadDebounce"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// Journal selects where create and delete operations are recorded.
type Journal struct {
	// DB is a db-url such as sqlite:./tmpclusterops.db. Empty keeps the
	// journal in memory for the lifetime of the process.
	DB string `yaml:"db"`
}
