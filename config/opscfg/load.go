package opscfg

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "tmpclusterops.yml"

// Load reads a YAML file from the given path and returns a deserialized Root.
// It performs no validation beyond YAML decoding; see Validate.
func Load(path string) (*Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var cfg Root
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.BaseDir = filepath.Dir(abs)
	return &cfg, nil
}

var envRefRE = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} references with environment values. Other dollar
// signs are kept so secrets may contain them.
func expandEnv(s string, lookup func(string) (string, bool)) string {
	return envRefRE.ReplaceAllStringFunc(s, func(ref string) string {
		v, _ := lookup(envRefRE.FindStringSubmatch(ref)[1])
		return v
	})
}
