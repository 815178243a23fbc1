package opscfg

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/logging"
)

// SupportedVersion is the only accepted schema version.
const SupportedVersion = "v1"

var journalSchemes = []string{"sqlite:", "sqlite3:"}

// Validate performs semantic validation on the configuration tree.
// Settings values are not required here since they may come from the environment.
func (r *Root) Validate() error {
	if r.Version != SupportedVersion {
		return fmt.Errorf("version: unsupported %q, want %q", r.Version, SupportedVersion)
	}
	if strings.TrimSpace(r.Provider.Driver) == "" {
		return fmt.Errorf("provider.driver: required")
	}
	for k := range r.Settings {
		if !slices.Contains(model.SettingNames, k) {
			return fmt.Errorf("settings.%s: unknown setting (known: %s)", k, strings.Join(model.SettingNames, ", "))
		}
	}
	if strings.TrimSpace(r.Templates.Dir) == "" {
		return fmt.Errorf("templates.dir: required")
	}
	if err := r.RetryPolicy().Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if _, err := logging.ParseLevel(r.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(r.Logging.Format) {
	case "", "human", "text", "json":
	default:
		return fmt.Errorf("logging.format: unsupported %q", r.Logging.Format)
	}
	if r.Logging.RetentionDays < 0 {
		return fmt.Errorf("logging.retentionDays: must not be negative")
	}
	if r.Server.ReloadDebounce < 0 || r.Server.RequestTimeout < 0 {
		return fmt.Errorf("server: durations must not be negative")
	}
	if db := r.Journal.DB; db != "" && !slices.ContainsFunc(journalSchemes, func(s string) bool { return strings.HasPrefix(db, s) }) {
		return fmt.Errorf("journal.db: unsupported db-url %q (want sqlite:<path>)", db)
	}
	return nil
}
