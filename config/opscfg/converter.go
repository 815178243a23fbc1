package opscfg

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kompox/tmpcluster/adapters/store/snapshot"
	"github.com/kompox/tmpcluster/internal/logging"
	"github.com/kompox/tmpcluster/internal/retry"
)

// Server defaults.
const (
	DefaultListen         = ":8080"
	DefaultReloadDebounce = 500 * time.Millisecond
	DefaultRequestTimeout = time.Minute
)

// RawSettings returns the settings map with ${NAME} references expanded from
// the process environment.
func (r *Root) RawSettings() map[string]string {
	return r.rawSettings(os.LookupEnv)
}

func (r *Root) rawSettings(lookup func(string) (string, bool)) map[string]string {
	out := make(map[string]string, len(r.Settings))
	for k, v := range r.Settings {
		out[k] = expandEnv(v, lookup)
	}
	return out
}

// TemplateFiles returns the template bundle location with Dir resolved
// against BaseDir.
func (r *Root) TemplateFiles() snapshot.TemplateFiles {
	return snapshot.TemplateFiles{
		Dir:            r.resolve(r.Templates.Dir),
		TemplateFile:   r.Templates.TemplateFile,
		ParametersFile: r.Templates.ParametersFile,
	}
}

// RetryPolicy returns the configured policy, filling unset fields with defaults.
func (r *Root) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	if r.Retry.Attempts != 0 {
		p.Attempts = r.Retry.Attempts
	}
	if r.Retry.Delay != 0 {
		p.Delay = r.Retry.Delay
	}
	if r.Retry.MaxDelay != 0 {
		p.MaxDelay = r.Retry.MaxDelay
	}
	if r.Retry.MaxDuration != 0 {
		p.MaxDuration = r.Retry.MaxDuration
	}
	return p
}

// LogConfig returns the logging configuration with Dir resolved against BaseDir.
func (r *Root) LogConfig() *logging.LogConfig {
	dir := r.Logging.Dir
	if dir != "" {
		dir = r.resolve(dir)
	}
	return &logging.LogConfig{
		Format:        r.Logging.Format,
		Level:         r.Logging.Level,
		Output:        r.Logging.Output,
		Dir:           dir,
		RetentionDays: r.Logging.RetentionDays,
	}
}

// ServerOptions returns the server configuration with defaults applied.
func (r *Root) ServerOptions() Server {
	s := r.Server
	if s.Listen == "" {
		s.Listen = DefaultListen
	}
	if s.ReloadDebounce == 0 {
		s.ReloadDebounce = DefaultReloadDebounce
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	return s
}

// JournalURL returns the journal db-url with a relative sqlite file path
// resolved against BaseDir. Empty means an in-memory journal.
func (r *Root) JournalURL() string {
	u := r.Journal.DB
	for _, scheme := range journalSchemes {
		dsn, ok := strings.CutPrefix(u, scheme)
		if !ok {
			continue
		}
		if dsn == "" || strings.HasPrefix(dsn, "file:") || strings.HasPrefix(dsn, ":memory:") {
			return u
		}
		return scheme + r.resolve(dsn)
	}
	return u
}

func (r *Root) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || r.BaseDir == "" {
		return p
	}
	return filepath.Join(r.BaseDir, p)
}
