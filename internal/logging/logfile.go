package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FilePrefix is the name prefix of generated log files.
const FilePrefix = "tmpclusterops-"

// LogConfig holds configuration for log output.
type LogConfig struct {
	Format        string // "human" (default), "text" or "json"
	Level         string // "DEBUG", "INFO" (default), "WARN", "ERROR"
	Output        string // Path, "-" for stderr (default), "none" to disable, "auto" for a generated file in Dir
	Dir           string // Directory for generated or relative log files
	RetentionDays int    // Days to retain generated log files (0 keeps everything)
}

// LogFile manages a log output lifecycle.
type LogFile struct {
	Path   string // Full path to the log file (empty for stderr or disabled)
	file   *os.File
	writer io.Writer
}

// NewLogFile opens the output described by cfg.
//
// Output behavior:
//   - empty or "-": os.Stderr
//   - "none": io.Discard
//   - "auto": generated file name in Dir
//   - path: absolute, or relative to Dir
func NewLogFile(cfg *LogConfig) (*LogFile, error) {
	lf := &LogFile{}
	switch out := strings.ToLower(cfg.Output); out {
	case "none":
		lf.writer = io.Discard
		return lf, nil
	case "", "-":
		lf.writer = os.Stderr
		return lf, nil
	case "auto":
		lf.Path = filepath.Join(cfg.Dir, GenerateLogFilename(time.Now().UTC()))
	default:
		if filepath.IsAbs(cfg.Output) {
			lf.Path = cfg.Output
		} else {
			lf.Path = filepath.Join(cfg.Dir, cfg.Output)
		}
	}

	dir := filepath.Dir(lf.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %q: %w", dir, err)
	}
	f, err := os.OpenFile(lf.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", lf.Path, err)
	}
	lf.file = f
	lf.writer = f
	return lf, nil
}

// Writer returns the io.Writer for log output.
func (lf *LogFile) Writer() io.Writer {
	return lf.writer
}

// Close closes the log file if one was opened.
func (lf *LogFile) Close() error {
	if lf.file != nil {
		return lf.file.Close()
	}
	return nil
}

// GenerateLogFilename returns tmpclusterops-YYYYMMDD-HHMMSS-sss.log for t (UTC).
func GenerateLogFilename(t time.Time) string {
	return fmt.Sprintf("%s%s-%03d.log", FilePrefix, t.Format("20060102-150405"), t.Nanosecond()/1_000_000)
}

// CleanupOldLogFiles removes generated log files older than retentionDays from dir.
func CleanupOldLogFiles(dir string, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading log directory %q: %w", dir, err)
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		// Removal failures are ignored; the next run retries.
		_ = os.Remove(filepath.Join(dir, name))
	}
	return nil
}
