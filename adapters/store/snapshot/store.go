// Package snapshot holds the operator settings and template bundle that every
// cluster operation reads. Both halves are published together through one
// atomic pointer so an operation always sees a coherent pair.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/logging"
)

const (
	DefaultTemplateFile   = "template.json"
	DefaultParametersFile = "parameters.json"
)

// Reload kinds reported to the ReloadObserver.
const (
	KindSettings  = "settings"
	KindTemplates = "templates"
)

// ReloadObserver is notified after every rebuild attempt.
type ReloadObserver interface {
	ObserveReload(kind string, err error)
}

// TemplateFiles locates the template bundle on disk.
type TemplateFiles struct {
	Dir            string
	TemplateFile   string
	ParametersFile string
}

// Paths returns the template and parameters file paths with defaults applied.
func (f TemplateFiles) Paths() (template, parameters string) {
	tf, pf := f.TemplateFile, f.ParametersFile
	if tf == "" {
		tf = DefaultTemplateFile
	}
	if pf == "" {
		pf = DefaultParametersFile
	}
	return filepath.Join(f.Dir, tf), filepath.Join(f.Dir, pf)
}

// Store is safe for concurrent use. Readers never block.
type Store struct {
	current  atomic.Pointer[model.Snapshot]
	observer ReloadObserver

	mu          sync.Mutex
	subscribers []func(*model.Snapshot)
}

// NewStore returns an empty store. observer may be nil.
func NewStore(observer ReloadObserver) *Store {
	s := &Store{observer: observer}
	s.current.Store(&model.Snapshot{})
	return s
}

// Current returns the published snapshot. Callers keep the returned pointer
// for the whole operation.
func (s *Store) Current() *model.Snapshot {
	return s.current.Load()
}

// Settings returns the current operator settings or nil.
func (s *Store) Settings() *model.OperatorSettings {
	return s.Current().Settings
}

// Templates returns the current template bundle or nil.
func (s *Store) Templates() *model.TemplateBundle {
	return s.Current().Templates
}

// Subscribe registers fn to run after each successful publish.
func (s *Store) Subscribe(fn func(*model.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// ReplaceSettings publishes a snapshot carrying settings and the current templates.
func (s *Store) ReplaceSettings(settings *model.OperatorSettings) *model.Snapshot {
	return s.publish(func(old *model.Snapshot) *model.Snapshot {
		return &model.Snapshot{Settings: settings, Templates: old.Templates, Generation: old.Generation + 1}
	})
}

// ReplaceTemplates publishes a snapshot carrying templates and the current settings.
func (s *Store) ReplaceTemplates(templates *model.TemplateBundle) *model.Snapshot {
	return s.publish(func(old *model.Snapshot) *model.Snapshot {
		return &model.Snapshot{Settings: old.Settings, Templates: templates, Generation: old.Generation + 1}
	})
}

// Replace publishes both halves at once.
func (s *Store) Replace(settings *model.OperatorSettings, templates *model.TemplateBundle) *model.Snapshot {
	return s.publish(func(old *model.Snapshot) *model.Snapshot {
		return &model.Snapshot{Settings: settings, Templates: templates, Generation: old.Generation + 1}
	})
}

func (s *Store) publish(next func(old *model.Snapshot) *model.Snapshot) *model.Snapshot {
	for {
		old := s.current.Load()
		n := next(old)
		if s.current.CompareAndSwap(old, n) {
			s.notify(n)
			return n
		}
	}
}

func (s *Store) notify(snap *model.Snapshot) {
	s.mu.Lock()
	subs := append([]func(*model.Snapshot){}, s.subscribers...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// RebuildSettings constructs settings from raw named values and publishes them.
// The previous snapshot stays in place on error.
func (s *Store) RebuildSettings(ctx context.Context, raw map[string]string) (snap *model.Snapshot, err error) {
	ctx, cleanup := logging.Span(ctx, "SNAPSHOT", "RebuildSettings")
	defer func() {
		cleanup(err)
		s.observe(KindSettings, err)
	}()
	settings, err := model.NewOperatorSettings(raw)
	if err != nil {
		return nil, err
	}
	snap = s.ReplaceSettings(settings)
	logging.FromContext(ctx).Info(ctx, "settings published", "generation", snap.Generation, "settings", settings)
	return snap, nil
}

// RebuildTemplates reads both template documents in one pass and publishes them.
// The previous snapshot stays in place on error.
func (s *Store) RebuildTemplates(ctx context.Context, files TemplateFiles) (snap *model.Snapshot, err error) {
	ctx, cleanup := logging.Span(ctx, "SNAPSHOT", "RebuildTemplates", "dir", files.Dir)
	defer func() {
		cleanup(err)
		s.observe(KindTemplates, err)
	}()
	bundle, err := LoadTemplates(files)
	if err != nil {
		return nil, err
	}
	snap = s.ReplaceTemplates(bundle)
	logging.FromContext(ctx).Info(ctx, "templates published", "generation", snap.Generation, "source", bundle.Source)
	return snap, nil
}

func (s *Store) observe(kind string, err error) {
	if s.observer != nil {
		s.observer.ObserveReload(kind, err)
	}
}

// LoadTemplates reads the template and parameter documents. The template must
// be a JSON object. The parameter document may hold bare placeholders, so it
// is only required to be non-empty until it is bound.
func LoadTemplates(files TemplateFiles) (*model.TemplateBundle, error) {
	tp, pp := files.Paths()
	template, err := readJSONObject(tp)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(pp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrTemplatesInvalid, err)
	}
	parameters := string(b)
	if strings.TrimSpace(parameters) == "" {
		return nil, fmt.Errorf("%w: %s is empty", model.ErrTemplatesInvalid, pp)
	}
	return &model.TemplateBundle{
		Template:   template,
		Parameters: parameters,
		Source:     files.Dir,
		LoadedAt:   time.Now().UTC(),
	}, nil
}

func readJSONObject(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrTemplatesInvalid, err)
	}
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return "", fmt.Errorf("%w: %s: %w", model.ErrTemplatesInvalid, path, err)
	}
	if obj == nil {
		return "", fmt.Errorf("%w: %s: not a JSON object", model.ErrTemplatesInvalid, path)
	}
	return string(b), nil
}
