package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kompox/tmpcluster/domain/model"
)

func rawSettings(region string) map[string]string {
	return map[string]string{
		model.SettingRegion:         region,
		model.SettingClientID:       "client-" + region,
		model.SettingClientSecret:   "secret",
		model.SettingAuthority:      "https://login.microsoftonline.com/tenant",
		model.SettingSubscriptionID: "sub",
		model.SettingUsername:       "admin",
		model.SettingPassword:       "pw",
	}
}

func writeBundle(t *testing.T, dir, template, parameters string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, DefaultTemplateFile), []byte(template), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, DefaultParametersFile), []byte(parameters), 0o644); err != nil {
		t.Fatal(err)
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	kinds []string
	errs  []error
}

func (r *recordingObserver) ObserveReload(kind string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
	r.errs = append(r.errs, err)
}

func TestStore_Empty(t *testing.T) {
	s := NewStore(nil)
	if s.Current() == nil {
		t.Fatal("Current() should never be nil")
	}
	if s.Current().Ready() {
		t.Error("empty store should not be ready")
	}
	if s.Settings() != nil || s.Templates() != nil {
		t.Error("empty store should have no halves")
	}
}

func TestStore_Rebuild(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	s := NewStore(obs)

	var seen []uint64
	s.Subscribe(func(snap *model.Snapshot) { seen = append(seen, snap.Generation) })

	if _, err := s.RebuildSettings(ctx, rawSettings("japaneast")); err != nil {
		t.Fatalf("RebuildSettings: %v", err)
	}
	dir := t.TempDir()
	writeBundle(t, dir, `{"resources": []}`, `{"parameters": {"p": {"value": _PORT1_}}}`)
	snap, err := s.RebuildTemplates(ctx, TemplateFiles{Dir: dir})
	if err != nil {
		t.Fatalf("RebuildTemplates: %v", err)
	}
	if !snap.Ready() || snap.Generation != 2 {
		t.Errorf("unexpected snapshot: ready=%v generation=%d", snap.Ready(), snap.Generation)
	}
	if snap.Templates.Source != dir || snap.Settings.Region != "japaneast" {
		t.Errorf("unexpected contents: %+v", snap)
	}
	if fmt.Sprint(seen) != "[1 2]" {
		t.Errorf("subscriber saw %v", seen)
	}

	// A failed rebuild keeps the previous snapshot.
	bad := rawSettings("westus")
	delete(bad, model.SettingPassword)
	if _, err := s.RebuildSettings(ctx, bad); !errors.Is(err, model.ErrSettingsInvalid) {
		t.Fatalf("expected ErrSettingsInvalid, got %v", err)
	}
	if s.Current() != snap {
		t.Error("failed rebuild replaced the snapshot")
	}
	if len(obs.kinds) != 3 || obs.kinds[2] != KindSettings || obs.errs[2] == nil {
		t.Errorf("observer saw kinds=%v errs=%v", obs.kinds, obs.errs)
	}
}

func TestLoadTemplates_Errors(t *testing.T) {
	tests := []struct {
		name       string
		template   string
		parameters string
	}{
		{name: "template not json", template: `{`, parameters: `{}`},
		{name: "template not object", template: `[1]`, parameters: `{}`},
		{name: "template null", template: `null`, parameters: `{}`},
		{name: "empty parameters", template: `{}`, parameters: " \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeBundle(t, dir, tt.template, tt.parameters)
			if _, err := LoadTemplates(TemplateFiles{Dir: dir}); !errors.Is(err, model.ErrTemplatesInvalid) {
				t.Errorf("expected ErrTemplatesInvalid, got %v", err)
			}
		})
	}

	if _, err := LoadTemplates(TemplateFiles{Dir: t.TempDir()}); !errors.Is(err, model.ErrTemplatesInvalid) {
		t.Errorf("missing files: expected ErrTemplatesInvalid, got %v", err)
	}
}

func TestLoadTemplates_CustomNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "t.json"), []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "p.json"), []byte(`{"b":2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := LoadTemplates(TemplateFiles{Dir: dir, TemplateFile: "t.json", ParametersFile: "p.json"})
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	if b.Template != `{"a":1}` || b.Parameters != `{"b":2}` {
		t.Errorf("unexpected bundle: %+v", b)
	}
}

// Every generation pairs settings for region rN with templates tagged rN.
// Readers must never observe a mixture.
func TestStore_ConcurrentReplaceIsAtomic(t *testing.T) {
	s := NewStore(nil)
	pair := func(i int) (*model.OperatorSettings, *model.TemplateBundle) {
		tag := fmt.Sprintf("r%d", i)
		settings, err := model.NewOperatorSettings(rawSettings(tag))
		if err != nil {
			panic(err)
		}
		return settings, &model.TemplateBundle{Template: tag, Parameters: tag}
	}
	s.Replace(pair(0))

	const writers, perWriter, readers = 4, 200, 8
	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan error, readers)

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Current()
				if snap.Settings.Region != snap.Templates.Template {
					errs <- fmt.Errorf("mixed snapshot: settings %s templates %s", snap.Settings.Region, snap.Templates.Template)
					return
				}
			}
		}()
	}

	var ww sync.WaitGroup
	for w := 0; w < writers; w++ {
		ww.Add(1)
		go func(w int) {
			defer ww.Done()
			for i := 0; i < perWriter; i++ {
				s.Replace(pair(w*perWriter + i + 1))
			}
		}(w)
	}
	ww.Wait()
	close(stop)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if got := s.Current().Generation; got != writers*perWriter+1 {
		t.Errorf("Generation = %d, want %d", got, writers*perWriter+1)
	}
}
