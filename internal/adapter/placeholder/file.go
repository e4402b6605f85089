package placeholder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/county-resilience-service/internal/domain"
)

// File is the on-disk placeholder document.
//
//	counties:
//	  "37001":
//	    unemployment: 4.1
//	    cost_of_living: 93.2
//	    median_income: 61000
type File struct {
	Counties map[string]Entry `yaml:"counties"`
}

// Entry holds optional per-county values. Unset fields fall back to the
// synthetic values.
type Entry struct {
	Unemployment *float64 `yaml:"unemployment,omitempty"`
	CostOfLiving *float64 `yaml:"cost_of_living,omitempty"`
	MedianIncome *float64 `yaml:"median_income,omitempty"`
}

// LoadFile reads and validates a placeholder file. County keys may be FIPS
// codes or county names; they are resolved to FIPS, and two keys naming the
// same county are rejected.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read placeholder file: %w", err)
	}
	var raw File
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse placeholder file %s: %w", path, err)
	}

	f := &File{Counties: make(map[string]Entry, len(raw.Counties))}
	seen := make(map[string]string, len(raw.Counties))
	for _, key := range slices.Sorted(maps.Keys(raw.Counties)) {
		e := raw.Counties[key]
		c, err := domain.LookupCounty(key)
		if err != nil {
			return nil, fmt.Errorf("placeholder file %s: %w", path, err)
		}
		if prev, ok := seen[c.FIPS]; ok {
			return nil, fmt.Errorf("placeholder file %s: keys %q and %q both name county %s", path, prev, key, c.FIPS)
		}
		seen[c.FIPS] = key
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("placeholder file %s: county %s: %w", path, c.FIPS, err)
		}
		f.Counties[c.FIPS] = e
	}
	return f, nil
}

// WriteFile writes f as YAML.
func WriteFile(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal placeholder file: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write placeholder file: %w", err)
	}
	return nil
}

// SyntheticFile returns a File holding the synthetic values for every county.
func SyntheticFile() *File {
	f := &File{Counties: make(map[string]Entry)}
	for _, id := range domain.CountyIDs() {
		u, c := SyntheticValues(id)
		f.Counties[id] = Entry{Unemployment: &u, CostOfLiving: &c}
	}
	return f
}

func (e Entry) validate() error {
	for name, v := range map[string]*float64{
		"unemployment":   e.Unemployment,
		"cost_of_living": e.CostOfLiving,
		"median_income":  e.MedianIncome,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s is negative (%g)", domain.ErrInvalidValue, name, *v)
		}
	}
	return nil
}

// Factors returns the file's values layered over the synthetic ones. Income
// holds only the counties that set median_income.
func (f *File) Factors() domain.FactorSet {
	set := domain.FactorSet{
		Income:       make(domain.FactorValues),
		Unemployment: make(domain.FactorValues),
		CostOfLiving: make(domain.FactorValues),
	}
	for _, id := range domain.CountyIDs() {
		u, c := SyntheticValues(id)
		set.Unemployment[id] = u
		set.CostOfLiving[id] = c
	}
	for id, e := range f.Counties {
		if e.Unemployment != nil {
			set.Unemployment[id] = *e.Unemployment
		}
		if e.CostOfLiving != nil {
			set.CostOfLiving[id] = *e.CostOfLiving
		}
		if e.MedianIncome != nil {
			set.Income[id] = *e.MedianIncome
		}
	}
	return set
}

// FileProvider serves placeholder values from a YAML file, reloading it when
// the file changes on disk.
type FileProvider struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	factors domain.FactorSet
}

// NewFileProvider loads path and returns a provider over its contents.
func NewFileProvider(path string, logger *slog.Logger) (*FileProvider, error) {
	p := &FileProvider{path: path, logger: logger}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload re-reads the file. On error the previous values are kept.
func (p *FileProvider) Reload() error {
	f, err := LoadFile(p.path)
	if err != nil {
		return err
	}
	factors := f.Factors()

	p.mu.Lock()
	p.factors = factors
	p.mu.Unlock()

	p.logger.Info("placeholder values loaded", "path", p.path, "overrides", len(f.Counties))
	return nil
}

// Placeholders implements domain.PlaceholderProvider.
func (p *FileProvider) Placeholders(_ context.Context) (domain.FactorValues, domain.FactorValues, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.factors.Unemployment.Clone(), p.factors.CostOfLiving.Clone(), nil
}

// MedianIncome implements domain.IncomeProvider for offline use. Only
// counties with median_income set in the file are returned.
func (p *FileProvider) MedianIncome(_ context.Context) (domain.FactorValues, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.factors.Income) == 0 {
		return nil, fmt.Errorf("%s: %w: no median_income values", p.path, domain.ErrNoData)
	}
	return p.factors.Income.Clone(), nil
}

// Watch reloads the file whenever it is written, created, or renamed into
// place, then calls onChange. It blocks until ctx is cancelled.
func (p *FileProvider) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often replace the file rather than write it.
	if err := w.Add(filepath.Dir(p.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}
	target := filepath.Clean(p.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if err := p.Reload(); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue
				}
				p.logger.Warn("placeholder reload failed, keeping previous values", "path", p.path, "error", err)
				continue
			}
			if onChange != nil {
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("placeholder watcher error", "error", err)
		}
	}
}
