package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/rss-digest/app/fsutil"
)

var (
	ErrDuplicateSource = errors.New("source already exists")
	ErrSourceNotFound  = errors.New("source not found")
	ErrInvalidSource   = errors.New("invalid source")
)

const DefaultSourceType = "rss"

// Registry holds the configured news sources backed by a single YAML file.
type Registry struct {
	path    string
	sources []Source
	mu      sync.RWMutex
}

func NewRegistry(path string) *Registry {
	return &Registry{
		path:    path,
		sources: make([]Source, 0),
	}
}

func (r *Registry) Path() string {
	return r.path
}

// Load replaces the in-memory sources with the file contents. A missing file
// yields an empty registry.
func (r *Registry) Load() error {
	sources, err := r.parseFile()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.sources = sources
	r.mu.Unlock()

	slog.Debug("Source registry loaded", "path", r.path, "count", len(sources))

	return nil
}

func (r *Registry) Sources() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sourcesCopy := make([]Source, len(r.sources))
	copy(sourcesCopy, r.sources)
	return sourcesCopy
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

// Save validates and persists sources, replacing the whole file.
func (r *Registry) Save(sources []Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(sources)
}

// Add appends a source, rejecting duplicate names or URLs.
func (r *Registry) Add(source Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sources {
		if existing.Name == source.Name {
			return fmt.Errorf("%w: name %q", ErrDuplicateSource, source.Name)
		}
		if existing.URL == source.URL {
			return fmt.Errorf("%w: url %q", ErrDuplicateSource, source.URL)
		}
	}

	updated := make([]Source, 0, len(r.sources)+1)
	updated = append(updated, r.sources...)
	updated = append(updated, source)

	return r.saveLocked(updated)
}

func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := make([]Source, 0, len(r.sources))
	for _, existing := range r.sources {
		if existing.Name != name {
			updated = append(updated, existing)
		}
	}

	if len(updated) == len(r.sources) {
		return fmt.Errorf("%w: %q", ErrSourceNotFound, name)
	}

	return r.saveLocked(updated)
}

// Watch reloads the registry whenever its file changes on disk. It blocks
// until ctx is cancelled.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(r.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := r.Load(); err != nil {
				slog.Warn("Failed to reload source registry", "path", r.path, "error", err)
				continue
			}
			slog.Info("Source registry reloaded", "path", r.path, "count", r.Count())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Source registry watcher error", "error", err)
		}
	}
}

func (r *Registry) saveLocked(sources []Source) error {
	normalized := make([]Source, 0, len(sources))
	for i, source := range sources {
		source = applyDefaults(source)
		if err := validateSource(source); err != nil {
			return fmt.Errorf("source at index %d: %w", i, err)
		}
		normalized = append(normalized, source)
	}

	data, err := yaml.Marshal(registryFile{Sources: normalized})
	if err != nil {
		return fmt.Errorf("failed to encode sources: %w", err)
	}

	if err := fsutil.WriteFileAtomic(r.path, data); err != nil {
		return fmt.Errorf("failed to write sources: %w", err)
	}

	r.sources = normalized

	return nil
}

func (r *Registry) parseFile() ([]Source, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return make([]Source, 0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	sources := make([]Source, 0, len(file.Sources))
	for i, source := range file.Sources {
		source = applyDefaults(source)
		if err := validateSource(source); err != nil {
			return nil, fmt.Errorf("invalid source at index %d in %s: %w", i, r.path, err)
		}
		sources = append(sources, source)
	}

	return sources, nil
}

func applyDefaults(source Source) Source {
	if source.Type == "" {
		source.Type = DefaultSourceType
	}
	return source
}

func validateSource(source Source) error {
	requiredFields := map[string]string{
		"name": source.Name,
		"url":  source.URL,
		"lang": source.Lang,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidSource, fieldName)
		}
	}

	if _, err := language.Parse(source.Lang); err != nil {
		return fmt.Errorf("%w: lang %q: %v", ErrInvalidSource, source.Lang, err)
	}

	return nil
}
