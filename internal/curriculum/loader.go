// Package curriculum holds the module catalog types and a filesystem-backed
// catalog used when the curriculum service is not available (local
// development, demos).
package curriculum

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader loads and caches curriculum modules from YAML files, one module
// per file.
type Loader struct {
	rootDir string
	modules map[string]Module
	mu      sync.RWMutex
}

// NewLoader creates a new curriculum loader and loads all content.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir: rootDir,
		modules: make(map[string]Module),
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading curriculum: %w", err)
	}

	slog.Info("curriculum loaded", "path", rootDir, "modules", len(l.modules))
	return l, nil
}

// GetModule returns a module by ID or ErrNotFound.
func (l *Loader) GetModule(_ context.Context, id string) (Module, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.modules[id]
	if !ok {
		return Module{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m, nil
}

// ListModules returns all loaded modules sorted by id. Display order is the
// caller's concern.
func (l *Loader) ListModules(_ context.Context) ([]Module, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	modules := make([]Module, 0, len(l.modules))
	for _, m := range l.modules {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].ID < modules[j].ID })
	return modules, nil
}

func (l *Loader) loadAll() error {
	orders := make(map[int]string)
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == l.rootDir {
				return err
			}
			slog.Warn("skipping unreadable curriculum path", "path", path, "error", err)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return l.loadModule(path, orders)
	})
}

func (l *Loader) loadModule(path string, orders map[int]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var m Module
	if err := yaml.Unmarshal(data, &m); err != nil {
		slog.Warn("skipping invalid module YAML", "path", path, "error", err)
		return nil
	}

	if m.ID == "" {
		return nil // Not a module file
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.modules[m.ID]; dup {
		return fmt.Errorf("%s: duplicate module id %q", path, m.ID)
	}
	if other, dup := orders[m.Order]; dup {
		return fmt.Errorf("%s: module %q reuses order %d of %q", path, m.ID, m.Order, other)
	}
	orders[m.Order] = m.ID
	l.modules[m.ID] = m

	return nil
}
