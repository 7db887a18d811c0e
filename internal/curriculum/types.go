package curriculum

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a module id is not in the catalog.
var ErrNotFound = errors.New("module not found")

// Module is one unit of the learning path. Modules are read-only here; the
// curriculum service owns them.
type Module struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Order          int      `json:"order" yaml:"order"`
	Topics         []string `json:"topics" yaml:"topics"`
	ExercisesCount int      `json:"exercises_count" yaml:"exercises_count"`
	Description    string   `json:"description" yaml:"description"`
}

// Validate checks the fields a module must carry.
func (m Module) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("module id is required")
	}
	if m.Name == "" {
		return fmt.Errorf("module %s: name is required", m.ID)
	}
	if m.ExercisesCount < 0 {
		return fmt.Errorf("module %s: exercises_count must be non-negative, got %d", m.ID, m.ExercisesCount)
	}
	return nil
}

// Catalog lists curriculum modules.
type Catalog interface {
	ListModules(ctx context.Context) ([]Module, error)
	GetModule(ctx context.Context, id string) (Module, error)
}
