package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/learnflow/learnflow/internal/curriculum"
)

// ListModules fetches the module catalog.
func (c *Client) ListModules(ctx context.Context) ([]curriculum.Module, error) {
	const op = "list modules"
	body, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		url:    c.endpoints.Curriculum + "/api/curriculum",
		schema: "modules",
	})
	if err != nil {
		return nil, err
	}

	var modules []curriculum.Module
	if err := decode(op, body, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// GetModule fetches one module. A missing module matches both ErrNotFound
// and curriculum.ErrNotFound.
func (c *Client) GetModule(ctx context.Context, id string) (curriculum.Module, error) {
	op := "get module " + id
	body, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		url:    c.endpoints.Curriculum + "/api/curriculum/" + url.PathEscape(id),
		schema: "module",
	})
	if errors.Is(err, ErrNotFound) {
		return curriculum.Module{}, fmt.Errorf("%w: %w", err, curriculum.ErrNotFound)
	}
	if err != nil {
		return curriculum.Module{}, err
	}

	var m curriculum.Module
	if err := decode(op, body, &m); err != nil {
		return curriculum.Module{}, err
	}
	return m, nil
}
