package upstream

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/learnflow/learnflow/internal/progress"
	"github.com/learnflow/learnflow/internal/struggle"
)

// GetProgress fetches a learner's progress report.
func (c *Client) GetProgress(ctx context.Context, userID string) (progress.Report, error) {
	op := "get progress"
	body, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		url:    c.endpoints.Progress + "/api/progress/" + url.PathEscape(userID),
		schema: "progress",
	})
	if err != nil {
		return progress.Report{}, err
	}

	var r progress.Report
	if err := decode(op, body, &r); err != nil {
		return progress.Report{}, err
	}
	if r.UserID == "" {
		r.UserID = userID
	}
	if err := r.Validate(); err != nil {
		return progress.Report{}, &SchemaError{Op: op, Detail: err.Error(), Err: err}
	}
	return r, nil
}

// ListStruggles fetches every unresolved struggle alert.
func (c *Client) ListStruggles(ctx context.Context) ([]struggle.Alert, error) {
	return c.struggles(ctx, "list struggles", c.endpoints.Progress+"/api/progress/struggles")
}

// ListUserStruggles fetches one learner's unresolved struggle alerts.
func (c *Client) ListUserStruggles(ctx context.Context, userID string) ([]struggle.Alert, error) {
	return c.struggles(ctx, "list user struggles", c.endpoints.Progress+"/api/progress/struggles/"+url.PathEscape(userID))
}

func (c *Client) struggles(ctx context.Context, op, u string) ([]struggle.Alert, error) {
	body, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		url:    u,
		schema: "alerts",
	})
	if err != nil {
		return nil, err
	}

	var alerts []struggle.Alert
	if err := decode(op, body, &alerts); err != nil {
		return nil, err
	}

	// One bad alert must not hide the rest from instructors.
	valid := alerts[:0]
	for _, a := range alerts {
		if err := a.Validate(); err != nil {
			slog.Warn("skipping invalid struggle alert", "op", op, "error", err)
			continue
		}
		valid = append(valid, a)
	}
	return valid, nil
}
