package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	gateway "jobboard-portal/internal/common/http"
)

type Jobs struct {
	doer Doer
}

// List returns the job listing, optionally filtered by a free-text search.
func (j *Jobs) List(ctx context.Context, search string) (*gateway.Envelope, error) {
	var query url.Values
	if search != "" {
		query = url.Values{"search": []string{search}}
	}
	return j.doer.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Route:  "/jobs",
		Path:   "/jobs",
		Query:  query,
	})
}

func (j *Jobs) Get(ctx context.Context, id int64) (*gateway.Envelope, error) {
	return j.doer.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Route:  "/jobs/{id}",
		Path:   fmt.Sprintf("/jobs/%d", id),
	})
}

func (j *Jobs) Apply(ctx context.Context, id int64) (*gateway.Envelope, error) {
	return j.doer.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Route:  "/jobs/{id}/apply",
		Path:   fmt.Sprintf("/jobs/%d/apply", id),
	})
}

func (j *Jobs) CancelApply(ctx context.Context, id int64) (*gateway.Envelope, error) {
	return j.doer.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Route:  "/jobs/{id}/cancel-apply",
		Path:   fmt.Sprintf("/jobs/%d/cancel-apply", id),
	})
}
