package api

import (
	"context"
	"fmt"
	"net/http"

	gateway "jobboard-portal/internal/common/http"
	"jobboard-portal/internal/models"
)

type Applications struct {
	doer Doer
}

// List returns the current user's applications.
func (a *Applications) List(ctx context.Context) (*gateway.Envelope, error) {
	return a.doer.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Route:  "/jobs/user-applied",
		Path:   "/jobs/user-applied",
	})
}

func (a *Applications) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*gateway.Envelope, error) {
	return a.doer.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Route:  "/jobs/user-applied/{id}",
		Path:   fmt.Sprintf("/jobs/user-applied/%d", id),
		Body:   map[string]models.ApplicationStatus{"status": status},
	})
}

func (a *Applications) Rate(ctx context.Context, id int64, rating models.Rating) (*gateway.Envelope, error) {
	return a.doer.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Route:  "/jobs/user-applied/rate/{id}",
		Path:   fmt.Sprintf("/jobs/user-applied/rate/%d", id),
		Body:   rating,
	})
}
