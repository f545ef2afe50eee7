package api

import (
	"context"
	"fmt"
	"net/http"

	gateway "jobboard-portal/internal/common/http"
)

type Comments struct {
	doer Doer
}

func (c *Comments) List(ctx context.Context, jobID int64) (*gateway.Envelope, error) {
	return c.doer.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Route:  "/jobs/{id}/comments",
		Path:   fmt.Sprintf("/jobs/%d/comments", jobID),
	})
}

func (c *Comments) Create(ctx context.Context, jobID int64, text string) (*gateway.Envelope, error) {
	return c.doer.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Route:  "/jobs/{id}/comments",
		Path:   fmt.Sprintf("/jobs/%d/comments", jobID),
		Body:   map[string]string{"text": text},
	})
}

func (c *Comments) Delete(ctx context.Context, commentID int64) (*gateway.Envelope, error) {
	return c.doer.Do(ctx, gateway.Request{
		Method: http.MethodDelete,
		Route:  "/comments/{id}",
		Path:   fmt.Sprintf("/comments/%d", commentID),
	})
}
