package api

import (
	"context"
	"fmt"
	"net/http"

	gateway "jobboard-portal/internal/common/http"
)

type Subscriptions struct {
	doer Doer
}

// Methods lists the plans on offer.
func (s *Subscriptions) Methods(ctx context.Context) (*gateway.Envelope, error) {
	return s.doer.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Route:  "/subscription-methods",
		Path:   "/subscription-methods",
	})
}

func (s *Subscriptions) Apply(ctx context.Context, methodID int64) (*gateway.Envelope, error) {
	return s.doer.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Route:  "/subscription/apply/{id}",
		Path:   fmt.Sprintf("/subscription/apply/%d", methodID),
	})
}

func (s *Subscriptions) History(ctx context.Context) (*gateway.Envelope, error) {
	return s.doer.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Route:  "/subscription/history",
		Path:   "/subscription/history",
	})
}

// Current returns the user's active or pending subscription.
func (s *Subscriptions) Current(ctx context.Context) (*gateway.Envelope, error) {
	return s.doer.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Route:  "/subscription",
		Path:   "/subscription",
	})
}
