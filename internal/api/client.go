// Package api holds the resource accessors for the job board backend. Every method
// returns the backend envelope unchanged, or the gateway's transport error.
package api

import (
	"context"

	gateway "jobboard-portal/internal/common/http"
)

// Doer is the part of the gateway the accessors need.
type Doer interface {
	Do(ctx context.Context, req gateway.Request) (*gateway.Envelope, error)
}

// Client bundles all accessors over one Doer.
type Client struct {
	Jobs          *Jobs
	Applications  *Applications
	Subscriptions *Subscriptions
	Comments      *Comments
	Profile       *Profile
	Auth          *Auth
}

func NewClient(doer Doer) *Client {
	return &Client{
		Jobs:          &Jobs{doer: doer},
		Applications:  &Applications{doer: doer},
		Subscriptions: &Subscriptions{doer: doer},
		Comments:      &Comments{doer: doer},
		Profile:       &Profile{doer: doer},
		Auth:          &Auth{doer: doer},
	}
}
