package api

import (
	"context"
	"net/http"

	gateway "jobboard-portal/internal/common/http"
	"jobboard-portal/internal/models"
)

type Profile struct {
	doer Doer
}

func (p *Profile) Get(ctx context.Context) (*gateway.Envelope, error) {
	return p.doer.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Route:  "/profile",
		Path:   "/profile",
	})
}

type Auth struct {
	doer Doer
}

// Login exchanges credentials for a bearer token. The token is not validated here.
func (a *Auth) Login(ctx context.Context, creds models.Credentials) (*gateway.Envelope, error) {
	return a.doer.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Route:  "/auth/login",
		Path:   "/auth/login",
		Body:   creds,
	})
}
