package auth

import (
	"context"
	"strings"

	"jobboard-portal/internal/api"
	perrors "jobboard-portal/internal/common/errors"
	gateway "jobboard-portal/internal/common/http"
	"jobboard-portal/internal/common/logger"
	"jobboard-portal/internal/models"
	"jobboard-portal/internal/session"
)

const msgLoginFailed = "invalid email or password"

// Service signs browser sessions in and out. Signing in is the authentication
// state change that triggers the session store's initial load.
type Service struct {
	auth   *api.Auth
	tokens *TokenStore
	stores *session.Registry
	logger logger.Logger
}

func NewService(auth *api.Auth, tokens *TokenStore, stores *session.Registry, log logger.Logger) *Service {
	return &Service{
		auth:   auth,
		tokens: tokens,
		stores: stores,
		logger: log.WithFields(map[string]interface{}{"component": "auth_service"}),
	}
}

// Login exchanges credentials for a token, stores it against sid and loads the
// session's store. A failed load is logged; the pages show it as an error state.
func (s *Service) Login(ctx context.Context, sid string, creds models.Credentials) error {
	env, err := s.auth.Login(ctx, models.Credentials{
		Email:    strings.TrimSpace(creds.Email),
		Password: creds.Password,
	})
	if err != nil {
		return perrors.Normalize(err)
	}
	if !env.Success {
		return perrors.NewBackendRejectedError(env.Message, msgLoginFailed)
	}

	var tok models.AuthToken
	if err := env.Decode(&tok); err != nil || tok.Token == "" {
		return perrors.NewShapeMismatchError("login", "response carries no token")
	}

	if err := s.tokens.SetToken(ctx, sid, tok.Token); err != nil {
		return err
	}

	s.stores.Drop(sid)
	store := s.stores.GetOrCreate(sid)
	if err := store.Load(gateway.WithToken(ctx, tok.Token)); err != nil {
		s.logger.Warn("initial load after login failed", map[string]interface{}{
			"errorCode": perrors.CodeOf(err),
		})
	}

	s.logger.Info("session signed in", map[string]interface{}{"sid": sid})
	return nil
}

// Logout forgets the token and drops the session's cached state.
func (s *Service) Logout(ctx context.Context, sid string) error {
	s.stores.Drop(sid)
	if err := s.tokens.Clear(ctx, sid); err != nil {
		return err
	}
	s.logger.Info("session signed out", map[string]interface{}{"sid": sid})
	return nil
}
