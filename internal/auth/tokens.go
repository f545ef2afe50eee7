package auth

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	perrors "jobboard-portal/internal/common/errors"
)

const (
	fieldToken = "token"
	fieldFlash = "flash"
)

// TokenStore keeps per-browser-session state in a redis hash keyed by session id.
// Every write and every successful token read extends the hash's TTL.
type TokenStore struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewTokenStore(rdb redis.Cmdable, prefix string, ttl time.Duration) *TokenStore {
	return &TokenStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *TokenStore) key(sid string) string {
	return s.prefix + "session:" + sid
}

// Token returns the session's token, or "" when the session has none.
func (s *TokenStore) Token(ctx context.Context, sid string) (string, error) {
	token, err := s.rdb.HGet(ctx, s.key(sid), fieldToken).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", perrors.NewSessionStorageError("token", err)
	}
	if err := s.rdb.Expire(ctx, s.key(sid), s.ttl).Err(); err != nil {
		return "", perrors.NewSessionStorageError("token_refresh", err)
	}
	return token, nil
}

func (s *TokenStore) SetToken(ctx context.Context, sid, token string) error {
	return s.set(ctx, sid, fieldToken, token, "set_token")
}

// Clear removes everything stored for the session.
func (s *TokenStore) Clear(ctx context.Context, sid string) error {
	if err := s.rdb.Del(ctx, s.key(sid)).Err(); err != nil {
		return perrors.NewSessionStorageError("clear", err)
	}
	return nil
}

// SetFlash stores a one-shot banner message shown on the next page render.
func (s *TokenStore) SetFlash(ctx context.Context, sid, message string) error {
	return s.set(ctx, sid, fieldFlash, message, "set_flash")
}

// PopFlash returns and removes the pending banner message, if any.
func (s *TokenStore) PopFlash(ctx context.Context, sid string) (string, error) {
	msg, err := s.rdb.HGet(ctx, s.key(sid), fieldFlash).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", perrors.NewSessionStorageError("pop_flash", err)
	}
	if err := s.rdb.HDel(ctx, s.key(sid), fieldFlash).Err(); err != nil {
		return "", perrors.NewSessionStorageError("pop_flash", err)
	}
	return msg, nil
}

func (s *TokenStore) set(ctx context.Context, sid, field, value, operation string) error {
	key := s.key(sid)
	if err := s.rdb.HSet(ctx, key, field, value).Err(); err != nil {
		return perrors.NewSessionStorageError(operation, err)
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return perrors.NewSessionStorageError(operation, err)
	}
	return nil
}
