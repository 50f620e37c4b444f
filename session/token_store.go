package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore keeps refresh tokens in Redis with a TTL, plus a per-user
// set so every session of a user can be revoked at once.
type TokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTokenStore(rdb *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{rdb: rdb, ttl: ttl}
}

// RefreshSession is the value stored under one refresh token.
type RefreshSession struct {
	UserID    string `json:"uid"`
	IsAdmin   bool   `json:"adm"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func key(token string) string      { return fmt.Sprintf("auth:refresh:%s", token) }
func userSetKey(uid string) string { return fmt.Sprintf("auth:user_tokens:%s", uid) }

func (s *TokenStore) Create(ctx context.Context, token, userID string, isAdmin bool) error {
	now := time.Now()
	b, _ := json.Marshal(RefreshSession{
		UserID:    userID,
		IsAdmin:   isAdmin,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(token), b, s.ttl)
	pipe.SAdd(ctx, userSetKey(userID), token)
	pipe.Expire(ctx, userSetKey(userID), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *TokenStore) Get(ctx context.Context, token string) (*RefreshSession, error) {
	b, err := s.rdb.Get(ctx, key(token)).Bytes()
	if err != nil {
		return nil, err
	}
	var rs RefreshSession
	if err := json.Unmarshal(b, &rs); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (s *TokenStore) Delete(ctx context.Context, token string) error {
	rs, _ := s.Get(ctx, token) // best effort
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(token))
	if rs != nil {
		pipe.SRem(ctx, userSetKey(rs.UserID), token)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Rotate atomically replaces old with a fresh token for the same user.
func (s *TokenStore) Rotate(ctx context.Context, oldToken, newToken string) (*RefreshSession, error) {
	rs, err := s.Get(ctx, oldToken)
	if err != nil {
		return nil, err
	}
	if err := s.Delete(ctx, oldToken); err != nil {
		return nil, err
	}
	if err := s.Create(ctx, newToken, rs.UserID, rs.IsAdmin); err != nil {
		return nil, err
	}
	return rs, nil
}

// RevokeAllForUser drops every refresh token of a user, e.g. when the
// account is deactivated.
func (s *TokenStore) RevokeAllForUser(ctx context.Context, userID string) error {
	tokens, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, key(t))
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
