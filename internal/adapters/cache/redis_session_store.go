package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

// RedisSessionStore keeps session envelopes in Redis hashes. Individual field
// writes (CSRF rotation, activity touch) become visible to the next request
// without rewriting the whole envelope; the key TTL is a garbage-collection
// backstop behind the explicit idle check.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID uuid.UUID) string {
	return "census:session:" + sessionID.String()
}

func (s *RedisSessionStore) Put(ctx context.Context, session domain.Session, idleTTL time.Duration) error {
	key := sessionKey(session.SessionID)
	fields := map[string]any{
		"csrf_token":       session.CSRFToken,
		"ip_address":       session.IPAddress,
		"user_agent":       session.UserAgent,
		"created_at":       session.CreatedAt.Unix(),
		"last_activity_at": session.LastActivityAt.Unix(),
	}
	if session.AccountID != nil {
		fields["account_id"] = session.AccountID.String()
		fields["username"] = session.Username
	}
	if session.LoginAt != nil {
		fields["login_at"] = session.LoginAt.Unix()
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, fields)
		p.Expire(ctx, key, idleTTL)
		return nil
	})
	return err
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	data, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	session := domain.Session{
		SessionID: sessionID,
		CSRFToken: data["csrf_token"],
		IPAddress: data["ip_address"],
		UserAgent: data["user_agent"],
		Username:  data["username"],
	}
	if raw, ok := data["account_id"]; ok && raw != "" {
		if id, parseErr := uuid.Parse(raw); parseErr == nil {
			session.AccountID = &id
		}
	}
	session.CreatedAt = unixField(data, "created_at")
	session.LastActivityAt = unixField(data, "last_activity_at")
	if raw, ok := data["login_at"]; ok && raw != "" {
		t := unixField(data, "login_at")
		session.LoginAt = &t
	}
	return &session, nil
}

func (s *RedisSessionStore) SetCSRFToken(ctx context.Context, sessionID uuid.UUID, token string, idleTTL time.Duration) error {
	key := sessionKey(sessionID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "csrf_token", token)
		p.Expire(ctx, key, idleTTL)
		return nil
	})
	return err
}

func (s *RedisSessionStore) Touch(ctx context.Context, sessionID uuid.UUID, at time.Time, idleTTL time.Duration) error {
	key := sessionKey(sessionID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "last_activity_at", at.Unix())
		p.Expire(ctx, key, idleTTL)
		return nil
	})
	return err
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

func unixField(data map[string]string, field string) time.Time {
	if raw, ok := data[field]; ok && raw != "" {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return time.Unix(unix, 0).UTC()
		}
	}
	return time.Time{}
}
