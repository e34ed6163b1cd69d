// Package session implements cookie-based login sessions: a Redis-backed
// session record plus a signed cookie carrying {session_id, email, user_id}.
//
// Sessions are explicit values handed to the services; nothing in the
// request pipeline treats them as ambient state.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session is the authenticated identity bound to a request. A nil *Session
// means the caller is not logged in.
type Session struct {
	ID     string `json:"session_id"`
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

// Store persists session records in Redis. The record, not the cookie, is
// authoritative: destroying it revokes the session immediately even though
// the signed cookie has not expired.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a session store with the given record TTL.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return "sess:" + id
}

func userSessionsKey(userID uint) string {
	return fmt.Sprintf("sess:user:%d", userID)
}

// Create establishes a new session for the given identity.
func (s *Store) Create(ctx context.Context, userID uint, email string) (*Session, error) {
	sess := &Session{
		ID:     uuid.New().String(),
		UserID: userID,
		Email:  email,
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}

	if err := s.rdb.Set(ctx, sessionKey(sess.ID), payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	// Track the user's live sessions so self-delete can revoke them all.
	s.rdb.SAdd(ctx, userSessionsKey(userID), sess.ID)
	s.rdb.Expire(ctx, userSessionsKey(userID), s.ttl)

	return sess, nil
}

// Get returns the live session with the given id, or (nil, nil) when no such
// session exists.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Destroy removes a single session record. Destroying a missing session is a no-op.
func (s *Store) Destroy(ctx context.Context, sess *Session) error {
	if sess == nil {
		return nil
	}
	if err := s.rdb.Del(ctx, sessionKey(sess.ID)).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	s.rdb.SRem(ctx, userSessionsKey(sess.UserID), sess.ID)
	return nil
}

// DestroyAllForUser revokes every live session of the given user. Used on
// account deletion.
func (s *Store) DestroyAllForUser(ctx context.Context, userID uint) error {
	ids, err := s.rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("list user sessions: %w", err)
	}
	for _, id := range ids {
		if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
			return fmt.Errorf("destroy session %s: %w", id, err)
		}
	}
	return s.rdb.Del(ctx, userSessionsKey(userID)).Err()
}
