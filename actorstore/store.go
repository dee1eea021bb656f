package actorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "afs"

// Store is the Redis-backed reference implementation of [Client]. Sessions
// are routed across the shard clients by a stable hash of the session id,
// so a session always lands on the same shard.
type Store struct {
	shards []redis.UniversalClient
	prefix string
}

// NewStore builds a Store over one or more shard clients. An empty prefix
// takes the package default.
func NewStore(prefix string, shards ...redis.UniversalClient) (*Store, error) {
	if len(shards) == 0 {
		return nil, errors.New("actorstore: at least one shard client required")
	}
	for i, shard := range shards {
		if shard == nil {
			return nil, fmt.Errorf("actorstore: shard %d is nil", i)
		}
	}
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Store{shards: shards, prefix: prefix}, nil
}

func (s *Store) shardFor(sessionID string) redis.UniversalClient {
	if len(s.shards) == 1 {
		return s.shards[0]
	}
	return s.shards[xxhash.Sum64String(sessionID)%uint64(len(s.shards))]
}

func (s *Store) sessionKey(sessionID string) string {
	return s.prefix + ":s:" + sessionID
}

func (s *Store) resultKey(sessionID, requestID string) string {
	return s.prefix + ":r:" + sessionID + ":" + requestID
}

// Init creates the session record. Colliding with a live session id is an
// error; session ids are generated, not caller-chosen.
func (s *Store) Init(ctx context.Context, req InitRequest) (*Session, error) {
	now := time.Now()
	session := &Session{
		SessionID:     req.SessionID,
		FlowID:        req.FlowID,
		FlowType:      req.FlowType,
		TenantID:      req.TenantID,
		ClientID:      req.ClientID,
		CurrentNodeID: req.EntryNodeID,
		CollectedData: map[string]any{},
		OAuthParams:   req.OAuthParams,
		CreatedAt:     now,
		ExpiresAt:     now.Add(req.TTL),
	}

	encoded, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}

	ok, err := s.shardFor(req.SessionID).SetNX(ctx, s.sessionKey(req.SessionID), encoded, req.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		return nil, ErrSessionExists
	}
	return session, nil
}

// CheckRequest is the idempotency gate. A known request id returns the
// stored result; otherwise the live session is returned for processing.
func (s *Store) CheckRequest(ctx context.Context, sessionID, requestID string) (CheckOutcome, error) {
	shard := s.shardFor(sessionID)

	data, err := shard.Get(ctx, s.resultKey(sessionID, requestID)).Bytes()
	if err == nil {
		return CheckOutcome{Found: true, Result: data}, nil
	}
	if !errors.Is(err, redis.Nil) {
		return CheckOutcome{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	session, err := s.State(ctx, sessionID)
	if err != nil {
		return CheckOutcome{}, err
	}
	return CheckOutcome{Session: session}, nil
}

// State returns a read-only snapshot of the session.
func (s *Store) State(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.shardFor(sessionID).Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Submit persists the advanced session state and caches the computed result
// under the request id, both bounded by the session's remaining TTL.
func (s *Store) Submit(ctx context.Context, req SubmitRequest) error {
	session, err := s.State(ctx, req.SessionID)
	if err != nil {
		return err
	}

	session.CurrentNodeID = req.NextNodeID
	session.VisitedNodes = req.VisitedNodes
	session.CompletedCapabilities = req.CompletedCapabilities
	session.CollectedData = req.CollectedData
	session.RequestTimestamps = req.RequestTimestamps
	session.Completed = req.Completed

	encoded, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionNotFound
	}

	shard := s.shardFor(req.SessionID)
	pipe := shard.TxPipeline()
	pipe.Set(ctx, s.sessionKey(req.SessionID), encoded, ttl)
	if len(req.Result) > 0 && req.RequestID != "" {
		pipe.Set(ctx, s.resultKey(req.SessionID, req.RequestID), []byte(req.Result), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Cancel deletes the session. Deleting an already-gone session succeeds;
// cached results are left to expire with their TTL.
func (s *Store) Cancel(ctx context.Context, sessionID string) error {
	if err := s.shardFor(sessionID).Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
