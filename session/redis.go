package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldStyle         = "style"
	fieldEntitledUntil = "entitled_until"
	fieldProofRef      = "proof_ref"
	fieldAwaitingProof = "awaiting_proof"
)

type redisStore struct {
	client *redis.Client
}

// NewRedisStore keeps one hash per user keyed by telegram user id.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func sessionKey(userID int64) string {
	return "stylebot:session:" + strconv.FormatInt(userID, 10)
}

func (r *redisStore) field(ctx context.Context, userID int64, field string) (string, bool, error) {
	val, err := r.client.HGet(ctx, sessionKey(userID), field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session: hget %s: %w", field, err)
	}
	if val == "" {
		return "", false, nil
	}
	return val, true, nil
}

func (r *redisStore) setField(ctx context.Context, userID int64, field, value string) error {
	if err := r.client.HSet(ctx, sessionKey(userID), field, value).Err(); err != nil {
		return fmt.Errorf("session: hset %s: %w", field, err)
	}
	return nil
}

func (r *redisStore) delField(ctx context.Context, userID int64, field string) error {
	if err := r.client.HDel(ctx, sessionKey(userID), field).Err(); err != nil {
		return fmt.Errorf("session: hdel %s: %w", field, err)
	}
	return nil
}

func (r *redisStore) Style(ctx context.Context, userID int64) (string, bool, error) {
	return r.field(ctx, userID, fieldStyle)
}

func (r *redisStore) SetStyle(ctx context.Context, userID int64, style string) error {
	return r.setField(ctx, userID, fieldStyle, style)
}

func (r *redisStore) ClearStyle(ctx context.Context, userID int64) error {
	return r.delField(ctx, userID, fieldStyle)
}

func (r *redisStore) GrantEntitlement(ctx context.Context, userID int64, d time.Duration) error {
	until := time.Now().Add(d).UnixNano()
	return r.setField(ctx, userID, fieldEntitledUntil, strconv.FormatInt(until, 10))
}

func (r *redisStore) IsEntitled(ctx context.Context, userID int64, now time.Time) (bool, error) {
	raw, ok, err := r.field(ctx, userID, fieldEntitledUntil)
	if err != nil || !ok {
		return false, err
	}
	until, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("session: bad entitlement value %q: %w", raw, err)
	}
	if !time.Unix(0, until).After(now) {
		_ = r.delField(ctx, userID, fieldEntitledUntil)
		return false, nil
	}
	return true, nil
}

func (r *redisStore) RecordProof(ctx context.Context, userID int64, fileRef string) error {
	return r.setField(ctx, userID, fieldProofRef, fileRef)
}

func (r *redisStore) PendingProof(ctx context.Context, userID int64) (string, bool, error) {
	return r.field(ctx, userID, fieldProofRef)
}

func (r *redisStore) SetAwaitingProof(ctx context.Context, userID int64, awaiting bool) error {
	if !awaiting {
		return r.delField(ctx, userID, fieldAwaitingProof)
	}
	return r.setField(ctx, userID, fieldAwaitingProof, "1")
}

func (r *redisStore) AwaitingProof(ctx context.Context, userID int64) (bool, error) {
	val, ok, err := r.field(ctx, userID, fieldAwaitingProof)
	if err != nil || !ok {
		return false, err
	}
	return val == "1", nil
}
