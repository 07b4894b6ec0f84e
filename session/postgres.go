package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type postgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open connection pool. The sessions table is
// expected to exist; see migrations/.
func NewPostgresStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

const upsertColumn = `
INSERT INTO sessions (user_id, %[1]s, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id) DO UPDATE SET %[1]s = EXCLUDED.%[1]s, updated_at = NOW()`

func (p *postgresStore) setColumn(ctx context.Context, userID int64, column string, value any) error {
	query := fmt.Sprintf(upsertColumn, column)
	if _, err := p.db.ExecContext(ctx, query, userID, value); err != nil {
		return fmt.Errorf("session: update %s: %w", column, err)
	}
	return nil
}

func (p *postgresStore) Style(ctx context.Context, userID int64) (string, bool, error) {
	var style sql.NullString
	err := p.db.GetContext(ctx, &style, `SELECT style FROM sessions WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session: load style: %w", err)
	}
	if !style.Valid || style.String == "" {
		return "", false, nil
	}
	return style.String, true, nil
}

func (p *postgresStore) SetStyle(ctx context.Context, userID int64, style string) error {
	return p.setColumn(ctx, userID, "style", style)
}

func (p *postgresStore) ClearStyle(ctx context.Context, userID int64) error {
	return p.setColumn(ctx, userID, "style", nil)
}

func (p *postgresStore) GrantEntitlement(ctx context.Context, userID int64, d time.Duration) error {
	return p.setColumn(ctx, userID, "entitled_until", time.Now().Add(d))
}

func (p *postgresStore) IsEntitled(ctx context.Context, userID int64, now time.Time) (bool, error) {
	var until sql.NullTime
	err := p.db.GetContext(ctx, &until, `SELECT entitled_until FROM sessions WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session: load entitlement: %w", err)
	}
	return until.Valid && until.Time.After(now), nil
}

func (p *postgresStore) RecordProof(ctx context.Context, userID int64, fileRef string) error {
	return p.setColumn(ctx, userID, "proof_ref", fileRef)
}

func (p *postgresStore) PendingProof(ctx context.Context, userID int64) (string, bool, error) {
	var ref sql.NullString
	err := p.db.GetContext(ctx, &ref, `SELECT proof_ref FROM sessions WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session: load proof: %w", err)
	}
	if !ref.Valid || ref.String == "" {
		return "", false, nil
	}
	return ref.String, true, nil
}

func (p *postgresStore) SetAwaitingProof(ctx context.Context, userID int64, awaiting bool) error {
	return p.setColumn(ctx, userID, "awaiting_proof", awaiting)
}

func (p *postgresStore) AwaitingProof(ctx context.Context, userID int64) (bool, error) {
	var awaiting sql.NullBool
	err := p.db.GetContext(ctx, &awaiting, `SELECT awaiting_proof FROM sessions WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session: load awaiting flag: %w", err)
	}
	return awaiting.Valid && awaiting.Bool, nil
}
