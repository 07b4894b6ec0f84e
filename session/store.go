// Package session tracks per-user dialog state: the selected style,
// time-boxed entitlements and the payment-proof flow.
package session

import (
	"context"
	"time"
)

// Store persists per-user session state. Implementations must be safe
// for concurrent use.
type Store interface {
	// Style returns the currently selected style id, if any.
	Style(ctx context.Context, userID int64) (string, bool, error)
	// SetStyle overwrites the selected style unconditionally.
	SetStyle(ctx context.Context, userID int64, style string) error
	// ClearStyle removes the selection. Clearing an absent selection is
	// not an error.
	ClearStyle(ctx context.Context, userID int64) error

	// GrantEntitlement sets the entitlement expiry to now+d, overwriting
	// any previous grant.
	GrantEntitlement(ctx context.Context, userID int64, d time.Duration) error
	// IsEntitled reports whether the stored expiry is after now.
	IsEntitled(ctx context.Context, userID int64, now time.Time) (bool, error)

	// RecordProof stores the latest payment-proof file reference,
	// replacing any prior one.
	RecordProof(ctx context.Context, userID int64, fileRef string) error
	// PendingProof returns the stored proof reference, if any.
	PendingProof(ctx context.Context, userID int64) (string, bool, error)

	// SetAwaitingProof toggles the flag that marks the next photo from
	// the user as a payment proof.
	SetAwaitingProof(ctx context.Context, userID int64, awaiting bool) error
	AwaitingProof(ctx context.Context, userID int64) (bool, error)
}
