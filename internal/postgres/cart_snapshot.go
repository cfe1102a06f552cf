package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/whiffwear/internal/persistence"
	"github.com/jackc/pgx/v5"
)

// SnapshotStore keeps serialized carts in the cart_snapshots table, one row
// per session.
type SnapshotStore struct {
	db  DBTX
	ttl time.Duration
	now func() time.Time
}

// NewSnapshotStore creates a snapshot store. Rows expire ttl after their last
// write; a zero ttl keeps them until the session clears its cart.
func NewSnapshotStore(db DBTX, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{db: db, ttl: ttl, now: time.Now}
}

// Slot returns the snapshot slot of one session.
func (s *SnapshotStore) Slot(sessionID string) *SnapshotSlot {
	return &SnapshotSlot{store: s, sessionID: sessionID}
}

// DeleteExpired removes snapshots whose expiry has passed and returns how
// many were removed.
func (s *SnapshotStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM cart_snapshots
		WHERE expires_at IS NOT NULL AND expires_at <= $1`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired cart snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *SnapshotStore) expiresAt() *time.Time {
	if s.ttl <= 0 {
		return nil
	}
	t := s.now().UTC().Add(s.ttl)
	return &t
}

// SnapshotSlot is the persistence slot of a single session.
type SnapshotSlot struct {
	store     *SnapshotStore
	sessionID string
}

var _ persistence.Slot = (*SnapshotSlot)(nil)

// Read returns the stored payload unless it has expired.
func (s *SnapshotSlot) Read(ctx context.Context) (string, bool, error) {
	var payload string
	err := s.store.db.QueryRow(ctx, `SELECT payload
		FROM cart_snapshots
		WHERE session_id = $1 AND (expires_at IS NULL OR expires_at > $2)`,
		s.sessionID, s.store.now().UTC()).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read cart snapshot: %w", err)
	}
	return payload, true, nil
}

// Write upserts the session's payload and pushes its expiry forward.
func (s *SnapshotSlot) Write(ctx context.Context, value string) error {
	_, err := s.store.db.Exec(ctx, `INSERT INTO cart_snapshots (session_id, payload, updated_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE
		SET payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at`,
		s.sessionID, value, s.store.now().UTC(), s.store.expiresAt())
	if err != nil {
		return fmt.Errorf("write cart snapshot: %w", err)
	}
	return nil
}

// Clear deletes the session's row.
func (s *SnapshotSlot) Clear(ctx context.Context) error {
	if _, err := s.store.db.Exec(ctx, `DELETE FROM cart_snapshots WHERE session_id = $1`, s.sessionID); err != nil {
		return fmt.Errorf("clear cart snapshot: %w", err)
	}
	return nil
}
