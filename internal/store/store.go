package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/models"
)

var ErrNotFound = errors.New("not found")

// Store is the Postgres shot and outcome ledger.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func intArray(ids []int) pq.Int64Array {
	out := make(pq.Int64Array, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

// CreateSession inserts an ACTIVE session row. Re-inserting an id is a no-op.
func (s *Store) CreateSession(ctx context.Context, id string, createdAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO billiards_sessions (id, status, created_at) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
		id, models.SessionActive, createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", id, err)
	}
	return nil
}

// InsertShot appends a shot and bumps the session's shot count in one transaction.
func (s *Store) InsertShot(ctx context.Context, sessionID string, shot game.ShotRecord) error {
	data, err := json.Marshal(shot)
	if err != nil {
		return fmt.Errorf("marshal shot: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO billiards_shots (session_id, shot_number, angle, force, potted, scratch, steps, shot_data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, NOW())
		 ON CONFLICT (session_id, shot_number) DO NOTHING`,
		sessionID, shot.Number, shot.Angle, shot.Force, intArray(shot.Potted), shot.Scratch, shot.Steps, string(data),
	)
	if err != nil {
		return fmt.Errorf("insert shot %d for %s: %w", shot.Number, sessionID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE billiards_sessions SET shot_count = shot_count + 1 WHERE id = $1`, sessionID); err != nil {
			return fmt.Errorf("bump shot count for %s: %w", sessionID, err)
		}
	}
	return tx.Commit()
}

// CompleteSession records the final outcome. A session that ended without a
// win or loss is marked ABANDONED.
func (s *Store) CompleteSession(ctx context.Context, id string, outcome game.Outcome, potted []int) error {
	status := models.SessionAbandoned
	if outcome.Terminal() {
		status = models.SessionCompleted
	}
	state := outcome.State
	if state == "" {
		state = game.OutcomeNone
	}
	var reason sql.NullString
	if outcome.Reason != "" {
		reason = sql.NullString{String: outcome.Reason, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE billiards_sessions
		 SET status = $2, outcome = $3, reason = $4, potted = $5, completed_at = NOW()
		 WHERE id = $1 AND completed_at IS NULL`,
		id, status, string(state), reason, intArray(potted),
	)
	if err != nil {
		return fmt.Errorf("complete session %s: %w", id, err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.BilliardsSession, error) {
	var sess models.BilliardsSession
	err := s.db.GetContext(ctx, &sess, `SELECT id, status, outcome, reason, potted, shot_count, created_at, completed_at FROM billiards_sessions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// ListShots returns a session's shots in shot order.
func (s *Store) ListShots(ctx context.Context, sessionID string) ([]models.BilliardsShot, error) {
	shots := []models.BilliardsShot{}
	err := s.db.SelectContext(ctx, &shots,
		`SELECT id, session_id, shot_number, angle, force, potted, scratch, steps, shot_data, created_at
		 FROM billiards_shots WHERE session_id = $1 ORDER BY shot_number`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	return shots, nil
}
