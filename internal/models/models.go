package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// BilliardsSession is one simulated game
type BilliardsSession struct {
	ID          string         `db:"id" json:"id"`
	Status      string         `db:"status" json:"status"`
	Outcome     string         `db:"outcome" json:"outcome"`
	Reason      sql.NullString `db:"reason" json:"reason,omitempty"`
	Potted      pq.Int64Array  `db:"potted" json:"potted"`
	ShotCount   int            `db:"shot_count" json:"shot_count"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	CompletedAt sql.NullTime   `db:"completed_at" json:"completed_at,omitempty"`
}

// BilliardsShot is a released shot and what it potted
type BilliardsShot struct {
	ID         int64          `db:"id" json:"id"`
	SessionID  string         `db:"session_id" json:"session_id"`
	ShotNumber int            `db:"shot_number" json:"shot_number"`
	Angle      float64        `db:"angle" json:"angle"`
	Force      float64        `db:"force" json:"force"`
	Potted     pq.Int64Array  `db:"potted" json:"potted"`
	Scratch    bool           `db:"scratch" json:"scratch"`
	Steps      int            `db:"steps" json:"steps"`
	ShotData   sql.NullString `db:"shot_data" json:"-"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// Session statuses
const (
	SessionActive    = "ACTIVE"
	SessionCompleted = "COMPLETED"
	SessionAbandoned = "ABANDONED"
)
