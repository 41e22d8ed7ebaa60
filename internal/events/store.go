package events

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// DBTX abstracts *sql.DB/*sql.Tx, matching the teacher's data-layer
// interface so the store can be exercised against either a pooled
// connection or a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the insert-only AI event store: Insert plus two read paths.
// There is deliberately no Update or Delete.
type Store struct {
	DB DBTX
}

// NewStore builds a Store over db.
func NewStore(db DBTX) *Store {
	return &Store{DB: db}
}

// Insert writes an event, idempotently: a conflicting ID is a silent no-op
// rather than an error, matching the audit log's insert-then-ignore
// discipline.
func (s *Store) Insert(ctx context.Context, evt AIEvent) error {
	if evt.ID == uuid.Nil {
		evt.ID = uuid.New()
	}

	const query = `
		INSERT INTO ai_events (
			id, camera_id, model_id, timestamp, frame_id, detections, confidence, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.DB.ExecContext(ctx, query,
		evt.ID, evt.CameraID, evt.ModelID, evt.Timestamp, evt.FrameID,
		evt.Detections, evt.Confidence, evt.Metadata, evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ai_event: %w", err)
	}
	return nil
}

// ListByCamera returns up to limit events for a camera, newest first.
func (s *Store) ListByCamera(ctx context.Context, cameraID string, limit int) ([]AIEvent, error) {
	const query = `
		SELECT id, camera_id, model_id, timestamp, frame_id, detections, confidence, metadata, created_at
		FROM ai_events
		WHERE camera_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`
	rows, err := s.DB.QueryContext(ctx, query, cameraID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ai_events by camera: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListByModel returns up to limit events for a model, newest first.
func (s *Store) ListByModel(ctx context.Context, modelID string, limit int) ([]AIEvent, error) {
	const query = `
		SELECT id, camera_id, model_id, timestamp, frame_id, detections, confidence, metadata, created_at
		FROM ai_events
		WHERE model_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`
	rows, err := s.DB.QueryContext(ctx, query, modelID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ai_events by model: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]AIEvent, error) {
	var out []AIEvent
	for rows.Next() {
		var evt AIEvent
		if err := rows.Scan(
			&evt.ID, &evt.CameraID, &evt.ModelID, &evt.Timestamp, &evt.FrameID,
			&evt.Detections, &evt.Confidence, &evt.Metadata, &evt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ai_event: %w", err)
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}
