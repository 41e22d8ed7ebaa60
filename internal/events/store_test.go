package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grthilak-rl/vas-kernel/internal/events"
)

func TestStore_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := events.NewStore(db)
	evt := events.AIEvent{
		ID:        uuid.New(),
		CameraID:  "camA",
		ModelID:   "m1",
		Timestamp: time.Now(),
		CreatedAt: time.Now(),
	}

	mock.ExpectExec("INSERT INTO ai_events").WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Insert(context.Background(), evt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListByCamera(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := events.NewStore(db)
	id := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "camera_id", "model_id", "timestamp", "frame_id", "detections", "confidence", "metadata", "created_at",
	}).AddRow(id, "camA", "m1", now, nil, []byte(`[]`), nil, nil, now)

	mock.ExpectQuery("SELECT (.+) FROM ai_events").WillReturnRows(rows)

	got, err := store.ListByCamera(context.Background(), "camA", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "camA", got[0].CameraID)
}

func TestStore_ListByModel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := events.NewStore(db)
	rows := sqlmock.NewRows([]string{
		"id", "camera_id", "model_id", "timestamp", "frame_id", "detections", "confidence", "metadata", "created_at",
	})
	mock.ExpectQuery("SELECT (.+) FROM ai_events").WillReturnRows(rows)

	got, err := store.ListByModel(context.Background(), "m1", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
