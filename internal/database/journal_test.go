package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EXAM_PROCTOR/go-backend/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "whatever")
	assert.Error(t, err)
}

func TestOpen_MigratesTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='alert_events'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "alert_events", name)
}

func TestJournal_RecordAndList(t *testing.T) {
	j := NewJournal(openTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	score := 55

	require.NoError(t, j.Record(ctx, models.AlertEvent{
		ID:             "a",
		SubjectID:      "student-1",
		ExamID:         "quiz-1",
		Alerts:         []string{"No faces detected"},
		ScoreIncrement: 10,
		CreatedAt:      base,
	}))
	require.NoError(t, j.Record(ctx, models.AlertEvent{
		ID:             "b",
		SubjectID:      "student-1",
		ExamID:         "quiz-1",
		Alerts:         []string{"Multiple faces detected", "Suspicious object detected: cell phone"},
		ScoreIncrement: 35,
		Escalated:      true,
		AutoSubmitted:  true,
		NewScore:       &score,
		CreatedAt:      base.Add(1500 * time.Millisecond),
	}))
	require.NoError(t, j.Record(ctx, models.AlertEvent{
		ID:        "other",
		SubjectID: "student-2",
		ExamID:    "quiz-1",
		Alerts:    []string{"No faces detected"},
		CreatedAt: base,
	}))

	events, err := j.ListBySession(ctx, "student-1", "quiz-1", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)

	newest := events[0]
	assert.Equal(t, "b", newest.ID)
	assert.True(t, newest.Escalated)
	assert.True(t, newest.AutoSubmitted)
	require.NotNil(t, newest.NewScore)
	assert.Equal(t, 55, *newest.NewScore)
	assert.Equal(t, []string{"Multiple faces detected", "Suspicious object detected: cell phone"}, newest.Alerts)
	assert.True(t, base.Add(1500*time.Millisecond).Equal(newest.CreatedAt))

	oldest := events[1]
	assert.Equal(t, "a", oldest.ID)
	assert.False(t, oldest.Escalated)
	assert.Nil(t, oldest.NewScore)

	limited, err := j.ListBySession(ctx, "student-1", "quiz-1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestJournal_ListEmpty(t *testing.T) {
	j := NewJournal(openTestDB(t))

	events, err := j.ListBySession(context.Background(), "nobody", "quiz-1", 10)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestJournal_DuplicateID(t *testing.T) {
	j := NewJournal(openTestDB(t))
	e := models.AlertEvent{ID: "dup", SubjectID: "s", ExamID: "e", Alerts: []string{"x"}, CreatedAt: time.Now()}

	require.NoError(t, j.Record(context.Background(), e))
	assert.Error(t, j.Record(context.Background(), e))
}

func TestRebind(t *testing.T) {
	pg := &Journal{db: &DB{driver: DriverPostgres}}
	lite := &Journal{db: &DB{driver: DriverSQLite}}
	q := "SELECT * FROM t WHERE a = ? AND b = ? LIMIT ?"

	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2 LIMIT $3", pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}
