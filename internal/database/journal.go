package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"EXAM_PROCTOR/go-backend/internal/models"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const defaultListLimit = 100

// Journal records every escalated or attempted alert frame.
type Journal struct {
	db *DB
}

func NewJournal(db *DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) Record(ctx context.Context, e models.AlertEvent) error {
	alerts, err := json.Marshal(e.Alerts)
	if err != nil {
		return fmt.Errorf("marshal alerts: %w", err)
	}

	var newScore sql.NullInt64
	if e.NewScore != nil {
		newScore = sql.NullInt64{Int64: int64(*e.NewScore), Valid: true}
	}

	_, err = j.db.ExecContext(ctx, j.rebind(`
		INSERT INTO alert_events
			(id, subject_id, exam_id, alerts, score_increment, escalated, auto_submitted, new_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.SubjectID, e.ExamID, string(alerts), e.ScoreIncrement,
		e.Escalated, e.AutoSubmitted, newScore, e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert alert event: %w", err)
	}
	return nil
}

// ListBySession returns the session's events, newest first.
func (j *Journal) ListBySession(ctx context.Context, subjectID, examID string, limit int) ([]models.AlertEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := j.db.QueryContext(ctx, j.rebind(`
		SELECT id, subject_id, exam_id, alerts, score_increment, escalated, auto_submitted, new_score, created_at
		FROM alert_events
		WHERE subject_id = ? AND exam_id = ?
		ORDER BY created_at DESC
		LIMIT ?`), subjectID, examID, limit)
	if err != nil {
		return nil, fmt.Errorf("query alert events: %w", err)
	}
	defer rows.Close()

	events := []models.AlertEvent{}
	for rows.Next() {
		var (
			e         models.AlertEvent
			alerts    string
			newScore  sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.SubjectID, &e.ExamID, &alerts, &e.ScoreIncrement,
			&e.Escalated, &e.AutoSubmitted, &newScore, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alert event: %w", err)
		}
		if err := json.Unmarshal([]byte(alerts), &e.Alerts); err != nil {
			return nil, fmt.Errorf("decode alerts for %s: %w", e.ID, err)
		}
		if newScore.Valid {
			score := int(newScore.Int64)
			e.NewScore = &score
		}
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func (j *Journal) rebind(query string) string {
	if j.db.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
