// Package sessionstore caches completed questionnaires in a local
// SQLite database so past generations can be listed, shown, and
// exported without a backend round trip. It is a CLI convenience layer;
// the generation state machine never reads from it.
package sessionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"qgen/pkg/protocol"
)

// schemaDDL creates the questionnaires table. Controls are stored as a
// JSON column; the summary columns mirror the backend's session-listing
// shape so local listings look like remote ones.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS questionnaires (
	session_id         TEXT PRIMARY KEY,
	project_id         TEXT NOT NULL,
	assessment_id      TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL DEFAULT 'completed',
	total_controls     INTEGER NOT NULL,
	total_questions    INTEGER NOT NULL,
	generation_time_ms INTEGER NOT NULL,
	criteria_summary   TEXT NOT NULL DEFAULT '',
	controls           TEXT NOT NULL,
	created_at         TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
);
CREATE INDEX IF NOT EXISTS idx_questionnaires_project
	ON questionnaires(project_id, created_at DESC);
`

// ErrNotFound is returned when a session id is not in the cache.
var ErrNotFound = errors.New("session not found in local cache")

// Store is the local questionnaire cache.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path with
// production-safe SQLite defaults (WAL journal, busy timeout) and
// ensures the schema is applied.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode on %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout on %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces a completed questionnaire.
func (s *Store) Put(ctx context.Context, result *protocol.QuestionnaireComplete, projectID, assessmentID string) error {
	controls, err := json.Marshal(result.Controls)
	if err != nil {
		return fmt.Errorf("marshal controls: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO questionnaires
			(session_id, project_id, assessment_id, total_controls, total_questions,
			 generation_time_ms, criteria_summary, controls)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			project_id = excluded.project_id,
			assessment_id = excluded.assessment_id,
			total_controls = excluded.total_controls,
			total_questions = excluded.total_questions,
			generation_time_ms = excluded.generation_time_ms,
			criteria_summary = excluded.criteria_summary,
			controls = excluded.controls`,
		result.SessionID, projectID, assessmentID, result.TotalControls,
		result.TotalQuestions, result.GenerationTimeMs, result.CriteriaSummary,
		string(controls),
	)
	if err != nil {
		return fmt.Errorf("store questionnaire %s: %w", result.SessionID, err)
	}
	return nil
}

// Get returns one cached questionnaire by session id.
func (s *Store) Get(ctx context.Context, sessionID string) (*protocol.QuestionnaireComplete, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, total_controls, total_questions, generation_time_ms,
		        criteria_summary, controls
		 FROM questionnaires WHERE session_id = ?`, sessionID)

	var result protocol.QuestionnaireComplete
	var controls string
	err := row.Scan(&result.SessionID, &result.TotalControls, &result.TotalQuestions,
		&result.GenerationTimeMs, &result.CriteriaSummary, &controls)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load questionnaire %s: %w", sessionID, err)
	}
	if err := json.Unmarshal([]byte(controls), &result.Controls); err != nil {
		return nil, fmt.Errorf("decode controls for %s: %w", sessionID, err)
	}
	return &result, nil
}

// List returns summaries for a project, newest first. An empty
// projectID lists everything.
func (s *Store) List(ctx context.Context, projectID string) ([]protocol.SessionSummary, error) {
	query := `SELECT session_id, status, total_questions, total_controls, created_at, assessment_id
		  FROM questionnaires`
	args := []any{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questionnaires: %w", err)
	}
	defer rows.Close()

	var out []protocol.SessionSummary
	for rows.Next() {
		var sum protocol.SessionSummary
		if err := rows.Scan(&sum.ID, &sum.Status, &sum.TotalQuestions,
			&sum.TotalControls, &sum.CreatedAt, &sum.AssessmentID); err != nil {
			return nil, fmt.Errorf("scan questionnaire row: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questionnaires: %w", err)
	}
	return out, nil
}

// Delete removes one cached questionnaire. Deleting an unknown id is
// not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM questionnaires WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete questionnaire %s: %w", sessionID, err)
	}
	return nil
}
