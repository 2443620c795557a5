package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"sentinel-hq/sentinel/pkg/policy"
	"sentinel-hq/sentinel/pkg/policy/engine"
)

// ErrNotFound indicates no audit record exists for the given id.
var ErrNotFound = errors.New("audit record not found")

// Record is one persisted evaluation.
type Record struct {
	// EvaluationID is the engine-assigned id of the run.
	EvaluationID string

	// PolicyID and PolicyName identify the evaluated policy.
	PolicyID   string
	PolicyName string

	// Status is the run's terminal status.
	Status string

	// Passed is the combined verdict.
	Passed bool

	// UserID and Organization come from the caller's evaluation context.
	UserID       string
	Organization string

	// Result is the full EvaluationResult, decoded from the stored JSON.
	Result *engine.EvaluationResult

	// CreatedAt is when the record was written.
	CreatedAt time.Time
}

// Store is a SQLite-backed audit store. It uses WAL mode for concurrent
// reads during writes and prepared statements on the hot paths.
type Store struct {
	db *sql.DB

	saveStmt *sql.Stmt
	getStmt  *sql.Stmt
	listStmt *sql.Stmt
}

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	evaluation_id TEXT PRIMARY KEY,
	policy_id     TEXT NOT NULL,
	policy_name   TEXT NOT NULL,
	status        TEXT NOT NULL,
	passed        INTEGER NOT NULL,
	user_id       TEXT NOT NULL DEFAULT '',
	organization  TEXT NOT NULL DEFAULT '',
	result        TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_evaluations_policy ON evaluations(policy_id, created_at);
CREATE INDEX IF NOT EXISTS idx_evaluations_created ON evaluations(created_at);
`

// NewStore opens (creating if needed) the audit database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// prepare compiles the hot-path statements.
func (s *Store) prepare() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO evaluations
			(evaluation_id, policy_id, policy_name, status, passed, user_id, organization, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.getStmt, err = s.db.Prepare(`
		SELECT evaluation_id, policy_id, policy_name, status, passed, user_id, organization, result, created_at
		FROM evaluations WHERE evaluation_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT evaluation_id, policy_id, policy_name, status, passed, user_id, organization, result, created_at
		FROM evaluations WHERE policy_id = ?
		ORDER BY created_at DESC LIMIT ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	return nil
}

// Save persists one evaluation result. pctx may be nil.
func (s *Store) Save(ctx context.Context, result *engine.EvaluationResult, pctx *policy.Context) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation result: %w", err)
	}

	var userID, org string
	if pctx != nil {
		userID = pctx.UserID
		org = pctx.Organization
	}

	_, err = s.saveStmt.ExecContext(ctx,
		result.EvaluationID,
		result.PolicyID,
		result.PolicyName,
		string(result.Status),
		result.Passed,
		userID,
		org,
		string(payload),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit record: %w", err)
	}
	return nil
}

// Get returns the record for one evaluation id.
func (s *Store) Get(ctx context.Context, evaluationID string) (*Record, error) {
	row := s.getStmt.QueryRowContext(ctx, evaluationID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListByPolicy returns up to limit most recent records for a policy.
func (s *Store) ListByPolicy(ctx context.Context, policyID string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.listStmt.QueryContext(ctx, policyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}
	return n, nil
}

// DeleteOlderThan removes records created before cutoff and reports how
// many were deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM evaluations WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit records: %w", err)
	}
	return res.RowsAffected()
}

// DeleteOverCap removes the oldest records beyond maxRecords and reports
// how many were deleted. A cap of 0 or less is a no-op.
func (s *Store) DeleteOverCap(ctx context.Context, maxRecords int) (int64, error) {
	if maxRecords <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM evaluations WHERE evaluation_id IN (
			SELECT evaluation_id FROM evaluations
			ORDER BY created_at DESC LIMIT -1 OFFSET ?
		)`, maxRecords)
	if err != nil {
		return 0, fmt.Errorf("failed to enforce audit record cap: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the prepared statements and the database handle.
func (s *Store) Close() error {
	for _, stmt := range []*sql.Stmt{s.saveStmt, s.getStmt, s.listStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var passed int
	var payload string

	err := row.Scan(
		&rec.EvaluationID,
		&rec.PolicyID,
		&rec.PolicyName,
		&rec.Status,
		&passed,
		&rec.UserID,
		&rec.Organization,
		&payload,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Passed = passed != 0

	var result engine.EvaluationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored evaluation result: %w", err)
	}
	rec.Result = &result

	return &rec, nil
}
