package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"attestra/internal/domain"
)

// PostgresStore persists chain entries in PostgreSQL for deployments where
// the audit trail must survive restarts.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit table when missing. Entries are immutable
// rows; no update or delete statement exists anywhere in this package.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS audit_entries (
    entry_id        BIGINT PRIMARY KEY,
    ts              TIMESTAMPTZ NOT NULL,
    evaluation_id   TEXT NOT NULL,
    overall_status  TEXT NOT NULL,
    control_summary JSONB NOT NULL,
    policy_version  TEXT NOT NULL,
    evidence_hash   TEXT NOT NULL,
    entry_hash      TEXT NOT NULL,
    previous_hash   TEXT NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	summary, err := json.Marshal(entry.ControlSummary)
	if err != nil {
		return fmt.Errorf("marshal control summary: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO audit_entries
    (entry_id, ts, evaluation_id, overall_status, control_summary, policy_version, evidence_hash, entry_hash, previous_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.EntryID, entry.Timestamp, entry.EvaluationID, entry.OverallStatus,
		summary, entry.PolicyVersion, entry.EvidenceHash, entry.EntryHash, entry.PreviousHash,
	)
	if err != nil {
		return fmt.Errorf("append audit entry %d: %w", entry.EntryID, err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT entry_id, ts, evaluation_id, overall_status, control_summary, policy_version, evidence_hash, entry_hash, previous_hash
FROM audit_entries ORDER BY entry_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Last(ctx context.Context) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT entry_id, ts, evaluation_id, overall_status, control_summary, policy_version, evidence_hash, entry_hash, previous_hash
FROM audit_entries ORDER BY entry_id DESC LIMIT 1`)

	entry, err := scanEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	return entry, true, nil
}

func scanEntry(scan func(...any) error) (Entry, error) {
	var entry Entry
	var status string
	var summary []byte
	if err := scan(
		&entry.EntryID, &entry.Timestamp, &entry.EvaluationID, &status,
		&summary, &entry.PolicyVersion, &entry.EvidenceHash, &entry.EntryHash, &entry.PreviousHash,
	); err != nil {
		return Entry{}, err
	}
	entry.OverallStatus = domain.Status(status)
	if err := json.Unmarshal(summary, &entry.ControlSummary); err != nil {
		return Entry{}, fmt.Errorf("unmarshal control summary: %w", err)
	}
	return entry, nil
}
