package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"deskctl/registry"
)

const schema = `
CREATE TABLE IF NOT EXISTS invocations (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    tool TEXT NOT NULL,
    payload_json TEXT NOT NULL,
    success INTEGER NOT NULL,
    error TEXT,
    duration_ns INTEGER NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invocations_tool ON invocations(tool);
`

// SQLiteJournal keeps invocations in a SQLite database
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens (creating if needed) the journal at dbPath
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) Record(inv registry.Invocation) error {
	payload, err := encodePayload(inv.Payload)
	if err != nil {
		return err
	}
	var errMsg *string
	if inv.Error != "" {
		errMsg = &inv.Error
	}
	_, err = j.db.Exec(
		`INSERT INTO invocations (id, tool, payload_json, success, error, duration_ns, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Tool, payload, inv.Success, errMsg, int64(inv.Duration), inv.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record invocation: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, tool, payload_json, success, error, duration_ns, created_at FROM invocations`

func (j *SQLiteJournal) List(tool string, limit, offset int) ([]registry.Invocation, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	var rows *sql.Rows
	var err error
	if tool == "" {
		rows, err = j.db.Query(selectColumns+` ORDER BY seq DESC LIMIT ? OFFSET ?`, limit, offset)
	} else {
		rows, err = j.db.Query(selectColumns+` WHERE tool = ? ORDER BY seq DESC LIMIT ? OFFSET ?`, tool, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list invocations: %w", err)
	}
	defer rows.Close()

	out := []registry.Invocation{}
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Get(id string) (*registry.Invocation, error) {
	row := j.db.QueryRow(selectColumns+` WHERE id = ?`, id)
	inv, err := scanInvocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get invocation %s: %w", id, ErrNotFound)
	}
	return inv, err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvocation(r rowScanner) (*registry.Invocation, error) {
	var inv registry.Invocation
	var payload string
	var errMsg sql.NullString
	var durationNs int64
	var createdAt time.Time

	if err := r.Scan(&inv.ID, &inv.Tool, &payload, &inv.Success, &errMsg, &durationNs, &createdAt); err != nil {
		return nil, err
	}
	p, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	inv.Payload = p
	inv.Error = errMsg.String
	inv.Duration = time.Duration(durationNs)
	inv.CreatedAt = createdAt.Local()
	return &inv, nil
}
