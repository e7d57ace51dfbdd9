package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/randalmurphal/eventtap/pkg/eventtap/eventtype"
)

// SQLiteStore persists journal records to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite journal store.
// The path should be a file path (e.g., "./events.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Times are unix nanoseconds so range filters compare numerically.
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS dispatches (
			sequence INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			time_ns INTEGER NOT NULL,
			type INTEGER NOT NULL,
			source TEXT NOT NULL,
			suppressed INTEGER NOT NULL,
			suppressed_by TEXT NOT NULL,
			suppressed_form TEXT NOT NULL,
			enriched INTEGER NOT NULL,
			enrich_error TEXT NOT NULL,
			invoked INTEGER NOT NULL,
			panics INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_dispatches_time
		ON dispatches(time_ns)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

const recordColumns = `sequence, id, time_ns, type, source, suppressed, suppressed_by,
	suppressed_form, enriched, enrich_error, invoked, panics, duration_ns`

// Append implements Store.
func (s *SQLiteStore) Append(rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Time = rec.Time.UTC()

	// REPLACE deletes the conflicting row, so a re-appended ID gets a new
	// sequence at the end of the journal.
	res, err := s.db.Exec(`
		INSERT OR REPLACE INTO dispatches (id, time_ns, type, source, suppressed,
			suppressed_by, suppressed_form, enriched, enrich_error, invoked, panics, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Time.UnixNano(), uint32(rec.Type), rec.Source, rec.Suppressed,
		rec.SuppressedBy, rec.SuppressedForm, rec.Enriched, rec.EnrichError,
		rec.Invoked, rec.Panics, int64(rec.Duration))
	if err != nil {
		return Record{}, fmt.Errorf("append record: %w", err)
	}

	rec.Sequence, err = res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("read sequence: %w", err)
	}
	return rec, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	row := s.db.QueryRow(`SELECT `+recordColumns+` FROM dispatches WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// List implements Store.
func (s *SQLiteStore) List(q Query) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var (
		where []string
		args  []any
	)
	if len(q.Types) > 0 {
		marks := make([]string, len(q.Types))
		for i, t := range q.Types {
			marks[i] = "?"
			args = append(args, uint32(t))
		}
		where = append(where, "type IN ("+strings.Join(marks, ", ")+")")
	}
	if q.SuppressedOnly {
		where = append(where, "suppressed = 1")
	}
	if !q.Since.IsZero() {
		where = append(where, "time_ns >= ?")
		args = append(args, q.Since.UnixNano())
	}

	query := `SELECT ` + recordColumns + ` FROM dispatches`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if q.Limit > 0 {
		query = `SELECT * FROM (` + query + ` ORDER BY sequence DESC LIMIT ?) ORDER BY sequence`
		args = append(args, q.Limit)
	} else {
		query += ` ORDER BY sequence`
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return out, nil
}

// Count implements Store.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM dispatches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Prune implements Store.
func (s *SQLiteStore) Prune(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	res, err := s.db.Exec(`DELETE FROM dispatches WHERE time_ns < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune records: %w", err)
	}
	return int(n), nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec      Record
		timeNS   int64
		typ      uint32
		duration int64
	)
	err := row.Scan(&rec.Sequence, &rec.ID, &timeNS, &typ, &rec.Source, &rec.Suppressed,
		&rec.SuppressedBy, &rec.SuppressedForm, &rec.Enriched, &rec.EnrichError,
		&rec.Invoked, &rec.Panics, &duration)
	if err != nil {
		return Record{}, err
	}
	rec.Time = time.Unix(0, timeNS).UTC()
	rec.Type = eventtype.Type(typ)
	rec.Duration = time.Duration(duration)
	return rec, nil
}
