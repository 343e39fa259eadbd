package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"artidicia/internal/services"
)

const (
	// MaxRating is the highest star rating a record may carry.
	MaxRating = 5
	// DefaultListLimit applies when List is called with limit <= 0.
	DefaultListLimit = 50
)

// Record is one saved generation.
type Record struct {
	ID          int64
	CreatedAt   time.Time
	SourceLabel string
	Mode        string
	Style       string
	Model       string
	Content     string
	JSONData    map[string]any
	SessionID   string
	Rating      int
	Comment     string
}

// Validate checks the fields Save requires.
func (r Record) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Mode) == "" {
		problems = append(problems, "mode is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		problems = append(problems, "content is required")
	}
	if r.Rating < 0 || r.Rating > MaxRating {
		problems = append(problems, fmt.Sprintf("rating %d outside [0,%d]", r.Rating, MaxRating))
	}
	if len(problems) > 0 {
		return services.Wrap(services.ErrValidation, "history", "validate record", strings.Join(problems, "; "), nil)
	}
	return nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// Save inserts rec and returns the stored copy with ID and CreatedAt set.
// A zero CreatedAt is replaced by the current time.
func (s *Store) Save(ctx context.Context, rec Record) (*Record, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	var jsonData any
	if rec.JSONData != nil {
		encoded, err := json.Marshal(rec.JSONData)
		if err != nil {
			return nil, fmt.Errorf("marshal json data: %w", err)
		}
		jsonData = string(encoded)
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO analyses (
            created_at, source_label, mode, style, model, content, json_data, session_id, rating, comment
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		strings.TrimSpace(rec.SourceLabel),
		rec.Mode,
		nullableString(rec.Style),
		rec.Model,
		rec.Content,
		jsonData,
		nullableString(rec.SessionID),
		rec.Rating,
		rec.Comment,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.Get(ctx, id)
}

const selectColumns = `id, created_at, source_label, mode, style, model, content, json_data, session_id, rating, comment`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec       Record
		createdAt string
		style     sql.NullString
		jsonData  sql.NullString
		sessionID sql.NullString
	)
	if err := row.Scan(&rec.ID, &createdAt, &rec.SourceLabel, &rec.Mode, &style, &rec.Model,
		&rec.Content, &jsonData, &sessionID, &rec.Rating, &rec.Comment); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = ts
	rec.Style = style.String
	rec.SessionID = sessionID.String
	if jsonData.Valid && jsonData.String != "" {
		if err := json.Unmarshal([]byte(jsonData.String), &rec.JSONData); err != nil {
			return nil, fmt.Errorf("decode json data for record %d: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

// Get returns the record with id or an ErrNotFound error.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM analyses WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "history", "get", fmt.Sprintf("record %d", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	return rec, nil
}

// ListOptions filters List.
type ListOptions struct {
	Limit int
	Mode  string
}

// List returns records newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := "SELECT " + selectColumns + " FROM analyses"
	args := []any{}
	if mode := strings.TrimSpace(opts.Mode); mode != "" {
		query += " WHERE mode = ?"
		args = append(args, mode)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Delete removes the record with id. Deleting an absent id is an
// ErrNotFound error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	return requireAffected(res, id, "delete")
}

// Rate updates the rating and comment of an existing record.
func (s *Store) Rate(ctx context.Context, id int64, rating int, comment string) error {
	if rating < 0 || rating > MaxRating {
		return services.Wrap(services.ErrValidation, "history", "rate", fmt.Sprintf("rating %d outside [0,%d]", rating, MaxRating), nil)
	}
	res, err := s.execWithRetry(ctx, "UPDATE analyses SET rating = ?, comment = ? WHERE id = ?", rating, comment, id)
	if err != nil {
		return fmt.Errorf("rate record %d: %w", id, err)
	}
	return requireAffected(res, id, "rate")
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM analyses").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func requireAffected(res interface{ RowsAffected() (int64, error) }, id int64, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s record %d: %w", op, id, err)
	}
	if n == 0 {
		return services.Wrap(services.ErrNotFound, "history", op, fmt.Sprintf("record %d", id), nil)
	}
	return nil
}
