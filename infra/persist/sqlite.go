package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/docksched/core/model"
)

// SQLiteStore keeps one row per appointment, keyed by id, with the full
// record as JSON.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS deliveries (
        id TEXT PRIMARY KEY,
        date_key TEXT NOT NULL,
        position INTEGER NOT NULL,
        json_data TEXT NOT NULL
    );`,
		`CREATE INDEX IF NOT EXISTS deliveries_date_key ON deliveries(date_key);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, err
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns the appointments saved for day in their saved order.
func (s *SQLiteStore) Load(ctx context.Context, day string) ([]model.Appointment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT json_data FROM deliveries WHERE date_key = ? ORDER BY position`, day)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Appointment
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var a model.Appointment
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, fmt.Errorf("unmarshal appointment: %w", err)
		}
		res = append(res, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Save replaces every row of day with items in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, day string, items []model.Appointment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM deliveries WHERE date_key = ?`, day); err != nil {
		return err
	}
	for i, a := range items {
		b, err := json.Marshal(a)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO deliveries (id, date_key, position, json_data)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            date_key = excluded.date_key,
            position = excluded.position,
            json_data = excluded.json_data`,
			a.ID, day, i, string(b)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
