package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/energyadvisor/core/activity"
)

// SQLiteStore keeps one row per activity. Save replaces the whole set in a
// transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS activities (
        position INTEGER PRIMARY KEY,
        id TEXT NOT NULL,
        record TEXT NOT NULL
    );
    CREATE TABLE IF NOT EXISTS meta (
        key TEXT PRIMARY KEY,
        value TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns the activities in their saved order.
func (s *SQLiteStore) Load(ctx context.Context) (activity.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM activities ORDER BY position`)
	if err != nil {
		return activity.Document{}, err
	}
	defer func() { _ = rows.Close() }()
	doc := activity.NewDocument(nil)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return activity.Document{}, err
		}
		var a activity.StoredActivity
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return activity.Document{}, fmt.Errorf("unmarshal activity: %w", err)
		}
		doc.Activities = append(doc.Activities, a)
	}
	if err := rows.Err(); err != nil {
		return activity.Document{}, err
	}
	return doc, nil
}

func (s *SQLiteStore) Save(ctx context.Context, doc activity.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM activities`); err != nil {
		return err
	}
	for i, a := range doc.Activities {
		b, err := json.Marshal(a)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO activities (position, id, record) VALUES (?, ?, ?)`, i, a.ID, string(b)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('version', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprint(activity.StorageVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
