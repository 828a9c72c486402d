package db

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"cmdbank/model"

	_ "github.com/mattn/go-sqlite3"
)

// DB records executed commands and the last values used for each
// template's placeholders.
type DB struct {
	conn *sql.DB
}

func New(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) migrate() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			description TEXT DEFAULT '',
			command TEXT NOT NULL,
			exit_code INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
		CREATE TABLE IF NOT EXISTS params (
			category TEXT NOT NULL,
			template TEXT NOT NULL,
			last_params TEXT NOT NULL DEFAULT '{}',
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (category, template)
		);
	`)
	return err
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// RecordRun appends an execution to the history.
func (d *DB) RecordRun(run model.Run) (int64, error) {
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	result, err := d.conn.Exec(
		`INSERT INTO runs (category, description, command, exit_code, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(run.Category), run.Description, run.Command, run.ExitCode, createdAt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Recent returns up to limit runs, newest first.
func (d *DB) Recent(limit int) ([]model.Run, error) {
	rows, err := d.conn.Query(`
		SELECT id, category, description, command, exit_code, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var category string
		if err := rows.Scan(&r.ID, &category, &r.Description, &r.Command, &r.ExitCode, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Category = model.Category(category)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SaveParams remembers the values last supplied for template.
func (d *DB) SaveParams(category model.Category, template string, values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	_, err = d.conn.Exec(`
		INSERT INTO params (category, template, last_params, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (category, template) DO UPDATE SET last_params = excluded.last_params, updated_at = excluded.updated_at
	`, string(category), template, string(raw), time.Now())
	return err
}

// LastParams returns the values last supplied for template, or an empty
// map when there are none.
func (d *DB) LastParams(category model.Category, template string) (map[string]string, error) {
	var raw string
	err := d.conn.QueryRow(
		`SELECT last_params FROM params WHERE category = ? AND template = ?`,
		string(category), template,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	values := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}
