package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
)

// SQLiteStore keeps records in a single sqlite table
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db dir: %w", err)
		}
	}

	// modernc.org/sqlite registers as "sqlite"
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	const schema = `CREATE TABLE IF NOT EXISTS layouts (
		player TEXT PRIMARY KEY,
		record TEXT NOT NULL,
		updated_at_unixms INTEGER NOT NULL
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Name returns "sqlite"
func (s *SQLiteStore) Name() string { return "sqlite" }

// Load selects the player's record
func (s *SQLiteStore) Load(ctx context.Context, player string) ([]byte, error) {
	var record string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM layouts WHERE player = ?`, player).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load layout for %s: %w", player, err)
	}
	return []byte(record), nil
}

// Save upserts the player's record
func (s *SQLiteStore) Save(ctx context.Context, player string, m layout.Model) error {
	data, err := Encode(m)
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO layouts (player, record, updated_at_unixms) VALUES (?, ?, ?)
		ON CONFLICT(player) DO UPDATE SET record = excluded.record, updated_at_unixms = excluded.updated_at_unixms`,
		player, string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save layout for %s: %w", player, err)
	}
	return nil
}

// Players lists every player with a stored layout
func (s *SQLiteStore) Players(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT player FROM layouts ORDER BY player`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var player string
		if err := rows.Scan(&player); err != nil {
			return nil, err
		}
		out = append(out, player)
	}
	return out, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
