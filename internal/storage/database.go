package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// Store is a wrapper around the SQL database connection. It persists one
// serialized JSON array per collection key.
type Store struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{conn: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Get reads the raw serialized value stored under key. The second return is
// false when no value exists.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var value []byte
	row := s.conn.QueryRow(`
		SELECT value FROM collections WHERE key = ?
	`, key)

	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read collection %s: %w", key, err)
	}
	return value, true, nil
}

// Put fully replaces the value stored under key.
func (s *Store) Put(key string, value []byte) error {
	_, err := s.conn.Exec(`
		INSERT INTO collections (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", key, err)
	}
	return nil
}

// Keys returns every collection key currently stored.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.conn.Query(`
		SELECT key FROM collections ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan collection key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// LoadCollection reads and deserializes the collection stored under key.
// A missing key, a read error, or a value that fails to parse all yield an
// empty collection; parse failures are logged but never propagated, so a
// corrupt value costs the stored records rather than the whole application.
func LoadCollection[T any](s *Store, key string) []T {
	raw, ok, err := s.Get(key)
	if err != nil {
		slog.Warn("failed to load collection, starting empty", "key", key, "error", err)
		return []T{}
	}
	if !ok {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Warn("corrupt collection, starting empty", "key", key, "error", err)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// SaveCollection serializes the full collection and replaces the value
// stored under key. Each collection is saved independently; there is no
// transaction spanning multiple keys.
func SaveCollection[T any](s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to serialize collection %s: %w", key, err)
	}
	return s.Put(key, raw)
}
