package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection with thread-safe access.
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// New creates and initializes a new SQLite database connection.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// migrate creates the necessary tables if they don't exist. The schema
// matches the original visual_memory.db layout so existing databases
// remain readable.
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS object_detections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		object_name TEXT NOT NULL,
		confidence REAL NOT NULL,
		bbox_x REAL NOT NULL,
		bbox_y REAL NOT NULL,
		bbox_width REAL NOT NULL,
		bbox_height REAL NOT NULL,
		frame_width INTEGER NOT NULL,
		frame_height INTEGER NOT NULL,
		location_description TEXT,
		image_path TEXT
	);

	CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		description TEXT,
		x_min REAL,
		y_min REAL,
		x_max REAL,
		y_max REAL
	);

	CREATE INDEX IF NOT EXISTS idx_detections_timestamp ON object_detections(timestamp);
	CREATE INDEX IF NOT EXISTS idx_detections_object_name ON object_detections(object_name);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection for use by repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Lock acquires a write lock.
func (db *DB) Lock() {
	db.mu.Lock()
}

// Unlock releases the write lock.
func (db *DB) Unlock() {
	db.mu.Unlock()
}

// RLock acquires a read lock.
func (db *DB) RLock() {
	db.mu.RLock()
}

// RUnlock releases the read lock.
func (db *DB) RUnlock() {
	db.mu.RUnlock()
}
