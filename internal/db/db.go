// Package db persists patch records in SQLite: one row per game directory
// that ReShade was installed into, so uninstall and listing work without
// rescanning the filesystem.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound means no patch record matched.
var ErrNotFound = errors.New("patch record not found")

// DB represents the database with separate read/write pools
type DB struct {
	write *sql.DB
	read  *sql.DB
	path  string
}

// New creates a new database instance with separate read/write pools
func New(ctx context.Context, dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Connection string with pragmas
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)

	// Write pool: MUST be 1 connection only
	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)
	write.SetConnMaxLifetime(time.Hour)

	// Read pool: Can have multiple connections
	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(10)
	read.SetMaxIdleConns(5)
	read.SetConnMaxIdleTime(time.Minute)
	read.SetConnMaxLifetime(time.Hour)

	db := &DB{
		write: write,
		read:  read,
		path:  dbPath,
	}

	// Initialize schema
	if err := db.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Close closes both database connections
func (db *DB) Close() error {
	writeErr := db.write.Close()
	readErr := db.read.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

// initSchema creates the schema if it doesn't exist
func (db *DB) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS patches (
    patch_id TEXT PRIMARY KEY,
    app_id TEXT,
    name TEXT NOT NULL,
    game_dir TEXT NOT NULL,
    exe_path TEXT NOT NULL,
    architecture INTEGER NOT NULL,
    api TEXT NOT NULL,
    dll_override TEXT NOT NULL,
    install_date DATETIME DEFAULT CURRENT_TIMESTAMP,
    metadata TEXT
);

CREATE INDEX IF NOT EXISTS idx_patches_app_id ON patches(app_id);
CREATE INDEX IF NOT EXISTS idx_patches_name ON patches(name);

CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    description TEXT
);
	`

	_, err := db.write.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	seed := "INSERT OR IGNORE INTO schema_migrations (version, description) VALUES (1, 'initial schema')"
	if _, err := db.write.ExecContext(ctx, seed); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return nil
}

// Patch is one recorded ReShade install.
type Patch struct {
	PatchID      string
	AppID        string
	Name         string
	GameDir      string
	ExePath      string
	Architecture int
	API          string
	DLLOverride  string
	InstallDate  time.Time
	Metadata     map[string]interface{}
}

const patchColumns = "patch_id, app_id, name, game_dir, exe_path, architecture, api, dll_override, install_date, metadata"

// Create creates a new patch record
func (db *DB) Create(ctx context.Context, patch *Patch) error {
	metadataJSON, err := json.Marshal(patch.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
INSERT INTO patches (` + patchColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.write.ExecContext(ctx, query,
		patch.PatchID,
		patch.AppID,
		patch.Name,
		patch.GameDir,
		patch.ExePath,
		patch.Architecture,
		patch.API,
		patch.DLLOverride,
		patch.InstallDate,
		string(metadataJSON),
	)

	if err != nil {
		return fmt.Errorf("insert patch: %w", err)
	}

	return nil
}

// Get retrieves a patch record by ID
func (db *DB) Get(ctx context.Context, patchID string) (*Patch, error) {
	query := `
SELECT ` + patchColumns + `
FROM patches WHERE patch_id = ?
	`

	return db.scanOne(db.read.QueryRowContext(ctx, query, patchID), patchID)
}

// FindByAppID retrieves the patch record for a Steam app, if any.
func (db *DB) FindByAppID(ctx context.Context, appID string) (*Patch, error) {
	query := `
SELECT ` + patchColumns + `
FROM patches WHERE app_id = ? ORDER BY install_date DESC LIMIT 1
	`

	return db.scanOne(db.read.QueryRowContext(ctx, query, appID), appID)
}

// FindByGameDir retrieves the patch record for a game directory, if any.
func (db *DB) FindByGameDir(ctx context.Context, gameDir string) (*Patch, error) {
	query := `
SELECT ` + patchColumns + `
FROM patches WHERE game_dir = ? ORDER BY install_date DESC LIMIT 1
	`

	return db.scanOne(db.read.QueryRowContext(ctx, query, gameDir), gameDir)
}

func (db *DB) scanOne(row *sql.Row, key string) (*Patch, error) {
	var patch Patch
	var metadataJSON string

	err := row.Scan(
		&patch.PatchID,
		&patch.AppID,
		&patch.Name,
		&patch.GameDir,
		&patch.ExePath,
		&patch.Architecture,
		&patch.API,
		&patch.DLLOverride,
		&patch.InstallDate,
		&metadataJSON,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("query patch: %w", err)
	}

	if err := json.Unmarshal([]byte(metadataJSON), &patch.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	return &patch, nil
}

// List retrieves all patch records
func (db *DB) List(ctx context.Context) ([]Patch, error) {
	query := `
SELECT ` + patchColumns + `
FROM patches ORDER BY install_date DESC
	`

	rows, err := db.read.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query patches: %w", err)
	}
	defer rows.Close()

	var patches []Patch
	for rows.Next() {
		var patch Patch
		var metadataJSON string

		err := rows.Scan(
			&patch.PatchID,
			&patch.AppID,
			&patch.Name,
			&patch.GameDir,
			&patch.ExePath,
			&patch.Architecture,
			&patch.API,
			&patch.DLLOverride,
			&patch.InstallDate,
			&metadataJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("scan patch: %w", err)
		}

		if err := json.Unmarshal([]byte(metadataJSON), &patch.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}

		patches = append(patches, patch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return patches, nil
}

// Delete removes a patch record
func (db *DB) Delete(ctx context.Context, patchID string) error {
	query := "DELETE FROM patches WHERE patch_id = ?"

	result, err := db.write.ExecContext(ctx, query, patchID)
	if err != nil {
		return fmt.Errorf("delete patch: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, patchID)
	}

	return nil
}
