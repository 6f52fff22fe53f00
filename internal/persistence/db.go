// Package persistence saves and restores simulations: versioned JSON
// snapshots, zstd-compressed, kept in SQLite save slots or plain files.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexisle/internal/engine"
)

// DB wraps a SQLite connection holding save slots and prestige history.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		game_time REAL NOT NULL,
		island_seed INTEGER NOT NULL,
		cities INTEGER NOT NULL,
		resets INTEGER NOT NULL,
		size INTEGER NOT NULL,
		data BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS prestige_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at INTEGER NOT NULL,
		game_time REAL NOT NULL,
		island_seed INTEGER NOT NULL,
		points INTEGER NOT NULL,
		gained INTEGER NOT NULL,
		total INTEGER NOT NULL,
		resets INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_saves_created ON saves(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveInfo describes one save slot without its payload.
type SaveInfo struct {
	ID         string  `db:"id" json:"id"`
	Label      string  `db:"label" json:"label"`
	CreatedAt  int64   `db:"created_at" json:"created_at"` // Unix milliseconds
	GameTime   float64 `db:"game_time" json:"game_time"`
	IslandSeed int64   `db:"island_seed" json:"island_seed"`
	Cities     int     `db:"cities" json:"cities"`
	Resets     int     `db:"resets" json:"resets"`
	Size       int64   `db:"size" json:"size"`
}

// Created returns CreatedAt as a time.
func (s SaveInfo) Created() time.Time {
	return time.UnixMilli(s.CreatedAt)
}

const saveColumns = "id, label, created_at, game_time, island_seed, cities, resets, size"

// SaveSnapshot stores snap in a new save slot.
func (db *DB) SaveSnapshot(label string, snap Snapshot) (SaveInfo, error) {
	blob, err := Marshal(snap)
	if err != nil {
		return SaveInfo{}, err
	}
	sum := Summarize(snap)
	info := SaveInfo{
		ID:         uuid.NewString(),
		Label:      label,
		CreatedAt:  time.Now().UnixMilli(),
		GameTime:   sum.Time,
		IslandSeed: sum.IslandSeed,
		Cities:     sum.Cities,
		Resets:     sum.Resets,
		Size:       int64(len(blob)),
	}
	_, err = db.conn.Exec(`INSERT INTO saves (`+saveColumns+`, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.Label, info.CreatedAt, info.GameTime, info.IslandSeed,
		info.Cities, info.Resets, info.Size, blob,
	)
	if err != nil {
		return SaveInfo{}, fmt.Errorf("insert save: %w", err)
	}
	return info, nil
}

// SaveWorldState captures sim and stores it under label.
func (db *DB) SaveWorldState(sim *engine.Simulation, label string) (SaveInfo, error) {
	info, err := db.SaveSnapshot(label, Capture(sim))
	if err != nil {
		return SaveInfo{}, err
	}
	slog.Info("world state saved",
		"id", info.ID,
		"label", label,
		"time", info.GameTime,
		"size", humanize.Bytes(uint64(info.Size)),
	)
	return info, nil
}

// ListSaves returns up to limit saves, newest first.
func (db *DB) ListSaves(limit int) ([]SaveInfo, error) {
	var saves []SaveInfo
	err := db.conn.Select(&saves,
		"SELECT "+saveColumns+" FROM saves ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return saves, err
}

// LoadSave returns the snapshot stored under id. A missing id returns
// sql.ErrNoRows.
func (db *DB) LoadSave(id string) (Snapshot, error) {
	var blob []byte
	if err := db.conn.Get(&blob, "SELECT data FROM saves WHERE id = ?", id); err != nil {
		return Snapshot{}, err
	}
	return Unmarshal(blob)
}

// LatestSave returns the newest snapshot and its slot. ok is false when
// there are no saves.
func (db *DB) LatestSave() (snap Snapshot, info SaveInfo, ok bool, err error) {
	err = db.conn.Get(&info, "SELECT "+saveColumns+" FROM saves ORDER BY created_at DESC, rowid DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, SaveInfo{}, false, nil
	}
	if err != nil {
		return Snapshot{}, SaveInfo{}, false, err
	}
	snap, err = db.LoadSave(info.ID)
	if err != nil {
		return Snapshot{}, info, false, err
	}
	return snap, info, true, nil
}

// PruneSaves deletes all but the newest keep saves carrying label.
func (db *DB) PruneSaves(label string, keep int) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM saves WHERE label = ? AND id NOT IN (
		SELECT id FROM saves WHERE label = ? ORDER BY created_at DESC, rowid DESC LIMIT ?)`,
		label, label, keep,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PrestigeRecord is one row of prestige history.
type PrestigeRecord struct {
	ID         int64   `db:"id" json:"id"`
	RecordedAt int64   `db:"recorded_at" json:"recorded_at"`
	GameTime   float64 `db:"game_time" json:"game_time"`
	IslandSeed int64   `db:"island_seed" json:"island_seed"`
	Points     int     `db:"points" json:"points"`
	Gained     int     `db:"gained" json:"gained"`
	Total      int     `db:"total" json:"total"`
	Resets     int     `db:"resets" json:"resets"`
}

// RecordPrestige appends a completed reset to the history.
func (db *DB) RecordPrestige(res engine.PrestigeResult) error {
	_, err := db.conn.Exec(`INSERT INTO prestige_history
		(recorded_at, game_time, island_seed, points, gained, total, resets)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UnixMilli(), res.Time, res.IslandSeed, res.Points, res.Gained, res.Total, res.Resets,
	)
	return err
}

// PrestigeHistory returns up to limit resets, newest first.
func (db *DB) PrestigeHistory(limit int) ([]PrestigeRecord, error) {
	var out []PrestigeRecord
	err := db.conn.Select(&out,
		`SELECT id, recorded_at, game_time, island_seed, points, gained, total, resets
		FROM prestige_history ORDER BY id DESC LIMIT ?`,
		limit,
	)
	return out, err
}

// SetMeta stores a key-value pair in world metadata.
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}
