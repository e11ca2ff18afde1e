// Package editdb stores overlay edits in a SQLite table, one row per block
// position.
package editdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"voxelengine/internal/world"
)

// DB implements world.OverlayStore on SQLite.
type DB struct {
	db *sql.DB

	mu     sync.Mutex
	closed bool
}

// Open creates or opens the database at path and ensures its schema.
func Open(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s %w", p, err)
		}
	}
	return nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS edits (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			cx INTEGER NOT NULL,
			cz INTEGER NOT NULL,
			block INTEGER NOT NULL,
			PRIMARY KEY (x, y, z)
		);`,
		`CREATE INDEX IF NOT EXISTS edits_chunk ON edits (cx, cz);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// PutContext upserts the block id for edit.Pos.
func (d *DB) PutContext(ctx context.Context, edit world.Edit) error {
	key := world.ChunkOf(edit.Pos)
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO edits (x, y, z, cx, cz, block) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (x, y, z) DO UPDATE SET block = excluded.block`,
		edit.Pos.X, edit.Pos.Y, edit.Pos.Z, key.X, key.Z, int(edit.ID))
	if err != nil {
		return fmt.Errorf("upsert edit %s: %w", edit.Pos, err)
	}
	return nil
}

func (d *DB) Put(edit world.Edit) error {
	return d.PutContext(context.Background(), edit)
}

func (d *DB) LoadAll(fn func(world.Edit) bool) error {
	rows, err := d.db.Query(`SELECT x, y, z, block FROM edits ORDER BY x, z, y`)
	if err != nil {
		return fmt.Errorf("query edits: %w", err)
	}
	return scanEdits(rows, fn)
}

// ChunkEdits returns the stored edits of one chunk in coordinate order.
func (d *DB) ChunkEdits(ctx context.Context, key world.ChunkCoord) ([]world.Edit, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT x, y, z, block FROM edits WHERE cx = ? AND cz = ? ORDER BY x, z, y`, key.X, key.Z)
	if err != nil {
		return nil, fmt.Errorf("query chunk %s: %w", key, err)
	}
	var out []world.Edit
	err = scanEdits(rows, func(e world.Edit) bool {
		out = append(out, e)
		return true
	})
	return out, err
}

// Count returns the number of stored positions.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edits`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count edits: %w", err)
	}
	return n, nil
}

// Reset deletes every stored edit.
func (d *DB) Reset() error {
	if _, err := d.db.Exec(`DELETE FROM edits`); err != nil {
		return fmt.Errorf("reset edits: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

func scanEdits(rows *sql.Rows, fn func(world.Edit) bool) error {
	defer rows.Close()
	for rows.Next() {
		var (
			x, y, z int
			block   int
		)
		if err := rows.Scan(&x, &y, &z, &block); err != nil {
			return fmt.Errorf("scan edit: %w", err)
		}
		if !fn(world.Edit{Pos: world.BlockCoord{X: x, Y: y, Z: z}, ID: world.BlockID(block)}) {
			break
		}
	}
	return rows.Err()
}
