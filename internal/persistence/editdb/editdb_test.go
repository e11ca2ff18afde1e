package editdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/kr/pretty"

	"voxelengine/internal/world"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()
	db, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEditsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edits.db")
	db := openTestDB(t, path)
	edits := []world.Edit{
		{Pos: world.BlockCoord{X: 3, Y: 10, Z: -1}, ID: 2},
		{Pos: world.BlockCoord{X: -40, Y: 0, Z: 5}, ID: 7},
		{Pos: world.BlockCoord{X: 3, Y: 10, Z: -1}, ID: 9},
	}
	for _, e := range edits {
		if err := db.Put(e); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := openTestDB(t, path)
	var got []world.Edit
	if err := reopened.LoadAll(func(e world.Edit) bool { got = append(got, e); return true }); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	want := []world.Edit{
		{Pos: world.BlockCoord{X: -40, Y: 0, Z: 5}, ID: 7},
		{Pos: world.BlockCoord{X: 3, Y: 10, Z: -1}, ID: 9},
	}
	if diff := pretty.Diff(want, got); len(diff) > 0 {
		t.Fatalf("edits mismatch: %v", diff)
	}
}

func TestChunkEditsAndReset(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "edits.db")
	db := openTestDB(t, path)
	for _, e := range []world.Edit{
		{Pos: world.BlockCoord{X: -1, Y: 4, Z: 0}, ID: 1},
		{Pos: world.BlockCoord{X: -16, Y: 4, Z: 15}, ID: 1},
		{Pos: world.BlockCoord{X: 0, Y: 4, Z: 0}, ID: 1},
	} {
		if err := db.PutContext(ctx, e); err != nil {
			t.Fatalf("PutContext: %v", err)
		}
	}
	edits, err := db.ChunkEdits(ctx, world.ChunkCoord{X: -1, Z: 0})
	if err != nil {
		t.Fatalf("ChunkEdits: %v", err)
	}
	if len(edits) != 2 || edits[0].Pos.X != -16 {
		t.Fatalf("unexpected chunk edits %+v", edits)
	}

	if err := db.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty table after reset, got %d", n)
	}
}

func TestSchemaIsPlainSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edits.db")
	db := openTestDB(t, path)
	if err := db.Put(world.Edit{Pos: world.BlockCoord{X: 300, Y: 1, Z: -300}, ID: 4}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer raw.Close()
	var cx, cz, block int
	if err := raw.QueryRow(`SELECT cx, cz, block FROM edits WHERE x = 300`).Scan(&cx, &cz, &block); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if cx != 18 || cz != -19 || block != 4 {
		t.Fatalf("row mismatch: cx=%d cz=%d block=%d", cx, cz, block)
	}
}
