package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"simpleink/db"
	"simpleink/model"
)

// stepClock returns a clock that advances one second per call.
func stepClock() Clock {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var n int
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func newTestPool(t *testing.T) *db.Pool {
	t.Helper()
	conn, err := sql.Open(db.DriverSQLite, "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	pool := db.NewPool(conn, db.DriverSQLite)
	if err := db.Migrate(context.Background(), pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func strPtr(s string) *string { return &s }

func mustPatch(t *testing.T, parse func(map[string]model.RawJSON) (model.Patch, error), body map[string]string) model.Patch {
	t.Helper()
	raw := make(map[string]model.RawJSON, len(body))
	for k, v := range body {
		raw[k] = model.RawJSON(v)
	}
	patch, err := parse(raw)
	if err != nil {
		t.Fatalf("parse patch: %v", err)
	}
	return patch
}
