package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"simpleink/config"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	conn, err := sql.Open(DriverSQLite, "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	pool := NewPool(conn, DriverSQLite)
	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func TestMigrateIsRepeatable(t *testing.T) {
	pool := newTestPool(t)
	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestExecuteReportsAffectedRows(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	res, err := pool.Execute(ctx, "INSERT INTO playlists (id, titulo) VALUES (?, ?)", "p1", "Caboclo")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if res.RowsAffected != 1 {
		t.Errorf("expected 1 affected row, got %d", res.RowsAffected)
	}

	res, err = pool.Execute(ctx, "UPDATE playlists SET titulo = ? WHERE id = ?", "X", "missing")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.RowsAffected != 0 {
		t.Errorf("expected 0 affected rows, got %d", res.RowsAffected)
	}
}

func TestExecuteReleasesConnectionOnError(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	// the pool has a single connection, so a leak would block the second call
	if _, err := pool.Execute(ctx, "INSERT INTO nowhere VALUES (1)"); err == nil {
		t.Fatal("expected error for unknown table")
	}
	if _, err := pool.Execute(ctx, "INSERT INTO historia (id, conteudo) VALUES (?, ?)", "h1", "texto"); err != nil {
		t.Fatalf("pool unusable after failed statement: %v", err)
	}
}

func TestTxRollsBackOnError(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := pool.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO playlists (id, titulo) VALUES (?, ?)", "p1", "A"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var n int
	if err := pool.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM playlists").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected rollback, found %d rows", n)
	}
}

func TestDataSourceRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{DBDriver: "postgres"}
	if _, _, err := dataSource(cfg); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestDataSourceMySQL(t *testing.T) {
	cfg := config.FromEnv()
	cfg.DBDriver = DriverMySQL
	cfg.DBHost = "localhost"
	cfg.DBPort = "3306"
	driver, dsn, err := dataSource(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver != DriverMySQL {
		t.Errorf("expected mysql driver, got %s", driver)
	}
	for _, want := range []string{"parseTime=true", "clientFoundRows=true", "tcp(localhost:3306)"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn %q missing %q", dsn, want)
		}
	}
}
