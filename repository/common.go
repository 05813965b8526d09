package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"simpleink/model"
)

// Clock returns the timestamp written to created_at.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// rowQueryer is satisfied by *sql.Conn, *sql.Tx and *sql.DB.
type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ensureExists returns model.ErrNotFound when no row has the given id.
// table is always a package constant, never user input.
func ensureExists(ctx context.Context, q rowQueryer, table, id, lock string) error {
	var found string
	err := q.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE id = ?"+lock, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullableInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}

// deref turns an optional field into a driver value (nil becomes NULL).
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
