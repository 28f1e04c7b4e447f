// Package pgstore writes cards into a PostgreSQL table.
//
// The table mirrors the document shape with one nullable column per field:
//
//	id TEXT PRIMARY KEY, name TEXT, type TEXT, rarity TEXT,
//	image BYTEA, date_added TIMESTAMPTZ
//
// A single pgx connection is used for the whole run.
package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/cardmigrate/internal/core"
	"github.com/JonMunkholm/cardmigrate/internal/store"
)

func init() {
	store.Register(store.Driver{
		Name:        "postgres",
		Description: "PostgreSQL table (STORE_URL is a postgres:// URL)",
		Open: func(ctx context.Context, opts store.Options) (store.Handle, error) {
			return Open(ctx, opts)
		},
	})
}

// DBTX is the interface for database operations.
// Satisfied by both *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store is a PostgreSQL-backed target.
type Store struct {
	db    DBTX
	table string // Sanitized identifier, safe to interpolate
	name  string
	close func(context.Context) error
}

// Open connects, verifies the connection and creates the table if needed.
func Open(ctx context.Context, opts store.Options) (*Store, error) {
	cfg, err := pgx.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.ConnectTimeout > 0 {
		cfg.ConnectTimeout = opts.ConnectTimeout
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := New(conn, opts.Collection)
	s.close = conn.Close

	if err := s.EnsureTable(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}

	return s, nil
}

// New wraps an existing connection or transaction. The caller owns db.
func New(db DBTX, table string) *Store {
	if table == "" {
		table = core.DefaultCollection
	}
	return &Store{
		db:    db,
		table: pgx.Identifier{table}.Sanitize(),
		name:  table,
		close: func(context.Context) error { return nil },
	}
}

// EnsureTable creates the target table when it does not exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL(s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.name, err)
	}
	return nil
}

// Upsert inserts the row or overwrites every column of the existing one.
func (s *Store) Upsert(ctx context.Context, id string, doc core.StoredDocument) error {
	_, err := s.db.Exec(ctx, upsertSQL(s.table), rowArgs(id, doc)...)
	return err
}

// Insert adds a row under a fresh UUID.
func (s *Store) Insert(ctx context.Context, doc core.StoredDocument) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.Exec(ctx, insertSQL(s.table), rowArgs(id, doc)...); err != nil {
		return "", err
	}
	return id, nil
}

// Target returns the table name.
func (s *Store) Target() string {
	return s.name
}

// Close closes the connection if the Store opened it.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id         TEXT PRIMARY KEY,
	name       TEXT,
	type       TEXT,
	rarity     TEXT,
	image      BYTEA,
	date_added TIMESTAMPTZ
)`, table)
}

func insertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (id, name, type, rarity, image, date_added)
VALUES ($1, $2, $3, $4, $5, $6)`, table)
}

func upsertSQL(table string) string {
	return insertSQL(table) + `
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	type = EXCLUDED.type,
	rarity = EXCLUDED.rarity,
	image = EXCLUDED.image,
	date_added = EXCLUDED.date_added`
}

// rowArgs returns the statement arguments in column order.
func rowArgs(id string, doc core.StoredDocument) []any {
	return []any{
		id,
		ToPgText(doc.Name),
		ToPgText(doc.Type),
		ToPgText(doc.Rarity),
		doc.Image,
		ToPgTimestamptz(doc.DateAdded),
	}
}

// ToPgText converts an optional string to pgtype.Text.
// Returns invalid (NULL) if s is nil; an empty string is stored as-is.
func ToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// ToPgTimestamptz converts an optional time to pgtype.Timestamptz.
// Returns invalid (NULL) if t is nil.
func ToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
