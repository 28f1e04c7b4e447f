// Package sqlitestore writes cards into a SQLite database file.
//
// It is meant for local rehearsals of the migration: STORE_URL is the path of
// the database file, created if missing. Timestamps are stored as RFC 3339
// text in UTC.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/cardmigrate/internal/core"
	"github.com/JonMunkholm/cardmigrate/internal/store"
)

func init() {
	store.Register(store.Driver{
		Name:        "sqlite",
		Description: "SQLite database file (STORE_URL is a file path)",
		Open: func(ctx context.Context, opts store.Options) (store.Handle, error) {
			return Open(ctx, opts.URL, opts.Collection)
		},
	})
}

// Store is a SQLite-backed target.
type Store struct {
	db    *sql.DB
	table string // Quoted identifier
	name  string
}

// Open opens (or creates) the database at path and ensures the table exists.
// The pool is capped at one connection: the migration never writes concurrently.
func Open(ctx context.Context, path, table string) (*Store, error) {
	if table == "" {
		table = core.DefaultCollection
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}

	s := &Store{db: db, table: `"` + table + `"`, name: table}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id         TEXT PRIMARY KEY,
	name       TEXT,
	type       TEXT,
	rarity     TEXT,
	image      BLOB,
	date_added TEXT
)`, s.table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	return s, nil
}

// Upsert inserts the row or overwrites every column of the existing one.
func (s *Store) Upsert(ctx context.Context, id string, doc core.StoredDocument) error {
	query := fmt.Sprintf(`INSERT INTO %s (id, name, type, rarity, image, date_added)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	name = excluded.name,
	type = excluded.type,
	rarity = excluded.rarity,
	image = excluded.image,
	date_added = excluded.date_added`, s.table)

	_, err := s.db.ExecContext(ctx, query, rowArgs(id, doc)...)
	return err
}

// Insert adds a row under a fresh UUID.
func (s *Store) Insert(ctx context.Context, doc core.StoredDocument) (string, error) {
	query := fmt.Sprintf(`INSERT INTO %s (id, name, type, rarity, image, date_added)
VALUES (?, ?, ?, ?, ?, ?)`, s.table)

	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, query, rowArgs(id, doc)...); err != nil {
		return "", err
	}
	return id, nil
}

// Get reads back the document stored under id.
func (s *Store) Get(ctx context.Context, id string) (core.StoredDocument, bool, error) {
	query := fmt.Sprintf(`SELECT name, type, rarity, image, date_added FROM %s WHERE id = ?`, s.table)

	var (
		name, typ, rarity, dateAdded sql.NullString
		image                        []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&name, &typ, &rarity, &image, &dateAdded)
	if errors.Is(err, sql.ErrNoRows) {
		return core.StoredDocument{}, false, nil
	}
	if err != nil {
		return core.StoredDocument{}, false, err
	}

	doc := core.StoredDocument{
		Name:   fromNullString(name),
		Type:   fromNullString(typ),
		Rarity: fromNullString(rarity),
		Image:  image,
	}
	if dateAdded.Valid {
		t, err := time.Parse(time.RFC3339Nano, dateAdded.String)
		if err != nil {
			return core.StoredDocument{}, false, fmt.Errorf("parse date_added for %s: %w", id, err)
		}
		doc.DateAdded = &t
	}

	return doc, true, nil
}

// Count returns the number of rows in the table.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&n)
	return n, err
}

// Target returns the table name.
func (s *Store) Target() string {
	return s.name
}

// Close closes the database.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

// rowArgs returns the statement arguments in column order.
func rowArgs(id string, doc core.StoredDocument) []any {
	args := []any{id, toNullString(doc.Name), toNullString(doc.Type), toNullString(doc.Rarity), nil, nil}
	if doc.Image != nil {
		args[4] = doc.Image
	}
	if doc.DateAdded != nil {
		args[5] = doc.DateAdded.UTC().Format(time.RFC3339Nano)
	}
	return args
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
