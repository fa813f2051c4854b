// Package store persists listings and admin roles in a SQL database.
// Postgres, libSQL/Turso and local SQLite files are supported.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lukman83/autovit-sync/internal/apperr"

	_ "github.com/lib/pq"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Dialect selects SQL syntax differences between backends.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// ErrNotFound is returned by reads and updates that match no row.
var ErrNotFound = apperr.New(apperr.KindNotFound, "Anunțul nu a fost găsit")

// Store is safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to databaseURL and creates the schema if needed.
//
//	postgres://…, postgresql://…       Postgres
//	libsql://…, http(s)://…, ws(s)://… libSQL server or Turso
//	anything else                      SQLite file path, or :memory:
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, apperr.New(apperr.KindConfiguration, "Baza de date nu este configurată")
	}

	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)
	switch {
	case hasAnyPrefix(databaseURL, "postgres://", "postgresql://"):
		dialect = DialectPostgres
		db, err = sql.Open("postgres", databaseURL)
	case hasAnyPrefix(databaseURL, "libsql://", "https://", "http://", "wss://", "ws://"):
		dialect = DialectSQLite
		db, err = sql.Open("libsql", databaseURL)
	default:
		dialect = DialectSQLite
		db, err = sql.Open("sqlite", sqliteDSN(databaseURL))
		if err == nil {
			// one writer; also keeps :memory: on a single connection
			db.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "Baza de date nu este configurată", err)
	}

	s, err := New(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and migrates it.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	s := &Store{db: db, dialect: dialect}
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Dialect() Dialect { return s.dialect }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperr.Wrap(apperr.KindStorage, "Baza de date nu răspunde", err)
	}
	return nil
}

// Migrate creates missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.dialect == DialectPostgres {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return apperr.Wrap(apperr.KindStorage, "Nu am putut pregăti baza de date", fmt.Errorf("migrate: %w", err))
		}
	}
	return nil
}

// rebind turns ? placeholders into $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
