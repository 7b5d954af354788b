// Package store wraps db.Querier with transaction support. It is the SQL
// implementation of scoring.StateRepository and the persistent home of the
// configuration snapshot.
//
// Dependency rule: store imports db and scoring only. It never imports api,
// rpc, worker or catalog.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/shakespeare-advisor/advisor-engine/internal/db"
)

// ErrUnsupportedURL is returned by Open for a DATABASE_URL whose scheme is
// neither postgres nor sqlite.
var ErrUnsupportedURL = errors.New("store: unsupported database url")

// maxTxAttempts bounds the retries of a unit of work that Postgres aborted
// with a serialization failure.
const maxTxAttempts = 3

// Store holds a *sql.DB for starting transactions and a db.Querier for
// executing queries outside of transactions.
type Store struct {
	// pool is the raw connection pool, used only to begin transactions.
	pool *sql.DB

	// q is the Querier used for non-transactional calls.
	q db.Querier
}

// New creates a Store from a live connection pool. The pool must already be
// open and verified (e.g. via db.PingContext) before calling New. q must be a
// *db.Queries so withTx can rebind it to a transaction.
func New(pool *sql.DB, q db.Querier) *Store {
	return &Store{pool: pool, q: q}
}

// Open connects to databaseURL, which is either a Postgres URL
// (postgres://, postgresql://) or sqlite://<path>. The returned Store owns the
// pool; call Close when done.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	var (
		pool    *sql.DB
		dialect db.Dialect
		err     error
	)
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		pool, err = sql.Open("postgres", databaseURL)
		dialect = db.Postgres
	case strings.HasPrefix(databaseURL, "sqlite://"):
		pool, err = sql.Open("sqlite", sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite://")))
		dialect = db.SQLite
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, redact(databaseURL))
	}
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	if dialect == db.SQLite {
		// One writer at a time; a single connection also keeps an
		// in-memory database alive for the pool's lifetime.
		pool.SetMaxOpenConns(1)
	}
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return New(pool, db.NewWithDialect(pool, dialect)), nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// redact drops everything before the host so credentials never reach logs.
func redact(databaseURL string) string {
	if i := strings.LastIndex(databaseURL, "@"); i >= 0 {
		return "…" + databaseURL[i:]
	}
	return databaseURL
}

// Q exposes the underlying Querier so callers can run single-query reads
// without going through a store method.
func (s *Store) Q() db.Querier {
	return s.q
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

func (s *Store) dialect() db.Dialect {
	return s.q.(*db.Queries).Dialect()
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range splitStatements(db.Schema) {
		if _, err := s.pool.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// splitStatements cuts a schema on ";" line endings, dropping comment-only
// fragments.
func splitStatements(schema string) []string {
	var out []string
	for _, part := range strings.Split(schema, ";") {
		var body []string
		for _, line := range strings.Split(part, "\n") {
			if t := strings.TrimSpace(line); t != "" && !strings.HasPrefix(t, "--") {
				body = append(body, line)
			}
		}
		if len(body) > 0 {
			out = append(out, strings.Join(body, "\n"))
		}
	}
	return out
}

// txQuerier is a function that receives a transactional Querier and returns an
// error. Returning a non-nil error causes withTx to roll back automatically.
type txQuerier func(ctx context.Context, q db.Querier) error

// withTx begins a transaction, passes a Querier scoped to that transaction to
// fn, and commits on success or rolls back on any error (including panics).
//
// Postgres runs at serializable isolation and the whole unit of work is
// retried when it loses a serialization race. SQLite already serializes
// writers and rejects explicit isolation levels, so it uses the default.
func (s *Store) withTx(ctx context.Context, fn txQuerier) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.tryTx(ctx, fn)
		if !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func (s *Store) tryTx(ctx context.Context, fn txQuerier) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	if s.dialect() == db.SQLite {
		opts = nil
	}
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	// Roll back on panic so the connection is never left in a broken state.
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p) // re-panic after rollback
		}
	}()

	txQ := s.q.(*db.Queries).WithTx(tx)

	if err := fn(ctx, txQ); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			// Wrap both errors so the caller sees both failure reasons.
			return fmt.Errorf("store: fn error: %w; rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "40001"
}
