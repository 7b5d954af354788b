// Package db is the query layer over database/sql. It follows sqlc's shape
// (DBTX, Queries, WithTx, a Querier interface and plain row structs) and runs
// the same SQL against Postgres (lib/pq) and SQLite (modernc.org/sqlite).
//
// Queries are written with Postgres placeholders ($1, $2, ...). For SQLite
// they are rebound to positional "?" markers at execution time.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"strconv"
	"strings"
)

// Schema is the DDL for every table. It is idempotent.
//
//go:embed schema.sql
var Schema string

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Dialect selects placeholder syntax and driver quirks.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// New returns Queries for a Postgres connection.
func New(db DBTX) *Queries {
	return &Queries{db: db, dialect: Postgres}
}

// NewWithDialect returns Queries for the given dialect.
func NewWithDialect(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

type Queries struct {
	db      DBTX
	dialect Dialect
}

// WithTx returns Queries bound to tx, keeping the dialect.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

func (q *Queries) Dialect() Dialect { return q.dialect }

func (q *Queries) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	query, args = q.bind(query, args)
	return q.db.ExecContext(ctx, query, args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	query, args = q.bind(query, args)
	return q.db.QueryContext(ctx, query, args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	query, args = q.bind(query, args)
	return q.db.QueryRowContext(ctx, query, args...)
}

func (q *Queries) bind(query string, args []interface{}) (string, []interface{}) {
	if q.dialect != SQLite {
		return query, args
	}
	return rebind(query, args)
}

// rebind rewrites $N placeholders to "?" and reorders args to match the
// order in which the placeholders appear, so a $N may be used more than once.
// Placeholders inside single-quoted literals are left alone.
func rebind(query string, args []interface{}) (string, []interface{}) {
	var (
		sb      strings.Builder
		out     = make([]interface{}, 0, len(args))
		inQuote bool
	)
	sb.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '\'' {
			inQuote = !inQuote
		}
		if c != '$' || inQuote {
			sb.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(query[i+1 : j])
		if err != nil || n < 1 || n > len(args) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('?')
		out = append(out, args[n-1])
		i = j - 1
	}
	return sb.String(), out
}
