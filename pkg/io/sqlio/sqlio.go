// Package sqlio loads query results from a SQL database into frames.
package sqlio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"github.com/wdm0006/frameguard/pkg/frame"
)

// DefaultDriver is the database/sql driver registered by lib/pq.
const DefaultDriver = "postgres"

// Options tunes the connection pool.
type Options struct {
	Driver          string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Open connects and pings the database.
func Open(ctx context.Context, dsn string, opt Options) (*sqlx.DB, error) {
	driver := opt.Driver
	if driver == "" {
		driver = DefaultDriver
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if opt.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opt.MaxOpenConns)
	}
	if opt.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opt.ConnMaxLifetime)
	}
	return db, nil
}

// Column is a result column as reported by the driver.
type Column struct {
	Name   string
	DBType string
}

// KindFor maps a driver type name such as "INT8" or "TIMESTAMPTZ" to a
// frame kind. Unknown types load as strings.
func KindFor(dbType string) frame.Kind {
	t := strings.ToUpper(strings.TrimSpace(dbType))
	if k, ok := dbKinds[t]; ok {
		return k
	}
	if strings.HasPrefix(t, "TIMESTAMP") {
		return frame.KindTime
	}
	return frame.KindString
}

var dbKinds = map[string]frame.Kind{
	"BOOL": frame.KindBool, "BOOLEAN": frame.KindBool,

	"INT": frame.KindInt, "INT2": frame.KindInt, "INT4": frame.KindInt, "INT8": frame.KindInt,
	"INTEGER": frame.KindInt, "SMALLINT": frame.KindInt, "BIGINT": frame.KindInt,
	"SERIAL": frame.KindInt, "BIGSERIAL": frame.KindInt,

	"FLOAT": frame.KindFloat, "FLOAT4": frame.KindFloat, "FLOAT8": frame.KindFloat,
	"REAL": frame.KindFloat, "DOUBLE": frame.KindFloat, "DOUBLE PRECISION": frame.KindFloat,
	"NUMERIC": frame.KindFloat, "DECIMAL": frame.KindFloat,

	"DATE": frame.KindTime,
}

// ReadQuery runs query and loads every result row.
func ReadQuery(ctx context.Context, db *sqlx.DB, query string, args ...any) (*frame.Frame, error) {
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]Column, len(types))
	for i, ct := range types {
		cols[i] = Column{Name: ct.Name(), DBType: ct.DatabaseTypeName()}
	}
	b := NewBuilder(cols)
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		if err := b.Append(vals); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"rows": b.Frame().Rows(), "columns": len(cols)}).Debug("loaded query result")
	return b.Frame(), nil
}

// Builder accumulates scanned rows into a frame.
type Builder struct {
	cols []frame.ColumnSchema
	f    *frame.Frame
}

func NewBuilder(cols []Column) *Builder {
	s := frame.Schema{Columns: make([]frame.ColumnSchema, len(cols))}
	for i, c := range cols {
		s.Columns[i] = frame.ColumnSchema{Name: c.Name, Type: KindFor(c.DBType), Nullable: true}
	}
	return &Builder{cols: s.Columns, f: frame.NewFrame(s)}
}

// Append adds one scanned row. Values the column kind cannot hold load as
// null.
func (b *Builder) Append(vals []any) error {
	if len(vals) != len(b.cols) {
		return fmt.Errorf("row has %d values, want %d", len(vals), len(b.cols))
	}
	b.f.AppendNullRow()
	row := b.f.Rows() - 1
	for i, cs := range b.cols {
		if v, ok := frame.Coerce(cs.Type, vals[i]); ok {
			if err := b.f.SetCell(row, cs.Name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Builder) Frame() *frame.Frame { return b.f }
