package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// Pool wraps a database/sql connection pool together with the backend
// tag that selects its dialect and row encoding.
type Pool struct {
	DB      *sql.DB
	Backend Backend
}

// Config holds pool sizing applied to every opened connection pool.
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the backend named by the URI scheme and verifies
// the connection with a ping.
func Open(ctx context.Context, uri string, cfg Config) (*Pool, error) {
	backend := DetectBackend(uri)
	if backend == BackendUnknown {
		return nil, fmt.Errorf("unknown database dialect in uri")
	}
	dsn, err := dsnFromURI(backend, uri)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(backend.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s pool: %w", backend, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", backend, err)
	}
	return &Pool{DB: db, Backend: backend}, nil
}

// Close releases the underlying pool.
func (p *Pool) Close() error { return p.DB.Close() }

// QueryOutput is one statement's result set with every value already
// converted to its JSON-facing form.
type QueryOutput struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Query executes one rendered statement and encodes the rows using
// the pool's backend capability.
func (p *Pool) Query(ctx context.Context, query string) (*QueryOutput, error) {
	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	typeTags := make([]string, len(colTypes))
	for i, ct := range colTypes {
		typeTags[i] = ct.DatabaseTypeName()
	}

	out := &QueryOutput{Columns: cols, Rows: make([]map[string]any, 0)}
	scan := make([]any, len(cols))
	for i := range scan {
		scan[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, name := range cols {
			row[name] = p.Backend.encodeValue(typeTags[i], *(scan[i].(*any)))
		}
		out.Rows = append(out.Rows, row)
	}
	return out, rows.Err()
}
