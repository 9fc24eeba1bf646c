// Package registry holds the live serving state: named connection
// pools and the compiled queries routed over them. Both maps sit
// behind a single lock so every lookup observes a consistent pairing
// of query and pool.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PrivateRookie/psql/pkg/apperrors"
	"github.com/PrivateRookie/psql/pkg/database"
	"github.com/PrivateRookie/psql/pkg/plan"
	"github.com/PrivateRookie/psql/pkg/template"
)

// Entry is one registered query: its plan definition plus the program
// compiled against the dialect of its connection.
type Entry struct {
	ID      uuid.UUID
	Query   plan.Query
	Program *template.Program
}

// Registry maps connection names to pools and route paths to entries.
// Registration is last-write-wins: re-adding a connection closes the
// pool it replaces, re-adding a query route swaps the entry.
type Registry struct {
	mu      sync.RWMutex
	pools   map[string]*database.Pool
	entries map[string]*Entry

	poolCfg database.Config
	cache   *ProgramCache
	logger  *zap.Logger
}

// New returns an empty registry. Pool sizing from cfg is applied to
// every connection AddConn opens.
func New(cfg database.Config, logger *zap.Logger) *Registry {
	return &Registry{
		pools:   make(map[string]*database.Pool),
		entries: make(map[string]*Entry),
		poolCfg: cfg,
		cache:   NewProgramCache(defaultCacheSize),
		logger:  logger,
	}
}

// Seed opens every connection and compiles every query of a plan.
// Any failure aborts seeding; the caller decides whether that is
// fatal (server startup) or reportable (hot reload).
func (r *Registry) Seed(ctx context.Context, p *plan.Plan) error {
	for name, uri := range p.Conns {
		if err := r.AddConn(ctx, name, uri); err != nil {
			return fmt.Errorf("conn %q: %w", name, err)
		}
	}
	for _, q := range p.Queries {
		if _, err := r.AddQuery(q); err != nil {
			return fmt.Errorf("query %q: %w", q.Name, err)
		}
	}
	return nil
}

// AddConn opens and pings a pool for the URI, then installs it under
// the name. The dial happens outside the lock; only the map swap is
// serialized. A replaced pool is closed.
func (r *Registry) AddConn(ctx context.Context, name, uri string) error {
	pool, err := database.Open(ctx, uri, r.poolCfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	old := r.pools[name]
	r.pools[name] = pool
	r.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			r.logger.Warn("closing replaced pool", zap.String("conn", name), zap.Error(err))
		}
	}
	r.logger.Info("connection registered",
		zap.String("conn", name),
		zap.String("backend", pool.Backend.String()))
	return nil
}

// TestConn opens and pings a URI without registering anything.
func (r *Registry) TestConn(ctx context.Context, uri string) error {
	pool, err := database.Open(ctx, uri, r.poolCfg)
	if err != nil {
		return err
	}
	return pool.Close()
}

// AddQuery compiles the query's template against the dialect of its
// connection and installs the entry under its route. Compilation runs
// outside the lock; if the connection is swapped concurrently the
// later registration wins, same as two racing AddConn calls.
func (r *Registry) AddQuery(q plan.Query) (*Entry, error) {
	r.mu.RLock()
	pool, ok := r.pools[q.Conn]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConnNotFound, q.Conn)
	}

	prog, err := template.Build(pool.Backend.Dialect(), q.SQL)
	if err != nil {
		return nil, err
	}
	entry := &Entry{ID: uuid.New(), Query: q, Program: prog}

	r.mu.Lock()
	r.entries[q.Route()] = entry
	r.mu.Unlock()

	r.logger.Info("query registered",
		zap.String("query", q.Name),
		zap.String("route", q.Route()),
		zap.String("conn", q.Conn))
	return entry, nil
}

// Resolve returns the entry behind a route together with its pool.
// Both lookups run under one read lock so the pair is consistent.
func (r *Registry) Resolve(route string) (*Entry, *database.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[route]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrQueryNotFound, route)
	}
	pool, ok := r.pools[entry.Query.Conn]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrConnNotFound, entry.Query.Conn)
	}
	return entry, pool, nil
}

// Pool returns the named connection pool.
func (r *Registry) Pool(name string) (*database.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pool, ok := r.pools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConnNotFound, name)
	}
	return pool, nil
}

// Snapshot returns the entries keyed by route, for document
// generation. The map is a copy; entries are shared and immutable
// after registration.
func (r *Registry) Snapshot() map[string]*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Entry, len(r.entries))
	for route, e := range r.entries {
		out[route] = e
	}
	return out
}

// Conns lists the registered connection names and backends.
func (r *Registry) Conns() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.pools))
	for name, p := range r.pools {
		out[name] = p.Backend.String()
	}
	return out
}

// Compile builds a program for ad-hoc SQL against a named connection,
// serving repeats from the program cache.
func (r *Registry) Compile(conn, src string) (*template.Program, database.Backend, error) {
	r.mu.RLock()
	pool, ok := r.pools[conn]
	r.mu.RUnlock()
	if !ok {
		return nil, database.BackendUnknown, fmt.Errorf("%w: %s", apperrors.ErrConnNotFound, conn)
	}
	prog, err := r.cache.Get(pool.Backend.Dialect(), src)
	if err != nil {
		return nil, pool.Backend, err
	}
	return prog, pool.Backend, nil
}

// Close releases every pool. The registry must not be used afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for name, p := range r.pools {
		if err := p.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", name, err)
		}
	}
	r.pools = make(map[string]*database.Pool)
	r.entries = make(map[string]*Entry)
	return first
}
