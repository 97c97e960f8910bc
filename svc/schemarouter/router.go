package schemarouter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/tenantctx"
)

// Router executes SQL against the schema named by the ambient tenant
// context. Every operation re-reads the context — there is no sticky
// per-connection tenant state, so a connection returned to the pool
// carries nothing over to the next request.
//
// Operations outside an established tenant scope fail with
// tenant.ErrMissingTenantContext. The router never falls back to a
// default or shared schema.
type Router struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Router {
	return &Router{pool: pool}
}

// Exec runs sql in the ambient tenant's schema.
func (r *Router) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	err := r.withConn(ctx, func(conn *pgxpool.Conn) error {
		var execErr error
		tag, execErr = conn.Exec(ctx, sql, args...)
		return execErr
	})
	return tag, err
}

// Query runs sql in the ambient tenant's schema. The returned rows hold
// a pool connection until closed.
func (r *Router) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		r.release(conn)
		return nil, err
	}
	return &routedRows{Rows: rows, router: r, conn: conn}, nil
}

// QueryRow runs sql in the ambient tenant's schema. Errors surface on
// Scan, matching pgx semantics.
func (r *Router) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	conn, err := r.acquire(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return &routedRow{row: conn.QueryRow(ctx, sql, args...), router: r, conn: conn}
}

// WithTx runs fn in a transaction scoped to the ambient tenant's
// schema. search_path is set with SET LOCAL, so it cannot leak past the
// transaction regardless of how fn exits.
func (r *Router) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	schemaName, err := r.schema(ctx)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("schemarouter: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SET LOCAL search_path TO "+pgx.Identifier{schemaName}.Sanitize()); err != nil {
		return fmt.Errorf("schemarouter: set search_path to %q: %w", schemaName, err)
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// schema reads and validates the ambient schema name.
func (r *Router) schema(ctx context.Context) (string, error) {
	schemaName, err := tenantctx.SchemaName(ctx)
	if err != nil {
		return "", err
	}
	if !pg.ValidIdentifier(schemaName) {
		return "", errors.Join(pg.ErrInvalidIdentifier, fmt.Errorf("schema %q", schemaName))
	}
	return schemaName, nil
}

// acquire checks out a connection and pins its search_path to the
// ambient schema. The caller must hand the connection to release so the
// pin never outlives the operation.
func (r *Router) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	schemaName, err := r.schema(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("schemarouter: acquire conn: %w", err)
	}

	if _, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schemaName}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("schemarouter: set search_path to %q: %w", schemaName, err)
	}
	return conn, nil
}

// release resets search_path before the connection goes back to the
// pool. If the reset fails the underlying connection is destroyed
// rather than returned dirty.
func (r *Router) release(conn *pgxpool.Conn) {
	ctx := context.Background()
	if _, err := conn.Exec(ctx, "SET search_path TO public"); err != nil {
		conn.Conn().Close(ctx) //nolint:errcheck // connection is being discarded
	}
	conn.Release()
}

// withConn runs fn on a schema-pinned connection and releases it.
func (r *Router) withConn(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer r.release(conn)
	return fn(conn)
}

// routedRows releases the pinned connection when the rows close.
type routedRows struct {
	pgx.Rows
	router *Router
	conn   *pgxpool.Conn
}

func (rr *routedRows) Close() {
	rr.Rows.Close()
	if rr.conn != nil {
		rr.router.release(rr.conn)
		rr.conn = nil
	}
}

// routedRow releases the pinned connection after Scan.
type routedRow struct {
	row    pgx.Row
	router *Router
	conn   *pgxpool.Conn
}

func (rr *routedRow) Scan(dest ...any) error {
	defer func() {
		if rr.conn != nil {
			rr.router.release(rr.conn)
			rr.conn = nil
		}
	}()
	return rr.row.Scan(dest...)
}

// errRow defers an acquisition error to Scan, where pgx callers look
// for it.
type errRow struct{ err error }

func (e errRow) Scan(dest ...any) error { return e.err }
