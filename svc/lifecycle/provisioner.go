package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/tenantkit/pkg/pg"
)

// Provisioner performs the physical side of tenant lifecycle: creating
// and dropping the tenant's schema with its seed objects.
type Provisioner interface {
	CreateSchema(ctx context.Context, schemaName string) error
	DropSchema(ctx context.Context, schemaName string) error
}

// PGProvisioner provisions tenant schemas with DDL on a pgx pool.
// Every DDL run takes a transaction-scoped advisory lock keyed by the
// schema name, so concurrent create/delete on the same identifier
// serialize instead of racing.
type PGProvisioner struct {
	pool *pgxpool.Pool
	seed []string
}

// ProvisionerOption configures the PGProvisioner.
type ProvisionerOption func(*PGProvisioner)

// WithSeedDDL sets the statements executed inside every freshly
// created schema (table definitions, seed rows). Statements run with
// search_path pinned to the new schema, so they must not qualify
// object names.
func WithSeedDDL(stmts ...string) ProvisionerOption {
	return func(p *PGProvisioner) {
		p.seed = append(p.seed, stmts...)
	}
}

func NewPGProvisioner(pool *pgxpool.Pool, opts ...ProvisionerOption) *PGProvisioner {
	p := &PGProvisioner{pool: pool}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PGProvisioner) CreateSchema(ctx context.Context, schemaName string) error {
	if !pg.ValidIdentifier(schemaName) {
		return errors.Join(pg.ErrInvalidIdentifier, fmt.Errorf("schema %q", schemaName))
	}

	return p.withSchemaLock(ctx, schemaName, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "CREATE SCHEMA "+pgx.Identifier{schemaName}.Sanitize()); err != nil {
			return fmt.Errorf("create schema %q: %w", schemaName, err)
		}
		// Pin search_path for the rest of the transaction so seed DDL
		// lands in the new schema without qualifying names.
		if _, err := tx.Exec(ctx, "SET LOCAL search_path TO "+pgx.Identifier{schemaName}.Sanitize()); err != nil {
			return fmt.Errorf("set search_path to %q: %w", schemaName, err)
		}
		for _, stmt := range p.seed {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("seed schema %q: %w", schemaName, err)
			}
		}
		return nil
	})
}

func (p *PGProvisioner) DropSchema(ctx context.Context, schemaName string) error {
	if !pg.ValidIdentifier(schemaName) {
		return errors.Join(pg.ErrInvalidIdentifier, fmt.Errorf("schema %q", schemaName))
	}

	return p.withSchemaLock(ctx, schemaName, func(tx pgx.Tx) error {
		// IF EXISTS keeps teardown retryable after a partially failed
		// provisioning or a repeated delete.
		if _, err := tx.Exec(ctx, "DROP SCHEMA IF EXISTS "+pgx.Identifier{schemaName}.Sanitize()+" CASCADE"); err != nil {
			return fmt.Errorf("drop schema %q: %w", schemaName, err)
		}
		return nil
	})
}

// withSchemaLock runs fn in a transaction holding the advisory lock
// for schemaName. The lock releases with the transaction.
func (p *PGProvisioner) withSchemaLock(ctx context.Context, schemaName string, fn func(tx pgx.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin provisioning tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", schemaName); err != nil {
		return fmt.Errorf("lock schema %q: %w", schemaName, err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
