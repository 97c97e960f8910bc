package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// PostgresStore persists the tenant directory in the shared schema's
// "tenants" table (see migrations/). All tenant-scoped data lives in
// per-tenant schemas; this table is the only shared tenancy state.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const recordColumns = `id, name, schema_name, status, version, created_at, updated_at`

func scanRecord(row pgx.Row) (tenant.Record, error) {
	var rec tenant.Record
	var status string
	err := row.Scan(&rec.ID, &rec.Name, &rec.SchemaName, &status, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return tenant.Record{}, err
	}
	rec.Status, err = tenant.ParseStatus(status)
	if err != nil {
		return tenant.Record{}, err
	}
	return rec, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (tenant.Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM tenants WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return tenant.Record{}, tenant.ErrTenantNotFound
		}
		return tenant.Record{}, fmt.Errorf("directory: get tenant %q: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) Create(ctx context.Context, rec tenant.Record) (tenant.Record, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tenants (id, name, schema_name, status, version)
		 VALUES ($1, $2, $3, $4, 1)
		 RETURNING `+recordColumns,
		rec.ID, rec.Name, rec.SchemaName, string(rec.Status))
	created, err := scanRecord(row)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return tenant.Record{}, fmt.Errorf("directory: tenant %q already exists: %w", rec.ID, err)
		}
		return tenant.Record{}, fmt.Errorf("directory: create tenant %q: %w", rec.ID, err)
	}
	return created, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, target tenant.Status, expectedVersion int64) (tenant.Record, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tenants
		 SET status = $2, version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $3
		 RETURNING `+recordColumns,
		id, string(target), expectedVersion)
	rec, err := scanRecord(row)
	if err == nil {
		return rec, nil
	}
	if !pg.IsNotFoundError(err) {
		return tenant.Record{}, fmt.Errorf("directory: update status of %q: %w", id, err)
	}

	// No row matched: either the tenant is gone or the version moved.
	exists, exErr := s.Exists(ctx, id)
	if exErr != nil {
		return tenant.Record{}, exErr
	}
	if !exists {
		return tenant.Record{}, tenant.ErrTenantNotFound
	}
	return tenant.Record{}, ErrVersionConflict
}

func (s *PostgresStore) UpdateName(ctx context.Context, id, name string) (tenant.Record, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tenants SET name = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+recordColumns,
		id, name)
	rec, err := scanRecord(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return tenant.Record{}, tenant.ErrTenantNotFound
		}
		return tenant.Record{}, fmt.Errorf("directory: rename tenant %q: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, f ListFilter) ([]tenant.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM tenants`
	args := make([]any, 0, 3)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		query += fmt.Sprintf(` WHERE status = $%d`, len(args))
	}
	query += ` ORDER BY created_at, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("directory: list tenants: %w", err)
	}
	defer rows.Close()

	var recs []tenant.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("directory: list tenants: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: list tenants: %w", err)
	}
	return recs, nil
}

func (s *PostgresStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE id = $1)`, id).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("directory: tenant exists %q: %w", id, err)
	}
	return exists, nil
}
