package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/nzwalks/api/internal/entity"
)

var (
	// ErrRegionNotFound is returned when no region matches the identifier.
	ErrRegionNotFound = errors.New("region not found")
	// ErrConcurrentModification is returned when a conditional update finds the
	// stored version no longer matches the expected one (or the row is gone).
	ErrConcurrentModification = errors.New("region was modified concurrently")
)

// RegionsRepository describes persistence operations for regions.
type RegionsRepository interface {
	List(ctx context.Context) ([]entity.Region, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Region, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, region entity.Region) (*entity.Region, error)
	Update(ctx context.Context, region entity.Region, expectedVersion int64) (*entity.Region, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

const regionColumns = `id, code, name, region_image, version`

// PGXRegionsRepository implements RegionsRepository with pgx.
type PGXRegionsRepository struct {
	pool pgxPool
}

// NewPGXRegionsRepository wires a pgx backed repository.
func NewPGXRegionsRepository(pool *pgxpool.Pool) *PGXRegionsRepository {
	return &PGXRegionsRepository{pool: pool}
}

var _ pgxPool = (*pgxpool.Pool)(nil)
var _ RegionsRepository = (*PGXRegionsRepository)(nil)

func scanRegion(row pgx.Row) (*entity.Region, error) {
	var region entity.Region
	if err := row.Scan(&region.ID, &region.Code, &region.Name, &region.RegionImage, &region.Version); err != nil {
		return nil, err
	}
	return &region, nil
}

// List returns every region in storage order.
func (r *PGXRegionsRepository) List(ctx context.Context) ([]entity.Region, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+regionColumns+` FROM regions`)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	regions := make([]entity.Region, 0)
	for rows.Next() {
		region, err := scanRegion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan region row: %w", err)
		}
		regions = append(regions, *region)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regions: %w", err)
	}
	return regions, nil
}

// FindByID retrieves a region by identifier.
func (r *PGXRegionsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Region, error) {
	region, err := scanRegion(r.pool.QueryRow(ctx, `SELECT `+regionColumns+` FROM regions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegionNotFound
		}
		return nil, fmt.Errorf("query region by id: %w", err)
	}
	return region, nil
}

// Exists reports whether a region with the given id is stored.
func (r *PGXRegionsRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM regions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check region exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new region row. The caller assigns the id.
func (r *PGXRegionsRepository) Create(ctx context.Context, region entity.Region) (*entity.Region, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO regions (id, code, name, region_image, version)
        VALUES ($1, $2, $3, $4, 1)
        RETURNING `+regionColumns, region.ID, region.Code, region.Name, region.RegionImage)

	created, err := scanRegion(row)
	if err != nil {
		return nil, fmt.Errorf("insert region: %w", err)
	}
	return created, nil
}

// Update overwrites the mutable fields if the stored version still equals expectedVersion.
func (r *PGXRegionsRepository) Update(ctx context.Context, region entity.Region, expectedVersion int64) (*entity.Region, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE regions
        SET code = $1, name = $2, region_image = $3, version = version + 1
        WHERE id = $4 AND version = $5
        RETURNING `+regionColumns, region.Code, region.Name, region.RegionImage, region.ID, expectedVersion)

	updated, err := scanRegion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConcurrentModification
		}
		return nil, fmt.Errorf("update region: %w", err)
	}
	return updated, nil
}

// Delete removes a region by id.
func (r *PGXRegionsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM regions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete region: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrRegionNotFound
	}
	return nil
}

// Ping verifies the pool can reach the database.
func (r *PGXRegionsRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
