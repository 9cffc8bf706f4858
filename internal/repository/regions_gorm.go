package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/octobees/nzwalks/api/internal/entity"
)

// GormRegionsRepository implements RegionsRepository on top of a gorm session.
type GormRegionsRepository struct {
	db *gorm.DB
}

// NewGormRegionsRepository wires a gorm backed repository.
func NewGormRegionsRepository(db *gorm.DB) *GormRegionsRepository {
	return &GormRegionsRepository{db: db}
}

var _ RegionsRepository = (*GormRegionsRepository)(nil)

func (r *GormRegionsRepository) List(ctx context.Context) ([]entity.Region, error) {
	regions := make([]entity.Region, 0)
	if err := r.db.WithContext(ctx).Find(&regions).Error; err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	return regions, nil
}

func (r *GormRegionsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Region, error) {
	var region entity.Region
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&region).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegionNotFound
		}
		return nil, fmt.Errorf("query region by id: %w", err)
	}
	return &region, nil
}

func (r *GormRegionsRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Region{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check region exists: %w", err)
	}
	return count > 0, nil
}

func (r *GormRegionsRepository) Create(ctx context.Context, region entity.Region) (*entity.Region, error) {
	region.Version = 1
	if err := r.db.WithContext(ctx).Create(&region).Error; err != nil {
		return nil, fmt.Errorf("insert region: %w", err)
	}
	return &region, nil
}

// Update issues a conditional write keyed on (id, version).
func (r *GormRegionsRepository) Update(ctx context.Context, region entity.Region, expectedVersion int64) (*entity.Region, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Region{}).
		Where("id = ? AND version = ?", region.ID, expectedVersion).
		Updates(map[string]any{
			"code":         region.Code,
			"name":         region.Name,
			"region_image": region.RegionImage,
			"version":      gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update region: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrConcurrentModification
	}

	region.Version = expectedVersion + 1
	return &region, nil
}

func (r *GormRegionsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Region{})
	if res.Error != nil {
		return fmt.Errorf("delete region: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRegionNotFound
	}
	return nil
}

func (r *GormRegionsRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("gorm sql handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
