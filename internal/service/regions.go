package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/nzwalks/api/internal/dto"
	"github.com/octobees/nzwalks/api/internal/entity"
	"github.com/octobees/nzwalks/api/internal/repository"
)

var (
	// ErrInvalidRegionID is returned when an identifier is not a valid UUID.
	ErrInvalidRegionID = errors.New("invalid region id")
	// ErrRegionIDMismatch is returned when the payload id differs from the path id.
	ErrRegionIDMismatch = errors.New("region id in payload does not match path")
	// ErrInvalidVersion is returned when a supplied concurrency token cannot be parsed.
	ErrInvalidVersion = errors.New("invalid region version")
)

// RegionResult bundles a region DTO with its concurrency token.
type RegionResult struct {
	Region  dto.RegionDto
	Version int64
}

// RegionService exposes CRUD use cases for regions.
type RegionService struct {
	repo repository.RegionsRepository
}

// NewRegionService builds a new RegionService instance.
func NewRegionService(repo repository.RegionsRepository) *RegionService {
	return &RegionService{repo: repo}
}

// ToRegionDto maps a stored region onto its transfer shape.
func ToRegionDto(region entity.Region) dto.RegionDto {
	return dto.RegionDto{
		ID:          region.ID,
		Code:        region.Code,
		Name:        region.Name,
		RegionImage: region.RegionImage,
	}
}

func toResult(region *entity.Region) *RegionResult {
	return &RegionResult{Region: ToRegionDto(*region), Version: region.Version}
}

// ParseRegionID parses a textual identifier.
func ParseRegionID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, ErrInvalidRegionID
	}
	return id, nil
}

// ParseVersion parses an If-Match style token such as `"3"` or `W/"3"`.
func ParseVersion(raw string) (int64, error) {
	token := strings.TrimSpace(raw)
	token = strings.TrimPrefix(token, "W/")
	token = strings.Trim(token, `"`)
	version, err := strconv.ParseInt(token, 10, 64)
	if err != nil || version <= 0 {
		return 0, ErrInvalidVersion
	}
	return version, nil
}

// ListRegions returns every region as DTOs.
func (s *RegionService) ListRegions(ctx context.Context) ([]dto.RegionDto, error) {
	regions, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.RegionDto, 0, len(regions))
	for _, r := range regions {
		responses = append(responses, ToRegionDto(r))
	}
	return responses, nil
}

// GetRegion fetches a single region.
func (s *RegionService) GetRegion(ctx context.Context, id string) (*RegionResult, error) {
	regionID, err := ParseRegionID(id)
	if err != nil {
		return nil, err
	}

	region, err := s.repo.FindByID(ctx, regionID)
	if err != nil {
		return nil, err
	}
	return toResult(region), nil
}

// CreateRegion persists a new region under a freshly generated id.
func (s *RegionService) CreateRegion(ctx context.Context, req dto.AddRegionRequestDto) (*RegionResult, error) {
	region, err := s.repo.Create(ctx, entity.Region{
		ID:          uuid.New(),
		Code:        req.Code,
		Name:        req.Name,
		RegionImage: req.RegionImage,
	})
	if err != nil {
		return nil, err
	}
	return toResult(region), nil
}

// UpdateRegion replaces the mutable fields of a region. When expectedVersion is
// zero the currently stored version is used as the concurrency token.
func (s *RegionService) UpdateRegion(ctx context.Context, id string, req dto.UpdateRegionRequestDto, expectedVersion int64) (*RegionResult, error) {
	regionID, err := ParseRegionID(id)
	if err != nil {
		return nil, err
	}
	if req.ID != uuid.Nil && req.ID != regionID {
		return nil, ErrRegionIDMismatch
	}

	current, err := s.repo.FindByID(ctx, regionID)
	if err != nil {
		return nil, err
	}
	if expectedVersion == 0 {
		expectedVersion = current.Version
	}

	current.Code = req.Code
	current.Name = req.Name
	current.RegionImage = req.RegionImage

	updated, err := s.repo.Update(ctx, *current, expectedVersion)
	if err == nil {
		return toResult(updated), nil
	}
	if !errors.Is(err, repository.ErrConcurrentModification) {
		return nil, err
	}

	// The write lost a race; tell a vanished row apart from a stale one.
	exists, existsErr := s.repo.Exists(ctx, regionID)
	if existsErr != nil {
		return nil, fmt.Errorf("recheck region after conflict: %w", existsErr)
	}
	if !exists {
		return nil, repository.ErrRegionNotFound
	}
	return nil, err
}

// DeleteRegion removes a region by id.
func (s *RegionService) DeleteRegion(ctx context.Context, id string) error {
	regionID, err := ParseRegionID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, regionID)
}

// Ping checks the storage backend.
func (s *RegionService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
