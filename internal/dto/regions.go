package dto

import "github.com/google/uuid"

// RegionDto is the region representation returned to clients.
type RegionDto struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	RegionImage *string   `json:"regionImage"`
}

// AddRegionRequestDto captures region creation payloads. The id is server assigned.
type AddRegionRequestDto struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	RegionImage *string `json:"regionImage"`
}

// UpdateRegionRequestDto is a full replacement payload. ID is optional but must
// match the path identifier when present.
type UpdateRegionRequestDto struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	RegionImage *string   `json:"regionImage"`
}
