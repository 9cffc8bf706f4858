package entity

import "github.com/google/uuid"

// Region is the stored representation of a geographic region.
type Region struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code        string    `gorm:"not null"`
	Name        string    `gorm:"not null"`
	RegionImage *string
	// Version is the optimistic concurrency token, bumped on every successful update.
	Version int64 `gorm:"not null"`
}

// TableName pins the gorm table name to the one used by the pgx repository.
func (Region) TableName() string {
	return "regions"
}
