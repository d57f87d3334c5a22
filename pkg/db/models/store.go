package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/types"
)

// Store is a retail location promoters visit.
type Store struct {
	ID        uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string                `gorm:"column:name;not null"`
	Address   string                `gorm:"column:address;not null"`
	City      string                `gorm:"column:city"`
	State     string                `gorm:"column:state"`
	Location  *types.GeographyPoint `gorm:"column:location;type:geography(Point,4326)"`
	IsActive  bool                  `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
