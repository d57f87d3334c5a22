package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Industry is a brand/vendor whose products a store may be required to
// display. Industries are soft-deactivated, never deleted, so historical
// coverage stays reproducible.
type Industry struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string         `gorm:"column:name;not null;uniqueIndex"`
	Aliases   pq.StringArray `gorm:"column:aliases;type:text[]"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// StoreIndustry links a store to an industry it is contractually required to
// showcase. Deactivation is the soft-delete flag of the link, not the row.
type StoreIndustry struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID    uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_store_industries_pair"`
	IndustryID uuid.UUID `gorm:"column:industry_id;type:uuid;not null;uniqueIndex:ux_store_industries_pair"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
