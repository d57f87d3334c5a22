package models

import (
	"time"

	"github.com/google/uuid"
)

// PhotoQuota is the configurable per-promoter target for display ("other")
// photos per visit. When a promoter has no active quota row the reporter
// falls back to a legacy fixed target.
type PhotoQuota struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PromoterID     uuid.UUID `gorm:"column:promoter_id;type:uuid;not null;index"`
	ExpectedPhotos int       `gorm:"column:expected_photos;not null"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
