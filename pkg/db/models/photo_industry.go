package models

import (
	"time"

	"github.com/google/uuid"
)

// PhotoIndustry links one photo to one industry. PromoterID, StoreID and
// VisitID are denormalized from the owning visit at insert time (inside the
// same transaction) so coverage aggregation never joins through photos.
// Unique on (photo_id, industry_id): a photo may cover several industries,
// but never the same industry twice.
type PhotoIndustry struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PhotoID    uuid.UUID `gorm:"column:photo_id;type:uuid;not null;uniqueIndex:ux_photo_industries_pair"`
	IndustryID uuid.UUID `gorm:"column:industry_id;type:uuid;not null;uniqueIndex:ux_photo_industries_pair"`
	PromoterID uuid.UUID `gorm:"column:promoter_id;type:uuid;not null;index"`
	StoreID    uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	VisitID    uuid.UUID `gorm:"column:visit_id;type:uuid;not null;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
