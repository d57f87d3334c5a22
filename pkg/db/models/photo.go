package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/types"
)

// Photo belongs to exactly one visit. The two facade types are unique per
// visit (ux_photos_visit_facade, partial on type <> 'other'); re-uploading a
// facade photo replaces the row's URL instead of duplicating it.
type Photo struct {
	ID        uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VisitID   uuid.UUID             `gorm:"column:visit_id;type:uuid;not null;index"`
	URL       string                `gorm:"column:url;not null"`
	Type      enums.PhotoType       `gorm:"column:type;type:photo_type;not null"`
	Location  *types.GeographyPoint `gorm:"column:location;type:geography(Point,4326)"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
