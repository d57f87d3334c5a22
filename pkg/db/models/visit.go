package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/types"
)

// Visit is one promoter's timed presence at one store, bounded by check-in
// and check-out. CheckOutAt is null while the visit is open. A partial unique
// index (ux_visits_open_promoter) allows at most one open visit per promoter.
type Visit struct {
	ID               uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PromoterID       uuid.UUID             `gorm:"column:promoter_id;type:uuid;not null;index"`
	StoreID          uuid.UUID             `gorm:"column:store_id;type:uuid;not null;index"`
	CheckInAt        time.Time             `gorm:"column:check_in_at;not null"`
	CheckInLocation  types.GeographyPoint  `gorm:"column:check_in_location;type:geography(Point,4326);not null"`
	CheckOutAt       *time.Time            `gorm:"column:check_out_at"`
	CheckOutLocation *types.GeographyPoint `gorm:"column:check_out_location;type:geography(Point,4326)"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// IsOpen reports whether the visit has not been checked out yet.
func (v Visit) IsOpen() bool {
	return v.CheckOutAt == nil
}

// HoursWorked returns the closed visit's duration in hours. It is defined
// only for closed visits; callers get ok=false while the visit is open.
func (v Visit) HoursWorked() (float64, bool) {
	if v.CheckOutAt == nil {
		return 0, false
	}
	return v.CheckOutAt.Sub(v.CheckInAt).Seconds() / 3600, true
}
