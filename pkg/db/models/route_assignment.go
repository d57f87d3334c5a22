package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RouteAssignment places one store on a promoter's ordered route, optionally
// with an expected-hours target for the hours reporter. A promoter's route is
// replaced wholesale (delete then recreate in one transaction), never patched.
type RouteAssignment struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PromoterID    uuid.UUID        `gorm:"column:promoter_id;type:uuid;not null;uniqueIndex:ux_route_assignments_stop"`
	StoreID       uuid.UUID        `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_route_assignments_stop"`
	Position      int              `gorm:"column:position;not null"`
	ExpectedHours *decimal.Decimal `gorm:"column:expected_hours;type:numeric(6,2)"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
