package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
)

// IndustryAssignment grants a promoter the authorization to attribute photos
// to an industry. StoreID nil is the wildcard variant: valid at every store.
type IndustryAssignment struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PromoterID uuid.UUID  `gorm:"column:promoter_id;type:uuid;not null;index"`
	IndustryID uuid.UUID  `gorm:"column:industry_id;type:uuid;not null;index"`
	StoreID    *uuid.UUID `gorm:"column:store_id;type:uuid"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Scope returns the explicit authorization variant for the row.
func (a IndustryAssignment) Scope() enums.AssignmentScope {
	if a.StoreID == nil {
		return enums.AssignmentScopeAllStores
	}
	return enums.AssignmentScopeStore
}

// Authorizes reports whether this assignment permits attribution at the given
// store. The wildcard variant matches any store.
func (a IndustryAssignment) Authorizes(storeID uuid.UUID) bool {
	if !a.IsActive {
		return false
	}
	switch a.Scope() {
	case enums.AssignmentScopeAllStores:
		return true
	default:
		return *a.StoreID == storeID
	}
}
