package payloads

import (
	"time"

	"github.com/google/uuid"
)

// VisitCheckedInEvent is emitted when a promoter opens a visit.
type VisitCheckedInEvent struct {
	VisitID    uuid.UUID `json:"visit_id"`
	PromoterID uuid.UUID `json:"promoter_id"`
	StoreID    uuid.UUID `json:"store_id"`
	CheckInAt  time.Time `json:"check_in_at"`
}

// VisitCheckedOutEvent is emitted when a visit closes. HoursWorked is the
// closed interval in hours.
type VisitCheckedOutEvent struct {
	VisitID     uuid.UUID `json:"visit_id"`
	PromoterID  uuid.UUID `json:"promoter_id"`
	StoreID     uuid.UUID `json:"store_id"`
	CheckInAt   time.Time `json:"check_in_at"`
	CheckOutAt  time.Time `json:"check_out_at"`
	HoursWorked float64   `json:"hours_worked"`
}

// PhotoAttributedEvent is emitted when a photo gains an industry attribution.
type PhotoAttributedEvent struct {
	PhotoID    uuid.UUID `json:"photo_id"`
	IndustryID uuid.UUID `json:"industry_id"`
	VisitID    uuid.UUID `json:"visit_id"`
	PromoterID uuid.UUID `json:"promoter_id"`
	StoreID    uuid.UUID `json:"store_id"`
}

// RouteReplacedEvent is emitted after a promoter's route is replaced
// wholesale. StoreIDs preserves route order.
type RouteReplacedEvent struct {
	PromoterID uuid.UUID   `json:"promoter_id"`
	StoreIDs   []uuid.UUID `json:"store_ids"`
	StopCount  int         `json:"stop_count"`
}
