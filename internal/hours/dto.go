package hours

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
)

// Query narrows the report. PromoterID nil means the whole fleet. Start and
// End are inclusive calendar dates; a same-day pair covers that full day.
type Query struct {
	PromoterID uuid.UUID
	Start      time.Time
	End        time.Time
}

// EntryDTO is one (promoter, store) pair with an hours target.
type EntryDTO struct {
	PromoterID    uuid.UUID         `json:"promoter_id"`
	StoreID       uuid.UUID         `json:"store_id"`
	StoreName     string            `json:"store_name,omitempty"`
	ExpectedHours decimal.Decimal   `json:"expected_hours"`
	WorkedHours   decimal.Decimal   `json:"worked_hours"`
	Percentage    decimal.Decimal   `json:"percentage"`
	Status        enums.HoursStatus `json:"status"`
}

// PromoterDTO rolls a promoter's entries up by summing expected and worked
// before dividing, so stores with small targets cannot skew the rate.
type PromoterDTO struct {
	PromoterID    uuid.UUID         `json:"promoter_id"`
	Entries       []EntryDTO        `json:"entries"`
	TotalExpected decimal.Decimal   `json:"total_expected"`
	TotalWorked   decimal.Decimal   `json:"total_worked"`
	Percentage    decimal.Decimal   `json:"percentage"`
	Status        enums.HoursStatus `json:"status"`
}

// ReportDTO is the full hours report for a window.
type ReportDTO struct {
	Start     string        `json:"start"`
	End       string        `json:"end"`
	Promoters []PromoterDTO `json:"promoters"`
}
