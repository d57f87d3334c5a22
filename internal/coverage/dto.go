package coverage

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
)

// IndustryRefDTO identifies one industry in a coverage breakdown.
type IndustryRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// VisitSummaryDTO is the triage pointer to a store's most recent visit.
type VisitSummaryDTO struct {
	ID         uuid.UUID  `json:"id"`
	PromoterID uuid.UUID  `json:"promoter_id"`
	CheckInAt  time.Time  `json:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at,omitempty"`
}

// StoreCoverageDTO is one store's coverage for a day window.
type StoreCoverageDTO struct {
	StoreID         uuid.UUID        `json:"store_id"`
	StoreName       string           `json:"store_name"`
	Required        []IndustryRefDTO `json:"required"`
	Covered         []IndustryRefDTO `json:"covered"`
	Pending         []IndustryRefDTO `json:"pending"`
	PercentComplete int              `json:"percent_complete"`
	Complete        bool             `json:"complete"`
	LastVisit       *VisitSummaryDTO `json:"last_visit,omitempty"`
}

// StoreCoverageReportDTO rolls store coverage up to a fleet compliance rate.
// Stores without requirements are excluded from the rate's denominator.
type StoreCoverageReportDTO struct {
	Date                   string             `json:"date"`
	Stores                 []StoreCoverageDTO `json:"stores"`
	CompleteStores         int                `json:"complete_stores"`
	StoresWithRequirements int                `json:"stores_with_requirements"`
	ComplianceRate         int                `json:"compliance_rate"`
}

// VisitCoverageDTO scopes the coverage computation to one visit's
// attributions instead of the store's full-day set.
type VisitCoverageDTO struct {
	VisitID         uuid.UUID        `json:"visit_id"`
	PromoterID      uuid.UUID        `json:"promoter_id"`
	StoreID         uuid.UUID        `json:"store_id"`
	Required        []IndustryRefDTO `json:"required"`
	Covered         []IndustryRefDTO `json:"covered"`
	Pending         []IndustryRefDTO `json:"pending"`
	PercentComplete int              `json:"percent_complete"`
	Complete        bool             `json:"complete"`
}

// MissingPhotosEntryDTO flags a visit whose display-photo count fell short of
// the promoter's target.
type MissingPhotosEntryDTO struct {
	VisitID        uuid.UUID `json:"visit_id"`
	PromoterID     uuid.UUID `json:"promoter_id"`
	StoreID        uuid.UUID `json:"store_id"`
	CheckInAt      time.Time `json:"check_in_at"`
	PhotoCount     int       `json:"photo_count"`
	ExpectedPhotos int       `json:"expected_photos"`
	Missing        int       `json:"missing"`
	Flagged        bool      `json:"flagged"`
}

// MissingPhotosReportDTO lists every visit of the day with its photo target.
type MissingPhotosReportDTO struct {
	Date    string                  `json:"date"`
	Visits  []MissingPhotosEntryDTO `json:"visits"`
	Flagged int                     `json:"flagged"`
}

func industryRefs(industries []models.Industry) []IndustryRefDTO {
	refs := make([]IndustryRefDTO, 0, len(industries))
	for _, industry := range industries {
		refs = append(refs, IndustryRefDTO{ID: industry.ID, Name: industry.Name})
	}
	return refs
}

func visitSummary(v models.Visit) *VisitSummaryDTO {
	return &VisitSummaryDTO{
		ID:         v.ID,
		PromoterID: v.PromoterID,
		CheckInAt:  v.CheckInAt,
		CheckOutAt: v.CheckOutAt,
	}
}
