package attribution

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
)

// AttributeRequest is the body of POST /photos/{photoID}/industries.
type AttributeRequest struct {
	IndustryID uuid.UUID `json:"industry_id" validate:"required"`
}

// AttributionDTO is the API shape of a photo-industry link.
type AttributionDTO struct {
	ID         uuid.UUID `json:"id"`
	PhotoID    uuid.UUID `json:"photo_id"`
	IndustryID uuid.UUID `json:"industry_id"`
	VisitID    uuid.UUID `json:"visit_id"`
	PromoterID uuid.UUID `json:"promoter_id"`
	StoreID    uuid.UUID `json:"store_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func attributionToDTO(link models.PhotoIndustry) AttributionDTO {
	return AttributionDTO{
		ID:         link.ID,
		PhotoID:    link.PhotoID,
		IndustryID: link.IndustryID,
		VisitID:    link.VisitID,
		PromoterID: link.PromoterID,
		StoreID:    link.StoreID,
		CreatedAt:  link.CreatedAt,
	}
}
