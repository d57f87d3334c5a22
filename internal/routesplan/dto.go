package routesplan

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
)

// StopInput is one ordered stop in a route replacement. Order in the request
// body is the route order.
type StopInput struct {
	StoreID       uuid.UUID `json:"store_id" validate:"required"`
	ExpectedHours *float64  `json:"expected_hours,omitempty" validate:"omitempty,min=0"`
}

// ReplaceRequest swaps a promoter's whole route. An empty list clears it.
type ReplaceRequest struct {
	Stops []StopInput `json:"stops" validate:"max=200,dive"`
}

// StopDTO is one stop of a stored route.
type StopDTO struct {
	StoreID       uuid.UUID        `json:"store_id"`
	StoreName     string           `json:"store_name,omitempty"`
	Position      int              `json:"position"`
	ExpectedHours *decimal.Decimal `json:"expected_hours,omitempty"`
}

// RouteDTO is a promoter's full ordered route.
type RouteDTO struct {
	PromoterID uuid.UUID `json:"promoter_id"`
	Stops      []StopDTO `json:"stops"`
}

func stopToDTO(assignment models.RouteAssignment, storeName string) StopDTO {
	return StopDTO{
		StoreID:       assignment.StoreID,
		StoreName:     storeName,
		Position:      assignment.Position,
		ExpectedHours: assignment.ExpectedHours,
	}
}
