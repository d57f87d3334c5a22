package visits

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/types"
)

// LocationDTO is a device-reported GPS fix.
type LocationDTO struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

func (l LocationDTO) toPoint() types.GeographyPoint {
	return types.GeographyPoint{Lat: l.Lat, Lng: l.Lng}
}

// CheckInRequest opens a visit at a store. The facade photo is captured at
// the door and stored alongside the visit in the same transaction.
type CheckInRequest struct {
	StoreID        uuid.UUID   `json:"store_id" validate:"required"`
	Location       LocationDTO `json:"location" validate:"required"`
	FacadePhotoURL string      `json:"facade_photo_url" validate:"required,url"`
}

// CheckOutRequest closes the visit with a closing facade photo.
type CheckOutRequest struct {
	Location       LocationDTO `json:"location" validate:"required"`
	FacadePhotoURL string      `json:"facade_photo_url" validate:"required,url"`
}

// PhotoInput is one photo in a batch attach. Facade types replace the
// previous photo of the same type; display photos accumulate.
type PhotoInput struct {
	URL      string       `json:"url" validate:"required,url"`
	Type     string       `json:"type" validate:"required"`
	Location *LocationDTO `json:"location,omitempty"`
}

// AttachPhotosRequest adds photos to a visit the promoter owns.
type AttachPhotosRequest struct {
	Photos []PhotoInput `json:"photos" validate:"required,min=1,max=50,dive"`
}

// VisitDTO is the transport shape of a visit.
type VisitDTO struct {
	ID               uuid.UUID             `json:"id"`
	PromoterID       uuid.UUID             `json:"promoter_id"`
	StoreID          uuid.UUID             `json:"store_id"`
	CheckInAt        time.Time             `json:"check_in_at"`
	CheckInLocation  types.GeographyPoint  `json:"check_in_location"`
	CheckOutAt       *time.Time            `json:"check_out_at,omitempty"`
	CheckOutLocation *types.GeographyPoint `json:"check_out_location,omitempty"`
	HoursWorked      *float64              `json:"hours_worked,omitempty"`
	Open             bool                  `json:"open"`
}

// PhotoDTO is the transport shape of a visit photo.
type PhotoDTO struct {
	ID        uuid.UUID             `json:"id"`
	VisitID   uuid.UUID             `json:"visit_id"`
	URL       string                `json:"url"`
	Type      enums.PhotoType       `json:"type"`
	Location  *types.GeographyPoint `json:"location,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// VisitPageDTO is a cursor-paginated visit listing.
type VisitPageDTO struct {
	Visits     []VisitDTO `json:"visits"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ListFilter narrows the visit listing.
type ListFilter struct {
	PromoterID uuid.UUID
	StoreID    uuid.UUID
	From       time.Time
	To         time.Time
	Limit      int
	Cursor     string
}

func visitToDTO(v models.Visit) VisitDTO {
	dto := VisitDTO{
		ID:               v.ID,
		PromoterID:       v.PromoterID,
		StoreID:          v.StoreID,
		CheckInAt:        v.CheckInAt,
		CheckInLocation:  v.CheckInLocation,
		CheckOutAt:       v.CheckOutAt,
		CheckOutLocation: v.CheckOutLocation,
		Open:             v.IsOpen(),
	}
	if hours, ok := v.HoursWorked(); ok {
		dto.HoursWorked = &hours
	}
	return dto
}

func photoToDTO(p models.Photo) PhotoDTO {
	return PhotoDTO{
		ID:        p.ID,
		VisitID:   p.VisitID,
		URL:       p.URL,
		Type:      p.Type,
		Location:  p.Location,
		CreatedAt: p.CreatedAt,
	}
}
