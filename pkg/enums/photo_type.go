package enums

import "fmt"

// PhotoType represents the canonical photo_type enum in Postgres.
type PhotoType string

const (
	PhotoTypeFacadeCheckIn  PhotoType = "facade_checkin"
	PhotoTypeFacadeCheckOut PhotoType = "facade_checkout"
	PhotoTypeOther          PhotoType = "other"
)

var validPhotoTypes = []PhotoType{
	PhotoTypeFacadeCheckIn,
	PhotoTypeFacadeCheckOut,
	PhotoTypeOther,
}

// String implements fmt.Stringer.
func (p PhotoType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PhotoType.
func (p PhotoType) IsValid() bool {
	for _, candidate := range validPhotoTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsFacade reports whether the type follows upsert-by-type semantics. A visit
// carries at most one photo per facade type; "other" photos always append.
func (p PhotoType) IsFacade() bool {
	return p == PhotoTypeFacadeCheckIn || p == PhotoTypeFacadeCheckOut
}

// ParsePhotoType converts raw input into a PhotoType.
func ParsePhotoType(value string) (PhotoType, error) {
	for _, candidate := range validPhotoTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid photo type %q", value)
}
