package enums

import "fmt"

// HoursStatus classifies worked-vs-expected hours for a promoter/store pair.
type HoursStatus string

const (
	HoursStatusComplete   HoursStatus = "complete"
	HoursStatusWarning    HoursStatus = "warning"
	HoursStatusIncomplete HoursStatus = "incomplete"
	HoursStatusNoTarget   HoursStatus = "no_target"
)

var validHoursStatuses = []HoursStatus{
	HoursStatusComplete,
	HoursStatusWarning,
	HoursStatusIncomplete,
	HoursStatusNoTarget,
}

// String implements fmt.Stringer.
func (s HoursStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known HoursStatus.
func (s HoursStatus) IsValid() bool {
	for _, candidate := range validHoursStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseHoursStatus converts raw input into an HoursStatus.
func ParseHoursStatus(value string) (HoursStatus, error) {
	for _, candidate := range validHoursStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid hours status %q", value)
}
