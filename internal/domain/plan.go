package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// TimeFilter narrows nearby searches by start time.
type TimeFilter string

const (
	FilterAll   TimeFilter = "all"
	FilterToday TimeFilter = "today" // starts within 24 hours
	FilterSoon  TimeFilter = "soon"  // starts within 3 hours
)

// ParseTimeFilter maps a query-string value to a TimeFilter. Unknown
// values fall back to FilterAll, matching the permissive query handling
// of the public API.
func ParseTimeFilter(s string) TimeFilter {
	switch TimeFilter(s) {
	case FilterToday, FilterSoon:
		return TimeFilter(s)
	default:
		return FilterAll
	}
}

// Location is a WGS84 point plus the human-readable place name shown on
// plan cards.
type Location struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	PlaceName string  `json:"placeName"`
}

// Creator is the public slice of the user who owns a plan.
type Creator struct {
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
	Initials string `json:"initials"`
}

// Initials derives the uppercase initials shown in plan avatars,
// e.g. "Ada Lovelace" -> "AL".
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Plan is a user-created meetup event.
type Plan struct {
	PlanID          string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Location        Location  `json:"location"`
	Datetime        time.Time `json:"datetime"`
	Participants    int       `json:"participants"`
	MaxParticipants int       `json:"maxParticipants"`
	// Distance is kilometers from the search point, formatted to one
	// decimal place. Zero ("0.0") outside of nearby results.
	Distance string `json:"distance"`
	// DistanceMeters is the store-native meter output before formatting.
	DistanceMeters float64   `json:"-"`
	Creator        Creator   `json:"creator"`
	CreatedAt      time.Time `json:"createdAt"`
}

type CreatePlanRequest struct {
	Title           string  `json:"title" validate:"required"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Lat             float64 `json:"lat" validate:"required,latitude"`
	Lng             float64 `json:"lng" validate:"required,longitude"`
	PlaceName       string  `json:"placeName" validate:"required"`
	Datetime        string  `json:"datetime" validate:"required"` // RFC 3339, must be in the future
	MaxParticipants int     `json:"maxParticipants" validate:"required,min=1,max=10"`
}

// NearbyQuery is a parsed /plans/nearby request.
type NearbyQuery struct {
	Lat    float64
	Lng    float64
	Radius float64 // meters
	Filter TimeFilter
}
