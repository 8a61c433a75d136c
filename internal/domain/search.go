package domain

import "time"

type SortOption string

const (
	SortPriceLowToHigh  SortOption = "PRICE_LOW_TO_HIGH"
	SortPriceHighToLow  SortOption = "PRICE_HIGH_TO_LOW"
	SortRatingHighToLow SortOption = "RATING_HIGH_TO_LOW"
	SortDistance        SortOption = "DISTANCE"
	SortPopularity      SortOption = "POPULARITY"
	SortNewest          SortOption = "NEWEST"

	DefaultSort = SortPopularity
)

const (
	DefaultGuests = 2
	DefaultRooms  = 1
)

func (s SortOption) Valid() bool {
	switch s {
	case SortPriceLowToHigh, SortPriceHighToLow, SortRatingHighToLow, SortDistance, SortPopularity, SortNewest:
		return true
	}
	return false
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type GeoPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"`
}

// SearchFilters is a plain bag; pointers distinguish "not set" from zero.
type SearchFilters struct {
	Location          string         `json:"location,omitempty"`
	CheckInDate       *time.Time     `json:"checkInDate,omitempty"`
	CheckOutDate      *time.Time     `json:"checkOutDate,omitempty"`
	Guests            *int           `json:"guests,omitempty"`
	Rooms             *int           `json:"rooms,omitempty"`
	PriceRange        *PriceRange    `json:"priceRange,omitempty"`
	StarRating        []int          `json:"starRating,omitempty"`
	PropertyType      []PropertyType `json:"propertyType,omitempty"`
	Amenities         []string       `json:"amenities,omitempty"`
	ReviewScore       *float64       `json:"reviewScore,omitempty"`
	Distance          *float64       `json:"distance,omitempty"`
	Coordinates       *GeoPoint      `json:"coordinates,omitempty"`
	FreeCancellation  *bool          `json:"freeCancellation,omitempty"`
	BreakfastIncluded *bool          `json:"breakfastIncluded,omitempty"`
	PetFriendly       *bool          `json:"petFriendly,omitempty"`
}

func DefaultFilters() SearchFilters {
	g, r := DefaultGuests, DefaultRooms
	return SearchFilters{Guests: &g, Rooms: &r}
}

// FilterKey names one filter dimension.
type FilterKey string

const (
	FilterLocation          FilterKey = "location"
	FilterCheckInDate       FilterKey = "checkInDate"
	FilterCheckOutDate      FilterKey = "checkOutDate"
	FilterGuests            FilterKey = "guests"
	FilterRooms             FilterKey = "rooms"
	FilterPriceRange        FilterKey = "priceRange"
	FilterStarRating        FilterKey = "starRating"
	FilterPropertyType      FilterKey = "propertyType"
	FilterAmenities         FilterKey = "amenities"
	FilterReviewScore       FilterKey = "reviewScore"
	FilterDistance          FilterKey = "distance"
	FilterCoordinates       FilterKey = "coordinates"
	FilterFreeCancellation  FilterKey = "freeCancellation"
	FilterBreakfastIncluded FilterKey = "breakfastIncluded"
	FilterPetFriendly       FilterKey = "petFriendly"
)

// Without returns a copy with one dimension unset. ok is false for unknown keys.
func (f SearchFilters) Without(k FilterKey) (SearchFilters, bool) {
	switch k {
	case FilterLocation:
		f.Location = ""
	case FilterCheckInDate:
		f.CheckInDate = nil
	case FilterCheckOutDate:
		f.CheckOutDate = nil
	case FilterGuests:
		f.Guests = nil
	case FilterRooms:
		f.Rooms = nil
	case FilterPriceRange:
		f.PriceRange = nil
	case FilterStarRating:
		f.StarRating = nil
	case FilterPropertyType:
		f.PropertyType = nil
	case FilterAmenities:
		f.Amenities = nil
	case FilterReviewScore:
		f.ReviewScore = nil
	case FilterDistance:
		f.Distance = nil
	case FilterCoordinates:
		f.Coordinates = nil
	case FilterFreeCancellation:
		f.FreeCancellation = nil
	case FilterBreakfastIncluded:
		f.BreakfastIncluded = nil
	case FilterPetFriendly:
		f.PetFriendly = nil
	default:
		return f, false
	}
	return f, true
}

// Merge overlays every set field of patch onto f. Location "" and nil slices
// mean "leave as is"; use Without to clear.
func (f SearchFilters) Merge(patch SearchFilters) SearchFilters {
	if patch.Location != "" {
		f.Location = patch.Location
	}
	if patch.CheckInDate != nil {
		f.CheckInDate = patch.CheckInDate
	}
	if patch.CheckOutDate != nil {
		f.CheckOutDate = patch.CheckOutDate
	}
	if patch.Guests != nil {
		f.Guests = patch.Guests
	}
	if patch.Rooms != nil {
		f.Rooms = patch.Rooms
	}
	if patch.PriceRange != nil {
		f.PriceRange = patch.PriceRange
	}
	if patch.StarRating != nil {
		f.StarRating = patch.StarRating
	}
	if patch.PropertyType != nil {
		f.PropertyType = patch.PropertyType
	}
	if patch.Amenities != nil {
		f.Amenities = patch.Amenities
	}
	if patch.ReviewScore != nil {
		f.ReviewScore = patch.ReviewScore
	}
	if patch.Distance != nil {
		f.Distance = patch.Distance
	}
	if patch.Coordinates != nil {
		f.Coordinates = patch.Coordinates
	}
	if patch.FreeCancellation != nil {
		f.FreeCancellation = patch.FreeCancellation
	}
	if patch.BreakfastIncluded != nil {
		f.BreakfastIncluded = patch.BreakfastIncluded
	}
	if patch.PetFriendly != nil {
		f.PetFriendly = patch.PetFriendly
	}
	return f
}

// ActiveCount counts dimensions that differ from the defaults.
func (f SearchFilters) ActiveCount() int {
	n := 0
	if f.Location != "" {
		n++
	}
	if f.CheckInDate != nil && f.CheckOutDate != nil {
		n++
	}
	if f.Guests != nil && *f.Guests != 0 && *f.Guests != DefaultGuests {
		n++
	}
	if f.Rooms != nil && *f.Rooms != 0 && *f.Rooms != DefaultRooms {
		n++
	}
	if f.PriceRange != nil {
		n++
	}
	if len(f.StarRating) > 0 {
		n++
	}
	if len(f.PropertyType) > 0 {
		n++
	}
	if len(f.Amenities) > 0 {
		n++
	}
	if f.ReviewScore != nil && *f.ReviewScore != 0 {
		n++
	}
	if f.Distance != nil && *f.Distance != 0 {
		n++
	}
	if f.FreeCancellation != nil && *f.FreeCancellation {
		n++
	}
	if f.BreakfastIncluded != nil && *f.BreakfastIncluded {
		n++
	}
	if f.PetFriendly != nil && *f.PetFriendly {
		n++
	}
	return n
}

type SearchQuery struct {
	Query   string
	Filters SearchFilters
	SortBy  SortOption
	Page    int
	Limit   int
}

type SearchResults struct {
	Hotels       []Hotel    `json:"hotels"`
	TotalResults int        `json:"totalResults"`
	SortBy       SortOption `json:"sortBy,omitempty"`
	Page         int        `json:"page"`
	TotalPages   int        `json:"totalPages"`
}
