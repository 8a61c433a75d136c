package app

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"staybook/internal/domain"
)

const urlDateLayout = "2006-01-02"

// URL parameter names. The first block is the historical public set; the
// second carries the remaining filters so the URL stays the single source.
const (
	paramQuery        = "q"
	paramLocation     = "location"
	paramCheckIn      = "checkin"
	paramCheckOut     = "checkout"
	paramGuests       = "guests"
	paramRooms        = "rooms"
	paramMinPrice     = "minPrice"
	paramMaxPrice     = "maxPrice"
	paramStarRating   = "starRating"
	paramPropertyType = "propertyType"
	paramSort         = "sort"

	paramAmenities         = "amenities"
	paramReviewScore       = "reviewScore"
	paramDistance          = "distance"
	paramLat               = "lat"
	paramLng               = "lng"
	paramRadius            = "radius"
	paramFreeCancellation  = "freeCancellation"
	paramBreakfastIncluded = "breakfastIncluded"
	paramPetFriendly       = "petFriendly"
)

// ParseSearchURL builds a fresh state from query parameters. Malformed values
// are dropped and the default for that dimension is kept.
func ParseSearchURL(v url.Values) SearchState {
	s := InitialSearchState()
	s.Query = strings.TrimSpace(v.Get(paramQuery))

	f := domain.DefaultFilters()
	f.Location = strings.TrimSpace(v.Get(paramLocation))
	f.CheckInDate = parseDate(v.Get(paramCheckIn))
	f.CheckOutDate = parseDate(v.Get(paramCheckOut))
	if n, ok := parsePositiveInt(v.Get(paramGuests)); ok {
		f.Guests = &n
	}
	if n, ok := parsePositiveInt(v.Get(paramRooms)); ok {
		f.Rooms = &n
	}
	lo, okLo := parseFloat(v.Get(paramMinPrice))
	hi, okHi := parseFloat(v.Get(paramMaxPrice))
	if okLo && okHi {
		f.PriceRange = &domain.PriceRange{Min: lo, Max: hi}
	}
	for _, p := range splitList(v.Get(paramStarRating)) {
		if n, err := strconv.Atoi(p); err == nil && n >= 1 && n <= 5 {
			f.StarRating = append(f.StarRating, n)
		}
	}
	for _, p := range splitList(v.Get(paramPropertyType)) {
		f.PropertyType = append(f.PropertyType, domain.PropertyType(strings.ToUpper(p)))
	}
	f.Amenities = splitList(v.Get(paramAmenities))
	if x, ok := parseFloat(v.Get(paramReviewScore)); ok {
		f.ReviewScore = &x
	}
	if x, ok := parseFloat(v.Get(paramDistance)); ok {
		f.Distance = &x
	}
	lat, okLat := parseFloat(v.Get(paramLat))
	lng, okLng := parseFloat(v.Get(paramLng))
	if okLat && okLng {
		r, _ := parseFloat(v.Get(paramRadius))
		f.Coordinates = &domain.GeoPoint{Lat: lat, Lng: lng, Radius: r}
	}
	f.FreeCancellation = parseFlag(v.Get(paramFreeCancellation))
	f.BreakfastIncluded = parseFlag(v.Get(paramBreakfastIncluded))
	f.PetFriendly = parseFlag(v.Get(paramPetFriendly))
	s.Filters = f

	if so := domain.SortOption(v.Get(paramSort)); so.Valid() {
		s.SortBy = so
	}
	return s
}

// URLValues is the canonical query string for s. Defaults are omitted.
func (s SearchState) URLValues() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	f := s.Filters

	set(paramQuery, s.Query)
	set(paramLocation, f.Location)
	if f.CheckInDate != nil {
		set(paramCheckIn, f.CheckInDate.UTC().Format(urlDateLayout))
	}
	if f.CheckOutDate != nil {
		set(paramCheckOut, f.CheckOutDate.UTC().Format(urlDateLayout))
	}
	if f.Guests != nil && *f.Guests != 0 && *f.Guests != domain.DefaultGuests {
		set(paramGuests, strconv.Itoa(*f.Guests))
	}
	if f.Rooms != nil && *f.Rooms != 0 && *f.Rooms != domain.DefaultRooms {
		set(paramRooms, strconv.Itoa(*f.Rooms))
	}
	if f.PriceRange != nil {
		set(paramMinPrice, ftoa(f.PriceRange.Min))
		set(paramMaxPrice, ftoa(f.PriceRange.Max))
	}
	if len(f.StarRating) > 0 {
		parts := make([]string, len(f.StarRating))
		for i, n := range f.StarRating {
			parts[i] = strconv.Itoa(n)
		}
		set(paramStarRating, strings.Join(parts, ","))
	}
	if len(f.PropertyType) > 0 {
		parts := make([]string, len(f.PropertyType))
		for i, p := range f.PropertyType {
			parts[i] = string(p)
		}
		set(paramPropertyType, strings.Join(parts, ","))
	}
	set(paramAmenities, strings.Join(f.Amenities, ","))
	if f.ReviewScore != nil {
		set(paramReviewScore, ftoa(*f.ReviewScore))
	}
	if f.Distance != nil {
		set(paramDistance, ftoa(*f.Distance))
	}
	if f.Coordinates != nil {
		set(paramLat, ftoa(f.Coordinates.Lat))
		set(paramLng, ftoa(f.Coordinates.Lng))
		set(paramRadius, ftoa(f.Coordinates.Radius))
	}
	setFlag := func(k string, b *bool) {
		if b != nil {
			set(k, strconv.FormatBool(*b))
		}
	}
	setFlag(paramFreeCancellation, f.FreeCancellation)
	setFlag(paramBreakfastIncluded, f.BreakfastIncluded)
	setFlag(paramPetFriendly, f.PetFriendly)
	if s.SortBy != "" && s.SortBy != domain.DefaultSort {
		set(paramSort, string(s.SortBy))
	}
	return v
}

// URL renders URLValues as "?..." or "" when everything is default.
func (s SearchState) URL() string {
	if enc := s.URLValues().Encode(); enc != "" {
		return "?" + enc
	}
	return ""
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(urlDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func parsePositiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil && n > 0
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseFlag(s string) *bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
