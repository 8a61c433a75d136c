package bookingapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"staybook/internal/domain"
)

const dateLayout = "2006-01-02"

func (c *Client) SearchHotels(ctx context.Context, q domain.SearchQuery) (domain.SearchResults, error) {
	var out domain.SearchResults
	err := c.do(ctx, call{method: http.MethodGet, route: "/hotels/search", path: "/hotels/search", query: searchParams(q), out: &out})
	return out, err
}

func (c *Client) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	var h domain.Hotel
	err := c.do(ctx, call{method: http.MethodGet, route: "/hotels/{id}", path: "/hotels/" + url.PathEscape(id), out: &h})
	return h, err
}

func (c *Client) GetHotelBySlug(ctx context.Context, slug string) (domain.Hotel, error) {
	var h domain.Hotel
	err := c.do(ctx, call{method: http.MethodGet, route: "/hotels/slug/{slug}", path: "/hotels/slug/" + url.PathEscape(slug), out: &h})
	return h, err
}

func (c *Client) FeaturedHotels(ctx context.Context, limit int) ([]domain.Hotel, error) {
	if limit <= 0 {
		limit = 6
	}
	var hs []domain.Hotel
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	err := c.do(ctx, call{method: http.MethodGet, route: "/hotels/featured", path: "/hotels/featured", query: q, out: &hs})
	return hs, err
}

func (c *Client) Availability(ctx context.Context, aq domain.AvailabilityQuery) ([]domain.Availability, error) {
	q := url.Values{
		"hotelId":      {aq.HotelID},
		"checkInDate":  {aq.CheckInDate},
		"checkOutDate": {aq.CheckOutDate},
	}
	if aq.RoomID != "" {
		q.Set("roomId", aq.RoomID)
	}
	var out []domain.Availability
	err := c.do(ctx, call{method: http.MethodGet, route: "/hotels/availability", path: "/hotels/availability", query: q, out: &out})
	return out, err
}

func (c *Client) BookHotel(ctx context.Context, r domain.BookingRequest) (domain.BookingConfirmation, error) {
	var out domain.BookingConfirmation
	err := c.do(ctx, call{method: http.MethodPost, route: "/hotels/book", path: "/hotels/book", body: r, out: &out})
	return out, err
}

func (c *Client) Bookings(ctx context.Context, page, limit int) (domain.BookingsPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	var out domain.BookingsPage
	q := url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}
	err := c.do(ctx, call{method: http.MethodGet, route: "/bookings", path: "/bookings", query: q, out: &out})
	return out, err
}

func (c *Client) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	var b domain.Booking
	err := c.do(ctx, call{method: http.MethodGet, route: "/bookings/{id}", path: "/bookings/" + url.PathEscape(id), out: &b})
	return b, err
}

func (c *Client) CancelBooking(ctx context.Context, id, reason string) (domain.Booking, error) {
	var b domain.Booking
	var body map[string]string
	if reason != "" {
		body = map[string]string{"reason": reason}
	}
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/bookings/{id}/cancel",
		path: "/bookings/" + url.PathEscape(id) + "/cancel", body: body, out: &b,
	})
	return b, err
}

// searchParams flattens a query the way the backend expects: scalars once,
// lists as repeated keys, dates as YYYY-MM-DD.
func searchParams(q domain.SearchQuery) url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	ftoa := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	date := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(dateLayout)
	}
	f := q.Filters

	set("query", q.Query)
	set("location", f.Location)
	set("checkInDate", date(f.CheckInDate))
	set("checkOutDate", date(f.CheckOutDate))
	if f.Guests != nil {
		set("guests", strconv.Itoa(*f.Guests))
	}
	if f.Rooms != nil {
		set("rooms", strconv.Itoa(*f.Rooms))
	}
	if f.PriceRange != nil {
		set("minPrice", ftoa(f.PriceRange.Min))
		set("maxPrice", ftoa(f.PriceRange.Max))
	}
	for _, s := range f.StarRating {
		v.Add("starRating", strconv.Itoa(s))
	}
	for _, p := range f.PropertyType {
		v.Add("propertyType", string(p))
	}
	for _, a := range f.Amenities {
		v.Add("amenities", a)
	}
	if f.ReviewScore != nil {
		set("reviewScore", ftoa(*f.ReviewScore))
	}
	if f.Distance != nil {
		set("distance", ftoa(*f.Distance))
	}
	if f.Coordinates != nil {
		set("lat", ftoa(f.Coordinates.Lat))
		set("lng", ftoa(f.Coordinates.Lng))
		set("radius", ftoa(f.Coordinates.Radius))
	}
	if f.FreeCancellation != nil {
		set("freeCancellation", strconv.FormatBool(*f.FreeCancellation))
	}
	if f.BreakfastIncluded != nil {
		set("breakfastIncluded", strconv.FormatBool(*f.BreakfastIncluded))
	}
	if f.PetFriendly != nil {
		set("petFriendly", strconv.FormatBool(*f.PetFriendly))
	}
	set("sortBy", string(q.SortBy))
	if q.Page > 0 {
		set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		set("limit", strconv.Itoa(q.Limit))
	}
	return v
}
