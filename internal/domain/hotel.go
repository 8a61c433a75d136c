package domain

type PropertyType string

const (
	PropertyHotel        PropertyType = "HOTEL"
	PropertyApartment    PropertyType = "APARTMENT"
	PropertyVilla        PropertyType = "VILLA"
	PropertyResort       PropertyType = "RESORT"
	PropertyHostel       PropertyType = "HOSTEL"
	PropertyBedBreakfast PropertyType = "BED_BREAKFAST"
	PropertyBoutique     PropertyType = "BOUTIQUE"
	PropertyBusiness     PropertyType = "BUSINESS"
	PropertyLuxury       PropertyType = "LUXURY"
	PropertyBudget       PropertyType = "BUDGET"
	PropertyChain        PropertyType = "CHAIN"
	PropertyIndependent  PropertyType = "INDEPENDENT"
)

type RoomType string

const (
	RoomStandard     RoomType = "STANDARD"
	RoomDeluxe       RoomType = "DELUXE"
	RoomSuite        RoomType = "SUITE"
	RoomExecutive    RoomType = "EXECUTIVE"
	RoomPresidential RoomType = "PRESIDENTIAL"
	RoomPenthouse    RoomType = "PENTHOUSE"
	RoomFamily       RoomType = "FAMILY"
	RoomStudio       RoomType = "STUDIO"
	RoomApartment    RoomType = "APARTMENT"
)

// Hotel is the summary the backend returns for search results and detail pages.
type Hotel struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Slug               string       `json:"slug"`
	ShortDescription   string       `json:"shortDescription,omitempty"`
	Address            string       `json:"address,omitempty"`
	City               string       `json:"city"`
	Country            string       `json:"country"`
	Latitude           *float64     `json:"latitude,omitempty"`
	Longitude          *float64     `json:"longitude,omitempty"`
	StarRating         *int         `json:"starRating,omitempty"`
	PropertyType       PropertyType `json:"propertyType"`
	IsFeatured         bool         `json:"isFeatured"`
	CheckInTime        string       `json:"checkInTime,omitempty"`
	CheckOutTime       string       `json:"checkOutTime,omitempty"`
	CancellationPolicy string       `json:"cancellationPolicy,omitempty"`
	Images             []string     `json:"images,omitempty"`
	Amenities          []string     `json:"amenities,omitempty"`
	Rooms              []Room       `json:"rooms,omitempty"`
	AverageRating      *float64     `json:"averageRating,omitempty"`
	ReviewCount        *int         `json:"reviewCount,omitempty"`
	StartingPrice      *float64     `json:"startingPrice,omitempty"`

	// provider ids, carried as data only
	RateHawkID   string `json:"rateHawkId,omitempty"`
	AmadeusID    string `json:"amadeusId,omitempty"`
	ExpediaID    string `json:"expediaId,omitempty"`
	BookingComID string `json:"bookingComId,omitempty"`
	HotelBedsID  string `json:"hotelBedsId,omitempty"`
	AgodaID      string `json:"agodaId,omitempty"`
}

type Room struct {
	ID             string   `json:"id"`
	HotelID        string   `json:"hotelId"`
	Name           string   `json:"name"`
	RoomType       RoomType `json:"roomType"`
	MaxOccupancy   int      `json:"maxOccupancy"`
	BedType        string   `json:"bedType,omitempty"`
	Amenities      []string `json:"amenities,omitempty"`
	TotalRooms     int      `json:"totalRooms"`
	AvailableRooms int      `json:"availableRooms"`
	BasePrice      float64  `json:"basePrice"`
	Currency       string   `json:"currency"`
	CleaningFee    *float64 `json:"cleaningFee,omitempty"`
	ServiceFee     *float64 `json:"serviceFee,omitempty"`
}

// Availability is a per-date price row. Provider prices are informational;
// nothing here reconciles them.
type Availability struct {
	ID              string   `json:"id"`
	HotelID         string   `json:"hotelId"`
	RoomID          string   `json:"roomId"`
	Date            string   `json:"date"`
	Price           float64  `json:"price"`
	AvailableRooms  int      `json:"availableRooms"`
	IsAvailable     bool     `json:"isAvailable"`
	RateHawkPrice   *float64 `json:"rateHawkPrice,omitempty"`
	AmadeusPrice    *float64 `json:"amadeusPrice,omitempty"`
	ExpediaPrice    *float64 `json:"expediaPrice,omitempty"`
	BookingComPrice *float64 `json:"bookingComPrice,omitempty"`
	HotelBedsPrice  *float64 `json:"hotelBedsPrice,omitempty"`
	AgodaPrice      *float64 `json:"agodaPrice,omitempty"`
}
