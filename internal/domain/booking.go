package domain

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingCheckedIn  BookingStatus = "CHECKED_IN"
	BookingCheckedOut BookingStatus = "CHECKED_OUT"
	BookingCancelled  BookingStatus = "CANCELLED"
	BookingNoShow     BookingStatus = "NO_SHOW"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

type GuestInfo struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
}

// BookingRequest is sent to /hotels/book. Dates are YYYY-MM-DD.
type BookingRequest struct {
	HotelID         string    `json:"hotelId" validate:"required"`
	RoomID          string    `json:"roomId" validate:"required"`
	CheckInDate     string    `json:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate    string    `json:"checkOutDate" validate:"required,datetime=2006-01-02"`
	Guests          int       `json:"guests" validate:"min=1"`
	Rooms           int       `json:"rooms" validate:"min=1"`
	GuestInfo       GuestInfo `json:"guestInfo"`
	SpecialRequests string    `json:"specialRequests,omitempty"`
	PaymentMethod   string    `json:"paymentMethod" validate:"required"`
}

type Booking struct {
	ID               string        `json:"id"`
	BookingReference string        `json:"bookingReference"`
	HotelID          string        `json:"hotelId"`
	RoomID           string        `json:"roomId,omitempty"`
	CheckInDate      time.Time     `json:"checkInDate"`
	CheckOutDate     time.Time     `json:"checkOutDate"`
	Nights           int           `json:"nights"`
	Rooms            int           `json:"rooms"`
	RoomTotal        float64       `json:"roomTotal"`
	Taxes            float64       `json:"taxes"`
	Fees             float64       `json:"fees"`
	TotalAmount      float64       `json:"totalAmount"`
	Currency         string        `json:"currency"`
	Status           BookingStatus `json:"status"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	CancelledAt      *time.Time    `json:"cancelledAt,omitempty"`
}

type BookingConfirmation struct {
	Booking    Booking `json:"booking"`
	PaymentURL string  `json:"paymentUrl,omitempty"`
}

type BookingsPage struct {
	Items []Booking `json:"data"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
