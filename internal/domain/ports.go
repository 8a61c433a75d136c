package domain

import "context"

// Well-known keys of the session store.
const (
	KeyAccessToken    = "accessToken"
	KeyRefreshToken   = "refreshToken"
	KeyCart           = "cart"
	KeyLanguage       = "language"
	KeyTheme          = "theme"
	KeyRecentSearches = "recentSearches"
)

// KVStore is the per-session key/value persistence port. Writes are
// last-write-wins; there is no transaction across keys.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// StoreFactory hands out a KVStore scoped to one session.
type StoreFactory interface {
	ForSession(sessionID string) KVStore
}

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is one queued toast.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Notifier surfaces non-blocking, user-visible notices ("toasts").
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type AuthAPI interface {
	Login(ctx context.Context, c Credentials) (Session, error)
	Register(ctx context.Context, r Registration) (Session, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Profile(ctx context.Context) (*User, error)
	UpdateProfile(ctx context.Context, p UserPatch) (User, error)
}

type AvailabilityQuery struct {
	HotelID      string
	RoomID       string
	CheckInDate  string
	CheckOutDate string
}

type HotelAPI interface {
	SearchHotels(ctx context.Context, q SearchQuery) (SearchResults, error)
	GetHotel(ctx context.Context, id string) (Hotel, error)
	GetHotelBySlug(ctx context.Context, slug string) (Hotel, error)
	FeaturedHotels(ctx context.Context, limit int) ([]Hotel, error)
	Availability(ctx context.Context, q AvailabilityQuery) ([]Availability, error)
	BookHotel(ctx context.Context, r BookingRequest) (BookingConfirmation, error)
	Bookings(ctx context.Context, page, limit int) (BookingsPage, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	CancelBooking(ctx context.Context, id, reason string) (Booking, error)
}
