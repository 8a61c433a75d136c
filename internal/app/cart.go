package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

type stayInput struct {
	Guests int `validate:"min=1"`
	Rooms  int `validate:"min=1"`
}

// CartService holds one session's cart. Every mutation recomputes the
// aggregates from scratch and writes the whole cart back to the store.
type CartService struct {
	mu    sync.Mutex
	cart  domain.Cart
	store domain.KVStore
	note  domain.Notifier
	now   func() time.Time
}

func NewCartService(store domain.KVStore, note domain.Notifier) *CartService {
	return &CartService{
		cart:  domain.EmptyCart(time.Now().UTC()),
		store: store,
		note:  note,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Load restores a saved cart. A corrupt payload is logged and skipped.
func (s *CartService) Load(ctx context.Context) error {
	raw, ok, err := s.store.Get(ctx, domain.KeyCart)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}
	var c domain.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		log.Warn().Err(err).Msg("saved cart is not valid JSON, starting empty")
		return nil
	}
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	if c.Currency == "" {
		c.Currency = domain.DefaultCurrency
	}
	c.Recalculate()

	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
	return nil
}

func (s *CartService) AddItem(ctx context.Context, hotel domain.Hotel, room domain.Room,
	checkIn, checkOut time.Time, guests, rooms int) (domain.CartItem, error) {
	if err := validate.Struct(stayInput{Guests: guests, Rooms: rooms}); err != nil {
		return domain.CartItem{}, fmt.Errorf("%w: %s", domain.ErrInvalidRooms, validationMessage(err))
	}
	nights := domain.Nights(checkIn, checkOut)
	if nights < 1 {
		return domain.CartItem{}, domain.ErrInvalidStay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.cart.Clone().Items
	var (
		out    domain.CartItem
		merged bool
	)
	for i, it := range items {
		if !it.SameStay(room.ID, checkIn, checkOut) {
			continue
		}
		if it.Rooms <= 0 {
			// a patched-away quantity has nothing to scale from
			id := it.ID
			it = newCartItem(hotel, room, checkIn, checkOut, nights, guests, rooms)
			it.ID = id
		} else {
			f := float64(it.Rooms+rooms) / float64(it.Rooms)
			it.Rooms += rooms
			it.TotalPrice *= f
			it.Taxes *= f
			it.Fees *= f
			it.GrandTotal *= f
		}
		items[i] = it
		out, merged = it, true
		break
	}
	if !merged {
		out = newCartItem(hotel, room, checkIn, checkOut, nights, guests, rooms)
		items = append(items, out)
	}

	if err := s.commit(ctx, items); err != nil {
		return out, err
	}
	if merged {
		observability.ObserveCart("merge")
		s.note.Success("Updated booking quantity!")
	} else {
		observability.ObserveCart("add")
		s.note.Success("Added to cart!")
	}
	return out, nil
}

// CartItemID derives an item id from the full merge key, so two stays of the
// same room that only differ in check-out never share an id.
func CartItemID(roomID string, checkIn, checkOut time.Time) string {
	return fmt.Sprintf("%s-%d-%d", roomID, checkIn.UnixMilli(), checkOut.UnixMilli())
}

func newCartItem(hotel domain.Hotel, room domain.Room, checkIn, checkOut time.Time, nights, guests, rooms int) domain.CartItem {
	base := room.BasePrice * float64(nights) * float64(rooms)
	taxes := base * domain.TaxRate
	var fees float64
	if room.ServiceFee != nil {
		fees = *room.ServiceFee * float64(nights) * float64(rooms)
	}
	cur := room.Currency
	if cur == "" {
		cur = domain.DefaultCurrency
	}
	hotel.Rooms = nil // the room travels separately
	return domain.CartItem{
		ID:           CartItemID(room.ID, checkIn, checkOut),
		Hotel:        hotel,
		Room:         room,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Nights:       nights,
		Rooms:        rooms,
		Guests:       guests,
		TotalPrice:   base,
		Taxes:        taxes,
		Fees:         fees,
		GrandTotal:   base + taxes + fees,
		Currency:     cur,
	}
}

func (s *CartService) RemoveItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.CartItem, 0, len(s.cart.Items))
	for _, it := range s.cart.Items {
		if it.ID != itemID {
			items = append(items, it)
		}
	}
	if len(items) == len(s.cart.Items) {
		return domain.ErrItemNotFound
	}
	if err := s.commit(ctx, items); err != nil {
		return err
	}
	observability.ObserveCart("remove")
	s.note.Success("Removed from cart!")
	return nil
}

// UpdateItem shallow-merges patch into the item. The item's own derived
// totals are left as patched; only the cart aggregates are rebuilt.
func (s *CartService) UpdateItem(ctx context.Context, itemID string, patch domain.CartItemPatch) (domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.cart.Clone().Items
	for i, it := range items {
		if it.ID != itemID {
			continue
		}
		items[i] = it.Apply(patch)
		if err := s.commit(ctx, items); err != nil {
			return items[i], err
		}
		observability.ObserveCart("update")
		return items[i], nil
	}
	return domain.CartItem{}, domain.ErrItemNotFound
}

func (s *CartService) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := domain.EmptyCart(s.now())
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.cart = next
	observability.ObserveCart("clear")
	s.note.Success("Cart cleared!")
	return nil
}

// ItemCount is the number of rooms across all items.
func (s *CartService) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.cart.Items {
		n += it.Rooms
	}
	return n
}

func (s *CartService) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cart.Items) == 0
}

// Cart returns a copy of the current cart.
func (s *CartService) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// commit builds the next cart from items and persists it. s.cart only
// changes once the store accepted the write. Caller holds mu.
func (s *CartService) commit(ctx context.Context, items []domain.CartItem) error {
	next := s.cart.Clone()
	next.Items = items
	next.Recalculate()
	next.UpdatedAt = s.now()
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.cart = next
	return nil
}

func (s *CartService) persist(ctx context.Context, c domain.Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.store.Set(ctx, domain.KeyCart, string(b)); err != nil {
		log.Error().Err(err).Msg("persist cart failed")
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
