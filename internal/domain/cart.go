package domain

import (
	"math"
	"time"
)

const (
	TaxRate         = 0.10
	DefaultCurrency = "USD"
)

type CartItem struct {
	ID           string    `json:"id"`
	Hotel        Hotel     `json:"hotel"`
	Room         Room      `json:"room"`
	CheckInDate  time.Time `json:"checkInDate"`
	CheckOutDate time.Time `json:"checkOutDate"`
	Nights       int       `json:"nights"`
	Rooms        int       `json:"rooms"`
	Guests       int       `json:"guests"`
	TotalPrice   float64   `json:"totalPrice"`
	Taxes        float64   `json:"taxes"`
	Fees         float64   `json:"fees"`
	GrandTotal   float64   `json:"grandTotal"`
	Currency     string    `json:"currency"`
}

// SameStay reports whether it is the merge key of the item: same room, same dates.
func (it CartItem) SameStay(roomID string, checkIn, checkOut time.Time) bool {
	return it.Room.ID == roomID && it.CheckInDate.Equal(checkIn) && it.CheckOutDate.Equal(checkOut)
}

// CartItemPatch is a shallow update. Derived money fields are NOT recomputed
// when quantities change; callers that patch Rooms must patch the totals too.
type CartItemPatch struct {
	CheckInDate  *time.Time `json:"checkInDate,omitempty"`
	CheckOutDate *time.Time `json:"checkOutDate,omitempty"`
	Nights       *int       `json:"nights,omitempty"`
	Rooms        *int       `json:"rooms,omitempty"`
	Guests       *int       `json:"guests,omitempty"`
	TotalPrice   *float64   `json:"totalPrice,omitempty"`
	Taxes        *float64   `json:"taxes,omitempty"`
	Fees         *float64   `json:"fees,omitempty"`
	GrandTotal   *float64   `json:"grandTotal,omitempty"`
	Currency     *string    `json:"currency,omitempty"`
}

func (it CartItem) Apply(p CartItemPatch) CartItem {
	if p.CheckInDate != nil {
		it.CheckInDate = *p.CheckInDate
	}
	if p.CheckOutDate != nil {
		it.CheckOutDate = *p.CheckOutDate
	}
	if p.Nights != nil {
		it.Nights = *p.Nights
	}
	if p.Rooms != nil {
		it.Rooms = *p.Rooms
	}
	if p.Guests != nil {
		it.Guests = *p.Guests
	}
	if p.TotalPrice != nil {
		it.TotalPrice = *p.TotalPrice
	}
	if p.Taxes != nil {
		it.Taxes = *p.Taxes
	}
	if p.Fees != nil {
		it.Fees = *p.Fees
	}
	if p.GrandTotal != nil {
		it.GrandTotal = *p.GrandTotal
	}
	if p.Currency != nil {
		it.Currency = *p.Currency
	}
	return it
}

type Cart struct {
	Items     []CartItem `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	Taxes     float64    `json:"taxes"`
	Fees      float64    `json:"fees"`
	Total     float64    `json:"total"`
	Currency  string     `json:"currency"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func EmptyCart(now time.Time) Cart {
	return Cart{Items: []CartItem{}, Currency: DefaultCurrency, UpdatedAt: now}
}

// Recalculate rebuilds every aggregate from the items; nothing is carried over.
func (c *Cart) Recalculate() {
	c.Subtotal, c.Taxes, c.Fees = 0, 0, 0
	for _, it := range c.Items {
		c.Subtotal += it.TotalPrice
		c.Taxes += it.Taxes
		c.Fees += it.Fees
	}
	c.Total = c.Subtotal + c.Taxes + c.Fees
}

// Clone returns a copy that shares no item slice with c.
func (c Cart) Clone() Cart {
	out := c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

// Nights counts started days between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	return int(math.Ceil(d.Hours() / 24))
}
