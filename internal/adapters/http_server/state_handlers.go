package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"staybook/internal/app"
	"staybook/internal/domain"
)

type searchView struct {
	State         app.SearchState `json:"state"`
	URL           string          `json:"url"`
	ActiveFilters int             `json:"activeFilters"`
}

func viewOf(st app.SearchState) searchView {
	return searchView{State: st, URL: st.URL(), ActiveFilters: st.ActiveFiltersCount()}
}

// search treats the request's query string as the canonical search state
// and runs it.
func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Search.Sync(r.URL.Query())
	st, err := s.Search.Search(r.Context())
	if err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, viewOf(st))
}

func (h *Handlers) searchMore(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	st, err := s.Search.LoadMore(r.Context())
	if err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, viewOf(st))
}

// removeFilter answers with the new canonical URL; the caller navigates to it.
func (h *Handlers) removeFilter(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	st, err := s.Search.RemoveFilter(domain.FilterKey(chi.URLParam(r, "key")))
	if err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, viewOf(st))
}

func (h *Handlers) clearFilters(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	reply(w, s, http.StatusOK, viewOf(s.Search.ClearFilters()))
}

// ---- cart ----

type cartView struct {
	domain.Cart
	ItemCount int  `json:"itemCount"`
	IsEmpty   bool `json:"isEmpty"`
}

func cartOf(s *app.Session) cartView {
	return cartView{Cart: s.Cart.Cart(), ItemCount: s.Cart.ItemCount(), IsEmpty: s.Cart.IsEmpty()}
}

func (h *Handlers) getCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	reply(w, s, http.StatusOK, cartOf(s))
}

func (h *Handlers) clearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.Cart.ClearCart(r.Context()); err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, cartOf(s))
}

type addItemRequest struct {
	HotelID      string    `json:"hotelId" validate:"required"`
	RoomID       string    `json:"roomId" validate:"required"`
	CheckInDate  time.Time `json:"checkInDate" validate:"required"`
	CheckOutDate time.Time `json:"checkOutDate" validate:"required"`
	Guests       int       `json:"guests"`
	Rooms        int       `json:"rooms"`
}

// addCartItem resolves hotel and room through the catalog so the client
// cannot make up prices.
func (h *Handlers) addCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		fail(w, s, err)
		return
	}
	hotel, err := h.Catalog.GetHotel(r.Context(), req.HotelID)
	if err != nil {
		fail(w, s, err)
		return
	}
	var room *domain.Room
	for i := range hotel.Rooms {
		if hotel.Rooms[i].ID == req.RoomID {
			room = &hotel.Rooms[i]
			break
		}
	}
	if room == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "room not found", s.Notices.Drain())
		return
	}
	if req.Guests == 0 {
		req.Guests = domain.DefaultGuests
	}
	if req.Rooms == 0 {
		req.Rooms = domain.DefaultRooms
	}
	item, err := s.Cart.AddItem(r.Context(), hotel, *room, req.CheckInDate, req.CheckOutDate, req.Guests, req.Rooms)
	if err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusCreated, struct {
		Item domain.CartItem `json:"item"`
		Cart cartView        `json:"cart"`
	}{item, cartOf(s)})
}

func (h *Handlers) updateCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	var patch domain.CartItemPatch
	if err := decode(r, &patch); err != nil {
		fail(w, s, err)
		return
	}
	if _, err := s.Cart.UpdateItem(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, cartOf(s))
}

func (h *Handlers) removeCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.Cart.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, cartOf(s))
}

// ---- preferences & recent searches ----

type preferencesView struct {
	app.Preferences
	ResolvedTheme string `json:"resolvedTheme"`
}

// prefersDark reads the client's color scheme from ?prefersDark= or the
// Sec-CH-Prefers-Color-Scheme client hint.
func prefersDark(r *http.Request) bool {
	if v, err := strconv.ParseBool(r.URL.Query().Get("prefersDark")); err == nil {
		return v
	}
	return strings.EqualFold(strings.Trim(r.Header.Get("Sec-CH-Prefers-Color-Scheme"), `"`), "dark")
}

func viewPreferences(r *http.Request, p app.Preferences) preferencesView {
	return preferencesView{Preferences: p, ResolvedTheme: p.ResolvedTheme(prefersDark(r))}
}

func (h *Handlers) getPreferences(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	p, err := s.Prefs.Get(r.Context())
	if err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, viewPreferences(r, p))
}

func (h *Handlers) putPreferences(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	var patch app.PreferencesPatch
	if err := decode(r, &patch); err != nil {
		fail(w, s, err)
		return
	}
	p, err := s.Prefs.Update(r.Context(), patch)
	if err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, viewPreferences(r, p))
}

func (h *Handlers) listRecent(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	l, err := s.Recent.List(r.Context())
	if err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, l)
}

func (h *Handlers) addRecent(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	var req struct {
		Location string `json:"location" validate:"required"`
	}
	if err := decode(r, &req); err != nil {
		fail(w, s, err)
		return
	}
	if err := s.Recent.Add(r.Context(), req.Location); err != nil {
		fail(w, s, err)
		return
	}
	h.listRecent(w, r)
}

func (h *Handlers) clearRecent(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.Recent.Clear(r.Context()); err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, []string{})
}
