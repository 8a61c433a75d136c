package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"staybook/internal/app"
	"staybook/internal/domain"
)

type Handlers struct {
	Sessions      *app.SessionManager
	Catalog       *app.CatalogService
	Cookie        string
	SessionTTL    time.Duration
	SecureCookies bool
	FeaturedLimit int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type problem struct {
	Type    string          `json:"type"`
	Title   string          `json:"title"`
	Status  int             `json:"status"`
	Detail  string          `json:"detail,omitempty"`
	Notices []domain.Notice `json:"notices,omitempty"`
}

// envelope is every non-problem JSON body: the payload plus the session's
// pending notices.
type envelope struct {
	Data    any             `json:"data"`
	Notices []domain.Notice `json:"notices"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/hotels/featured", h.featured)
	s.mux.Get("/v1/hotels/slug/{slug}", h.getHotelBySlug)
	s.mux.Get("/v1/hotels/{id}", h.getHotel)
	s.mux.Get("/v1/languages", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, http.StatusOK, app.SupportedLanguages) })

	s.mux.Group(func(r chi.Router) {
		r.Use(Sessions(h.Cookie, h.SessionTTL, h.SecureCookies))

		r.Get("/v1/search", h.search)
		r.Get("/v1/search/more", h.searchMore)
		r.Delete("/v1/search/filters/{key}", h.removeFilter)
		r.Delete("/v1/search/filters", h.clearFilters)

		r.Get("/v1/cart", h.getCart)
		r.Delete("/v1/cart", h.clearCart)
		r.Post("/v1/cart/items", h.addCartItem)
		r.Patch("/v1/cart/items/{id}", h.updateCartItem)
		r.Delete("/v1/cart/items/{id}", h.removeCartItem)

		r.Get("/v1/session", h.getSession)
		r.Post("/v1/session/login", h.login)
		r.Post("/v1/session/register", h.register)
		r.Post("/v1/session/logout", h.logout)
		r.Post("/v1/session/refresh", h.refresh)
		r.Patch("/v1/session/profile", h.updateProfile)

		r.Get("/v1/hotels/{id}/availability", h.availability)

		r.Get("/v1/bookings", h.listBookings)
		r.Post("/v1/bookings", h.createBooking)
		r.Get("/v1/bookings/{id}", h.getBooking)
		r.Post("/v1/bookings/{id}/cancel", h.cancelBooking)

		r.Get("/v1/preferences", h.getPreferences)
		r.Put("/v1/preferences", h.putPreferences)

		r.Get("/v1/recent-searches", h.listRecent)
		r.Post("/v1/recent-searches", h.addRecent)
		r.Delete("/v1/recent-searches", h.clearRecent)
	})
}

func (h *Handlers) session(r *http.Request) *app.Session {
	return h.Sessions.Get(r.Context(), sessionID(r))
}

// writeJSON encodes before touching the header so an unencodable value
// turns into a 500 problem instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("encode JSON response failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "response could not be encoded", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func reply(w http.ResponseWriter, s *app.Session, status int, data any) {
	writeJSON(w, status, envelope{Data: data, Notices: s.Notices.Drain()})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string, notices []domain.Notice) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Notices: notices}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// fail maps err onto a problem response. s may be nil for sessionless routes.
func fail(w http.ResponseWriter, s *app.Session, err error) {
	var notices []domain.Notice
	if s != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			s.Auth.Expire()
		}
		notices = s.Notices.Drain()
	}
	status, title := statusFor(err)
	if status >= 500 {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeProblem(w, status, title, err.Error(), notices)
}

func statusFor(err error) (int, string) {
	var ae *domain.APIError
	switch {
	case errors.Is(err, domain.ErrInvalidStay), errors.Is(err, domain.ErrInvalidRooms),
		errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownFilter):
		return http.StatusBadRequest, "Bad Request"
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.As(err, &ae):
		switch {
		case ae.Timeout:
			return http.StatusGatewayTimeout, "Backend Timeout"
		case ae.Status == 0 || ae.Status >= 500:
			return http.StatusBadGateway, "Backend Unavailable"
		case ae.Status >= 400:
			return ae.Status, http.StatusText(ae.Status)
		}
		return http.StatusBadGateway, "Backend Error"
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

// decode reads a JSON body and runs struct validation on it.
func decode(r *http.Request, dst any) error {
	if err := decodeLoose(r, dst); err != nil {
		return err
	}
	if err := validate.Struct(dst); err != nil {
		var inv *validator.InvalidValidationError
		if errors.As(err, &inv) {
			return nil // not a struct (maps, slices)
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// decodeLoose only parses; the caller validates.
func decodeLoose(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Catalog.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, nil, err)
		return
	}
	writeWithETag(w, r, hotel)
}

func (h *Handlers) getHotelBySlug(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Catalog.GetHotelBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		fail(w, nil, err)
		return
	}
	writeWithETag(w, r, hotel)
}

func (h *Handlers) featured(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", h.FeaturedLimit)
	if limit > 50 {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 50", nil)
		return
	}
	hs, err := h.Catalog.Featured(r.Context(), limit)
	if err != nil {
		fail(w, nil, err)
		return
	}
	writeWithETag(w, r, hs)
}
