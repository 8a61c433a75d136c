package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"staybook/internal/domain"
)

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	reply(w, s, http.StatusOK, s.Auth.State())
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	var cr domain.Credentials
	// validation happens inside Login so the notice text stays uniform
	if err := decodeLoose(r, &cr); err != nil {
		fail(w, s, err)
		return
	}
	if !s.Auth.Login(r.Context(), cr.Email, cr.Password) {
		writeProblem(w, http.StatusUnauthorized, "Login Failed", "", s.Notices.Drain())
		return
	}
	reply(w, s, http.StatusOK, s.Auth.State())
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	var reg domain.Registration
	if err := decodeLoose(r, &reg); err != nil {
		fail(w, s, err)
		return
	}
	if !s.Auth.Register(r.Context(), reg) {
		writeProblem(w, http.StatusUnprocessableEntity, "Registration Failed", "", s.Notices.Drain())
		return
	}
	reply(w, s, http.StatusCreated, s.Auth.State())
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Auth.Logout(r.Context())
	reply(w, s, http.StatusOK, s.Auth.State())
}

func (h *Handlers) refresh(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if !s.Auth.RefreshToken(r.Context()) {
		writeProblem(w, http.StatusUnauthorized, "Refresh Failed", "", s.Notices.Drain())
		return
	}
	reply(w, s, http.StatusOK, s.Auth.State())
}

func (h *Handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	var patch domain.UserPatch
	if err := decode(r, &patch); err != nil {
		fail(w, s, err)
		return
	}
	if _, ok := s.Auth.UpdateUser(r.Context(), patch); !ok {
		writeProblem(w, http.StatusUnprocessableEntity, "Update Failed", "", s.Notices.Drain())
		return
	}
	reply(w, s, http.StatusOK, s.Auth.State())
}

// ---- backend passthroughs that need the session's tokens ----

func (h *Handlers) availability(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	q := r.URL.Query()
	out, err := s.API.Availability(r.Context(), domain.AvailabilityQuery{
		HotelID:      chi.URLParam(r, "id"),
		RoomID:       q.Get("roomId"),
		CheckInDate:  q.Get("checkInDate"),
		CheckOutDate: q.Get("checkOutDate"),
	})
	if err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, out)
}

func (h *Handlers) requireUser(w http.ResponseWriter, r *http.Request) bool {
	s := h.session(r)
	if s.Auth.IsAuthenticated() {
		return true
	}
	writeProblem(w, http.StatusUnauthorized, "Unauthorized", "login required", s.Notices.Drain())
	return false
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}
	s := h.session(r)
	page, err := s.API.Bookings(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, page)
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}
	s := h.session(r)
	var req domain.BookingRequest
	if err := decode(r, &req); err != nil {
		fail(w, s, err)
		return
	}
	conf, err := s.API.BookHotel(r.Context(), req)
	if err != nil {
		fail(w, s, err)
		return
	}
	s.Notices.Success("Booking created successfully!")
	reply(w, s, http.StatusCreated, conf)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}
	s := h.session(r)
	b, err := s.API.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, s, err)
		return
	}
	reply(w, s, http.StatusOK, b)
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	if !h.requireUser(w, r) {
		return
	}
	s := h.session(r)
	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			fail(w, s, err)
			return
		}
	}
	b, err := s.API.CancelBooking(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		fail(w, s, err)
		return
	}
	s.Notices.Success("Booking cancelled")
	reply(w, s, http.StatusOK, b)
}
