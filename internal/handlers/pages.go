package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/soullog/internal/middleware"
	"github.com/AnshRaj112/soullog/internal/mood"
	"github.com/AnshRaj112/soullog/internal/views"
)

// View renders /v/{view}, or the landing page for /. A request the auth gate
// sends elsewhere is redirected so the address bar names the screen shown.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	v := views.View(chi.URLParam(r, "view"))
	if v == "" {
		v = views.Landing
	}
	s := middleware.CurrentSession(r.Context())

	if resolved := views.Resolve(v, s); resolved != v {
		redirect(w, r, resolved, nil)
		return
	}

	q := r.URL.Query()
	params := views.Params{
		EntryID: q.Get("id"),
		Mode:    views.ParseMode(q.Get("mode")),
	}
	if m, ok := mood.Parse(q.Get("mood")); ok {
		params.Mood = m
	}

	page := h.router.Navigate(r.Context(), v, s, params)
	status := http.StatusOK
	if page.View == views.EntryDetail && !page.Detail.Found() {
		status = http.StatusNotFound
	}
	h.render(w, r, status, page, form{Mood: page.Mood})
}

// Theme flips the colour scheme cookie and returns to the screen it came from,
// with the same entry or preselected mood.
func (h *Handler) Theme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := h.decode(r, &req); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	next := themeDark
	if theme(r) == themeDark {
		next = themeLight
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ThemeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	s := middleware.CurrentSession(r.Context())
	from := formView(req.From, views.Landing)
	to := views.Resolve(from, s)
	var query url.Values
	if to == from {
		query = returnQuery(req.Query)
	}
	redirect(w, r, to, query)
}
