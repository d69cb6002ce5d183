package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/soullog/internal/middleware"
	"github.com/AnshRaj112/soullog/internal/mood"
	"github.com/AnshRaj112/soullog/internal/views"
)

const (
	msgSaveFailed   = "Could not save entry. Please try again."
	msgDeleteFailed = "Could not delete entry. Please try again."
)

// EntryRequest is the new entry form.
type EntryRequest struct {
	Text string `schema:"text"`
	Mood string `schema:"mood"`
}

// EditRequest is the edit form. OriginalMood comes back from a hidden field.
type EditRequest struct {
	Text         string `schema:"text"`
	Mood         string `schema:"mood"`
	OriginalMood string `schema:"original_mood"`
}

// parseMood treats anything outside the vocabulary as no mood.
func parseMood(s string) mood.Mood {
	m, _ := mood.Parse(s)
	return m
}

// signedIn returns the session, or redirects to landing and reports false.
func signedIn(w http.ResponseWriter, r *http.Request) (views.Session, bool) {
	s := middleware.CurrentSession(r.Context())
	if !s.Authenticated() {
		redirect(w, r, views.Landing, nil)
		return s, false
	}
	return s, true
}

// CreateEntry saves a new entry and shows the list.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	s, ok := signedIn(w, r)
	if !ok {
		return
	}

	var req EntryRequest
	if err := h.decode(r, &req); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	m := parseMood(req.Mood)

	res := h.journal.CreateEntry(r.Context(), s.UID(), req.Text, m)
	if !res.Success {
		page := h.router.Navigate(r.Context(), views.NewEntry, s, views.Params{Mood: m})
		h.render(w, r, http.StatusInternalServerError, page, form{Error: msgSaveFailed, Text: req.Text, Mood: m})
		return
	}
	redirect(w, r, views.Entries, nil)
}

// UpdateEntry saves an edit, then shows the entry as stored.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	s, ok := signedIn(w, r)
	if !ok {
		return
	}

	var req EditRequest
	if err := h.decode(r, &req); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	state := views.EditState{
		EntryID:      chi.URLParam(r, "id"),
		OriginalMood: parseMood(req.OriginalMood),
	}
	text, m := state.Resolve(req.Text, parseMood(req.Mood))

	res := h.journal.UpdateEntry(r.Context(), s.UID(), state.EntryID, text, m)
	if !res.Success {
		page := h.router.Navigate(r.Context(), views.EntryDetail, s, views.Params{EntryID: state.EntryID, Mode: views.ModeEdit})
		status := http.StatusInternalServerError
		if !page.Detail.Found() {
			status = http.StatusNotFound
		}
		h.render(w, r, status, page, form{Error: msgSaveFailed, Text: text, Mood: m})
		return
	}
	redirect(w, r, views.EntryDetail, url.Values{"id": {state.EntryID}})
}

// DeleteEntry removes an entry and shows the list.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	s, ok := signedIn(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	res := h.journal.DeleteEntry(r.Context(), s.UID(), id)
	if !res.Success {
		page := h.router.Navigate(r.Context(), views.EntryDetail, s, views.Params{EntryID: id})
		h.render(w, r, http.StatusInternalServerError, page, form{Error: msgDeleteFailed})
		return
	}
	redirect(w, r, views.Entries, nil)
}
