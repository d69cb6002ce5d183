package handlers

import (
	"errors"
	"net/http"

	"github.com/AnshRaj112/soullog/internal/auth"
	"github.com/AnshRaj112/soullog/internal/middleware"
	"github.com/AnshRaj112/soullog/internal/views"
	"github.com/AnshRaj112/soullog/pkg/utils"
)

const (
	msgPasswordMismatch   = "Passwords match error."
	msgPasswordTooShort   = "Password too short."
	msgInvalidCredentials = "Invalid email or password."
	msgSomethingWrong     = "Something went wrong. Please try again."
)

// SignupRequest is the signup form.
type SignupRequest struct {
	Email    string `schema:"email"`
	Password string `schema:"password"`
	Confirm  string `schema:"confirm"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `schema:"email"`
	Password string `schema:"password"`
}

// FromRequest carries the screen a button was pressed on.
type FromRequest struct {
	From string `schema:"from"`
}

type ThemeRequest struct {
	From  string `schema:"from"`
	Query string `schema:"query"`
}

// Signup registers a new account and signs it in.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := h.decode(r, &req); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	fail := func(msg string) {
		h.renderForm(w, r, views.Signup, form{Error: msg, Email: req.Email})
	}

	if req.Password != req.Confirm {
		fail(msgPasswordMismatch)
		return
	}
	if len(req.Password) < utils.MinPasswordLength {
		fail(msgPasswordTooShort)
		return
	}

	if err := h.journal.Register(r.Context(), middleware.DeviceID(r.Context()), req.Email, req.Password); err != nil {
		fail(userMessage(err))
		return
	}
	h.identityChanged(w, r, views.Signup)
}

// Login signs an existing account in. Every failure reads the same.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(r, &req); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	if err := h.journal.Login(r.Context(), middleware.DeviceID(r.Context()), req.Email, req.Password); err != nil {
		h.renderForm(w, r, views.Login, form{Error: msgInvalidCredentials, Email: req.Email})
		return
	}
	h.identityChanged(w, r, views.Login)
}

// Guest signs in anonymously.
func (h *Handler) Guest(w http.ResponseWriter, r *http.Request) {
	var req FromRequest
	if err := h.decode(r, &req); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	from := formView(req.From, views.Login)

	if err := h.journal.LoginAsGuest(r.Context(), middleware.DeviceID(r.Context())); err != nil {
		if from != views.Login && from != views.Signup {
			from = views.Login
		}
		h.renderForm(w, r, from, form{Error: userMessage(err)})
		return
	}
	h.identityChanged(w, r, from)
}

// Logout signs the device out.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req FromRequest
	if err := h.decode(r, &req); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	h.journal.Logout(r.Context(), middleware.DeviceID(r.Context()))
	h.identityChanged(w, r, formView(req.From, views.Dashboard))
}

// identityChanged runs the sign-in/sign-out reaction for a form posted from
// current and redirects accordingly.
func (h *Handler) identityChanged(w http.ResponseWriter, r *http.Request, current views.View) {
	var s views.Session
	id, err := h.auth.Current(r.Context(), middleware.DeviceID(r.Context()))
	if err != nil {
		h.log.Warnw("failed to read session", "error", err)
	}
	s.Identity = id

	next, ok := views.OnIdentityChange(current, s)
	if !ok {
		next = current
	}
	redirect(w, r, views.Resolve(next, s), nil)
}

// renderForm re-renders a form screen with an inline error.
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, v views.View, f form) {
	page := h.router.Navigate(r.Context(), v, middleware.CurrentSession(r.Context()), views.Params{})
	h.render(w, r, http.StatusUnprocessableEntity, page, f)
}

// userMessage is the text shown for an auth or data failure.
func userMessage(err error) string {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return msgSomethingWrong
}

func formView(raw string, fallback views.View) views.View {
	v := views.View(raw)
	if !v.Known() {
		return fallback
	}
	return v
}
