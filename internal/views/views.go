// Package views decides which screen a request ends up on and loads the data
// that screen shows.
package views

import "github.com/AnshRaj112/soullog/internal/models"

type View string

const (
	Landing     View = "view-landing"
	Login       View = "view-login"
	Signup      View = "view-signup"
	About       View = "view-about"
	Dashboard   View = "view-dashboard"
	Entries     View = "view-entries"
	NewEntry    View = "view-new-entry"
	EntryDetail View = "view-entry-detail"
	Insights    View = "view-insights"
)

var public = map[View]bool{
	Landing: true,
	Login:   true,
	Signup:  true,
	About:   true,
}

var private = map[View]bool{
	Dashboard:   true,
	Entries:     true,
	NewEntry:    true,
	EntryDetail: true,
	Insights:    true,
}

// Known reports whether v names a screen.
func (v View) Known() bool {
	return public[v] || private[v]
}

// Private reports whether v needs a signed-in identity.
func (v View) Private() bool {
	return private[v]
}

// entryPoint reports whether v is only meant for signed-out visitors.
func (v View) entryPoint() bool {
	return v == Landing || v == Login || v == Signup
}

// Session is the identity signed in on the requesting device, if any.
// Anonymous guests count as signed in.
type Session struct {
	Identity *models.Identity
}

func (s Session) Authenticated() bool {
	return s.Identity != nil
}

func (s Session) UID() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.UID
}

// Resolve applies the auth gate. Unknown views are treated as the landing page.
func Resolve(v View, s Session) View {
	if !v.Known() {
		v = Landing
	}
	if !s.Authenticated() && v.Private() {
		return Landing
	}
	if s.Authenticated() && v.entryPoint() {
		return Dashboard
	}
	return v
}

// OnIdentityChange is the reaction to a sign-in or sign-out while current is on
// screen. It returns the screen to move to, or false when nothing should change.
func OnIdentityChange(current View, s Session) (View, bool) {
	if !s.Authenticated() {
		return Landing, true
	}
	if current.entryPoint() {
		return Dashboard, true
	}
	return "", false
}
