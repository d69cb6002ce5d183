package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/soullog/internal/models"
	"github.com/AnshRaj112/soullog/internal/views"
)

// DeviceCookie names the browser the session is bound to.
const DeviceCookie = "soullog_device"

const deviceCookieMaxAge = 400 * 24 * time.Hour

type contextKey int

const (
	deviceKey contextKey = iota
	sessionKey
)

// Device makes sure every request carries a device id, issuing a cookie on the
// first visit.
func Device(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(DeviceCookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     DeviceCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(deviceCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithDevice(r.Context(), id)))
		})
	}
}

func WithDevice(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceKey, id)
}

// DeviceID returns the id set by Device, or "".
func DeviceID(ctx context.Context) string {
	id, _ := ctx.Value(deviceKey).(string)
	return id
}

// IdentitySource looks up who is signed in on a device.
type IdentitySource interface {
	Current(ctx context.Context, device string) (*models.Identity, error)
}

// Session resolves the identity signed in on the request's device. A lookup
// failure is treated as signed out. Use after Device.
func Session(src IdentitySource, onError func(error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s views.Session
			if device := DeviceID(r.Context()); device != "" {
				id, err := src.Current(r.Context(), device)
				if err != nil && onError != nil {
					onError(err)
				}
				s.Identity = id
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func WithSession(ctx context.Context, s views.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// CurrentSession returns the session set by Session; signed out when absent.
func CurrentSession(ctx context.Context) views.Session {
	s, _ := ctx.Value(sessionKey).(views.Session)
	return s
}
