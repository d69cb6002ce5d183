package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnshRaj112/soullog/internal/middleware"
	"github.com/AnshRaj112/soullog/internal/models"
	"github.com/AnshRaj112/soullog/internal/views"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsBuffer     = 8
)

// IdentityEvent tells a page that the identity on its device changed.
// Navigate is the address to move to, empty when the page should stay.
type IdentityEvent struct {
	Type      string `json:"type"`
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Anonymous bool   `json:"anonymous"`
	Navigate  string `json:"navigate"`
}

// SessionEvents streams identity changes of the caller's device over a
// websocket. The page passes the screen it shows (view) and the uid it was
// rendered for (uid); changes relative to that are pushed as IdentityEvents.
func (h *Handler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	device := middleware.DeviceID(r.Context())
	if device == "" {
		http.Error(w, "missing device", http.StatusBadRequest)
		return
	}
	current := formView(r.URL.Query().Get("view"), views.Landing)
	renderedFor := r.URL.Query().Get("uid")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe before the upgrade so no change after the handshake is missed.
	// Listeners run on the publisher's goroutine and must not block.
	events := make(chan *models.Identity, wsBuffer)
	unsubscribe, err := h.auth.Subscribe(ctx, device, func(id *models.Identity) {
		select {
		case events <- id:
		default:
			h.log.Warnw("dropping identity event", "device", device)
		}
	})
	if err != nil {
		h.log.Errorw("failed to subscribe to identity changes", "error", err)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	go h.writeEvents(ctx, cancel, conn, events, current, renderedFor)

	// Reader loop only notices the client going away.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writeEvents(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, events <-chan *models.Identity, current views.View, lastUID string) {
	defer cancel()
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case id := <-events:
			s := views.Session{Identity: id}
			if s.UID() == lastUID {
				continue
			}
			lastUID = s.UID()

			evt := IdentityEvent{Type: "identity"}
			if id != nil {
				evt.UID = id.UID
				evt.Email = id.Email
				evt.Anonymous = id.Anonymous
			}
			if next, ok := views.OnIdentityChange(current, s); ok {
				evt.Navigate = viewURL(next)
				current = next
			}

			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}
}
