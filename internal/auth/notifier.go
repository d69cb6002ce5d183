package auth

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soullog/internal/models"
)

// Listener receives the identity now signed in on a device, or nil after sign-out.
type Listener func(id *models.Identity)

// Notifier delivers identity changes to every subscriber of a device.
type Notifier interface {
	Publish(ctx context.Context, device string, id *models.Identity) error
	Subscribe(device string, fn Listener) (unsubscribe func())
}

var _ Notifier = (*Hub)(nil)

// Hub fans identity changes out to in-process listeners.
type Hub struct {
	mu        sync.RWMutex
	next      uint64
	listeners map[string]map[uint64]Listener
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[string]map[uint64]Listener)}
}

// Publish calls every listener of device once, in the publishing goroutine.
func (h *Hub) Publish(ctx context.Context, device string, id *models.Identity) error {
	h.mu.RLock()
	fns := make([]Listener, 0, len(h.listeners[device]))
	for _, fn := range h.listeners[device] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(copyIdentity(id))
	}
	return nil
}

func (h *Hub) Subscribe(device string, fn Listener) func() {
	h.mu.Lock()
	h.next++
	key := h.next
	if h.listeners[device] == nil {
		h.listeners[device] = make(map[uint64]Listener)
	}
	h.listeners[device][key] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.listeners[device], key)
			if len(h.listeners[device]) == 0 {
				delete(h.listeners, device)
			}
		})
	}
}

// Subscribers returns how many listeners device has.
func (h *Hub) Subscribers(device string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[device])
}

func copyIdentity(id *models.Identity) *models.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

const identityChannelPrefix = "identity:"

// identityEvent is the payload broadcast over Redis.
type identityEvent struct {
	Device   string           `json:"device"`
	Identity *models.Identity `json:"identity"`
}

var _ Notifier = (*RedisNotifier)(nil)

// RedisNotifier broadcasts identity changes over Redis Pub/Sub so every server
// instance can reach the device's open sockets. Local delivery happens only from
// the Redis subscriber, so each change reaches a listener exactly once.
type RedisNotifier struct {
	client *redis.Client
	hub    *Hub
	log    *zap.SugaredLogger
	start  sync.Once
}

func NewRedisNotifier(client *redis.Client, log *zap.SugaredLogger) *RedisNotifier {
	return &RedisNotifier{client: client, hub: NewHub(), log: log}
}

func (n *RedisNotifier) Publish(ctx context.Context, device string, id *models.Identity) error {
	data, err := json.Marshal(identityEvent{Device: device, Identity: id})
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, identityChannelPrefix+device, data).Err()
}

func (n *RedisNotifier) Subscribe(device string, fn Listener) func() {
	return n.hub.Subscribe(device, fn)
}

// Start runs the shared Redis listener until ctx is done. Calling it twice is a no-op.
func (n *RedisNotifier) Start(ctx context.Context) {
	n.start.Do(func() {
		go n.run(ctx)
	})
}

func (n *RedisNotifier) run(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := n.client.PSubscribe(ctx, identityChannelPrefix+"*")
			defer pubsub.Close()

			n.log.Infow("identity subscriber started", "pattern", identityChannelPrefix+"*")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					n.log.Warnw("identity subscriber error", "error", err, "retry_in", backoff)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}
				backoff = time.Second

				var event identityEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					n.log.Warnw("failed to decode identity event", "error", err)
					continue
				}
				if event.Device == "" {
					event.Device = strings.TrimPrefix(msg.Channel, identityChannelPrefix)
				}
				_ = n.hub.Publish(ctx, event.Device, event.Identity)
			}
		}()
	}
}
