package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/panacea/panacea/internal/platform/auth"
)

const writeTimeout = 5 * time.Second

// Dispatcher queues entries on a bounded channel and writes them from a
// single background worker.
type Dispatcher struct {
	store  Store
	logger zerolog.Logger
	queue  chan *Entry
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(store Store, logger zerolog.Logger, buffer int) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	d := &Dispatcher{
		store:  store,
		logger: logger.With().Str("type", "audit").Logger(),
		queue:  make(chan *Entry, buffer),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Record builds an entry from the authenticated principal and client IP on
// ctx and enqueues it. It never blocks: a full queue drops the entry.
func (d *Dispatcher) Record(ctx context.Context, action, details, resourceID string) {
	p, _ := auth.PrincipalFromContext(ctx)
	e := &Entry{
		ID:         uuid.NewString(),
		UserID:     p.ID,
		UserName:   p.Name,
		Action:     action,
		Details:    details,
		ResourceID: resourceID,
		IP:         ipFromContext(ctx),
		CreatedAt:  time.Now().UTC(),
	}
	d.Enqueue(e)
}

// Enqueue reports whether e was accepted.
func (d *Dispatcher) Enqueue(e *Entry) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Error().Str("action", e.Action).Msg("Audit logging failed: dispatcher closed")
		return false
	}
	select {
	case d.queue <- e:
		return true
	default:
		d.logger.Error().Str("action", e.Action).Msg("Audit logging failed: queue full")
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		d.write(e)
	}
}

func (d *Dispatcher) write(e *Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := d.store.Insert(ctx, e); err != nil {
		d.logger.Error().Err(err).Str("action", e.Action).Msg("Audit logging failed")
		return
	}
	actor := e.UserName
	if actor == "" {
		actor = e.UserID
	}
	d.logger.Info().
		Str("action", e.Action).
		Str("resource_id", e.ResourceID).
		Msgf("[AUDIT] %s performed %s: %s", actor, e.Action, e.Details)
}

// Close stops accepting entries and waits for the queue to drain or ctx to
// expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CaptureIP stores the client address on the request context for Record.
func CaptureIP() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(WithIP(req.Context(), c.RealIP())))
			return next(c)
		}
	}
}
