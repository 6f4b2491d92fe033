package site

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/pulsodigital/site/content"
)

// eventHub fans store change events out to connected admin dashboards over
// server-sent events, the same stream the repositories reconcile from.
type eventHub struct {
	mu      sync.Mutex
	next    int
	clients map[int]chan content.Event
}

func newEventHub() *eventHub {
	return &eventHub{clients: make(map[int]chan content.Event)}
}

func (h *eventHub) register() (int, chan content.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	ch := make(chan content.Event, 16)
	h.clients[h.next] = ch
	return h.next, ch
}

func (h *eventHub) unregister(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(ch)
	}
}

func (h *eventHub) broadcast(ev content.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			// Slow consumer: drop it rather than stall the stream; the
			// dashboard reconnects and refetches.
			delete(h.clients, id)
			close(ch)
		}
	}
}

func (h *eventHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.clients {
		delete(h.clients, id)
		close(ch)
	}
}

// handleEvents streams change events to the dashboard until the client
// disconnects.
func (a *App) handleEvents(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-store")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	id, ch := a.events.register()
	defer a.events.unregister(id)

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
