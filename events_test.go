package site

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsodigital/site/content"
)

func (h *eventHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func TestEventHubBroadcast(t *testing.T) {
	h := newEventHub()
	_, ch1 := h.register()
	id2, ch2 := h.register()

	ev := content.Event{Type: content.EventInsert, Table: content.TablePosts}
	h.broadcast(ev)
	assert.Equal(t, ev, <-ch1)
	assert.Equal(t, ev, <-ch2)

	h.unregister(id2)
	h.broadcast(ev)
	assert.Equal(t, ev, <-ch1)
	_, open := <-ch2
	assert.False(t, open)
}

func TestEventHubDropsSlowConsumers(t *testing.T) {
	h := newEventHub()
	_, ch := h.register()

	// Fill the buffer without draining; the next broadcast evicts the client.
	for i := 0; i < cap(ch)+1; i++ {
		h.broadcast(content.Event{Type: content.EventUpdate, Table: content.TablePosts})
	}
	assert.Equal(t, 0, h.clientCount())
}

func TestEventsStreamDeliversStoreChanges(t *testing.T) {
	a := setupTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/admin/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)

	done := make(chan error, 1)
	go func() { done <- a.handleEvents(c) }()

	require.Eventually(t, func() bool { return a.events.clientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	record, _ := json.Marshal(content.PostRow{ID: "x", Title: "T"})
	a.events.broadcast(content.Event{Type: content.EventInsert, Table: content.TablePosts, Record: record})

	// Give the handler a moment to write, then disconnect and inspect.
	time.Sleep(50 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	body := rec.Body.String()
	assert.Contains(t, body, "event: insert")
	assert.Contains(t, body, `"table":"posts"`)
}
