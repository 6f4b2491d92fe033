package content

import (
	"context"
	"encoding/json"
)

// Table names used by the store contract.
const (
	TablePosts = "posts"
	TableCases = "cases"
)

// EventType classifies a change-notification event.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is one change observed on a table. Record carries the wire row for
// inserts and updates; OldID identifies the removed row for deletes.
type Event struct {
	Type   EventType       `json:"type"`
	Table  string          `json:"table"`
	Record json.RawMessage `json:"record,omitempty"`
	OldID  string          `json:"oldId,omitempty"`
}

// Subscription is a live change-notification stream. Unsubscribe stops
// delivery; it is safe to call more than once.
type Subscription interface {
	Unsubscribe()
}

// Store is the remote content store contract. Records cross this boundary in
// wire (snake_case JSON) form. Errors carry a code via StoreError.
type Store interface {
	Select(ctx context.Context, table string) ([]json.RawMessage, error)
	Insert(ctx context.Context, table string, record json.RawMessage) (json.RawMessage, error)
	Update(ctx context.Context, table, id string, record json.RawMessage) (json.RawMessage, error)
	Upsert(ctx context.Context, table string, records []json.RawMessage) error
	Delete(ctx context.Context, table, id string) error
	Subscribe(table string, handler func(Event)) Subscription
}

// Session is an authenticated session as reported by the auth layer.
type Session struct {
	UserID string
	Email  string
}

// SessionSource reports the active session for a call, or nil when the caller
// is not authenticated. Mutating repository operations consult it before
// touching the store.
type SessionSource interface {
	GetSession(ctx context.Context) (*Session, error)
}

type sessionKey struct{}

// WithSession returns a context carrying the given session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session carried by ctx, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// ContextSessions is a SessionSource that reads the session the HTTP layer
// injected into the request context.
type ContextSessions struct{}

func (ContextSessions) GetSession(ctx context.Context) (*Session, error) {
	return SessionFromContext(ctx), nil
}
