package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory content.Store that lets tests preset rows, force
// failures, and push change-notification events synchronously.
type fakeStore struct {
	mu       sync.Mutex
	rows     map[string][]json.RawMessage
	nextID   int
	failWith error

	// notifyBeforeReturn delivers the store's own change event to subscribers
	// before the mutating call returns, the way a fast notification stream can.
	notifyBeforeReturn bool

	insertCalls int
	updateCalls int
	upsertCalls int
	deleteCalls int
	lastUpdate  json.RawMessage

	handlers map[string][]func(Event)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:     make(map[string][]json.RawMessage),
		handlers: make(map[string][]func(Event)),
	}
}

func (f *fakeStore) seed(table string, rows ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		raw, err := json.Marshal(r)
		if err != nil {
			panic(err)
		}
		f.rows[table] = append(f.rows[table], raw)
	}
}

func (f *fakeStore) assignID(record json.RawMessage) (json.RawMessage, string) {
	var m map[string]any
	if err := json.Unmarshal(record, &m); err != nil {
		panic(err)
	}
	id, _ := m["id"].(string)
	if id == "" {
		f.nextID++
		id = fmt.Sprintf("id-%d", f.nextID)
		m["id"] = id
	}
	if m["created_at"] == nil {
		m["created_at"] = "2026-08-01T00:00:00Z"
	}
	raw, _ := json.Marshal(m)
	return raw, id
}

func (f *fakeStore) Select(ctx context.Context, table string) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return append([]json.RawMessage(nil), f.rows[table]...), nil
}

func (f *fakeStore) Insert(ctx context.Context, table string, record json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	f.insertCalls++
	if f.failWith != nil {
		f.mu.Unlock()
		return nil, f.failWith
	}
	stored, _ := f.assignID(record)
	f.rows[table] = append([]json.RawMessage{stored}, f.rows[table]...)
	notify := f.notifyBeforeReturn
	f.mu.Unlock()
	if notify {
		f.emit(Event{Type: EventInsert, Table: table, Record: stored})
	}
	return stored, nil
}

func (f *fakeStore) Update(ctx context.Context, table, id string, record json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	var m map[string]any
	if err := json.Unmarshal(record, &m); err != nil {
		return nil, err
	}
	m["id"] = id
	stored, _ := json.Marshal(m)
	f.lastUpdate = stored
	return stored, nil
}

func (f *fakeStore) Upsert(ctx context.Context, table string, records []json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.failWith != nil {
		return f.failWith
	}
	for _, rec := range records {
		stored, id := f.assignID(rec)
		replaced := false
		for i, existing := range f.rows[table] {
			var m map[string]any
			_ = json.Unmarshal(existing, &m)
			if m["id"] == id {
				f.rows[table][i] = stored
				replaced = true
				break
			}
		}
		if !replaced {
			f.rows[table] = append([]json.RawMessage{stored}, f.rows[table]...)
		}
	}
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, table, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.failWith != nil {
		return f.failWith
	}
	kept := f.rows[table][:0]
	for _, existing := range f.rows[table] {
		var m map[string]any
		_ = json.Unmarshal(existing, &m)
		if m["id"] != id {
			kept = append(kept, existing)
		}
	}
	f.rows[table] = kept
	return nil
}

type fakeSub struct{ cancelled bool }

func (s *fakeSub) Unsubscribe() { s.cancelled = true }

func (f *fakeStore) Subscribe(table string, handler func(Event)) Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[table] = append(f.handlers[table], handler)
	return &fakeSub{}
}

// emit delivers an event synchronously, the way a remote-origin change
// arrives.
func (f *fakeStore) emit(ev Event) {
	f.mu.Lock()
	handlers := append([]func(Event){}, f.handlers[ev.Table]...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

type fakeSessions struct{ sess *Session }

func (f fakeSessions) GetSession(ctx context.Context) (*Session, error) { return f.sess, nil }

func authed() fakeSessions { return fakeSessions{sess: &Session{UserID: "admin"}} }
func anon() fakeSessions   { return fakeSessions{} }

func postRow(id, title string) PostRow {
	return PostRow{
		ID: id, CreatedAt: "2026-08-01T00:00:00Z", Title: title,
		Excerpt: "e", Content: "c", Category: "seo", Author: "Ana",
		Date: "2026-08-01", ReadTime: "5 min", ImageURL: "/blog/x.jpg",
		Status: StatusDraft,
	}
}

func startedPostRepo(t *testing.T, store *fakeStore, sessions SessionSource, opts ...Option[Post]) *Repository[Post] {
	t.Helper()
	repo := NewRepository(PostDescriptor(), store, sessions, opts...)
	require.NoError(t, repo.Start(context.Background()))
	t.Cleanup(repo.Close)
	return repo
}

func TestStartLoadsCollectionInStoreOrder(t *testing.T) {
	store := newFakeStore()
	store.seed(TablePosts, postRow("a", "A"), postRow("b", "B"), postRow("c", "C"))
	repo := startedPostRepo(t, store, authed())

	posts := repo.List()
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestCreatePrependsStoreAssignedRecord(t *testing.T) {
	store := newFakeStore()
	store.seed(TablePosts, postRow("a", "A"))
	repo := startedPostRepo(t, store, authed())

	created, err := repo.Create(context.Background(), PostFromRow(postRow("", "New")))
	require.NoError(t, err)
	assert.Equal(t, "id-1", created.ID)

	posts := repo.List()
	require.Len(t, posts, 2)
	assert.Equal(t, "id-1", posts[0].ID)
	assert.Equal(t, "a", posts[1].ID)
}

func TestCreateDoesNotDuplicateWhenOwnInsertEventArrivesFirst(t *testing.T) {
	store := newFakeStore()
	store.notifyBeforeReturn = true
	repo := startedPostRepo(t, store, authed())

	created, err := repo.Create(context.Background(), PostFromRow(postRow("", "New")))
	require.NoError(t, err)

	posts := repo.List()
	require.Len(t, posts, 1)
	assert.Equal(t, created.ID, posts[0].ID)
}

func TestCreateWithoutSessionRejects(t *testing.T) {
	store := newFakeStore()
	store.seed(TablePosts, postRow("a", "A"))
	repo := startedPostRepo(t, store, anon())

	_, err := repo.Create(context.Background(), PostFromRow(postRow("", "New")))
	require.ErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, 0, store.insertCalls)
	assert.Len(t, repo.List(), 1)
}

func TestCreateValidationBlocksWrite(t *testing.T) {
	store := newFakeStore()
	repo := startedPostRepo(t, store, authed())

	_, err := repo.Create(context.Background(), Post{Title: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages, "Title is required")
	assert.Equal(t, 0, store.insertCalls)
	assert.Empty(t, repo.List())
}

func TestUpdatePreservesPosition(t *testing.T) {
	store := newFakeStore()
	store.seed(TablePosts, postRow("a", "A"), postRow("b", "B"), postRow("c", "C"))
	repo := startedPostRepo(t, store, authed())

	b, ok := repo.Get("b")
	require.True(t, ok)
	b.Title = "B prime"
	_, err := repo.Update(context.Background(), b)
	require.NoError(t, err)

	posts := repo.List()
	require.Len(t, posts, 3)
	assert.Equal(t, "A", posts[0].Title)
	assert.Equal(t, "B prime", posts[1].Title)
	assert.Equal(t, "C", posts[2].Title)
}

func TestUpdateWithoutIDRejects(t *testing.T) {
	store := newFakeStore()
	repo := startedPostRepo(t, store, authed())

	_, err := repo.Update(context.Background(), PostFromRow(postRow("", "X")))
	require.ErrorIs(t, err, ErrMissingID)
	assert.Equal(t, 0, store.updateCalls)
}

func TestDeleteRemovesEntry(t *testing.T) {
	store := newFakeStore()
	store.seed(TablePosts, postRow("a", "A"), postRow("b", "B"))
	repo := startedPostRepo(t, store, authed())

	require.NoError(t, repo.Delete(context.Background(), "a"))
	posts := repo.List()
	require.Len(t, posts, 1)
	assert.Equal(t, "b", posts[0].ID)
}

func TestPersistenceErrorLeavesCollectionIntact(t *testing.T) {
	store := newFakeStore()
	store.seed(TablePosts, postRow("a", "A"))
	repo := startedPostRepo(t, store, authed())

	store.failWith = &StoreError{Code: "500", Message: "constraint violation"}
	_, err := repo.Create(context.Background(), PostFromRow(postRow("", "New")))
	require.Error(t, err)
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Len(t, repo.List(), 1)
}

func TestForbiddenStoreCodeMapsToPermissionError(t *testing.T) {
	store := newFakeStore()
	repo := startedPostRepo(t, store, authed())

	store.failWith = &StoreError{Code: CodeForbidden, Message: "rls denied"}
	_, err := repo.Create(context.Background(), PostFromRow(postRow("", "New")))
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRemoteInsertPrependsOnce(t *testing.T) {
	store := newFakeStore()
	store.seed(TablePosts, postRow("a", "A"))
	repo := startedPostRepo(t, store, authed())

	raw, _ := json.Marshal(postRow("z", "Remote"))
	ev := Event{Type: EventInsert, Table: TablePosts, Record: raw}
	store.emit(ev)
	require.Len(t, repo.List(), 2)
	assert.Equal(t, "z", repo.List()[0].ID)

	// A duplicate notification must not duplicate the entry.
	store.emit(ev)
	assert.Len(t, repo.List(), 2)
}

func TestRemoteUpdateReplacesInPlace(t *testing.T) {
	store := newFakeStore()
	store.seed(TablePosts, postRow("a", "A"), postRow("b", "B"))
	repo := startedPostRepo(t, store, authed())

	row := postRow("b", "B remote")
	raw, _ := json.Marshal(row)
	store.emit(Event{Type: EventUpdate, Table: TablePosts, Record: raw})

	posts := repo.List()
	require.Len(t, posts, 2)
	assert.Equal(t, "A", posts[0].Title)
	assert.Equal(t, "B remote", posts[1].Title)
}

func TestRemoteUpdateForUnknownIDIgnored(t *testing.T) {
	store := newFakeStore()
	store.seed(TablePosts, postRow("a", "A"))
	repo := startedPostRepo(t, store, authed())

	raw, _ := json.Marshal(postRow("ghost", "Ghost"))
	store.emit(Event{Type: EventUpdate, Table: TablePosts, Record: raw})
	posts := repo.List()
	require.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].ID)
}

func TestRemoteDeleteOfAbsentIDIsNoop(t *testing.T) {
	store := newFakeStore()
	store.seed(TablePosts, postRow("a", "A"))
	repo := startedPostRepo(t, store, authed())

	store.emit(Event{Type: EventDelete, Table: TablePosts, OldID: "ghost"})
	assert.Len(t, repo.List(), 1)

	store.emit(Event{Type: EventDelete, Table: TablePosts, OldID: "a"})
	assert.Empty(t, repo.List())
}

func TestToggleStatusFlipsImmediately(t *testing.T) {
	store := newFakeStore()
	store.seed(TablePosts, postRow("a", "A"))
	repo := startedPostRepo(t, store, authed())

	updated, err := repo.ToggleStatus(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, updated.Status)

	got, ok := repo.Get("a")
	require.True(t, ok)
	assert.Equal(t, StatusPublished, got.Status)

	// The store saw the flipped status on the wire.
	var row PostRow
	require.NoError(t, json.Unmarshal(store.lastUpdate, &row))
	assert.Equal(t, StatusPublished, row.Status)

	back, err := repo.ToggleStatus(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, back.Status)
}

func TestCaseSaveGoesThroughUpsertAndRefresh(t *testing.T) {
	store := newFakeStore()
	repo := NewRepository(CaseDescriptor(), store, authed())
	require.NoError(t, repo.Start(context.Background()))
	defer repo.Close()

	cs := validCase()
	cs.Slug = "Tripling Qualified Leads"
	require.NoError(t, repo.Save(context.Background(), cs))
	assert.Equal(t, 1, store.upsertCalls)

	cases := repo.List()
	require.Len(t, cases, 1)
	assert.Equal(t, "id-1", cases[0].ID)
	assert.Equal(t, "tripling-qualified-leads", cases[0].Slug)
}

func TestStats(t *testing.T) {
	store := newFakeStore()
	repo := startedPostRepo(t, store, authed())
	assert.Equal(t, Stats{}, repo.Stats())

	published := postRow("p", "P")
	published.Status = StatusPublished
	published.Featured = true
	store.seed(TablePosts, published, postRow("a", "A"), postRow("b", "B"))
	require.NoError(t, repo.Refresh(context.Background()))

	got := repo.Stats()
	assert.Equal(t, Stats{Total: 3, Published: 1, Draft: 2, Featured: 1}, got)
}

func TestOnChangeFiresForLocalAndRemoteChanges(t *testing.T) {
	store := newFakeStore()
	var mu sync.Mutex
	var calls int
	repo := NewRepository(PostDescriptor(), store, authed(), WithOnChange[Post](func(posts []Post) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))
	require.NoError(t, repo.Start(context.Background()))
	defer repo.Close()

	mu.Lock()
	afterStart := calls
	mu.Unlock()
	assert.Equal(t, 1, afterStart)

	_, err := repo.Create(context.Background(), PostFromRow(postRow("", "New")))
	require.NoError(t, err)

	raw, _ := json.Marshal(postRow("z", "Remote"))
	store.emit(Event{Type: EventInsert, Table: TablePosts, Record: raw})

	mu.Lock()
	final := calls
	mu.Unlock()
	assert.Equal(t, 3, final)
}

func TestCloseUnsubscribes(t *testing.T) {
	store := newFakeStore()
	repo := NewRepository(PostDescriptor(), store, authed())
	require.NoError(t, repo.Start(context.Background()))
	sub := store.handlers[TablePosts]
	require.Len(t, sub, 1)
	repo.Close()
	// Closing twice is safe.
	repo.Close()
}

func TestRefreshPropagatesDecodableError(t *testing.T) {
	store := newFakeStore()
	store.failWith = errors.New("network down")
	repo := NewRepository(PostDescriptor(), store, authed())
	err := repo.Start(context.Background())
	require.Error(t, err)
}
