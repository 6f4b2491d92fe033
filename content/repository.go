package content

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Repository is the authoritative in-memory view of one content kind's
// collection, kept consistent with the backing store. Local writes go through
// the store first and mutate the collection only on success; remote-origin
// changes arrive through the store's change-notification stream and are
// reconciled idempotently. Both paths serialize on the same mutex, so the
// observed order is event-arrival order (last write wins).
type Repository[D any] struct {
	desc     Descriptor[D]
	store    Store
	sessions SessionSource
	onChange func([]D)

	mu    sync.RWMutex
	items []D
	sub   Subscription
}

// Option configures a Repository.
type Option[D any] func(*Repository[D])

// WithOnChange registers a hook invoked with a fresh snapshot after every
// collection change, local or remote in origin. Dashboards hang their stats
// recomputation off this.
func WithOnChange[D any](fn func([]D)) Option[D] {
	return func(r *Repository[D]) { r.onChange = fn }
}

// NewRepository builds a repository for one content kind. Call Start to load
// the collection and begin observing remote changes, and Close to tear the
// subscription down.
func NewRepository[D any](desc Descriptor[D], store Store, sessions SessionSource, opts ...Option[D]) *Repository[D] {
	r := &Repository[D]{desc: desc, store: store, sessions: sessions}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start performs the initial list query and subscribes to the table's change
// stream. The subscription lives until Close.
func (r *Repository[D]) Start(ctx context.Context) error {
	if err := r.Refresh(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	if r.sub == nil {
		r.sub = r.store.Subscribe(r.desc.Table, r.applyRemote)
	}
	r.mu.Unlock()
	return nil
}

// Close tears down the change-notification subscription.
func (r *Repository[D]) Close() {
	r.mu.Lock()
	sub := r.sub
	r.sub = nil
	r.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

// Refresh replaces the collection with the store's current contents, in the
// store's order (newest first).
func (r *Repository[D]) Refresh(ctx context.Context) error {
	raws, err := r.store.Select(ctx, r.desc.Table)
	if err != nil {
		return persistErr("list "+r.desc.Table, err)
	}
	items := make([]D, 0, len(raws))
	for _, raw := range raws {
		rec, err := r.desc.fromWire(raw)
		if err != nil {
			return fmt.Errorf("decode %s record: %w", r.desc.Table, err)
		}
		items = append(items, rec)
	}
	r.replaceAll(items)
	return nil
}

// List returns a snapshot of the current collection.
func (r *Repository[D]) List() []D {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]D(nil), r.items...)
}

// Find returns the first record matching pred, in collection order.
func (r *Repository[D]) Find(pred func(D) bool) (D, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.items {
		if pred(rec) {
			return rec, true
		}
	}
	var zero D
	return zero, false
}

// Get returns the record with the given id.
func (r *Repository[D]) Get(id string) (D, bool) {
	return r.Find(func(rec D) bool { return r.desc.ID(rec) == id })
}

// Stats derives the dashboard counts from the current collection.
func (r *Repository[D]) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return computeStats(r.desc, r.items)
}

// Create validates and persists a record that has no id yet, then prepends
// the store-assigned record to the collection. Requires an active session.
func (r *Repository[D]) Create(ctx context.Context, rec D) (D, error) {
	var zero D
	if verr := r.desc.Validate(rec); verr != nil {
		return zero, verr
	}
	if err := r.requireSession(ctx); err != nil {
		return zero, err
	}
	rec = r.desc.Normalize(rec)
	raw, err := r.desc.toWire(rec)
	if err != nil {
		return zero, err
	}
	stored, err := r.store.Insert(ctx, r.desc.Table, raw)
	if err != nil {
		return zero, persistErr("insert "+r.desc.Table, err)
	}
	created, err := r.desc.fromWire(stored)
	if err != nil {
		return zero, fmt.Errorf("decode inserted %s record: %w", r.desc.Table, err)
	}
	// The store publishes its own insert event, which can reach applyRemote
	// before this mutation runs. Replace rather than prepend when the id is
	// already present so the record never appears twice.
	r.mutate(func(items []D) []D {
		id := r.desc.ID(created)
		for i := range items {
			if r.desc.ID(items[i]) == id {
				items[i] = created
				return items
			}
		}
		return append([]D{created}, items...)
	})
	return created, nil
}

// Update validates and persists a full replacement of an existing record,
// then swaps the matching entry in place, preserving its position. A record
// without an id is rejected before any network call.
func (r *Repository[D]) Update(ctx context.Context, rec D) (D, error) {
	var zero D
	id := r.desc.ID(rec)
	if id == "" {
		return zero, ErrMissingID
	}
	if verr := r.desc.Validate(rec); verr != nil {
		return zero, verr
	}
	if err := r.requireSession(ctx); err != nil {
		return zero, err
	}
	rec = r.desc.Normalize(rec)
	raw, err := r.desc.toWire(rec)
	if err != nil {
		return zero, err
	}
	stored, err := r.store.Update(ctx, r.desc.Table, id, raw)
	if err != nil {
		return zero, persistErr("update "+r.desc.Table, err)
	}
	updated := rec
	if len(stored) > 0 {
		if updated, err = r.desc.fromWire(stored); err != nil {
			return zero, fmt.Errorf("decode updated %s record: %w", r.desc.Table, err)
		}
	}
	r.mutate(func(items []D) []D {
		for i := range items {
			if r.desc.ID(items[i]) == id {
				items[i] = updated
				break
			}
		}
		return items
	})
	return updated, nil
}

// Save persists a record through the kind's save path: upsert followed by a
// full refresh for kinds that save that way, otherwise create-or-update
// depending on whether the record has an id yet.
func (r *Repository[D]) Save(ctx context.Context, rec D) error {
	if !r.desc.SaveByUpsert {
		var err error
		if r.desc.ID(rec) == "" {
			_, err = r.Create(ctx, rec)
		} else {
			_, err = r.Update(ctx, rec)
		}
		return err
	}
	if verr := r.desc.Validate(rec); verr != nil {
		return verr
	}
	if err := r.requireSession(ctx); err != nil {
		return err
	}
	rec = r.desc.Normalize(rec)
	raw, err := r.desc.toWire(rec)
	if err != nil {
		return err
	}
	if err := r.store.Upsert(ctx, r.desc.Table, []json.RawMessage{raw}); err != nil {
		return persistErr("upsert "+r.desc.Table, err)
	}
	return r.Refresh(ctx)
}

// Delete removes a record from the store and, on success, from the
// collection. Confirmation is the caller's concern; the repository deletes
// unconditionally.
func (r *Repository[D]) Delete(ctx context.Context, id string) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, r.desc.Table, id); err != nil {
		return persistErr("delete "+r.desc.Table, err)
	}
	r.mutate(func(items []D) []D {
		return removeByID(r.desc, items, id)
	})
	return nil
}

// ToggleStatus flips a record between draft and published without the caller
// resending the record body. Both directions are always allowed.
func (r *Repository[D]) ToggleStatus(ctx context.Context, id string) (D, error) {
	rec, ok := r.Get(id)
	if !ok {
		var zero D
		return zero, &StoreError{Code: CodeNotFound, Message: "record not found"}
	}
	return r.Update(ctx, r.desc.SetStatus(rec, r.desc.Status(rec).Toggle()))
}

func (r *Repository[D]) requireSession(ctx context.Context) error {
	if r.sessions == nil {
		return ErrAuthRequired
	}
	sess, err := r.sessions.GetSession(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrAuthRequired
	}
	return nil
}

// applyRemote folds one change-notification event into the collection.
func (r *Repository[D]) applyRemote(ev Event) {
	r.mu.Lock()
	items, changed := Reconcile(r.desc, r.items, ev)
	if changed {
		r.items = items
	}
	snapshot := append([]D(nil), r.items...)
	r.mu.Unlock()
	if changed && r.onChange != nil {
		r.onChange(snapshot)
	}
}

func (r *Repository[D]) replaceAll(items []D) {
	r.mu.Lock()
	r.items = items
	snapshot := append([]D(nil), items...)
	r.mu.Unlock()
	if r.onChange != nil {
		r.onChange(snapshot)
	}
}

func (r *Repository[D]) mutate(fn func([]D) []D) {
	r.mu.Lock()
	r.items = fn(r.items)
	snapshot := append([]D(nil), r.items...)
	r.mu.Unlock()
	if r.onChange != nil {
		r.onChange(snapshot)
	}
}
