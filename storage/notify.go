package storage

import (
	"sync"

	"github.com/pulsodigital/site/content"
)

// notifier fans change events out to per-table subscribers. Each subscriber
// gets its own buffered channel and pump goroutine, so a slow handler delays
// only its own stream, never the writer.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]*subscription
}

type subscription struct {
	n     *notifier
	table string
	id    int
	ch    chan content.Event
	once  sync.Once
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[string]map[int]*subscription)}
}

func (n *notifier) subscribe(table string, handler func(content.Event)) *subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next++
	sub := &subscription{
		n:     n,
		table: table,
		id:    n.next,
		ch:    make(chan content.Event, 64),
	}
	if n.subs[table] == nil {
		n.subs[table] = make(map[int]*subscription)
	}
	n.subs[table][sub.id] = sub
	go func() {
		for ev := range sub.ch {
			handler(ev)
		}
	}()
	return sub
}

func (n *notifier) publish(ev content.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, sub := range n.subs[ev.Table] {
		select {
		case sub.ch <- ev:
		default:
			// Buffer full: disconnect the subscriber rather than stall the
			// writer. Subscribers that care reconnect and refetch.
			delete(n.subs[ev.Table], id)
			sub.once.Do(func() { close(sub.ch) })
		}
	}
}

func (n *notifier) closeAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for table, subs := range n.subs {
		for id, sub := range subs {
			sub.once.Do(func() { close(sub.ch) })
			delete(subs, id)
		}
		delete(n.subs, table)
	}
}

// Unsubscribe stops delivery. Safe to call more than once.
func (sub *subscription) Unsubscribe() {
	sub.n.mu.Lock()
	defer sub.n.mu.Unlock()
	if subs := sub.n.subs[sub.table]; subs != nil {
		delete(subs, sub.id)
	}
	sub.once.Do(func() { close(sub.ch) })
}
