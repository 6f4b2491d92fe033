package content

// Reconcile folds one remote change event into a collection and reports
// whether anything changed. It is pure: the input slice is not mutated.
//
// Inserts prepend unless the id is already present, so a duplicate
// notification for a record we created ourselves is a no-op. Updates replace
// in place and are ignored for unknown ids (no insert-on-update). Deletes of
// unknown ids are a no-op.
func Reconcile[D any](desc Descriptor[D], items []D, ev Event) ([]D, bool) {
	switch ev.Type {
	case EventInsert:
		rec, err := desc.fromWire(ev.Record)
		if err != nil {
			return items, false
		}
		id := desc.ID(rec)
		for i := range items {
			if desc.ID(items[i]) == id {
				return items, false
			}
		}
		return append([]D{rec}, items...), true

	case EventUpdate:
		rec, err := desc.fromWire(ev.Record)
		if err != nil {
			return items, false
		}
		id := desc.ID(rec)
		for i := range items {
			if desc.ID(items[i]) == id {
				next := append([]D(nil), items...)
				next[i] = rec
				return next, true
			}
		}
		return items, false

	case EventDelete:
		id := ev.OldID
		if id == "" {
			if rec, err := desc.fromWire(ev.Record); err == nil {
				id = desc.ID(rec)
			}
		}
		next := removeByID(desc, items, id)
		return next, len(next) != len(items)
	}
	return items, false
}

func removeByID[D any](desc Descriptor[D], items []D, id string) []D {
	for i := range items {
		if desc.ID(items[i]) == id {
			next := make([]D, 0, len(items)-1)
			next = append(next, items[:i]...)
			return append(next, items[i+1:]...)
		}
	}
	return items
}
