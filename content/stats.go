package content

// computeStats derives the dashboard counts from a collection. An empty
// collection yields all zeroes.
func computeStats[D any](desc Descriptor[D], items []D) Stats {
	var s Stats
	s.Total = len(items)
	for _, rec := range items {
		switch desc.Status(rec) {
		case StatusPublished:
			s.Published++
		default:
			s.Draft++
		}
		if desc.Featured(rec) {
			s.Featured++
		}
	}
	return s
}
