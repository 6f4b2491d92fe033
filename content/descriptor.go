package content

import "encoding/json"

// Descriptor parameterizes the generic repository over one content kind: its
// table, its wire mapping, its validator, and the workflow transforms applied
// before every write. The two kinds the site manages differ only here.
type Descriptor[D any] struct {
	Table     string
	ID        func(D) string
	Status    func(D) Status
	SetStatus func(D, Status) D
	Featured  func(D) bool
	Normalize func(D) D
	Validate  func(D) *ValidationError

	// SaveByUpsert selects the save path: cases go through the store's
	// upsert followed by a full refresh, posts through insert/update.
	SaveByUpsert bool

	toWire   func(D) (json.RawMessage, error)
	fromWire func(json.RawMessage) (D, error)
}

// PostDescriptor describes the blog post kind.
func PostDescriptor() Descriptor[Post] {
	return Descriptor[Post]{
		Table:     TablePosts,
		ID:        func(p Post) string { return p.ID },
		Status:    func(p Post) Status { return p.Status },
		SetStatus: func(p Post, s Status) Post { p.Status = s; return p },
		Featured:  func(p Post) bool { return p.Featured },
		Normalize: NormalizePost,
		Validate:  ValidatePost,
		toWire: func(p Post) (json.RawMessage, error) {
			return json.Marshal(PostToRow(p))
		},
		fromWire: func(raw json.RawMessage) (Post, error) {
			var row PostRow
			if err := json.Unmarshal(raw, &row); err != nil {
				return Post{}, err
			}
			return PostFromRow(row), nil
		},
	}
}

// CaseDescriptor describes the case study kind.
func CaseDescriptor() Descriptor[Case] {
	return Descriptor[Case]{
		Table:        TableCases,
		ID:           func(c Case) string { return c.ID },
		Status:       func(c Case) Status { return c.Status },
		SetStatus:    func(c Case, s Status) Case { c.Status = s; return c },
		Featured:     func(c Case) bool { return c.Featured },
		Normalize:    NormalizeCase,
		Validate:     ValidateCase,
		SaveByUpsert: true,
		toWire: func(c Case) (json.RawMessage, error) {
			return json.Marshal(CaseToRow(c))
		},
		fromWire: func(raw json.RawMessage) (Case, error) {
			var row CaseRow
			if err := json.Unmarshal(raw, &row); err != nil {
				return Case{}, err
			}
			return CaseFromRow(row), nil
		},
	}
}
