package content

// Wire rows mirror the store's column shapes: snake_case names and a
// store-managed created_at. Mapping between wire and domain form is pure and
// lossless; shape problems are the validator's business, not the mapper's.

// PostRow is the posts table row as stored and transmitted.
type PostRow struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	Author    string `json:"author"`
	Date      string `json:"date"`
	ReadTime  string `json:"read_time"`
	ImageURL  string `json:"image_url"`
	Featured  bool   `json:"featured"`
	Status    Status `json:"status,omitempty"`
}

// CaseRow is the cases table row as stored and transmitted.
type CaseRow struct {
	ID                string   `json:"id,omitempty"`
	CreatedAt         string   `json:"created_at,omitempty"`
	Title             string   `json:"title"`
	Slug              string   `json:"slug"`
	Description       string   `json:"description"`
	Challenge         string   `json:"challenge"`
	Solution          string   `json:"solution"`
	Results           string   `json:"results"`
	ClientName        string   `json:"client_name"`
	ClientIndustry    string   `json:"client_industry"`
	ClientSize        string   `json:"client_size"`
	ClientTestimonial string   `json:"client_testimonial,omitempty"`
	ClientRole        string   `json:"client_role,omitempty"`
	Duration          string   `json:"duration"`
	ImageURL          string   `json:"image_url"`
	Featured          bool     `json:"featured"`
	Tools             []string `json:"tools"`
	Metrics           []Metric `json:"metrics"`
	Gallery           []string `json:"gallery,omitempty"`
	Status            Status   `json:"status,omitempty"`
}

// PostFromRow maps a wire row to its domain shape. A missing status reads as
// draft.
func PostFromRow(r PostRow) Post {
	return Post{
		ID:       r.ID,
		Title:    r.Title,
		Excerpt:  r.Excerpt,
		Content:  r.Content,
		Category: r.Category,
		Author:   r.Author,
		Date:     r.Date,
		ReadTime: r.ReadTime,
		ImageURL: r.ImageURL,
		Featured: r.Featured,
		Status:   defaultStatus(r.Status),
	}
}

// PostToRow maps a domain post to its wire shape. The store owns id and
// created_at: an empty id is omitted so the store assigns one, and created_at
// is never sent on a write.
func PostToRow(p Post) PostRow {
	return PostRow{
		ID:       p.ID,
		Title:    p.Title,
		Excerpt:  p.Excerpt,
		Content:  p.Content,
		Category: p.Category,
		Author:   p.Author,
		Date:     p.Date,
		ReadTime: p.ReadTime,
		ImageURL: p.ImageURL,
		Featured: p.Featured,
		Status:   p.Status,
	}
}

// CaseFromRow maps a wire row to its domain shape.
func CaseFromRow(r CaseRow) Case {
	return Case{
		ID:                r.ID,
		Title:             r.Title,
		Slug:              r.Slug,
		Description:       r.Description,
		Challenge:         r.Challenge,
		Solution:          r.Solution,
		Results:           r.Results,
		ClientName:        r.ClientName,
		ClientIndustry:    r.ClientIndustry,
		ClientSize:        r.ClientSize,
		ClientTestimonial: r.ClientTestimonial,
		ClientRole:        r.ClientRole,
		Duration:          r.Duration,
		ImageURL:          r.ImageURL,
		Featured:          r.Featured,
		Tools:             r.Tools,
		Metrics:           r.Metrics,
		Gallery:           r.Gallery,
		Status:            defaultStatus(r.Status),
	}
}

// CaseToRow maps a domain case to its wire shape, omitting store-owned fields
// on the same terms as PostToRow.
func CaseToRow(c Case) CaseRow {
	return CaseRow{
		ID:                c.ID,
		Title:             c.Title,
		Slug:              c.Slug,
		Description:       c.Description,
		Challenge:         c.Challenge,
		Solution:          c.Solution,
		Results:           c.Results,
		ClientName:        c.ClientName,
		ClientIndustry:    c.ClientIndustry,
		ClientSize:        c.ClientSize,
		ClientTestimonial: c.ClientTestimonial,
		ClientRole:        c.ClientRole,
		Duration:          c.Duration,
		ImageURL:          c.ImageURL,
		Featured:          c.Featured,
		Tools:             c.Tools,
		Metrics:           c.Metrics,
		Gallery:           c.Gallery,
		Status:            c.Status,
	}
}

func defaultStatus(s Status) Status {
	if s == "" {
		return StatusDraft
	}
	return s
}
