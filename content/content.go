// Package content implements the content sync core for the site: the domain
// model for blog posts and case studies, validation, slug/status workflow,
// and a generic repository that keeps an in-memory collection consistent
// with the backing store's change-notification stream.
package content

// Status is the publication state of a post or case study.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Toggle returns the other publication state.
func (s Status) Toggle() Status {
	if s == StatusPublished {
		return StatusDraft
	}
	return StatusPublished
}

// Categories a blog post can belong to.
var PostCategories = []string{"marketing", "social media", "seo", "analytics"}

// Post is a blog article in its domain shape. ID is assigned by the store on
// first insert; an empty ID means "not yet persisted".
type Post struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Author   string `json:"author"`
	Date     string `json:"date"` // YYYY-MM-DD
	ReadTime string `json:"readTime"`
	ImageURL string `json:"imageUrl"`
	Featured bool   `json:"featured"`
	Status   Status `json:"status"`
}

// Metric is one headline result of a case study, e.g. {"+120%", "ROI"}.
// Metrics have no identity of their own; their order is the edit order.
type Metric struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Case is a client case study in its domain shape.
type Case struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Slug              string   `json:"slug"`
	Description       string   `json:"description"`
	Challenge         string   `json:"challenge"`
	Solution          string   `json:"solution"`
	Results           string   `json:"results"`
	ClientName        string   `json:"clientName"`
	ClientIndustry    string   `json:"clientIndustry"`
	ClientSize        string   `json:"clientSize"`
	ClientTestimonial string   `json:"clientTestimonial,omitempty"`
	ClientRole        string   `json:"clientRole,omitempty"`
	Duration          string   `json:"duration"`
	ImageURL          string   `json:"imageUrl"`
	Featured          bool     `json:"featured"`
	Tools             []string `json:"tools"`
	Metrics           []Metric `json:"metrics"`
	Gallery           []string `json:"gallery,omitempty"`
	Status            Status   `json:"status"`
}

// Stats are the dashboard counts for one content kind. They are derived from
// the current collection and never persisted.
type Stats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Draft     int `json:"draft"`
	Featured  int `json:"featured"`
}
