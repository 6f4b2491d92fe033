package content

import "strings"

// NormalizeSlug lowercases s, collapses every run of non-alphanumeric
// characters to a single hyphen, and strips leading and trailing hyphens.
// It is idempotent: normalizing an already-normalized slug is a no-op.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	pending := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}

// NormalizeImageURL trims the url and prefixes bare filenames with "/blog/".
// Absolute http(s) urls and urls already under /blog/ pass through unchanged.
func NormalizeImageURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" || strings.HasPrefix(url, "http") || strings.HasPrefix(url, "/blog/") {
		return url
	}
	return "/blog/" + url
}

// NormalizePost applies the pre-persistence transforms for a post: image url
// normalization and the draft default for a missing status.
func NormalizePost(p Post) Post {
	p.ImageURL = NormalizeImageURL(p.ImageURL)
	p.Status = defaultStatus(p.Status)
	return p
}

// NormalizeCase applies the pre-persistence transforms for a case study. The
// slug is re-normalized on every write regardless of where it came from, the
// rich-text sections are trimmed, and nil sub-collections become empty so the
// stored row always carries explicit lists.
func NormalizeCase(c Case) Case {
	c.Slug = NormalizeSlug(c.Slug)
	c.Challenge = strings.TrimSpace(c.Challenge)
	c.Solution = strings.TrimSpace(c.Solution)
	c.Results = strings.TrimSpace(c.Results)
	if c.Tools == nil {
		c.Tools = []string{}
	}
	if c.Metrics == nil {
		c.Metrics = []Metric{}
	}
	c.Status = defaultStatus(c.Status)
	return c
}
