package content

import (
	"regexp"
	"strings"
)

var imageURLPattern = regexp.MustCompile(`^(/blog/|https?://).+`)

// ValidatePost checks the required-field and format invariants of a post.
// Violations are collected, not short-circuited, so one call surfaces every
// problem. Returns nil when the post is valid.
func ValidatePost(p Post) *ValidationError {
	var errs []string
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, "Title is required")
	}
	if strings.TrimSpace(p.Excerpt) == "" {
		errs = append(errs, "Excerpt is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		errs = append(errs, "Content is required")
	}
	if strings.TrimSpace(p.Author) == "" {
		errs = append(errs, "Author is required")
	}
	if strings.TrimSpace(p.ImageURL) == "" {
		errs = append(errs, "Image URL is required")
	} else if !imageURLPattern.MatchString(strings.TrimSpace(p.ImageURL)) {
		errs = append(errs, `Image URL must start with "/blog/" or be a valid HTTP(S) URL`)
	}
	if len(errs) > 0 {
		return &ValidationError{Messages: errs}
	}
	return nil
}

// ValidateCase checks the required-field invariants of a case study.
// Returns nil when the case is valid.
func ValidateCase(c Case) *ValidationError {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "Title is required")
	}
	if strings.TrimSpace(c.Slug) == "" {
		errs = append(errs, "Slug is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		errs = append(errs, "Description is required")
	}
	if strings.TrimSpace(c.Challenge) == "" {
		errs = append(errs, "Challenge is required")
	}
	if strings.TrimSpace(c.Solution) == "" {
		errs = append(errs, "Solution is required")
	}
	if strings.TrimSpace(c.Results) == "" {
		errs = append(errs, "Results is required")
	}
	if strings.TrimSpace(c.ClientName) == "" {
		errs = append(errs, "Client name is required")
	}
	if strings.TrimSpace(c.Duration) == "" {
		errs = append(errs, "Duration is required")
	}
	if strings.TrimSpace(c.ImageURL) == "" {
		errs = append(errs, "Image URL is required")
	}
	if len(errs) > 0 {
		return &ValidationError{Messages: errs}
	}
	return nil
}
