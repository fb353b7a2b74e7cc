// Package catalog defines how the prompt catalog is filtered, ordered and paged.
//
// The rules live here once, as plain functions over model.Prompt, so every
// store agrees on them:
//
//   - the memory store runs Apply directly
//   - the SQL stores compile the same Filter into WHERE / ORDER BY / LIMIT / OFFSET
//   - the storetest conformance suite pins both to identical results
//
// All predicates in a Filter are combined with AND. A nil pointer field means
// "no filtering on this field".
package catalog

import (
	"slices"
	"strings"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/model"
)

// Filter selects and pages prompts.
type Filter struct {
	CategoryID *int64
	AuthorID   *int64

	// Search is matched case-insensitively as a substring of the title, the
	// description, or any single tag. Empty means no search.
	Search string

	Featured *bool
	Trending *bool
	IsNew    *bool

	// Limit caps the number of results after Offset is applied.
	// nil means unbounded; a pointer to 0 yields an empty page.
	Limit  *int
	Offset int
}

// Validate rejects negative paging values. Typed ids and flags need no further
// checks: malformed query strings are rejected by the HTTP layer before a
// Filter is ever built.
func (f Filter) Validate() error {
	if f.Offset < 0 {
		return apperror.ValidationFailed("offset", "offset must not be negative")
	}
	if f.Limit != nil && *f.Limit < 0 {
		return apperror.ValidationFailed("limit", "limit must not be negative")
	}
	return nil
}

// NormalizedSearch returns the search term in the form every store matches
// against: trimmed and lower-cased.
func (f Filter) NormalizedSearch() string {
	return strings.ToLower(strings.TrimSpace(f.Search))
}

// Matches reports whether p passes every predicate in f. Paging is ignored.
func Matches(p *model.Prompt, f Filter) bool {
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.Trending != nil && p.Trending != *f.Trending {
		return false
	}
	if f.IsNew != nil && p.IsNew != *f.IsNew {
		return false
	}
	if term := f.NormalizedSearch(); term != "" && !matchesSearch(p, term) {
		return false
	}
	return true
}

func matchesSearch(p *model.Prompt, term string) bool {
	if strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	return slices.ContainsFunc(p.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), term)
	})
}

// Compare orders prompts newest first. Equal timestamps fall back to the
// higher id first; ids are assigned monotonically, so the order is total.
func Compare(a, b model.Prompt) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}

// Page applies Offset then Limit to an already ordered slice.
func Page[T any](items []T, f Filter) []T {
	if f.Offset >= len(items) {
		return []T{}
	}
	items = items[f.Offset:]
	if f.Limit != nil && *f.Limit < len(items) {
		items = items[:*f.Limit]
	}
	return items
}

// Apply filters, orders and pages prompts. The input slice is not modified.
func Apply(prompts []model.Prompt, f Filter) []model.Prompt {
	matched := make([]model.Prompt, 0, len(prompts))
	for i := range prompts {
		if Matches(&prompts[i], f) {
			matched = append(matched, prompts[i])
		}
	}
	slices.SortStableFunc(matched, Compare)
	return Page(matched, f)
}

// EscapeLike escapes the LIKE wildcards in term so a user searching for "50%"
// matches the literal text. Patterns built from it must declare ESCAPE '\'.
func EscapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// Ptr returns a pointer to v. Handy for building filters in code and tests.
func Ptr[T any](v T) *T {
	return &v
}
