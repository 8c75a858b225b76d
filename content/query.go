package content

import (
	"slices"
	"strings"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is one slice of a filtered listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// paginate slices items (already filtered and sorted) into page number
// page of size limit. Pages past the end are empty.
func paginate[T any](items []T, page, limit int) Page[T] {
	total := len(items)
	out := Page[T]{
		Items:      []T{},
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
	if total == 0 || page > out.TotalPages {
		return out
	}
	start := (page - 1) * limit
	end := min(start+limit, total)
	out.Items = items[start:end]
	return out
}

func checkPaging(page, limit int) error {
	if page < 1 {
		return invalid("page must be a positive integer")
	}
	if limit < 1 {
		return invalid("limit must be a positive integer")
	}
	return nil
}

// containsFold reports whether any of fields contains q, ignoring case.
func containsFold(q string, fields ...string) bool {
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func descending(sort string) bool {
	return !strings.EqualFold(sort, "asc")
}

// PostQuery filters a post listing. Empty fields do not filter.
type PostQuery struct {
	Page       int
	Limit      int
	CategoryID string
	TagID      string
	UserID     string
	// Query is matched against title, content and excerpt.
	Query string
	// Sort is "asc" or "desc" (the default) on publishedAt.
	Sort string
	// IncludeDrafts lists unpublished posts as well. Only author-scoped
	// reads set it.
	IncludeDrafts bool
}

func (q PostQuery) check() error {
	return checkPaging(q.Page, q.Limit)
}

// Match reports whether p passes every filter in q.
func (q PostQuery) Match(p BlogPost) bool {
	if !q.IncludeDrafts && !p.Published {
		return false
	}
	if q.CategoryID != "" && !slices.Contains(p.CategoryIDs, q.CategoryID) {
		return false
	}
	if q.TagID != "" && !slices.Contains(p.TagIDs, q.TagID) {
		return false
	}
	if q.UserID != "" && p.UserID != q.UserID {
		return false
	}
	if strings.TrimSpace(q.Query) != "" && !containsFold(q.Query, p.Title, p.Content, p.Excerpt) {
		return false
	}
	return true
}

func (q PostQuery) apply(posts []BlogPost) Page[BlogPost] {
	matched := make([]BlogPost, 0, len(posts))
	for _, p := range posts {
		if q.Match(p) {
			matched = append(matched, p)
		}
	}
	SortPosts(matched, descending(q.Sort))
	return paginate(matched, q.Page, min(q.Limit, MaxLimit))
}

// SortPosts orders posts by publishedAt, newest first when desc is set.
// Posts that were never published come last in either direction, ordered
// among themselves by createdAt. The sort is stable.
func SortPosts(posts []BlogPost, desc bool) {
	slices.SortStableFunc(posts, func(a, b BlogPost) int {
		aSet, bSet := a.PublishedAt != "", b.PublishedAt != ""
		switch {
		case aSet && !bSet:
			return -1
		case !aSet && bSet:
			return 1
		}
		ka, kb := a.PublishedAt, b.PublishedAt
		if !aSet {
			ka, kb = a.CreatedAt, b.CreatedAt
		}
		c := strings.Compare(ka, kb)
		if desc {
			return -c
		}
		return c
	})
}

// PaperQuery filters a paper listing. Empty fields do not filter.
type PaperQuery struct {
	Page   int
	Limit  int
	UserID string
	// Query is matched against title, abstract and each author.
	Query string
	// Sort is "asc" or "desc" (the default) on uploadedAt.
	Sort string
}

func (q PaperQuery) check() error {
	return checkPaging(q.Page, q.Limit)
}

// Match reports whether p passes every filter in q.
func (q PaperQuery) Match(p ResearchPaper) bool {
	if q.UserID != "" && p.UserID != q.UserID {
		return false
	}
	if strings.TrimSpace(q.Query) != "" {
		fields := append([]string{p.Title, p.Abstract}, p.Authors...)
		if !containsFold(q.Query, fields...) {
			return false
		}
	}
	return true
}

func (q PaperQuery) apply(papers []ResearchPaper) Page[ResearchPaper] {
	matched := make([]ResearchPaper, 0, len(papers))
	for _, p := range papers {
		if q.Match(p) {
			matched = append(matched, p)
		}
	}
	desc := descending(q.Sort)
	slices.SortStableFunc(matched, func(a, b ResearchPaper) int {
		c := strings.Compare(a.UploadedAt, b.UploadedAt)
		if desc {
			return -c
		}
		return c
	})
	return paginate(matched, q.Page, min(q.Limit, MaxLimit))
}
