package content

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TimeLayout is the ISO-8601 form every timestamp is stored in.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// excerptLen is the number of characters of content used for a default excerpt.
const excerptLen = 150

func newID() string {
	return uuid.NewString()
}

func stamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// parseStamp accepts any RFC 3339 time and normalises it to TimeLayout.
func parseStamp(s string) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return "", invalid("invalid timestamp %q, want RFC 3339", s)
	}
	return stamp(t), nil
}

// DefaultExcerpt returns the first 150 characters of content followed by "...".
func DefaultExcerpt(content string) string {
	if utf8.RuneCountInString(content) <= excerptLen {
		return content + "..."
	}
	return string([]rune(content)[:excerptLen]) + "..."
}

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func postStatus(published bool) string {
	if published {
		return StatusPublished
	}
	return StatusDraft
}

// nonNil keeps empty collections serialised as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// required collects the names of blank fields.
type required []string

func (r *required) check(name, value string) {
	if strings.TrimSpace(value) == "" {
		*r = append(*r, name)
	}
}

func (r required) err(entity string) error {
	if len(r) == 0 {
		return nil
	}
	return missingFields(entity, r)
}

func (u *User) validate() error {
	var r required
	r.check("name", u.Name)
	r.check("email", u.Email)
	r.check("password", u.Password)
	if err := r.err("user"); err != nil {
		return err
	}
	if !strings.Contains(u.Email, "@") {
		return invalid("user: invalid email %q", u.Email)
	}
	if len(u.Password) < 6 {
		return invalid("user: password must be at least 6 characters")
	}
	return nil
}

func (u *User) prepare(now time.Time) {
	u.ID = newID()
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt = stamp(now)
	u.UpdatedAt = u.CreatedAt
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *BlogPost) validate() error {
	var r required
	r.check("title", p.Title)
	r.check("content", p.Content)
	r.check("userId", p.UserID)
	return r.err("post")
}

// prepare applies creation defaults. A caller-supplied publishedAt is only
// kept for posts created as published.
func (p *BlogPost) prepare(now time.Time) error {
	p.ID = newID()
	p.CreatedAt = stamp(now)
	p.UpdatedAt = p.CreatedAt
	if strings.TrimSpace(p.Excerpt) == "" {
		p.Excerpt = DefaultExcerpt(p.Content)
	}
	p.CategoryIDs = nonNil(p.CategoryIDs)
	p.TagIDs = nonNil(p.TagIDs)
	switch {
	case !p.Published:
		p.PublishedAt = ""
	case p.PublishedAt == "":
		p.PublishedAt = p.CreatedAt
	default:
		at, err := parseStamp(p.PublishedAt)
		if err != nil {
			return err
		}
		p.PublishedAt = at
	}
	p.Status = postStatus(p.Published)
	return nil
}

func (p *ResearchPaper) validate() error {
	var r required
	r.check("title", p.Title)
	r.check("abstract", p.Abstract)
	r.check("pdfUrl", p.PDFURL)
	r.check("userId", p.UserID)
	if len(p.Authors) == 0 {
		r = append(r, "authors")
	}
	if err := r.err("paper"); err != nil {
		return err
	}
	for _, a := range p.Authors {
		if strings.TrimSpace(a) == "" {
			return invalid("paper: author names must not be blank")
		}
	}
	return nil
}

func (p *ResearchPaper) prepare(now time.Time) {
	p.ID = newID()
	p.UploadedAt = stamp(now)
	p.Keywords = nonNil(p.Keywords)
	p.Citations = nonNil(p.Citations)
	p.Views = 0
}

func (c *Category) validate() error {
	var r required
	r.check("name", c.Name)
	r.check("description", c.Description)
	r.check("slug", c.Slug)
	if err := r.err("category"); err != nil {
		return err
	}
	return checkSlug("category", c.Slug)
}

func (c *Category) prepare() {
	c.ID = newID()
	c.Slug = Slugify(c.Slug)
}

func (t *Tag) validate() error {
	var r required
	r.check("name", t.Name)
	r.check("slug", t.Slug)
	if err := r.err("tag"); err != nil {
		return err
	}
	return checkSlug("tag", t.Slug)
}

func (t *Tag) prepare() {
	t.ID = newID()
	t.Slug = Slugify(t.Slug)
}

func checkSlug(entity, slug string) error {
	if Slugify(slug) == "" {
		return invalid("%s: slug %q has no usable characters", entity, slug)
	}
	return nil
}

func (c *Comment) validate() error {
	var r required
	r.check("content", c.Content)
	r.check("userId", c.UserID)
	r.check("postId", c.PostID)
	return r.err("comment")
}

func (c *Comment) prepare(now time.Time) {
	c.ID = newID()
	c.CreatedAt = stamp(now)
	c.UpdatedAt = c.CreatedAt
}

func snapshotOf(u User) *UserSnapshot {
	return &UserSnapshot{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}
