package content

import (
	"context"
	"strings"
)

// Papers is the repository for research papers.
type Papers struct {
	c collection[ResearchPaper]
	s *Store
}

// All returns every paper in store order.
func (r *Papers) All(ctx context.Context) ([]ResearchPaper, error) {
	return r.c.all(ctx)
}

// FindByID returns the paper and whether it exists.
func (r *Papers) FindByID(ctx context.Context, id string) (ResearchPaper, bool, error) {
	return r.c.get(ctx, id)
}

// FindByUserID returns every paper uploaded by userID.
func (r *Papers) FindByUserID(ctx context.Context, userID string) ([]ResearchPaper, error) {
	return r.c.find(ctx, "userId", userID)
}

// Create validates p, stamps uploadedAt and inserts it.
func (r *Papers) Create(ctx context.Context, p *ResearchPaper) error {
	if err := p.validate(); err != nil {
		return err
	}
	p.prepare(r.s.now())
	return r.c.insert(ctx, *p)
}

// Update merges patch into the stored paper. UploadedAt, UserID and Views
// are not patchable.
func (r *Papers) Update(ctx context.Context, id string, patch ResearchPaperUpdate) (ResearchPaper, error) {
	p, ok, err := r.FindByID(ctx, id)
	if err != nil {
		return ResearchPaper{}, err
	}
	if !ok {
		return ResearchPaper{}, notFound("Paper")
	}

	var missing required
	if patch.Title != nil {
		missing.check("title", *patch.Title)
		p.Title = *patch.Title
	}
	if patch.Abstract != nil {
		missing.check("abstract", *patch.Abstract)
		p.Abstract = *patch.Abstract
	}
	if patch.PDFURL != nil {
		missing.check("pdfUrl", *patch.PDFURL)
		p.PDFURL = *patch.PDFURL
	}
	if patch.Authors != nil {
		if len(*patch.Authors) == 0 {
			missing = append(missing, "authors")
		}
		p.Authors = *patch.Authors
	}
	if err := missing.err("paper"); err != nil {
		return ResearchPaper{}, err
	}
	for _, a := range p.Authors {
		if strings.TrimSpace(a) == "" {
			return ResearchPaper{}, invalid("paper: author names must not be blank")
		}
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.DOI, patch.DOI)
	set(&p.Journal, patch.Journal)
	set(&p.PublicationDate, patch.PublicationDate)
	set(&p.Volume, patch.Volume)
	set(&p.Issue, patch.Issue)
	set(&p.Pages, patch.Pages)
	set(&p.ExternalURL, patch.ExternalURL)
	if patch.Keywords != nil {
		p.Keywords = nonNil(*patch.Keywords)
	}
	if patch.Citations != nil {
		p.Citations = nonNil(*patch.Citations)
	}

	if err := r.c.replace(ctx, "Paper", p); err != nil {
		return ResearchPaper{}, err
	}
	return p, nil
}

// Delete removes the paper. Posts linking to it keep the dangling id.
func (r *Papers) Delete(ctx context.Context, id string) (bool, error) {
	return r.c.remove(ctx, "Paper", id)
}

// List runs q over every paper and returns the requested page. A query
// that matches nothing yields an empty page, not an error.
func (r *Papers) List(ctx context.Context, q PaperQuery) (Page[ResearchPaper], error) {
	if err := q.check(); err != nil {
		return Page[ResearchPaper]{}, err
	}
	papers, err := r.All(ctx)
	if err != nil {
		return Page[ResearchPaper]{}, err
	}
	return q.apply(papers), nil
}

// AddViews adds delta to the stored view count and returns the new total.
// It is a read-modify-write; concurrent callers can lose increments.
func (r *Papers) AddViews(ctx context.Context, id string, delta int64) (int64, error) {
	p, ok, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, notFound("Paper")
	}
	p.Views += delta
	if err := r.c.replace(ctx, "Paper", p); err != nil {
		return 0, err
	}
	return p.Views, nil
}
