package content

import (
	"context"
	"strings"
)

// Posts is the repository for blog posts.
type Posts struct {
	c collection[BlogPost]
	s *Store
}

// All returns every post, drafts included, in store order.
func (r *Posts) All(ctx context.Context) ([]BlogPost, error) {
	return r.c.all(ctx)
}

// FindByID returns the post and whether it exists. Drafts are returned too.
func (r *Posts) FindByID(ctx context.Context, id string) (BlogPost, bool, error) {
	return r.c.get(ctx, id)
}

// FindByUserID returns every post written by userID.
func (r *Posts) FindByUserID(ctx context.Context, userID string) ([]BlogPost, error) {
	return r.c.find(ctx, "userId", userID)
}

// Create validates p, fills in the defaults (id, timestamps, excerpt,
// status, publishedAt) and inserts it.
func (r *Posts) Create(ctx context.Context, p *BlogPost) error {
	if err := p.validate(); err != nil {
		return err
	}
	if err := p.prepare(r.s.now()); err != nil {
		return err
	}
	return r.c.insert(ctx, *p)
}

// Update merges patch into the stored post. Publishing a draft stamps
// publishedAt with the current time; the stamp survives later edits and
// unpublishing.
func (r *Posts) Update(ctx context.Context, id string, patch BlogPostUpdate) (BlogPost, error) {
	p, ok, err := r.FindByID(ctx, id)
	if err != nil {
		return BlogPost{}, err
	}
	if !ok {
		return BlogPost{}, notFound("Post")
	}

	now := stamp(r.s.now())
	var missing required
	if patch.Title != nil {
		missing.check("title", *patch.Title)
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		missing.check("content", *patch.Content)
		p.Content = *patch.Content
	}
	if err := missing.err("post"); err != nil {
		return BlogPost{}, err
	}
	if patch.Excerpt != nil {
		p.Excerpt = *patch.Excerpt
	}
	if strings.TrimSpace(p.Excerpt) == "" {
		p.Excerpt = DefaultExcerpt(p.Content)
	}
	if patch.CoverImageURL != nil {
		p.CoverImageURL = *patch.CoverImageURL
	}
	if patch.CategoryIDs != nil {
		p.CategoryIDs = nonNil(*patch.CategoryIDs)
	}
	if patch.TagIDs != nil {
		p.TagIDs = nonNil(*patch.TagIDs)
	}
	if patch.PaperID != nil {
		p.PaperID = *patch.PaperID
	}
	if patch.Published != nil {
		if *patch.Published && !p.Published {
			p.PublishedAt = now
		}
		p.Published = *patch.Published
	}
	p.Status = postStatus(p.Published)
	p.UpdatedAt = now

	if err := r.c.replace(ctx, "Post", p); err != nil {
		return BlogPost{}, err
	}
	return p, nil
}

// Delete removes the post. Its comments stay.
func (r *Posts) Delete(ctx context.Context, id string) (bool, error) {
	return r.c.remove(ctx, "Post", id)
}

// List runs q over every post and returns the requested page.
func (r *Posts) List(ctx context.Context, q PostQuery) (Page[BlogPost], error) {
	if err := q.check(); err != nil {
		return Page[BlogPost]{}, err
	}
	posts, err := r.All(ctx)
	if err != nil {
		return Page[BlogPost]{}, err
	}
	return q.apply(posts), nil
}
