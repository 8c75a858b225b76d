package content

import (
	"context"
	"strings"
)

const (
	categorySlugTaken = "A category with this slug already exists"
	tagSlugTaken      = "A tag with this slug already exists"
)

// Categories is the repository for post categories.
type Categories struct {
	c collection[Category]
}

// All returns every category in store order.
func (r *Categories) All(ctx context.Context) ([]Category, error) {
	return r.c.all(ctx)
}

// FindByID returns the category and whether it exists.
func (r *Categories) FindByID(ctx context.Context, id string) (Category, bool, error) {
	return r.c.get(ctx, id)
}

// FindBySlug returns the categories with slug (zero or one).
func (r *Categories) FindBySlug(ctx context.Context, slug string) ([]Category, error) {
	return r.c.find(ctx, "slug", Slugify(slug))
}

// Create validates c, normalises its slug and inserts it unless the slug is
// taken.
func (r *Categories) Create(ctx context.Context, c *Category) error {
	if err := c.validate(); err != nil {
		return err
	}
	c.prepare()
	if c.Parent != "" {
		if err := r.checkParent(ctx, c.ID, c.Parent); err != nil {
			return err
		}
	}
	if err := guardUnique(ctx, r.c, "slug", c.Slug, "", categorySlugTaken); err != nil {
		return err
	}
	return r.c.insert(ctx, *c)
}

// Update merges patch into the stored category.
func (r *Categories) Update(ctx context.Context, id string, patch CategoryUpdate) (Category, error) {
	c, ok, err := r.FindByID(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if !ok {
		return Category{}, notFound("Category")
	}

	var missing required
	if patch.Name != nil {
		missing.check("name", *patch.Name)
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		missing.check("description", *patch.Description)
		c.Description = *patch.Description
	}
	if patch.Slug != nil {
		missing.check("slug", *patch.Slug)
	}
	if err := missing.err("category"); err != nil {
		return Category{}, err
	}
	if patch.Slug != nil {
		if err := checkSlug("category", *patch.Slug); err != nil {
			return Category{}, err
		}
		slug := Slugify(*patch.Slug)
		if slug != c.Slug {
			if err := guardUnique(ctx, r.c, "slug", slug, c.ID, categorySlugTaken); err != nil {
				return Category{}, err
			}
		}
		c.Slug = slug
	}
	if patch.Parent != nil {
		parent := strings.TrimSpace(*patch.Parent)
		if parent != "" {
			if err := r.checkParent(ctx, c.ID, parent); err != nil {
				return Category{}, err
			}
			children, err := r.c.find(ctx, "parent", c.ID)
			if err != nil {
				return Category{}, err
			}
			if len(children) > 0 {
				return Category{}, invalid("category: %q has subcategories and cannot become one", c.ID)
			}
		}
		c.Parent = parent
	}

	if err := r.c.replace(ctx, "Category", c); err != nil {
		return Category{}, err
	}
	return c, nil
}

// checkParent keeps the hierarchy two levels deep: the parent must exist,
// differ from the category and itself be top level.
func (r *Categories) checkParent(ctx context.Context, id, parentID string) error {
	if parentID == id {
		return invalid("category: a category cannot be its own parent")
	}
	parent, ok, err := r.FindByID(ctx, parentID)
	if err != nil {
		return err
	}
	if !ok {
		return invalid("category: parent %q does not exist", parentID)
	}
	if parent.Parent != "" {
		return invalid("category: parent %q is itself a subcategory", parentID)
	}
	return nil
}

// Delete removes the category. Posts keep the dangling id.
func (r *Categories) Delete(ctx context.Context, id string) (bool, error) {
	return r.c.remove(ctx, "Category", id)
}

// Tags is the repository for post tags.
type Tags struct {
	c collection[Tag]
}

// All returns every tag in store order.
func (r *Tags) All(ctx context.Context) ([]Tag, error) {
	return r.c.all(ctx)
}

// FindByID returns the tag and whether it exists.
func (r *Tags) FindByID(ctx context.Context, id string) (Tag, bool, error) {
	return r.c.get(ctx, id)
}

// FindBySlug returns the tags with slug (zero or one).
func (r *Tags) FindBySlug(ctx context.Context, slug string) ([]Tag, error) {
	return r.c.find(ctx, "slug", Slugify(slug))
}

// Create validates t, normalises its slug and inserts it unless the slug is
// taken.
func (r *Tags) Create(ctx context.Context, t *Tag) error {
	if err := t.validate(); err != nil {
		return err
	}
	t.prepare()
	if err := guardUnique(ctx, r.c, "slug", t.Slug, "", tagSlugTaken); err != nil {
		return err
	}
	return r.c.insert(ctx, *t)
}

// Update merges patch into the stored tag.
func (r *Tags) Update(ctx context.Context, id string, patch TagUpdate) (Tag, error) {
	t, ok, err := r.FindByID(ctx, id)
	if err != nil {
		return Tag{}, err
	}
	if !ok {
		return Tag{}, notFound("Tag")
	}

	var missing required
	if patch.Name != nil {
		missing.check("name", *patch.Name)
		t.Name = *patch.Name
	}
	if patch.Slug != nil {
		missing.check("slug", *patch.Slug)
	}
	if err := missing.err("tag"); err != nil {
		return Tag{}, err
	}
	if patch.Slug != nil {
		if err := checkSlug("tag", *patch.Slug); err != nil {
			return Tag{}, err
		}
		slug := Slugify(*patch.Slug)
		if slug != t.Slug {
			if err := guardUnique(ctx, r.c, "slug", slug, t.ID, tagSlugTaken); err != nil {
				return Tag{}, err
			}
		}
		t.Slug = slug
	}

	if err := r.c.replace(ctx, "Tag", t); err != nil {
		return Tag{}, err
	}
	return t, nil
}

// Delete removes the tag. Posts keep the dangling id.
func (r *Tags) Delete(ctx context.Context, id string) (bool, error) {
	return r.c.remove(ctx, "Tag", id)
}
