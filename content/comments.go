package content

import "context"

// Comments is the repository for post comments.
type Comments struct {
	c collection[Comment]
	s *Store
}

// All returns every comment in store order.
func (r *Comments) All(ctx context.Context) ([]Comment, error) {
	return r.c.all(ctx)
}

// FindByID returns the comment and whether it exists.
func (r *Comments) FindByID(ctx context.Context, id string) (Comment, bool, error) {
	return r.c.get(ctx, id)
}

// FindByPostID returns the comments on postID in store order.
func (r *Comments) FindByPostID(ctx context.Context, postID string) ([]Comment, error) {
	return r.c.find(ctx, "postId", postID)
}

// Create validates c, looks up its author and embeds a snapshot of them,
// then inserts it. A reply's parent must be a comment on the same post.
// The post itself is not checked.
func (r *Comments) Create(ctx context.Context, c *Comment) error {
	if err := c.validate(); err != nil {
		return err
	}
	author, ok, err := r.s.Users.FindByID(ctx, c.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("User")
	}
	if c.ParentID != "" {
		parent, ok, err := r.FindByID(ctx, c.ParentID)
		if err != nil {
			return err
		}
		if !ok || parent.PostID != c.PostID {
			return invalid("comment: parent %q is not a comment on post %q", c.ParentID, c.PostID)
		}
	}
	c.prepare(r.s.now())
	c.User = snapshotOf(author)
	return r.c.insert(ctx, *c)
}

// Update changes the comment text. The author snapshot is kept as written.
func (r *Comments) Update(ctx context.Context, id string, patch CommentUpdate) (Comment, error) {
	c, ok, err := r.FindByID(ctx, id)
	if err != nil {
		return Comment{}, err
	}
	if !ok {
		return Comment{}, notFound("Comment")
	}
	if patch.Content != nil {
		var missing required
		missing.check("content", *patch.Content)
		if err := missing.err("comment"); err != nil {
			return Comment{}, err
		}
		c.Content = *patch.Content
	}
	c.UpdatedAt = stamp(r.s.now())

	if err := r.c.replace(ctx, "Comment", c); err != nil {
		return Comment{}, err
	}
	return c, nil
}

// Delete removes the comment. Replies keep their parentId.
func (r *Comments) Delete(ctx context.Context, id string) (bool, error) {
	return r.c.remove(ctx, "Comment", id)
}
