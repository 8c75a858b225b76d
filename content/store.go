// Package content is the data-access layer for the review site: users,
// blog posts, research papers, categories, tags and comments kept in a
// document store, with the filtering, pagination, reference resolution and
// uniqueness rules the HTTP API relies on.
//
// References between records (post author, post categories, comment post)
// are plain ids with no integrity enforcement. Reads tolerate dangling
// references; nothing cascades on delete.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eringen/reviewengine/docstore"
)

// Collection names.
const (
	usersColl      = "users"
	postsColl      = "blogs"
	papersColl     = "research_papers"
	categoriesColl = "categories"
	tagsColl       = "tags"
	commentsColl   = "comments"
)

// Store bundles one repository per entity over a shared driver.
type Store struct {
	Users      *Users
	Posts      *Posts
	Papers     *Papers
	Categories *Categories
	Tags       *Tags
	Comments   *Comments

	driver docstore.Driver
	now    func() time.Time
}

// NewStore prepares every collection (and its unique indexes) on d.
func NewStore(ctx context.Context, d docstore.Driver) (*Store, error) {
	collections := []struct {
		name   string
		unique []string
	}{
		{usersColl, []string{"email"}},
		{postsColl, nil},
		{papersColl, nil},
		{categoriesColl, []string{"slug"}},
		{tagsColl, []string{"slug"}},
		{commentsColl, nil},
	}
	for _, c := range collections {
		if err := d.Ensure(ctx, c.name, c.unique); err != nil {
			return nil, fmt.Errorf("content: ensure %s: %w", c.name, err)
		}
	}

	s := &Store{driver: d, now: time.Now}
	s.Users = &Users{c: collection[User]{d: d, name: usersColl}, s: s}
	s.Posts = &Posts{c: collection[BlogPost]{d: d, name: postsColl}, s: s}
	s.Papers = &Papers{c: collection[ResearchPaper]{d: d, name: papersColl}, s: s}
	s.Categories = &Categories{c: collection[Category]{d: d, name: categoriesColl}}
	s.Tags = &Tags{c: collection[Tag]{d: d, name: tagsColl}}
	s.Comments = &Comments{c: collection[Comment]{d: d, name: commentsColl}, s: s}
	return s, nil
}

// Ping checks the underlying store connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.driver.Ping(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// Close releases the driver.
func (s *Store) Close() error {
	return s.driver.Close()
}

// Driver returns the name of the backing driver.
func (s *Store) Driver() string {
	return s.driver.Name()
}

// keyed is implemented by every entity so guards can tell records apart.
type keyed interface {
	key() string
}

func (u User) key() string          { return u.ID }
func (p BlogPost) key() string      { return p.ID }
func (p ResearchPaper) key() string { return p.ID }
func (c Category) key() string      { return c.ID }
func (t Tag) key() string           { return t.ID }
func (c Comment) key() string       { return c.ID }

// collection is a typed view over one driver collection. It translates
// driver failures into the package error kinds.
type collection[T keyed] struct {
	d    docstore.Driver
	name string
}

func (c collection[T]) decode(b []byte) (T, error) {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return v, storeErr("decode "+c.name, err)
	}
	return v, nil
}

func (c collection[T]) decodeAll(docs [][]byte) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, b := range docs {
		v, err := c.decode(b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c collection[T]) all(ctx context.Context) ([]T, error) {
	docs, err := c.d.All(ctx, c.name)
	if err != nil {
		return nil, storeErr("list "+c.name, err)
	}
	return c.decodeAll(docs)
}

func (c collection[T]) get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	if id == "" {
		return zero, false, nil
	}
	b, err := c.d.Get(ctx, c.name, id)
	if errors.Is(err, docstore.ErrMissing) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, storeErr("get "+c.name, err)
	}
	v, err := c.decode(b)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (c collection[T]) find(ctx context.Context, field, value string) ([]T, error) {
	docs, err := c.d.Find(ctx, c.name, field, value)
	if err != nil {
		return nil, storeErr("find "+c.name, err)
	}
	return c.decodeAll(docs)
}

func (c collection[T]) insert(ctx context.Context, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return storeErr("encode "+c.name, err)
	}
	if err := c.d.Insert(ctx, c.name, v.key(), b); err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			return &Error{Kind: ErrConflict, Message: "duplicate " + c.name + " record", Err: err}
		}
		return storeErr("insert "+c.name, err)
	}
	return nil
}

// replace overwrites an existing record; entity names the record in the
// not-found message.
func (c collection[T]) replace(ctx context.Context, entity string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return storeErr("encode "+c.name, err)
	}
	ok, err := c.d.Replace(ctx, c.name, v.key(), b)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			return &Error{Kind: ErrConflict, Message: "duplicate " + c.name + " record", Err: err}
		}
		return storeErr("replace "+c.name, err)
	}
	if !ok {
		return notFound(entity)
	}
	return nil
}

// remove deletes by id, failing with ErrNotFound when nothing was there.
func (c collection[T]) remove(ctx context.Context, entity, id string) (bool, error) {
	ok, err := c.d.Delete(ctx, c.name, id)
	if err != nil {
		return false, storeErr("delete "+c.name, err)
	}
	if !ok {
		return false, notFound(entity)
	}
	return true, nil
}
