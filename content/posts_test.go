package content

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

func mustCreatePost(t *testing.T, s *Store, p BlogPost) BlogPost {
	t.Helper()
	if err := s.Posts.Create(context.Background(), &p); err != nil {
		t.Fatalf("create post %q: %v", p.Title, err)
	}
	return p
}

func TestPostExcerptDefault(t *testing.T) {
	s := setupTestStore(t)
	long := strings.Repeat("é", 200)

	tests := []struct {
		name    string
		content string
		excerpt string
		want    string
	}{
		{"provided", "body", "my excerpt", "my excerpt"},
		{"short content", "short body", "", "short body..."},
		{"long content", long, "", strings.Repeat("é", 150) + "..."},
		{"blank excerpt", "body", "   ", "body..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustCreatePost(t, s, BlogPost{Title: "T", Content: tt.content, Excerpt: tt.excerpt, UserID: "u1"})
			if p.Excerpt != tt.want {
				t.Errorf("Excerpt = %q, want %q", p.Excerpt, tt.want)
			}
			got, _, _ := s.Posts.FindByID(context.Background(), p.ID)
			if got.Excerpt != tt.want {
				t.Errorf("stored Excerpt = %q, want %q", got.Excerpt, tt.want)
			}
		})
	}
}

func TestPostCreateDefaults(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	draft := mustCreatePost(t, s, BlogPost{Title: "Draft", Content: "c", UserID: "u1", PublishedAt: "2020-01-01T00:00:00Z"})
	if draft.Status != StatusDraft || draft.PublishedAt != "" {
		t.Errorf("draft status=%q publishedAt=%q", draft.Status, draft.PublishedAt)
	}
	if draft.CategoryIDs == nil || draft.TagIDs == nil {
		t.Error("nil id slices, want empty")
	}

	pub := mustCreatePost(t, s, BlogPost{Title: "Live", Content: "c", UserID: "u1", Published: true})
	if pub.Status != StatusPublished || pub.PublishedAt != pub.CreatedAt {
		t.Errorf("published status=%q publishedAt=%q createdAt=%q", pub.Status, pub.PublishedAt, pub.CreatedAt)
	}

	dated := mustCreatePost(t, s, BlogPost{Title: "Dated", Content: "c", UserID: "u1", Published: true, PublishedAt: "2020-05-01T10:00:00+02:00"})
	if dated.PublishedAt != "2020-05-01T08:00:00.000Z" {
		t.Errorf("PublishedAt = %q, want normalised UTC", dated.PublishedAt)
	}

	bad := BlogPost{Title: "Bad", Content: "c", UserID: "u1", Published: true, PublishedAt: "yesterday"}
	if err := s.Posts.Create(ctx, &bad); !errors.Is(err, ErrValidation) {
		t.Errorf("bad publishedAt err = %v, want ErrValidation", err)
	}

	var missing BlogPost
	err := s.Posts.Create(ctx, &missing)
	if !errors.Is(err, ErrValidation) || !strings.Contains(Message(err), "title, content, userId") {
		t.Errorf("empty post err = %v", err)
	}
}

func TestPostPublishTransition(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := mustCreatePost(t, s, BlogPost{Title: "Draft", Content: "c", UserID: "u1"})
	if p.PublishedAt != "" {
		t.Fatalf("draft has publishedAt %q", p.PublishedAt)
	}

	yes := true
	published, err := s.Posts.Update(ctx, p.ID, BlogPostUpdate{Published: &yes})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.PublishedAt == "" || published.PublishedAt <= p.CreatedAt {
		t.Fatalf("publishedAt = %q, want a fresh timestamp after %q", published.PublishedAt, p.CreatedAt)
	}
	if published.Status != StatusPublished {
		t.Errorf("Status = %q", published.Status)
	}

	title := "x"
	edited, err := s.Posts.Update(ctx, p.ID, BlogPostUpdate{Title: &title})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.PublishedAt != published.PublishedAt {
		t.Errorf("publishedAt changed on edit: %q -> %q", published.PublishedAt, edited.PublishedAt)
	}
	if edited.Title != "x" || edited.Content != "c" {
		t.Errorf("merge lost fields: %+v", edited)
	}

	// Re-sending published: true is not a transition.
	again, err := s.Posts.Update(ctx, p.ID, BlogPostUpdate{Published: &yes})
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if again.PublishedAt != published.PublishedAt {
		t.Errorf("publishedAt changed without a transition")
	}

	stored, _, _ := s.Posts.FindByID(ctx, p.ID)
	if stored.PublishedAt != published.PublishedAt || stored.Title != "x" {
		t.Errorf("stored post = %+v", stored)
	}
}

func TestPostUpdateRules(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := mustCreatePost(t, s, BlogPost{Title: "T", Content: "c", UserID: "u1", CategoryIDs: []string{"a"}})

	empty := ""
	if _, err := s.Posts.Update(ctx, p.ID, BlogPostUpdate{Title: &empty}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank title err = %v", err)
	}
	cats := []string{"b", "c"}
	got, err := s.Posts.Update(ctx, p.ID, BlogPostUpdate{CategoryIDs: &cats, Excerpt: &empty})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if strings.Join(got.CategoryIDs, ",") != "b,c" {
		t.Errorf("CategoryIDs = %v, want replaced", got.CategoryIDs)
	}
	if got.Excerpt != "c..." {
		t.Errorf("Excerpt = %q, want recomputed default", got.Excerpt)
	}
	if _, err := s.Posts.Update(ctx, "missing", BlogPostUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) err = %v", err)
	}
	if _, err := s.Posts.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Posts.Delete(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v", err)
	}
}

func TestPostListQueryPagination(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var matching []BlogPost
	for i := range 12 {
		matching = append(matching, mustCreatePost(t, s, BlogPost{
			Title:     fmt.Sprintf("Quantum note %02d", i),
			Content:   "entanglement",
			UserID:    "u1",
			Published: true,
		}))
	}
	mustCreatePost(t, s, BlogPost{Title: "Classical", Content: "mechanics", UserID: "u1", Published: true})
	mustCreatePost(t, s, BlogPost{Title: "Quantum draft", Content: "unfinished", UserID: "u1"})

	page, err := s.Posts.List(ctx, PostQuery{Page: 2, Limit: 5, Query: "quantum"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 12 || page.TotalPages != 3 || page.Page != 2 || page.Limit != 5 {
		t.Fatalf("page = total %d pages %d page %d limit %d", page.Total, page.TotalPages, page.Page, page.Limit)
	}
	if len(page.Items) != 5 {
		t.Fatalf("len(items) = %d, want 5", len(page.Items))
	}
	// Newest first: items 6-10 of the match set are matching[6] down to matching[2].
	for i, p := range page.Items {
		want := matching[11-5-i]
		if p.ID != want.ID {
			t.Errorf("item %d = %q, want %q", i, p.Title, want.Title)
		}
	}

	beyond, err := s.Posts.List(ctx, PostQuery{Page: 9, Limit: 5, Query: "quantum"})
	if err != nil {
		t.Fatalf("List beyond: %v", err)
	}
	if len(beyond.Items) != 0 || beyond.Total != 12 || beyond.Items == nil {
		t.Errorf("beyond = %d items, total %d", len(beyond.Items), beyond.Total)
	}

	if _, err := s.Posts.List(ctx, PostQuery{Page: 0, Limit: 5}); !errors.Is(err, ErrValidation) {
		t.Errorf("page 0 err = %v", err)
	}
	if _, err := s.Posts.List(ctx, PostQuery{Page: 1, Limit: -1}); !errors.Is(err, ErrValidation) {
		t.Errorf("limit -1 err = %v", err)
	}
	capped, err := s.Posts.List(ctx, PostQuery{Page: 1, Limit: 1000})
	if err != nil {
		t.Fatalf("List capped: %v", err)
	}
	if capped.Limit != MaxLimit {
		t.Errorf("Limit = %d, want %d", capped.Limit, MaxLimit)
	}
}

func TestPostQueryFilters(t *testing.T) {
	posts := []BlogPost{
		{ID: "1", Title: "Neural nets", Content: "x", Published: true, CategoryIDs: []string{"ml"}, TagIDs: []string{"deep"}, UserID: "a"},
		{ID: "2", Title: "Other", Content: "about NEURAL things", Published: true, CategoryIDs: []string{"ml"}, UserID: "b"},
		{ID: "3", Title: "Other", Content: "x", Excerpt: "neural excerpt", Published: true, UserID: "a"},
		{ID: "4", Title: "Neural draft", Content: "x", UserID: "a"},
	}
	tests := []struct {
		name string
		q    PostQuery
		want string
	}{
		{"no filter hides drafts", PostQuery{}, "1,2,3"},
		{"text across fields", PostQuery{Query: "neural"}, "1,2,3"},
		{"text and category", PostQuery{Query: "neural", CategoryID: "ml"}, "1,2"},
		{"category and tag", PostQuery{CategoryID: "ml", TagID: "deep"}, "1"},
		{"author", PostQuery{UserID: "a"}, "1,3"},
		{"author with drafts", PostQuery{UserID: "a", IncludeDrafts: true}, "1,3,4"},
		{"no match", PostQuery{Query: "quantum"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, p := range posts {
				if tt.q.Match(p) {
					ids = append(ids, p.ID)
				}
			}
			if got := strings.Join(ids, ","); got != tt.want {
				t.Errorf("matched %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSortPostsDraftsLast(t *testing.T) {
	posts := []BlogPost{
		{ID: "draft-old", CreatedAt: "2024-01-01T00:00:00.000Z"},
		{ID: "pub-old", PublishedAt: "2024-01-02T00:00:00.000Z"},
		{ID: "draft-new", CreatedAt: "2024-01-05T00:00:00.000Z"},
		{ID: "pub-new", PublishedAt: "2024-01-03T00:00:00.000Z"},
	}
	order := func() string {
		ids := make([]string, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		return strings.Join(ids, ",")
	}

	SortPosts(posts, true)
	if got := order(); got != "pub-new,pub-old,draft-new,draft-old" {
		t.Errorf("desc = %s", got)
	}
	SortPosts(posts, false)
	if got := order(); got != "pub-old,pub-new,draft-old,draft-new" {
		t.Errorf("asc = %s", got)
	}
}

func TestPaginateProperties(t *testing.T) {
	items := make([]int, 23)
	for limit := 1; limit <= 25; limit++ {
		for page := 1; page <= 25; page++ {
			p := paginate(items, page, limit)
			if len(p.Items) > limit {
				t.Fatalf("page %d limit %d: %d items", page, limit, len(p.Items))
			}
			if p.Total != 23 {
				t.Fatalf("total = %d", p.Total)
			}
			if want := (23 + limit - 1) / limit; p.TotalPages != want {
				t.Fatalf("limit %d: totalPages = %d, want %d", limit, p.TotalPages, want)
			}
			if page > p.TotalPages && len(p.Items) != 0 {
				t.Fatalf("page %d beyond %d has items", page, p.TotalPages)
			}
		}
	}
	if empty := paginate([]int{}, 1, 10); empty.TotalPages != 0 || len(empty.Items) != 0 {
		t.Errorf("empty = %+v", empty)
	}
}

func TestListHugePageIsEmpty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for i := range 3 {
		mustCreatePost(t, s, BlogPost{Title: fmt.Sprintf("P%d", i), Content: "c", UserID: "u1", Published: true})
	}
	for _, page := range []int{math.MaxInt, math.MaxInt64 / 5, 4} {
		got, err := s.Posts.List(ctx, PostQuery{Page: page, Limit: 10})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if len(got.Items) != 0 || got.Total != 3 || got.TotalPages != 1 {
			t.Errorf("page %d = %+v, want an empty page of 3", page, got)
		}
	}
	if p := paginate([]int{1, 2, 3}, math.MaxInt, 100); len(p.Items) != 0 {
		t.Errorf("paginate at MaxInt = %v", p.Items)
	}
}
