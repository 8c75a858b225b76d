package content

import (
	"context"
	"encoding/json"
	"testing"
)

func TestAssemblePostsResolvesReferences(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ada := mustCreateUser(t, s, "Ada", "ada@example.com")
	physics := Category{Name: "Physics", Slug: "physics", Description: "p"}
	if err := s.Categories.Create(ctx, &physics); err != nil {
		t.Fatalf("create category: %v", err)
	}
	goTag := Tag{Name: "Go", Slug: "go"}
	if err := s.Tags.Create(ctx, &goTag); err != nil {
		t.Fatalf("create tag: %v", err)
	}
	paper := mustCreatePaper(t, s, ResearchPaper{Title: "Attention", Authors: []string{"V"}, Abstract: "a"})

	post := mustCreatePost(t, s, BlogPost{
		Title:       "Review",
		Content:     "c",
		UserID:      ada.ID,
		CategoryIDs: []string{physics.ID, "physics", "deleted-cat"},
		TagIDs:      []string{"go", "nope"},
		PaperID:     paper.ID,
		Published:   true,
	})

	views, err := s.AssemblePosts(ctx, []BlogPost{post})
	if err != nil {
		t.Fatalf("AssemblePosts: %v", err)
	}
	v := views[0]
	if v.ID != post.ID || v.Title != "Review" {
		t.Errorf("post fields lost: %+v", v.BlogPost)
	}
	if v.Author.Name != "Ada" || v.Author.ID != ada.ID {
		t.Errorf("Author = %+v", v.Author)
	}
	if len(v.Categories) != 3 {
		t.Fatalf("Categories = %+v", v.Categories)
	}
	if v.Categories[0].Name != "Physics" || v.Categories[1].ID != physics.ID {
		t.Errorf("category by id/slug = %+v", v.Categories[:2])
	}
	if v.Categories[2] != (Ref{ID: "deleted-cat", Name: Unknown}) {
		t.Errorf("dangling category = %+v", v.Categories[2])
	}
	if v.Tags[0].ID != goTag.ID || v.Tags[1].Name != Unknown {
		t.Errorf("Tags = %+v", v.Tags)
	}
	if v.Paper == nil || v.Paper.Name != "Attention" {
		t.Errorf("Paper = %+v", v.Paper)
	}

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var flat map[string]any
	if err := json.Unmarshal(b, &flat); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "title", "author", "categories", "tags", "paper"} {
		if _, ok := flat[key]; !ok {
			t.Errorf("JSON lacks %q: %s", key, b)
		}
	}
}

func TestAssemblePostsAfterAuthorDeleted(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ada := mustCreateUser(t, s, "Ada", "ada@example.com")
	post := mustCreatePost(t, s, BlogPost{Title: "T", Content: "c", UserID: ada.ID, PaperID: "gone"})
	if _, err := s.Users.Delete(ctx, ada.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	v, err := s.AssemblePost(ctx, post)
	if err != nil {
		t.Fatalf("AssemblePost: %v", err)
	}
	if v.Author != (Ref{ID: ada.ID, Name: Unknown}) {
		t.Errorf("Author = %+v, want unknown placeholder", v.Author)
	}
	if v.Paper == nil || v.Paper.Name != Unknown {
		t.Errorf("Paper = %+v", v.Paper)
	}
	if len(v.Categories) != 0 || v.Categories == nil {
		t.Errorf("Categories = %#v, want empty", v.Categories)
	}
}
