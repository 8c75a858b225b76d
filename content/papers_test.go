package content

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func mustCreatePaper(t *testing.T, s *Store, p ResearchPaper) ResearchPaper {
	t.Helper()
	if p.PDFURL == "" {
		p.PDFURL = "https://example.com/paper.pdf"
	}
	if p.UserID == "" {
		p.UserID = "u1"
	}
	if err := s.Papers.Create(context.Background(), &p); err != nil {
		t.Fatalf("create paper %q: %v", p.Title, err)
	}
	return p
}

func TestPaperCreate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := mustCreatePaper(t, s, ResearchPaper{Title: "Attention", Authors: []string{"Vaswani"}, Abstract: "transformers", Views: 99})
	if p.UploadedAt == "" || p.Views != 0 {
		t.Errorf("uploadedAt=%q views=%d", p.UploadedAt, p.Views)
	}
	if p.Keywords == nil || p.Citations == nil {
		t.Error("nil keyword/citation slices")
	}

	got, ok, err := s.Papers.FindByID(ctx, p.ID)
	if err != nil || !ok {
		t.Fatalf("FindByID: %v %v", ok, err)
	}
	if got.Title != p.Title || got.UploadedAt != p.UploadedAt || strings.Join(got.Authors, ";") != "Vaswani" {
		t.Errorf("round trip = %+v", got)
	}

	tests := []struct {
		name  string
		paper ResearchPaper
	}{
		{"no authors", ResearchPaper{Title: "x", Abstract: "a", PDFURL: "p", UserID: "u"}},
		{"blank author", ResearchPaper{Title: "x", Authors: []string{" "}, Abstract: "a", PDFURL: "p", UserID: "u"}},
		{"no pdf", ResearchPaper{Title: "x", Authors: []string{"a"}, Abstract: "a", UserID: "u"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.paper
			if err := s.Papers.Create(ctx, &p); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestPaperUpdateKeepsImmutables(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := mustCreatePaper(t, s, ResearchPaper{Title: "Old", Authors: []string{"A"}, Abstract: "abs"})

	title := "New"
	kw := []string{"ml"}
	got, err := s.Papers.Update(ctx, p.ID, ResearchPaperUpdate{Title: &title, Keywords: &kw})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "New" || got.Abstract != "abs" || strings.Join(got.Keywords, ",") != "ml" {
		t.Errorf("merged = %+v", got)
	}
	if got.UploadedAt != p.UploadedAt || got.UserID != p.UserID {
		t.Errorf("immutable fields changed: %+v", got)
	}

	none := []string{}
	if _, err := s.Papers.Update(ctx, p.ID, ResearchPaperUpdate{Authors: &none}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty authors err = %v", err)
	}
	if _, err := s.Papers.Update(ctx, "missing", ResearchPaperUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestPaperListQuery(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	neural := mustCreatePaper(t, s, ResearchPaper{Title: "Deep learning", Authors: []string{"LeCun"}, Abstract: "Neural networks are universal approximators"})
	byAuthor := mustCreatePaper(t, s, ResearchPaper{Title: "Vision", Authors: []string{"Hinton", "Neuralink Lab"}, Abstract: "images"})
	mine := mustCreatePaper(t, s, ResearchPaper{Title: "Graphs", Authors: []string{"Erdos"}, Abstract: "random graphs", UserID: "u2"})

	page, err := s.Papers.List(ctx, PaperQuery{Page: 1, Limit: 10, Query: "neural"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("total = %d, want 2", page.Total)
	}
	// Newest upload first.
	if page.Items[0].ID != byAuthor.ID || page.Items[1].ID != neural.ID {
		t.Errorf("order = %s, %s", page.Items[0].Title, page.Items[1].Title)
	}

	asc, err := s.Papers.List(ctx, PaperQuery{Page: 1, Limit: 10, Sort: "asc"})
	if err != nil {
		t.Fatalf("List asc: %v", err)
	}
	if len(asc.Items) != 3 || asc.Items[0].ID != neural.ID || asc.Items[2].ID != mine.ID {
		t.Errorf("asc order wrong: %+v", asc.Items)
	}

	byUser, err := s.Papers.List(ctx, PaperQuery{Page: 1, Limit: 10, UserID: "u2"})
	if err != nil {
		t.Fatalf("List by user: %v", err)
	}
	if byUser.Total != 1 || byUser.Items[0].ID != mine.ID {
		t.Errorf("by user = %+v", byUser)
	}

	none, err := s.Papers.List(ctx, PaperQuery{Page: 1, Limit: 10, Query: "quantum"})
	if err != nil {
		t.Fatalf("List none: %v", err)
	}
	if none.Total != 0 || len(none.Items) != 0 || none.TotalPages != 0 {
		t.Errorf("no-match page = %+v", none)
	}

	found, err := s.Papers.FindByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("FindByUserID = %d papers, want 2", len(found))
	}
}

func TestPaperAddViews(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	p := mustCreatePaper(t, s, ResearchPaper{Title: "T", Authors: []string{"A"}, Abstract: "a"})

	if _, err := s.Papers.AddViews(ctx, p.ID, 3); err != nil {
		t.Fatalf("AddViews: %v", err)
	}
	total, err := s.Papers.AddViews(ctx, p.ID, 4)
	if err != nil {
		t.Fatalf("AddViews: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	got, _, _ := s.Papers.FindByID(ctx, p.ID)
	if got.Views != 7 {
		t.Errorf("stored views = %d", got.Views)
	}
	if _, err := s.Papers.AddViews(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
}
