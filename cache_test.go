package reviewengine

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/eringen/reviewengine/content"
)

func TestPublishedCacheTTL(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	app.Cache.now = func() time.Time { return now }

	posts, err := app.Cache.Posts(ctx)
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Fatalf("empty store gave %v, want an empty non-nil slice", posts)
	}

	// Writes that bypass the API are only seen once the entry expires.
	p := content.BlogPost{Title: "Direct", Content: "c", UserID: "u1", Published: true}
	if err := app.Store.Posts.Create(ctx, &p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if posts, _ := app.Cache.Posts(ctx); len(posts) != 0 {
		t.Fatalf("fresh cache saw a direct write: %d posts", len(posts))
	}
	now = now.Add(app.Config.FeedCacheTTL)
	posts, _ = app.Cache.Posts(ctx)
	if len(posts) != 1 || posts[0].Author.Name != content.Unknown {
		t.Fatalf("after TTL = %+v", posts)
	}
}

func TestPublishedCacheOrderAndLatest(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()
	for i, title := range []string{"first", "draft", "second", "third"} {
		p := content.BlogPost{Title: title, Content: "c", UserID: "u1", Published: title != "draft"}
		if p.Published {
			p.PublishedAt = fmt.Sprintf("2024-01-0%dT10:00:00.000Z", i+1)
		}
		if err := app.Store.Posts.Create(ctx, &p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	latest, err := app.Cache.Latest(ctx, 2)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(latest) != 2 || latest[0].Title != "third" || latest[1].Title != "second" {
		t.Errorf("Latest(2) = %v", titles(latest))
	}
	all, _ := app.Cache.Posts(ctx)
	if len(all) != 3 {
		t.Errorf("Posts = %v, want the three published", titles(all))
	}
}

func TestFeedSeesAPIWritesImmediately(t *testing.T) {
	app := setupTestApp(t)
	_, token := register(t, app, "Ada", "ada@example.com")

	expectStatus(t, do(t, app, request{method: http.MethodGet, path: "/feed.xml"}), http.StatusOK)

	rec := do(t, app, request{method: http.MethodPost, path: "/api/posts", token: token, body: map[string]any{
		"title": "Fresh review", "content": "c", "published": true,
	}})
	expectStatus(t, rec, http.StatusCreated)
	post := decodeBody[content.BlogPost](t, rec)

	rec = do(t, app, request{method: http.MethodGet, path: "/feed.xml"})
	if !containsAll(rec.Body.String(), "Fresh review", "<author>Ada</author>") {
		t.Fatalf("feed after create = %s", rec.Body.String())
	}

	expectStatus(t, do(t, app, request{method: http.MethodDelete, path: "/api/posts/" + post.ID, token: token}), http.StatusOK)
	rec = do(t, app, request{method: http.MethodGet, path: "/feed.xml"})
	if containsAll(rec.Body.String(), "Fresh review") {
		t.Fatalf("feed still lists a deleted post")
	}
}

func titles(posts []content.PostView) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
