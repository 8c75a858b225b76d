package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/bxcodec/faker/v4"

	"github.com/eringen/reviewengine/content"
	"github.com/eringen/reviewengine/docstore"
)

type seedCounts struct {
	users, papers, posts, comments int
}

func runSeed(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	var n seedCounts
	fs.IntVar(&n.users, "users", 10, "number of users")
	fs.IntVar(&n.papers, "papers", 30, "number of research papers")
	fs.IntVar(&n.posts, "posts", 50, "number of blog posts")
	fs.IntVar(&n.comments, "comments", 100, "number of comments")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if n.users < 1 {
		return fmt.Errorf("need at least one user")
	}

	ctx := context.Background()
	d, err := docstore.Open(ctx, storeConfig())
	if err != nil {
		return err
	}
	store, err := content.NewStore(ctx, d)
	if err != nil {
		d.Close()
		return err
	}
	defer store.Close()

	return seed(ctx, store, n)
}

func seed(ctx context.Context, s *content.Store, n seedCounts) error {
	var users []content.User
	for len(users) < n.users {
		u := content.User{
			Name:     faker.Name(),
			Email:    faker.Email(),
			Password: faker.Password(),
			Bio:      faker.Sentence(),
		}
		err := s.Users.Create(ctx, &u)
		if errors.Is(err, content.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, u)
	}
	log.Printf("inserted %d users", len(users))

	pick := func() string { return users[rand.IntN(len(users))].ID }

	var categories []content.Category
	var tags []content.Tag
	for len(categories) < 6 {
		c := content.Category{Name: faker.Word(), Description: faker.Sentence()}
		c.Slug = c.Name
		if err := s.Categories.Create(ctx, &c); err == nil {
			categories = append(categories, c)
		} else if !errors.Is(err, content.ErrConflict) {
			return fmt.Errorf("seed category: %w", err)
		}
	}
	for len(tags) < 12 {
		t := content.Tag{Name: faker.Word()}
		t.Slug = t.Name
		if err := s.Tags.Create(ctx, &t); err == nil {
			tags = append(tags, t)
		} else if !errors.Is(err, content.ErrConflict) {
			return fmt.Errorf("seed tag: %w", err)
		}
	}

	var papers []content.ResearchPaper
	for range n.papers {
		authors := make([]string, rand.IntN(4)+1)
		for i := range authors {
			authors[i] = faker.Name()
		}
		keywords := make([]string, rand.IntN(4)+1)
		for i := range keywords {
			keywords[i] = faker.Word()
		}
		p := content.ResearchPaper{
			Title:           faker.Sentence(),
			Authors:         authors,
			Abstract:        faker.Paragraph(),
			PDFURL:          faker.URL(),
			Journal:         faker.Word() + " " + faker.Word() + " Journal",
			PublicationDate: faker.Date(),
			Keywords:        keywords,
			UserID:          pick(),
		}
		if err := s.Papers.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed paper: %w", err)
		}
		papers = append(papers, p)
	}
	log.Printf("inserted %d papers", len(papers))

	var posts []content.BlogPost
	for range n.posts {
		p := content.BlogPost{
			Title:       faker.Sentence(),
			Content:     faker.Paragraph() + "\n\n" + faker.Paragraph(),
			UserID:      pick(),
			CategoryIDs: []string{categories[rand.IntN(len(categories))].ID},
			TagIDs:      []string{tags[rand.IntN(len(tags))].ID, tags[rand.IntN(len(tags))].ID},
			Published:   rand.IntN(5) != 0,
		}
		if len(papers) > 0 {
			p.PaperID = papers[rand.IntN(len(papers))].ID
		}
		if err := s.Posts.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, p)
	}
	log.Printf("inserted %d posts", len(posts))

	if len(posts) == 0 {
		return nil
	}
	var comments []content.Comment
	for range n.comments {
		post := posts[rand.IntN(len(posts))]
		c := content.Comment{Content: faker.Sentence(), UserID: pick(), PostID: post.ID}
		// Reply to an earlier comment on the same post now and then.
		if len(comments) > 0 && rand.IntN(3) == 0 {
			prev := comments[rand.IntN(len(comments))]
			c.PostID, c.ParentID = prev.PostID, prev.ID
		}
		if err := s.Comments.Create(ctx, &c); err != nil {
			return fmt.Errorf("seed comment: %w", err)
		}
		comments = append(comments, c)
	}
	log.Printf("inserted %d comments", len(comments))
	return nil
}
