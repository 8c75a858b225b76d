package content

import "context"

// Unknown is the name shown for a reference whose target no longer exists.
const Unknown = "unknown"

// Ref is a resolved reference: enough of the target to display it.
type Ref struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func unknownRef(id string) Ref {
	return Ref{ID: id, Name: Unknown}
}

// PostView is a post with its references resolved for display.
type PostView struct {
	BlogPost
	Author     Ref   `json:"author"`
	Categories []Ref `json:"categories"`
	Tags       []Ref `json:"tags"`
	Paper      *Ref  `json:"paper,omitempty"`
}

// lookup indexes records by id and, where they have one, by slug.
type lookup struct {
	byID   map[string]Ref
	bySlug map[string]Ref
}

func (l lookup) resolve(key string) Ref {
	if r, ok := l.byID[key]; ok {
		return r
	}
	if r, ok := l.bySlug[key]; ok {
		return r
	}
	return unknownRef(key)
}

func (l lookup) resolveAll(keys []string) []Ref {
	out := make([]Ref, len(keys))
	for i, k := range keys {
		out[i] = l.resolve(k)
	}
	return out
}

// AssemblePosts resolves the author, categories, tags and paper of every
// post. Each referenced collection is read once per call. References that
// point nowhere resolve to an Unknown placeholder.
func (s *Store) AssemblePosts(ctx context.Context, posts []BlogPost) ([]PostView, error) {
	users, err := s.Users.All(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := s.Categories.All(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.Tags.All(ctx)
	if err != nil {
		return nil, err
	}

	authors := lookup{byID: make(map[string]Ref, len(users))}
	for _, u := range users {
		authors.byID[u.ID] = Ref{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
	}
	categories := lookup{byID: map[string]Ref{}, bySlug: map[string]Ref{}}
	for _, c := range cats {
		r := Ref{ID: c.ID, Name: c.Name, Slug: c.Slug}
		categories.byID[c.ID] = r
		categories.bySlug[c.Slug] = r
	}
	tagRefs := lookup{byID: map[string]Ref{}, bySlug: map[string]Ref{}}
	for _, t := range tags {
		r := Ref{ID: t.ID, Name: t.Name, Slug: t.Slug}
		tagRefs.byID[t.ID] = r
		tagRefs.bySlug[t.Slug] = r
	}

	// Papers are only read when some post links one.
	papers := lookup{byID: map[string]Ref{}}
	for _, p := range posts {
		if p.PaperID == "" {
			continue
		}
		all, err := s.Papers.All(ctx)
		if err != nil {
			return nil, err
		}
		for _, paper := range all {
			papers.byID[paper.ID] = Ref{ID: paper.ID, Name: paper.Title}
		}
		break
	}

	out := make([]PostView, len(posts))
	for i, p := range posts {
		v := PostView{
			BlogPost:   p,
			Author:     authors.resolve(p.UserID),
			Categories: categories.resolveAll(p.CategoryIDs),
			Tags:       tagRefs.resolveAll(p.TagIDs),
		}
		if p.PaperID != "" {
			paper := papers.resolve(p.PaperID)
			v.Paper = &paper
		}
		out[i] = v
	}
	return out, nil
}

// AssemblePost is AssemblePosts for a single post.
func (s *Store) AssemblePost(ctx context.Context, p BlogPost) (PostView, error) {
	views, err := s.AssemblePosts(ctx, []BlogPost{p})
	if err != nil {
		return PostView{}, err
	}
	return views[0], nil
}

// CommentNode is a comment with its direct replies.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}

// ThreadComments nests replies under their parents, keeping the input order
// at every level. Replies whose parent is not in comments stay at the top.
func ThreadComments(comments []Comment) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(comments))
	ordered := make([]*CommentNode, len(comments))
	for i, c := range comments {
		n := &CommentNode{Comment: c, Replies: []*CommentNode{}}
		nodes[c.ID] = n
		ordered[i] = n
	}
	roots := []*CommentNode{}
	for _, n := range ordered {
		parent, ok := nodes[n.ParentID]
		if n.ParentID == "" || !ok || parent == n {
			roots = append(roots, n)
			continue
		}
		parent.Replies = append(parent.Replies, n)
	}
	return roots
}
