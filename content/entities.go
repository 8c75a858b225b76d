package content

// User is a registered account. Password holds the bcrypt hash; use Public
// for anything that leaves the process.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Bio       string `json:"bio,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// PublicUser is a User without credentials.
type PublicUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Bio       string `json:"bio,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Public strips the password hash.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// PublicUsers maps Public over users.
func PublicUsers(users []User) []PublicUser {
	out := make([]PublicUser, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

// Post status values, derived from BlogPost.Published.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// BlogPost is a review article. UserID, CategoryIDs, TagIDs and PaperID are
// unenforced references.
type BlogPost struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	CoverImageURL string   `json:"coverImageUrl,omitempty"`
	UserID        string   `json:"userId"`
	CategoryIDs   []string `json:"categoryIds"`
	TagIDs        []string `json:"tagIds"`
	PaperID       string   `json:"paperId,omitempty"`
	Published     bool     `json:"published"`
	PublishedAt   string   `json:"publishedAt,omitempty"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

// ResearchPaper is an uploaded paper with its citation metadata.
type ResearchPaper struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	Abstract        string   `json:"abstract"`
	PDFURL          string   `json:"pdfUrl"`
	DOI             string   `json:"doi,omitempty"`
	Journal         string   `json:"journal,omitempty"`
	PublicationDate string   `json:"publicationDate,omitempty"`
	UserID          string   `json:"userId"`
	UploadedAt      string   `json:"uploadedAt"`
	Keywords        []string `json:"keywords"`
	Citations       []string `json:"citations"`
	Volume          string   `json:"volume"`
	Issue           string   `json:"issue"`
	Pages           string   `json:"pages"`
	ExternalURL     string   `json:"externalUrl"`
	Views           int64    `json:"views"`
}

// Category groups posts. Parent optionally points at another category,
// giving a two-level hierarchy.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Parent      string `json:"parent,omitempty"`
}

// Tag is a free-form label on posts.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// UserSnapshot is the author as they were when a comment was written. It is
// copied, not joined, and is never refreshed.
type UserSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Bio       string `json:"bio,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// Comment is a remark on a post, optionally replying to another comment.
type Comment struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	UserID    string        `json:"userId"`
	PostID    string        `json:"postId"`
	ParentID  string        `json:"parentId,omitempty"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
	User      *UserSnapshot `json:"user,omitempty"`
}

// UserUpdate is a partial User. Nil fields are left untouched.
type UserUpdate struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	AvatarURL *string `json:"avatarUrl"`
	Bio       *string `json:"bio"`
}

// BlogPostUpdate is a partial BlogPost. Slices replace the stored value.
type BlogPostUpdate struct {
	Title         *string   `json:"title"`
	Content       *string   `json:"content"`
	Excerpt       *string   `json:"excerpt"`
	CoverImageURL *string   `json:"coverImageUrl"`
	CategoryIDs   *[]string `json:"categoryIds"`
	TagIDs        *[]string `json:"tagIds"`
	PaperID       *string   `json:"paperId"`
	Published     *bool     `json:"published"`
}

// ResearchPaperUpdate is a partial ResearchPaper. UploadedAt and UserID are
// immutable.
type ResearchPaperUpdate struct {
	Title           *string   `json:"title"`
	Authors         *[]string `json:"authors"`
	Abstract        *string   `json:"abstract"`
	PDFURL          *string   `json:"pdfUrl"`
	DOI             *string   `json:"doi"`
	Journal         *string   `json:"journal"`
	PublicationDate *string   `json:"publicationDate"`
	Keywords        *[]string `json:"keywords"`
	Citations       *[]string `json:"citations"`
	Volume          *string   `json:"volume"`
	Issue           *string   `json:"issue"`
	Pages           *string   `json:"pages"`
	ExternalURL     *string   `json:"externalUrl"`
}

// CategoryUpdate is a partial Category.
type CategoryUpdate struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Parent      *string `json:"parent"`
}

// TagUpdate is a partial Tag.
type TagUpdate struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

// CommentUpdate is a partial Comment; only the text can change.
type CommentUpdate struct {
	Content *string `json:"content"`
}
