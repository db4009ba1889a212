package domain

import (
	"time"
)

// Post is a piece of user content. AuthorID is immutable after creation and
// only the author may delete the post. The Likes and Dislikes voter sets are
// mutually exclusive per voter; LikesCount mirrors the like set but is
// maintained as an independent counter with a floor of zero.
type Post struct {
	ID          string `json:"_id" gorm:"primaryKey;size:36"`
	AuthorID    string `json:"authorId" gorm:"size:36;index"`
	Title       string `json:"title" gorm:"uniqueIndex;size:80"`
	Description string `json:"description" gorm:"size:800"`

	Likes      StringSet `json:"likes" gorm:"serializer:json"`
	Dislikes   StringSet `json:"dislikes" gorm:"serializer:json"`
	LikesCount int       `json:"likesCount"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostService is a set of methods to manipulate and work with the Post model.
// Delete, Like and Dislike take the acting caller's id so ownership and
// voter-set rules are enforced in one place.
type PostService interface {
	ByID(id string) (*Post, error)
	All() ([]Post, error)
	Trending() ([]Post, error)
	Search(query string) ([]Post, error)
	ByAuthor(authorID string) ([]Post, error)
	CountByAuthor(authorID string) (int, error)

	Create(post *Post) error
	Delete(id, callerID string) (*Post, error)
	Like(id, voterID string) (*Post, error)
	Dislike(id, voterID string) (*Post, error)
}
