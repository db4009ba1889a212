package domain

import (
	"time"
)

// Comment belongs to a Post. Any authenticated user may comment; only the
// comment's author may delete it. Comments are not cascaded when a post is
// removed, so orphans are possible (the store enforces no referential
// integrity between collections).
type Comment struct {
	ID          string `json:"_id" gorm:"primaryKey;size:36"`
	AuthorID    string `json:"authorId" gorm:"size:36;index"`
	PostID      string `json:"postId" gorm:"size:36;index"`
	Description string `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	ByID(id string) (*Comment, error)
	ByPost(postID string) ([]Comment, error)
	CountByPost(postID string) (int, error)

	Create(comment *Comment) error
	Delete(id, callerID string) (*Comment, error)
}
