package crud

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"postpulse/domain"
	"postpulse/errs"
)

// PostService manages Posts, including the like/dislike voter sets and the
// owner-only delete rule. It implements the domain.PostService interface.
type PostService struct {
	postValidator
}

// postValidator runs validations on incoming Post data.
// On success, it passes the data on to postGorm.
// Otherwise, it returns the error of the validation that has failed.
type postValidator struct {
	postGorm
}

// postGorm runs CRUD operations on the database using incoming Post data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type postGorm struct {
	db *gorm.DB
}

// NewPostService returns an instance of PostService.
func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		postValidator{
			postGorm{
				db: db,
			},
		},
	}
}

// Ensure the PostService struct properly implements the domain.PostService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PostService = &PostService{}

// Create runs validations needed for creating new Post database records.
// The title-uniqueness check runs before any write, so a duplicate title
// never leaves a partial record behind.
func (pv *postValidator) Create(post *domain.Post) error {
	err := runPostValFns(post,
		pv.authorRequired,
		pv.titleRequired,
		pv.titleMaxLength,
		pv.titleIsAvail,
		pv.descriptionRequired,
		pv.descriptionMaxLength,
		pv.idSetIfUnset)
	if err != nil {
		return err
	}
	return pv.postGorm.Create(post)
}

// Delete removes a post. Only the post's author may delete it; a non-owner
// caller gets an authorization error distinct from "not authenticated".
func (pv *postValidator) Delete(id, callerID string) (*domain.Post, error) {
	return pv.postGorm.Delete(id, callerID)
}

// runPostValFns runs any number of functions of type postValFn on the passed in Post object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runPostValFns(post *domain.Post, fns ...postValFn) error {
	for _, fn := range fns {
		if err := fn(post); err != nil {
			return err
		}
	}
	return nil
}

// A postValFn is any function that takes in a pointer to a domain.Post object and returns an error.
type postValFn func(post *domain.Post) error

// authorRequired makes sure that the post carries its author's id.
func (pv *postValidator) authorRequired(post *domain.Post) error {
	if post.AuthorID == "" {
		return errs.Errorf(errs.EINVALID, "An author is required.")
	}
	return nil
}

// titleRequired makes sure that the title is not the empty string.
func (pv *postValidator) titleRequired(post *domain.Post) error {
	if strings.TrimSpace(post.Title) == "" {
		return errs.Errorf(errs.EINVALID, "Title is required")
	}
	return nil
}

// titleMaxLength makes sure that the title does not exceed 80 characters.
func (pv *postValidator) titleMaxLength(post *domain.Post) error {
	if utf8.RuneCountInString(post.Title) > 80 {
		return errs.Errorf(errs.EINVALID, "Must be no more than 80 characters")
	}
	return nil
}

// titleIsAvail makes sure the title is not already taken, store-wide.
func (pv *postValidator) titleIsAvail(post *domain.Post) error {
	var existing domain.Post
	err := pv.db.First(&existing, "title = ?", post.Title).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != post.ID {
		return errs.Errorf(errs.EINVALID, "A post with this title already exists")
	}
	return nil
}

// descriptionRequired makes sure that the description is not the empty string.
func (pv *postValidator) descriptionRequired(post *domain.Post) error {
	if strings.TrimSpace(post.Description) == "" {
		return errs.Errorf(errs.EINVALID, "Description is required")
	}
	return nil
}

// descriptionMaxLength makes sure that the description does not exceed 800 characters.
func (pv *postValidator) descriptionMaxLength(post *domain.Post) error {
	if utf8.RuneCountInString(post.Description) > 800 {
		return errs.Errorf(errs.EINVALID, "Must be no more than 800 characters")
	}
	return nil
}

// idSetIfUnset generates the post's opaque id if none is provided.
func (pv *postValidator) idSetIfUnset(post *domain.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	return nil
}

// ByID retrieves a single Post by ID.
func (pg *postGorm) ByID(id string) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.First(&post, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "Post does not exist")
		}
		return nil, err
	}
	return &post, nil
}

// All retrieves every Post record.
func (pg *postGorm) All() ([]domain.Post, error) {
	var posts []domain.Post
	if err := pg.db.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Trending retrieves all posts ordered by like count, descending.
// Ties fall back to store-default order; the tie order is unstable.
func (pg *postGorm) Trending() ([]domain.Post, error) {
	var posts []domain.Post
	if err := pg.db.Order("likes_count DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Search retrieves posts whose title contains the query, case-insensitively.
func (pg *postGorm) Search(query string) ([]domain.Post, error) {
	var posts []domain.Post
	pattern := "%" + strings.ToLower(query) + "%"
	if err := pg.db.Where("LOWER(title) LIKE ?", pattern).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ByAuthor retrieves all posts created by the given user.
func (pg *postGorm) ByAuthor(authorID string) ([]domain.Post, error) {
	var posts []domain.Post
	if err := pg.db.Where("author_id = ?", authorID).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CountByAuthor counts the posts created by the given user.
func (pg *postGorm) CountByAuthor(authorID string) (int, error) {
	var count int64
	err := pg.db.Model(&domain.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Create stores the data from the Post object in a new database record.
func (pg *postGorm) Create(post *domain.Post) error {
	if post.Likes == nil {
		post.Likes = domain.StringSet{}
	}
	if post.Dislikes == nil {
		post.Dislikes = domain.StringSet{}
	}
	return pg.db.Create(post).Error
}

// Delete permanently deletes a post after checking ownership. The read and
// the delete share one transaction.
func (pg *postGorm) Delete(id, callerID string) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "Post does not exist")
			}
			return err
		}
		if post.AuthorID != callerID {
			return errs.Errorf(errs.EUNAUTHORIZED, "You are not authorized to delete this post. Only the owner can delete it.")
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Like moves the voter into the post's like set and out of its dislike set.
// The counter only increments when the voter was not already in the like
// set, so repeating a like changes nothing.
func (pg *postGorm) Like(id, voterID string) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "Post does not exist")
			}
			return err
		}

		likes, added := post.Likes.Add(voterID)
		if !added {
			return nil
		}
		post.Likes = likes
		post.Dislikes, _ = post.Dislikes.Remove(voterID)
		post.LikesCount++
		return tx.Save(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Dislike moves the voter into the post's dislike set and out of its like
// set, and decrements the counter. Decrementing from zero is a no-op that
// leaves the counter at zero.
func (pg *postGorm) Dislike(id, voterID string) (*domain.Post, error) {
	var post domain.Post
	err := pg.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "Post does not exist")
			}
			return err
		}

		dislikes, added := post.Dislikes.Add(voterID)
		if !added {
			return nil
		}
		post.Dislikes = dislikes
		post.Likes, _ = post.Likes.Remove(voterID)
		if post.LikesCount > 0 {
			post.LikesCount--
		}
		return tx.Save(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}
