package crud

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"postpulse/domain"
	"postpulse/errs"
)

// CommentService manages Comments. It implements the domain.CommentService
// interface.
type CommentService struct {
	commentValidator
}

// commentValidator runs validations on incoming Comment data.
// On success, it passes the data on to commentGorm.
// Otherwise, it returns the error of the validation that has failed.
type commentValidator struct {
	commentGorm
}

// commentGorm runs CRUD operations on the database using incoming Comment data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type commentGorm struct {
	db *gorm.DB
}

// NewCommentService returns an instance of CommentService.
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		commentValidator{
			commentGorm{
				db: db,
			},
		},
	}
}

// Ensure the CommentService struct properly implements the domain.CommentService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.CommentService = &CommentService{}

// Create runs validations needed for creating new Comment database records.
func (cv *commentValidator) Create(comment *domain.Comment) error {
	err := runCommentValFns(comment,
		cv.authorRequired,
		cv.commentedPostExists,
		cv.descriptionRequired,
		cv.idSetIfUnset)
	if err != nil {
		return err
	}
	return cv.commentGorm.Create(comment)
}

// Delete removes a comment. Only the comment's author may delete it.
func (cv *commentValidator) Delete(id, callerID string) (*domain.Comment, error) {
	return cv.commentGorm.Delete(id, callerID)
}

// runCommentValFns runs any number of functions of type commentValFn on the passed in Comment object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runCommentValFns(comment *domain.Comment, fns ...commentValFn) error {
	for _, fn := range fns {
		if err := fn(comment); err != nil {
			return err
		}
	}
	return nil
}

// A commentValFn is any function that takes in a pointer to a domain.Comment object and returns an error.
type commentValFn func(comment *domain.Comment) error

// authorRequired makes sure that the comment carries its author's id.
func (cv *commentValidator) authorRequired(comment *domain.Comment) error {
	if comment.AuthorID == "" {
		return errs.Errorf(errs.EINVALID, "An author is required.")
	}
	return nil
}

// commentedPostExists makes sure that the post to be commented on actually exists.
func (cv *commentValidator) commentedPostExists(comment *domain.Comment) error {
	err := cv.db.First(&domain.Post{}, "id = ?", comment.PostID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "Post does not exist")
		}
		return err
	}
	return nil
}

// descriptionRequired makes sure that the description is not the empty string.
func (cv *commentValidator) descriptionRequired(comment *domain.Comment) error {
	if strings.TrimSpace(comment.Description) == "" {
		return errs.Errorf(errs.EINVALID, "Description is required")
	}
	return nil
}

// idSetIfUnset generates the comment's opaque id if none is provided.
func (cv *commentValidator) idSetIfUnset(comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	return nil
}

// ByID retrieves a single Comment by ID.
func (cg *commentGorm) ByID(id string) (*domain.Comment, error) {
	var comment domain.Comment
	err := cg.db.First(&comment, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "Comment does not exist")
		}
		return nil, err
	}
	return &comment, nil
}

// ByPost retrieves all comments of the given post.
func (cg *commentGorm) ByPost(postID string) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := cg.db.Where("post_id = ?", postID).Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByPost counts the comments of the given post.
func (cg *commentGorm) CountByPost(postID string) (int, error) {
	var count int64
	err := cg.db.Model(&domain.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Create stores the data from the Comment object in a new database record.
func (cg *commentGorm) Create(comment *domain.Comment) error {
	return cg.db.Create(comment).Error
}

// Delete permanently deletes a comment after checking ownership.
func (cg *commentGorm) Delete(id, callerID string) (*domain.Comment, error) {
	var comment domain.Comment
	err := cg.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "Comment does not exist")
			}
			return err
		}
		if comment.AuthorID != callerID {
			return errs.Errorf(errs.EUNAUTHORIZED, "You are not authorized to delete this comment. Only the owner can delete it.")
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
