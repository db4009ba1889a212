package crud

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"postpulse/domain"
	"postpulse/errs"
)

// UserService manages Users, password authentication, external-identity
// accounts and the follow graph. It implements the domain.UserService
// interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	emailRegex *regexp.Regexp
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		userValidator{
			emailRegex: regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Register runs validations needed for creating new User database records,
// hashes the password and stores the user.
func (uv *userValidator) Register(user *domain.User) error {
	err := runUserValFns(user,
		uv.usernameRequired,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat,
		uv.emailIsAvail,
		uv.passwordRequired,
		uv.passwordBcrypt,
		uv.idSetIfUnset)
	if err != nil {
		return err
	}
	return uv.userGorm.Create(user)
}

// Authenticate checks a submitted email address and password for existence
// and correctness. Accounts created via external-identity login carry no
// password and always reject the password path.
func (uv *userValidator) Authenticate(email, password string) (*domain.User, error) {
	found, err := uv.userGorm.ByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil, errs.Errorf(errs.EUNAUTHENTICATED, "No user with this email found")
		}
		return nil, err
	}

	if found.ExternalAuth {
		return nil, errs.Errorf(errs.EUNAUTHENTICATED, "User already registered via Google login")
	}

	err = bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return nil, errs.Errorf(errs.EUNAUTHENTICATED, "Invalid password credentials")
		}
		return nil, err
	}
	return found, nil
}

// ExternalLogin looks a user up by email and creates a new account flagged
// as externally-authenticated if none exists.
func (uv *userValidator) ExternalLogin(username, email string) (*domain.User, error) {
	user := &domain.User{
		Username:     username,
		Email:        email,
		ExternalAuth: true,
	}
	err := runUserValFns(user,
		uv.emailNormalize,
		uv.emailRequired,
		uv.emailFormat)
	if err != nil {
		return nil, err
	}

	found, err := uv.userGorm.ByEmail(user.Email)
	if err == nil {
		return found, nil
	}
	if errs.ErrorCode(err) != errs.ENOTFOUND {
		return nil, err
	}

	if err := uv.idSetIfUnset(user); err != nil {
		return nil, err
	}
	if err := uv.userGorm.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// runUserValFns runs any number of functions of type userValFn on the passed in User object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runUserValFns(user *domain.User, fns ...userValFn) error {
	for _, fn := range fns {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

// A userValFn is any function that takes in a pointer to a domain.User object and returns an error.
type userValFn func(user *domain.User) error

// usernameRequired makes sure that the username is not the empty string.
func (uv *userValidator) usernameRequired(user *domain.User) error {
	if strings.TrimSpace(user.Username) == "" {
		return errs.Errorf(errs.EINVALID, "A username is required.")
	}
	return nil
}

// emailNormalize converts the email to all lowercase and trims its whitespaces.
func (uv *userValidator) emailNormalize(user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	user.Email = strings.TrimSpace(user.Email)
	return nil
}

// emailRequired makes sure that the email is not the empty string.
func (uv *userValidator) emailRequired(user *domain.User) error {
	if user.Email == "" {
		return errs.Errorf(errs.EINVALID, "An email address is required.")
	}
	return nil
}

// emailFormat makes sure that a provided email address matches a predefined regex pattern.
func (uv *userValidator) emailFormat(user *domain.User) error {
	if user.Email == "" {
		return nil
	}
	if !uv.emailRegex.MatchString(user.Email) {
		return errs.Errorf(errs.EINVALID, "The email address is invalid.")
	}
	return nil
}

// emailIsAvail makes sure that a provided email address is not yet taken.
func (uv *userValidator) emailIsAvail(user *domain.User) error {
	existing, err := uv.userGorm.ByEmail(user.Email)
	if errs.ErrorCode(err) == errs.ENOTFOUND {
		return nil
	}
	if err != nil {
		return err
	}
	if user.ID != existing.ID {
		return errs.Errorf(errs.EINVALID, "User already exists with this email")
	}
	return nil
}

// passwordRequired makes sure that the user's password is not the empty string.
func (uv *userValidator) passwordRequired(user *domain.User) error {
	if user.Password == "" {
		return errs.Errorf(errs.EINVALID, "A password is required.")
	}
	return nil
}

// passwordBcrypt hashes a user's password with bcrypt cost 10, then clears
// the plaintext on the user object in memory.
func (uv *userValidator) passwordBcrypt(user *domain.User) error {
	if user.Password == "" {
		return nil
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedBytes)
	user.Password = ""
	return nil
}

// idSetIfUnset generates the user's opaque id if none is provided.
func (uv *userValidator) idSetIfUnset(user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return nil
}

// Follow adds the target to the actor's following set and increments the
// target's follower counter. Both updates run in a single transaction, and
// the counter only moves when the set actually changed, so the pair stays
// symmetric. Re-following is a no-op.
func (uv *userValidator) Follow(actorID, targetID string) (*domain.User, error) {
	if actorID == targetID {
		return nil, errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	}
	return uv.userGorm.Follow(actorID, targetID)
}

// Unfollow removes the target from the actor's following set and decrements
// the target's follower counter, clamped at zero. Unfollowing a user not in
// the set is a no-op.
func (uv *userValidator) Unfollow(actorID, targetID string) (*domain.User, error) {
	if actorID == targetID {
		return nil, errs.Errorf(errs.EINVALID, "You cannot unfollow yourself.")
	}
	return uv.userGorm.Unfollow(actorID, targetID)
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(id string) (*domain.User, error) {
	var user domain.User
	err := ug.db.First(&user, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist")
		}
		return nil, err
	}
	return &user, nil
}

// ByEmail retrieves a User database record by Email.
func (ug *userGorm) ByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := ug.db.First(&user, "email = ?", email).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist")
		}
		return nil, err
	}
	return &user, nil
}

// All retrieves every User record.
func (ug *userGorm) All() ([]domain.User, error) {
	var users []domain.User
	if err := ug.db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Random retrieves an unordered sample of up to n distinct users, fewer if
// the store holds fewer.
func (ug *userGorm) Random(n int) ([]domain.User, error) {
	var users []domain.User
	if err := ug.db.Order("RANDOM()").Limit(n).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create stores the data from the User object in a new database record.
func (ug *userGorm) Create(user *domain.User) error {
	if user.FollowingUsers == nil {
		user.FollowingUsers = domain.StringSet{}
	}
	return ug.db.Create(user).Error
}

// Follow applies the actor-set / target-counter pair inside one transaction.
func (ug *userGorm) Follow(actorID, targetID string) (*domain.User, error) {
	var actor domain.User
	err := ug.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&actor, "id = ?", actorID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "The user does not exist")
			}
			return err
		}
		var target domain.User
		if err := tx.First(&target, "id = ?", targetID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "The user to follow does not exist")
			}
			return err
		}

		following, added := actor.FollowingUsers.Add(targetID)
		if !added {
			return nil
		}
		actor.FollowingUsers = following
		if err := tx.Save(&actor).Error; err != nil {
			return err
		}
		target.Followers++
		return tx.Save(&target).Error
	})
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

// Unfollow reverses Follow inside one transaction, flooring the counter at zero.
func (ug *userGorm) Unfollow(actorID, targetID string) (*domain.User, error) {
	var actor domain.User
	err := ug.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&actor, "id = ?", actorID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "The user does not exist")
			}
			return err
		}
		var target domain.User
		if err := tx.First(&target, "id = ?", targetID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errs.Errorf(errs.ENOTFOUND, "The user to unfollow does not exist")
			}
			return err
		}

		following, removed := actor.FollowingUsers.Remove(targetID)
		if !removed {
			return nil
		}
		actor.FollowingUsers = following
		if err := tx.Save(&actor).Error; err != nil {
			return err
		}
		if target.Followers > 0 {
			target.Followers--
		}
		return tx.Save(&target).Error
	})
	if err != nil {
		return nil, err
	}
	return &actor, nil
}
