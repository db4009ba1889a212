package domain

import (
	"time"
)

// User is an account holder. Accounts are created on registration or on the
// first external-identity login; they are never deleted. PasswordHash stays
// empty for externally-authenticated accounts.
type User struct {
	ID       string `json:"_id" gorm:"primaryKey;size:36"`
	Username string `json:"username"`
	Email    string `json:"email" gorm:"uniqueIndex;size:255"`
	// Bio is a short profile blurb. Readable through the API; no mutation
	// writes it yet.
	Bio          string `json:"bio,omitempty" gorm:"size:280"`
	PasswordHash string `json:"-"`
	// ExternalAuth marks accounts created via external-identity login.
	// Password login against such accounts is always rejected.
	ExternalAuth bool `json:"-"`

	// Followers is an independent counter of how many users follow this
	// account. It never goes below zero.
	Followers int `json:"followers"`
	// FollowingUsers holds the ids of the users this account follows.
	FollowingUsers StringSet `json:"followingUsers" gorm:"serializer:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Password is only ever populated from inbound register input,
	// cleared as soon as it has been hashed.
	Password string `json:"-" gorm:"-"`
	// Token carries a freshly issued session token back to the client on
	// register/login responses. Not persisted.
	Token string `json:"token,omitempty" gorm:"-"`
}

// UserService is a set of methods to manage Users, authentication, and the
// follow graph.
type UserService interface {
	ByID(id string) (*User, error)
	ByEmail(email string) (*User, error)
	All() ([]User, error)
	Random(n int) ([]User, error)

	Register(user *User) error
	Authenticate(email, password string) (*User, error)
	ExternalLogin(username, email string) (*User, error)

	Follow(actorID, targetID string) (*User, error)
	Unfollow(actorID, targetID string) (*User, error)
}
