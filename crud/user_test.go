package crud

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"postpulse/domain"
	"postpulse/errs"
)

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db)

	user := &domain.User{
		Username: "alice",
		Email:    "Alice@X.com",
		Password: "super-secret",
	}
	require.NoError(t, us.Register(user))
	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice@x.com", user.Email)

	// The plaintext is cleared and the stored hash verifies.
	require.Empty(t, user.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("super-secret")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db)
	registerUser(t, us, "alice", "a@x.com")

	err := us.Register(&domain.User{
		Username: "impostor",
		Email:    "a@x.com",
		Password: "other-secret",
	})
	require.Error(t, err)
	require.Equal(t, "User already exists with this email", errs.ErrorMessage(err))
	require.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	// No second record was created.
	users, err := us.All()
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestRegisterMissingFields(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db)

	cases := []domain.User{
		{Email: "a@x.com", Password: "super-secret"},
		{Username: "alice", Password: "super-secret"},
		{Username: "alice", Email: "a@x.com"},
		{Username: "alice", Email: "not-an-email", Password: "super-secret"},
	}
	for i, c := range cases {
		err := us.Register(&c)
		require.Error(t, err, "case %d", i)
		require.Equal(t, errs.EINVALID, errs.ErrorCode(err), "case %d", i)
	}
}

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db)
	registered := registerUser(t, us, "alice", "a@x.com")

	user, err := us.Authenticate("a@x.com", "super-secret")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	_, err = us.Authenticate("a@x.com", "wrong-secret")
	require.Error(t, err)
	require.Equal(t, "Invalid password credentials", errs.ErrorMessage(err))
	require.Equal(t, errs.EUNAUTHENTICATED, errs.ErrorCode(err))

	_, err = us.Authenticate("nobody@x.com", "super-secret")
	require.Error(t, err)
	require.Equal(t, "No user with this email found", errs.ErrorMessage(err))
}

func TestAuthenticateExternalAccount(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db)

	user, err := us.ExternalLogin("bob", "bob@x.com")
	require.NoError(t, err)
	require.True(t, user.ExternalAuth)
	require.Empty(t, user.PasswordHash)

	// Password login against an externally-authenticated account is always
	// rejected, whatever the password.
	for _, password := range []string{"", "super-secret", "bob@x.com"} {
		_, err = us.Authenticate("bob@x.com", password)
		require.Error(t, err)
		require.Equal(t, "User already registered via Google login", errs.ErrorMessage(err))
		require.Equal(t, errs.EUNAUTHENTICATED, errs.ErrorCode(err))
	}
}

func TestExternalLoginFindsExisting(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db)

	first, err := us.ExternalLogin("bob", "bob@x.com")
	require.NoError(t, err)
	second, err := us.ExternalLogin("bob", "Bob@X.com")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	users, err := us.All()
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestFollowUnfollow(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db)
	a := registerUser(t, us, "alice", "a@x.com")
	b := registerUser(t, us, "bob", "b@x.com")

	actor, err := us.Follow(a.ID, b.ID)
	require.NoError(t, err)
	require.True(t, actor.FollowingUsers.Contains(b.ID))

	target, err := us.ByID(b.ID)
	require.NoError(t, err)
	require.Equal(t, 1, target.Followers)

	// Re-following is a no-op on both documents.
	actor, err = us.Follow(a.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, actor.FollowingUsers, 1)
	target, err = us.ByID(b.ID)
	require.NoError(t, err)
	require.Equal(t, 1, target.Followers)

	actor, err = us.Unfollow(a.ID, b.ID)
	require.NoError(t, err)
	require.False(t, actor.FollowingUsers.Contains(b.ID))
	target, err = us.ByID(b.ID)
	require.NoError(t, err)
	require.Equal(t, 0, target.Followers)

	// Unfollowing a user not in the set leaves the counter alone.
	_, err = us.Unfollow(a.ID, b.ID)
	require.NoError(t, err)
	target, err = us.ByID(b.ID)
	require.NoError(t, err)
	require.Equal(t, 0, target.Followers)
}

func TestFollowSelf(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db)
	a := registerUser(t, us, "alice", "a@x.com")

	_, err := us.Follow(a.ID, a.ID)
	require.Error(t, err)
	require.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestFollowUnknownTarget(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db)
	a := registerUser(t, us, "alice", "a@x.com")

	_, err := us.Follow(a.ID, "no-such-user")
	require.Error(t, err)
	require.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	// The actor's following set stayed untouched.
	actor, err := us.ByID(a.ID)
	require.NoError(t, err)
	require.Empty(t, actor.FollowingUsers)
}

func TestRandomUsers(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db)

	for i := 0; i < 8; i++ {
		registerUser(t, us, gofakeit.Username(), fmt.Sprintf("user%d@x.com", i))
	}

	users, err := us.Random(5)
	require.NoError(t, err)
	require.Len(t, users, 5)

	seen := map[string]bool{}
	for _, u := range users {
		require.False(t, seen[u.ID], "sample must be distinct")
		seen[u.ID] = true
	}
}

func TestRandomUsersFewerThanSample(t *testing.T) {
	db := newTestDB(t)
	us := NewUserService(db)
	registerUser(t, us, "alice", "a@x.com")
	registerUser(t, us, "bob", "b@x.com")

	users, err := us.Random(5)
	require.NoError(t, err)
	require.Len(t, users, 2)
}
