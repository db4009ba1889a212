package crud

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"postpulse/domain"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A second pool connection would see its own empty :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&domain.User{}, &domain.Post{}, &domain.Comment{}, &domain.Payment{})
	require.NoError(t, err)
	return db
}

// registerUser registers a password account and returns it.
func registerUser(t *testing.T, us *UserService, username, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username: username,
		Email:    email,
		Password: "super-secret",
	}
	require.NoError(t, us.Register(user))
	return user
}

// createPost creates a post for the given author and returns it.
func createPost(t *testing.T, ps *PostService, authorID, title string) *domain.Post {
	t.Helper()
	post := &domain.Post{
		AuthorID:    authorID,
		Title:       title,
		Description: "some description",
	}
	require.NoError(t, ps.Create(post))
	return post
}
