package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"postpulse/auth"
	"postpulse/crud"
	"postpulse/domain"
	"postpulse/payment"
)

// fakeCheckout is a test double for the payment provider.
type fakeCheckout struct{}

func (f *fakeCheckout) CreateSession(email string) (*payment.Session, error) {
	return &payment.Session{ID: "cs_test_123", Amount: 499}, nil
}

// recordingMailer captures welcome mail dispatches.
type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) Send(to, subject, plain, html string) error {
	m.sent = append(m.sent, to)
	return nil
}

func newTestServer(t *testing.T) (*Server, *recordingMailer) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Post{}, &domain.Comment{}, &domain.Payment{}))

	services, err := crud.NewServices(
		db,
		crud.WithUser(),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithPayment(&fakeCheckout{}),
	)
	require.NoError(t, err)

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	mailer := &recordingMailer{}
	server, err := NewServer(true, services, issuer, nil, mailer)
	require.NoError(t, err)
	return server, mailer
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

// doGraphQL posts a query to the single endpoint, optionally with a bearer
// token, and decodes the response.
func doGraphQL(t *testing.T, h http.Handler, token, query string) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]string{"query": query})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// register runs the registerUser mutation and returns the session token.
func register(t *testing.T, h http.Handler, username, email string) string {
	t.Helper()
	query := fmt.Sprintf(
		`mutation { registerUser(username: %q, email: %q, password: "super-secret") { _id token } }`,
		username, email,
	)
	resp := doGraphQL(t, h, "", query)
	require.Empty(t, resp.Errors)

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data["registerUser"], &payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

func TestHelloWorldGate(t *testing.T) {
	server, _ := newTestServer(t)
	h := server.Handler()

	resp := doGraphQL(t, h, "", `{ helloWorld }`)
	require.NotEmpty(t, resp.Errors)
	require.Equal(t, "You are not authorized to access this resource. Please authenticate.", resp.Errors[0].Message)
	require.Equal(t, "unauthenticated", resp.Errors[0].Extensions["code"])

	token := register(t, h, "alice", "a@x.com")
	resp = doGraphQL(t, h, token, `{ helloWorld }`)
	require.Empty(t, resp.Errors)
	require.Equal(t, json.RawMessage(`"hello World"`), resp.Data["helloWorld"])
}

func TestRegisterDuplicateEmailViaAPI(t *testing.T) {
	server, mailer := newTestServer(t)
	h := server.Handler()

	register(t, h, "alice", "a@x.com")
	require.Equal(t, []string{"a@x.com"}, mailer.sent)

	resp := doGraphQL(t, h, "", `mutation { registerUser(username: "impostor", email: "a@x.com", password: "other") { _id } }`)
	require.NotEmpty(t, resp.Errors)
	require.Equal(t, "User already exists with this email", resp.Errors[0].Message)

	// No record was created and no second mail went out.
	users := doGraphQL(t, h, "", `{ getAllUsers { _id } }`)
	require.Empty(t, users.Errors)
	var all []struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(users.Data["getAllUsers"], &all))
	require.Len(t, all, 1)
	require.Len(t, mailer.sent, 1)
}

func TestLoginViaAPI(t *testing.T) {
	server, _ := newTestServer(t)
	h := server.Handler()
	register(t, h, "alice", "a@x.com")

	resp := doGraphQL(t, h, "", `mutation { login(email: "a@x.com", password: "super-secret") { _id token } }`)
	require.Empty(t, resp.Errors)

	resp = doGraphQL(t, h, "", `mutation { login(email: "a@x.com", password: "wrong") { _id } }`)
	require.NotEmpty(t, resp.Errors)
	require.Equal(t, "Invalid password credentials", resp.Errors[0].Message)
}

func TestAnonymousAddPostRejected(t *testing.T) {
	server, _ := newTestServer(t)
	h := server.Handler()

	resp := doGraphQL(t, h, "", `mutation { addPost(title: "Hello", description: "d") { _id } }`)
	require.NotEmpty(t, resp.Errors)
	require.Equal(t, "You are not authorized to create this resource. Please authenticate.", resp.Errors[0].Message)

	// Nothing was created.
	posts := doGraphQL(t, h, "", `{ getAllPosts { _id } }`)
	require.Empty(t, posts.Errors)
	var all []struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(posts.Data["getAllPosts"], &all))
	require.Empty(t, all)
}

func TestPostLifecycleViaAPI(t *testing.T) {
	server, _ := newTestServer(t)
	h := server.Handler()
	tokenA := register(t, h, "alice", "a@x.com")
	tokenB := register(t, h, "bob", "b@x.com")

	resp := doGraphQL(t, h, tokenA, `mutation { addPost(title: "Hello", description: "first post") { _id likesCount } }`)
	require.Empty(t, resp.Errors)
	var created struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data["addPost"], &created))
	require.NotEmpty(t, created.ID)

	// B likes, comments, and the derived fields resolve per read.
	resp = doGraphQL(t, h, tokenB, fmt.Sprintf(`mutation { likePost(postId: %q) { likesCount likes dislikes } }`, created.ID))
	require.Empty(t, resp.Errors)

	resp = doGraphQL(t, h, tokenB, fmt.Sprintf(`mutation { addComment(postId: %q, description: "nice") { _id } }`, created.ID))
	require.Empty(t, resp.Errors)

	resp = doGraphQL(t, h, "", fmt.Sprintf(`{ getPost(postId: %q) { likesCount commentsCount author { username postsCount } } }`, created.ID))
	require.Empty(t, resp.Errors)
	var fetched struct {
		LikesCount    int `json:"likesCount"`
		CommentsCount int `json:"commentsCount"`
		Author        struct {
			Username   string `json:"username"`
			PostsCount int    `json:"postsCount"`
		} `json:"author"`
	}
	require.NoError(t, json.Unmarshal(resp.Data["getPost"], &fetched))
	require.Equal(t, 1, fetched.LikesCount)
	require.Equal(t, 1, fetched.CommentsCount)
	require.Equal(t, "alice", fetched.Author.Username)
	require.Equal(t, 1, fetched.Author.PostsCount)

	// B may not delete A's post.
	resp = doGraphQL(t, h, tokenB, fmt.Sprintf(`mutation { deletePost(postId: %q) { _id } }`, created.ID))
	require.NotEmpty(t, resp.Errors)
	require.Equal(t, "You are not authorized to delete this post. Only the owner can delete it.", resp.Errors[0].Message)
	require.Equal(t, "unauthorized", resp.Errors[0].Extensions["code"])

	// A may.
	resp = doGraphQL(t, h, tokenA, fmt.Sprintf(`mutation { deletePost(postId: %q) { _id } }`, created.ID))
	require.Empty(t, resp.Errors)

	// The nullable lookup now resolves to null.
	resp = doGraphQL(t, h, "", fmt.Sprintf(`{ getPost(postId: %q) { _id } }`, created.ID))
	require.Empty(t, resp.Errors)
	require.Equal(t, json.RawMessage(`null`), resp.Data["getPost"])
}

func TestFollowViaAPI(t *testing.T) {
	server, _ := newTestServer(t)
	h := server.Handler()
	tokenA := register(t, h, "alice", "a@x.com")
	register(t, h, "bob", "b@x.com")

	users := doGraphQL(t, h, "", `{ getAllUsers { _id username followers } }`)
	require.Empty(t, users.Errors)
	var all []struct {
		ID       string `json:"_id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(users.Data["getAllUsers"], &all))
	var bobID string
	for _, u := range all {
		if u.Username == "bob" {
			bobID = u.ID
		}
	}
	require.NotEmpty(t, bobID)

	resp := doGraphQL(t, h, tokenA, fmt.Sprintf(`mutation { followUser(followUserId: %q) { followingUsers } }`, bobID))
	require.Empty(t, resp.Errors)
	var followed struct {
		FollowingUsers []string `json:"followingUsers"`
	}
	require.NoError(t, json.Unmarshal(resp.Data["followUser"], &followed))
	require.Contains(t, followed.FollowingUsers, bobID)

	bob := doGraphQL(t, h, "", fmt.Sprintf(`{ getUser(userId: %q) { followers bio } }`, bobID))
	require.Empty(t, bob.Errors)
	var bobUser struct {
		Followers int     `json:"followers"`
		Bio       *string `json:"bio"`
	}
	require.NoError(t, json.Unmarshal(bob.Data["getUser"], &bobUser))
	require.Equal(t, 1, bobUser.Followers)
	require.Nil(t, bobUser.Bio)
}

func TestCheckoutSessionViaAPI(t *testing.T) {
	server, _ := newTestServer(t)
	h := server.Handler()
	token := register(t, h, "alice", "a@x.com")

	resp := doGraphQL(t, h, "", `mutation { createCheckoutSession(email: "a@x.com") { sessionID } }`)
	require.NotEmpty(t, resp.Errors)

	resp = doGraphQL(t, h, token, `mutation { createCheckoutSession(email: "a@x.com") { sessionID } }`)
	require.Empty(t, resp.Errors)
	var session struct {
		SessionID string `json:"sessionID"`
	}
	require.NoError(t, json.Unmarshal(resp.Data["createCheckoutSession"], &session))
	require.Equal(t, "cs_test_123", session.SessionID)
}

func TestInvalidBearerFailsClosed(t *testing.T) {
	server, _ := newTestServer(t)
	h := server.Handler()

	body, err := json.Marshal(map[string]string{"query": `{ getAllUsers { _id } }`})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/graphql", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer not-a-valid-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// A present-but-invalid credential rejects the whole request before the
	// executor runs, even for an otherwise public query.
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Invalid Token", resp.Error)
	require.Equal(t, "unauthenticated", resp.Code)
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
