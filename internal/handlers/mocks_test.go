package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/hat-forum/backend/internal/middleware"
	"github.com/hat-forum/backend/internal/models"
	"github.com/hat-forum/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// In-memory mock repositories. They store copies so tests can assert that
// a rejected mutation left the stored record untouched.

type mockPostRepo struct {
	mu        sync.Mutex
	posts     map[string]models.Post
	lastQuery models.FeedQuery
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]models.Post)}
}

func (m *mockPostRepo) seed(post models.Post) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	id := post.ID.Hex()
	m.posts[id] = post
	return id
}

func (m *mockPostRepo) get(id string) (models.Post, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	return p, ok
}

func (m *mockPostRepo) CreatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = primitive.NewObjectID()
	m.posts[post.ID.Hex()] = *post
	return nil
}

func (m *mockPostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	return &post, nil
}

func (m *mockPostRepo) ListPosts(_ context.Context, q models.FeedQuery) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q
	result := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		result = append(result, p)
	}
	return result, nil
}

func (m *mockPostRepo) UpdatePost(_ context.Context, id string, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	m.posts[id] = *post
	return nil
}

func (m *mockPostRepo) DeletePost(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *mockPostRepo) UpvotePost(_ context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	post.Upvotes++
	m.posts[id] = post
	return &post, nil
}

type mockCommentRepo struct {
	mu       sync.Mutex
	comments map[uint]models.Comment
	nextID   uint
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[uint]models.Comment)}
}

func (m *mockCommentRepo) seed(comment models.Comment) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	comment.ID = m.nextID
	m.comments[comment.ID] = comment
	return comment.ID
}

func (m *mockCommentRepo) countByPost(postID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n
}

func (m *mockCommentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	comment.ID = m.nextID
	m.comments[comment.ID] = *comment
	return nil
}

func (m *mockCommentRepo) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment, ok := m.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &comment, nil
}

func (m *mockCommentRepo) GetCommentsByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []models.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockCommentRepo) DeleteComment(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.comments, id)
	return nil
}

func (m *mockCommentRepo) DeleteCommentsByPostID(_ context.Context, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.comments {
		if c.PostID == postID {
			delete(m.comments, id)
		}
	}
	return nil
}

type mockPrefsRepo struct {
	mu    sync.Mutex
	prefs map[string]models.UserPreferences
}

func newMockPrefsRepo() *mockPrefsRepo {
	return &mockPrefsRepo{prefs: make(map[string]models.UserPreferences)}
}

func (m *mockPrefsRepo) GetByUserID(_ context.Context, userID string) (*models.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prefs[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (m *mockPrefsRepo) Create(_ context.Context, prefs *models.UserPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefs.ID = uint(len(m.prefs) + 1)
	m.prefs[prefs.UserID] = *prefs
	return nil
}

func (m *mockPrefsRepo) Update(_ context.Context, prefs *models.UserPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[prefs.UserID] = *prefs
	return nil
}

// newTestContext builds an echo context carrying an optional JSON body and
// an optional session, the way the auth middleware would have left it.
func newTestContext(e *echo.Echo, method, target, body string, sess *middleware.Session) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		c.Set(middleware.SessionContextKey, sess)
	}
	return c, rec
}
