package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	appmiddleware "github.com/soleracask/solera-cask-sub000/internal/middleware"
	"github.com/soleracask/solera-cask-sub000/internal/models"
	"github.com/soleracask/solera-cask-sub000/internal/render"
	"github.com/soleracask/solera-cask-sub000/internal/slug"
)

var testSecret = []byte("test-secret")

// memStore is an in-memory PostStore/UserStore with the same semantics as the
// database-backed one. calls counts store accesses so tests can assert that
// rejected requests never touch it.
type memStore struct {
	mu    sync.Mutex
	posts []models.Post
	users map[string]models.User
	clock time.Time
	calls int
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[string]models.User),
		clock: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) touched() {
	m.calls++
}

func (m *memStore) sorted(filter func(models.Post) bool) []models.Post {
	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if filter == nil || filter(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func published(p models.Post) bool { return p.Status == models.StatusPublished }

func (m *memStore) ListPublished(ctx context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched()
	return m.sorted(published), nil
}

func (m *memStore) ListAll(ctx context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched()
	return m.sorted(nil), nil
}

func (m *memStore) ListFeatured(ctx context.Context, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched()
	out := m.sorted(func(p models.Post) bool { return p.Featured && published(p) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) GetBySlug(ctx context.Context, want string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched()
	for _, p := range m.sorted(published) {
		if slug.Make(p.Title) == want {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetByID(ctx context.Context, id string, publishedOnly bool) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched()
	return m.findByID(id, publishedOnly), nil
}

func (m *memStore) findByID(id string, publishedOnly bool) *models.Post {
	for i := range m.posts {
		if m.posts[i].ID == id && (!publishedOnly || published(m.posts[i])) {
			p := m.posts[i]
			return &p
		}
	}
	return nil
}

func (m *memStore) GetFeatured(ctx context.Context) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched()
	if flagged := m.sorted(func(p models.Post) bool { return p.Featured && published(p) }); len(flagged) > 0 {
		return &flagged[0], nil
	}
	if latest := m.sorted(published); len(latest) > 0 {
		return &latest[0], nil
	}
	return nil, nil
}

func (m *memStore) Create(ctx context.Context, post models.Post) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched()
	now := m.tick()
	post.ID = slug.Make(post.Title) + "-" + strconv.FormatInt(now.UnixMilli(), 10)
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Status == "" {
		post.Status = models.StatusDraft
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	m.posts = append(m.posts, post)
	return &post, nil
}

func (m *memStore) Update(ctx context.Context, id string, patch models.PostPatch, author string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched()
	for i := range m.posts {
		if m.posts[i].ID == id {
			p := &m.posts[i]
			if patch.Title != nil {
				p.Title = *patch.Title
			}
			if patch.Content != nil {
				p.Content = *patch.Content
			}
			if patch.Status != nil {
				p.Status = *patch.Status
			}
			if patch.Tags != nil {
				p.Tags = *patch.Tags
			}
			if patch.Excerpt != nil {
				p.Excerpt = *patch.Excerpt
			}
			p.Author = author
			p.UpdatedAt = m.tick()
			out := *p
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memStore) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched()
	for i := range m.posts {
		if m.posts[i].ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SetFeatured(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched()
	if id != "" {
		target := m.findByID(id, true)
		if target == nil {
			return nil, nil
		}
	}
	for i := range m.posts {
		m.posts[i].Featured = false
	}
	if id == "" {
		return nil, nil
	}
	for i := range m.posts {
		if m.posts[i].ID == id {
			m.posts[i].Featured = true
			out := m.posts[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched()
	if u, ok := m.users[username]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *memStore) TouchLastLogin(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[username]; ok {
		now := m.clock
		u.LastLogin = &now
		m.users[username] = u
	}
	return nil
}

func (m *memStore) addUser(t *testing.T, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[username] = models.User{
		ID:           "u-" + username,
		Username:     username,
		PasswordHash: string(hash),
		Role:         "admin",
		CreatedAt:    m.clock,
	}
}

// newTestServer mirrors the route wiring in main.go, minus rate limiting.
func newTestServer(t *testing.T) (http.Handler, *memStore) {
	t.Helper()
	store := newMemStore()
	site := render.Site{BaseURL: "https://soleracask.example", Name: "Solera Cask"}

	posts := NewPostsHandler(store)
	auth := NewAuthHandler(store, testSecret)
	pages := NewPagesHandler(store, site)

	r := chi.NewRouter()
	r.Get("/post/{slug}", pages.PostPage)
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", auth.Login)
		r.Get("/posts", posts.ListPublic)
		r.Get("/featured-post", posts.GetFeatured)
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.JWTAuth(testSecret))
			r.Get("/admin/posts", posts.AdminList)
			r.Post("/posts", posts.Create)
			r.Put("/posts/{id}", posts.Update)
			r.Delete("/posts/{id}", posts.Delete)
			r.Post("/featured-post", posts.SetFeatured)
		})
	})
	return r, store
}

func authToken(t *testing.T, username string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "u-" + username,
		"username": username,
		"role":     "admin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
