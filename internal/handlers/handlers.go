package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/soleracask/solera-cask-sub000/internal/models"
)

// PostStore is the persistence surface the post handlers need. *db.Store
// implements it; tests use an in-memory fake.
type PostStore interface {
	ListPublished(ctx context.Context) ([]models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetByID(ctx context.Context, id string, publishedOnly bool) (*models.Post, error)
	GetFeatured(ctx context.Context) (*models.Post, error)
	Create(ctx context.Context, post models.Post) (*models.Post, error)
	Update(ctx context.Context, id string, patch models.PostPatch, author string) (*models.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
	SetFeatured(ctx context.Context, id string) (*models.Post, error)
}

// UserStore is the credential lookup surface used by the login handler.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	TouchLastLogin(ctx context.Context, username string) error
}

func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
