package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soleracask/solera-cask-sub000/internal/middleware"
	"github.com/soleracask/solera-cask-sub000/internal/models"
)

// maxFeatured caps the ?featured=true public listing.
const maxFeatured = 3

type PostsHandler struct {
	store PostStore
}

func NewPostsHandler(store PostStore) *PostsHandler {
	return &PostsHandler{store: store}
}

type CreatePostRequest struct {
	Title         string         `json:"title"`
	Type          string         `json:"type"`
	Date          string         `json:"date"`
	Excerpt       string         `json:"excerpt"`
	Content       string         `json:"content"`
	ContentHTML   string         `json:"contentHtml"`
	Link          string         `json:"link"`
	Tags          models.TagList `json:"tags"`
	Status        string         `json:"status"`
	FeaturedImage string         `json:"featuredImage"`

	SEOTitle       string `json:"seoTitle"`
	SEODescription string `json:"seoDescription"`
	SEOKeywords    string `json:"seoKeywords"`
	SEOImage       string `json:"seoImage"`
	CanonicalURL   string `json:"canonicalUrl"`
	NoIndex        bool   `json:"noIndex"`
}

type SetFeaturedRequest struct {
	PostID string `json:"postId"`
}

// ListPublic serves GET /api/posts: the published list, or a single post via
// ?slug= / ?id=, or up to three featured posts via ?featured=true.
func (h *PostsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch {
	case q.Get("featured") == "true":
		posts, err := h.store.ListFeatured(r.Context(), maxFeatured)
		if err != nil {
			log.Printf("list featured posts: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to load posts")
			return
		}
		respondJSON(w, http.StatusOK, posts)

	case q.Get("slug") != "":
		post, err := h.store.GetBySlug(r.Context(), q.Get("slug"))
		h.respondOne(w, post, err)

	case q.Get("id") != "":
		post, err := h.store.GetByID(r.Context(), q.Get("id"), true)
		h.respondOne(w, post, err)

	default:
		posts, err := h.store.ListPublished(r.Context())
		if err != nil {
			log.Printf("list published posts: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to load posts")
			return
		}
		respondJSON(w, http.StatusOK, posts)
	}
}

// AdminList serves GET /api/admin/posts: every post regardless of status, or
// one by ?id=.
func (h *PostsHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		post, err := h.store.GetByID(r.Context(), id, false)
		h.respondOne(w, post, err)
		return
	}
	posts, err := h.store.ListAll(r.Context())
	if err != nil {
		log.Printf("list all posts: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

func (h *PostsHandler) respondOne(w http.ResponseWriter, post *models.Post, err error) {
	if err != nil {
		log.Printf("load post: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load post")
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// GetFeatured serves GET /api/featured-post. Absence is a 404; the homepage
// widget treats it as "keep the default content".
func (h *PostsHandler) GetFeatured(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.GetFeatured(r.Context())
	if err != nil {
		log.Printf("get featured post: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load featured post")
		return
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "no published posts")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// SetFeatured serves POST /api/featured-post. An empty postId clears the flag
// everywhere.
func (h *PostsHandler) SetFeatured(w http.ResponseWriter, r *http.Request) {
	var req SetFeaturedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	post, err := h.store.SetFeatured(r.Context(), req.PostID)
	if err != nil {
		log.Printf("set featured post: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to update featured post")
		return
	}
	if req.PostID != "" && post == nil {
		respondError(w, http.StatusNotFound, "post not found or not published")
		return
	}
	if post == nil {
		respondJSON(w, http.StatusOK, map[string]bool{"cleared": true})
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Content == "" && req.ContentHTML == "" {
		respondError(w, http.StatusBadRequest, "content or contentHtml is required")
		return
	}

	created, err := h.store.Create(r.Context(), models.Post{
		Title:          req.Title,
		Type:           req.Type,
		Date:           req.Date,
		Excerpt:        req.Excerpt,
		Content:        req.Content,
		ContentHTML:    req.ContentHTML,
		Link:           req.Link,
		Tags:           req.Tags,
		Status:         req.Status,
		FeaturedImage:  req.FeaturedImage,
		Author:         authorFrom(r),
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
		SEOKeywords:    req.SEOKeywords,
		SEOImage:       req.SEOImage,
		CanonicalURL:   req.CanonicalURL,
		NoIndex:        req.NoIndex,
	})
	if err != nil {
		log.Printf("create post: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create post")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing id")
		return
	}
	var patch models.PostPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	updated, err := h.store.Update(r.Context(), id, patch, authorFrom(r))
	if err != nil {
		log.Printf("update post: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to update post")
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing id")
		return
	}
	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		log.Printf("delete post: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func authorFrom(r *http.Request) string {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok && claims.Username != "" {
		return claims.Username
	}
	return "admin"
}
