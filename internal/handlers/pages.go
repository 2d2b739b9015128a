package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soleracask/solera-cask-sub000/internal/render"
)

type PagesHandler struct {
	store PostStore
	site  render.Site
}

func NewPagesHandler(store PostStore, site render.Site) *PagesHandler {
	return &PagesHandler{store: store, site: site}
}

// PostPage serves GET /post/{slug}: the server-rendered document for one
// published post. Misses render the not-found page rather than a JSON error.
func (h *PagesHandler) PostPage(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		log.Printf("load post page: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if post == nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(h.site.NotFound()))
		return
	}
	doc, err := h.site.Page(post)
	if err != nil {
		log.Printf("render post page: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(doc))
}
