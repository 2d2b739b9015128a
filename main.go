package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/crypto/bcrypt"

	"github.com/soleracask/solera-cask-sub000/internal/config"
	"github.com/soleracask/solera-cask-sub000/internal/db"
	"github.com/soleracask/solera-cask-sub000/internal/handlers"
	appmiddleware "github.com/soleracask/solera-cask-sub000/internal/middleware"
	"github.com/soleracask/solera-cask-sub000/internal/render"
	"github.com/soleracask/solera-cask-sub000/internal/storage"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	store, err := db.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash admin password: %v", err)
		}
		if err := store.SeedAdmin(ctx, cfg.AdminUsername, string(hash)); err != nil {
			log.Fatalf("seed admin user: %v", err)
		}
	}

	uploads, err := storage.NewLocal(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		log.Fatalf("upload storage setup failed: %v", err)
	}

	site := render.Site{BaseURL: cfg.BaseURL, Name: cfg.SiteName}

	postsHandler := handlers.NewPostsHandler(store)
	authHandler := handlers.NewAuthHandler(store, []byte(cfg.JWTSecret))
	pagesHandler := handlers.NewPagesHandler(store, site)
	uploadHandler := handlers.NewUploadHandler(uploads)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", handlers.Health)

	// Server-rendered post pages and static assets.
	r.Get("/post/{slug}", pagesHandler.PostPage)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	r.Route("/api", func(r chi.Router) {
		// In-memory rate limiter: 5 login attempts per minute per IP
		loginRateLimiter := appmiddleware.NewRateLimiter(5, time.Minute)
		r.With(loginRateLimiter.Limit).Post("/login", authHandler.Login)

		// Less restrictive rate limiter for the public read surface
		publicLimiter := appmiddleware.NewRateLimiter(60, time.Minute)
		r.With(publicLimiter.Limit).Get("/posts", postsHandler.ListPublic)
		r.With(publicLimiter.Limit).Get("/featured-post", postsHandler.GetFeatured)

		// JWT-protected admin surface
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.JWTAuth([]byte(cfg.JWTSecret)))
			r.Get("/admin/posts", postsHandler.AdminList)
			r.Post("/posts", postsHandler.Create)
			r.Put("/posts/{id}", postsHandler.Update)
			r.Delete("/posts/{id}", postsHandler.Delete)
			r.Post("/featured-post", postsHandler.SetFeatured)
			r.Post("/upload", uploadHandler.Upload)
			r.Post("/images", uploadHandler.Upload)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
