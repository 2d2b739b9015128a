package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soleracask/solera-cask-sub000/internal/models"
	"github.com/soleracask/solera-cask-sub000/internal/slug"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the posts and users tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const postsTable = `CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'News',
		display_date TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		content_html TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		tags TEXT[] NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'draft',
		featured BOOLEAN NOT NULL DEFAULT FALSE,
		featured_image TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		seo_title TEXT NOT NULL DEFAULT '',
		seo_description TEXT NOT NULL DEFAULT '',
		seo_keywords TEXT NOT NULL DEFAULT '',
		seo_image TEXT NOT NULL DEFAULT '',
		canonical_url TEXT NOT NULL DEFAULT '',
		no_index BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := s.pool.Exec(ctx, postsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}

	const usersTable = `CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'admin',
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := s.pool.Exec(ctx, usersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

const postColumns = `id, title, type, display_date, excerpt, content, content_html, link,
	tags, status, featured, featured_image, author,
	seo_title, seo_description, seo_keywords, seo_image, canonical_url, no_index,
	created_at, updated_at`

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Type,
		&p.Date,
		&p.Excerpt,
		&p.Content,
		&p.ContentHTML,
		&p.Link,
		&p.Tags,
		&p.Status,
		&p.Featured,
		&p.FeaturedImage,
		&p.Author,
		&p.SEOTitle,
		&p.SEODescription,
		&p.SEOKeywords,
		&p.SEOImage,
		&p.CanonicalURL,
		&p.NoIndex,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) listPosts(ctx context.Context, where string, args ...any) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ` + where + ` ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (s *Store) ListPublished(ctx context.Context) ([]models.Post, error) {
	return s.listPosts(ctx, `WHERE status = $1`, models.StatusPublished)
}

func (s *Store) ListAll(ctx context.Context) ([]models.Post, error) {
	return s.listPosts(ctx, ``)
}

// ListFeatured returns up to limit featured published posts, newest first.
func (s *Store) ListFeatured(ctx context.Context, limit int) ([]models.Post, error) {
	posts, err := s.listPosts(ctx, `WHERE featured AND status = $1`, models.StatusPublished)
	if err != nil {
		return nil, err
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// GetBySlug scans published posts and returns the first whose derived slug
// matches. Slugs are not stored, so this is a full scan by design; the posts
// table is small (a marketing blog, not a firehose).
func (s *Store) GetBySlug(ctx context.Context, want string) (*models.Post, error) {
	posts, err := s.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if slug.Make(posts[i].Title) == want {
			return &posts[i], nil
		}
	}
	return nil, nil
}

func (s *Store) GetByID(ctx context.Context, id string, publishedOnly bool) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	args := []any{id}
	if publishedOnly {
		query += ` AND status = $2`
		args = append(args, models.StatusPublished)
	}
	p, err := scanPost(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// GetFeatured returns the flagged published post, falling back to the newest
// published post. (nil, nil) means the collection has no published posts at
// all; callers treat that as "use default content".
func (s *Store) GetFeatured(ctx context.Context) (*models.Post, error) {
	p, err := scanPost(s.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts WHERE featured AND status = $1 ORDER BY created_at DESC LIMIT 1`,
		models.StatusPublished))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get featured post: %w", err)
	}

	p, err = scanPost(s.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts WHERE status = $1 ORDER BY created_at DESC LIMIT 1`,
		models.StatusPublished))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest post: %w", err)
	}
	return p, nil
}

// Create inserts a post. The id is derived from the title and creation
// instant and is immutable afterwards.
func (s *Store) Create(ctx context.Context, post models.Post) (*models.Post, error) {
	now := time.Now().UTC()
	post.ID = slug.Make(post.Title) + "-" + strconv.FormatInt(now.UnixMilli(), 10)
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Status == "" {
		post.Status = models.StatusDraft
	}
	if post.Type == "" {
		post.Type = "News"
	}
	if post.Date == "" {
		post.Date = now.Format("January 2, 2006")
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	const query = `INSERT INTO posts (
		id, title, type, display_date, excerpt, content, content_html, link,
		tags, status, featured, featured_image, author,
		seo_title, seo_description, seo_keywords, seo_image, canonical_url, no_index,
		created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	RETURNING ` + postColumns

	created, err := scanPost(s.pool.QueryRow(ctx, query,
		post.ID, post.Title, post.Type, post.Date, post.Excerpt, post.Content,
		post.ContentHTML, post.Link, post.Tags, post.Status, post.Featured,
		post.FeaturedImage, post.Author, post.SEOTitle, post.SEODescription,
		post.SEOKeywords, post.SEOImage, post.CanonicalURL, post.NoIndex,
		post.CreatedAt, post.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update applies a patch to an existing post, re-stamping updated_at and
// author. Returns (nil, nil) when the id is unknown.
func (s *Store) Update(ctx context.Context, id string, patch models.PostPatch, author string) (*models.Post, error) {
	existing, err := s.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	applyPatch(existing, patch)
	existing.Author = author
	existing.UpdatedAt = time.Now().UTC()

	const query = `UPDATE posts SET
		title = $2, type = $3, display_date = $4, excerpt = $5, content = $6,
		content_html = $7, link = $8, tags = $9, status = $10,
		featured_image = $11, author = $12,
		seo_title = $13, seo_description = $14, seo_keywords = $15,
		seo_image = $16, canonical_url = $17, no_index = $18, updated_at = $19
	WHERE id = $1
	RETURNING ` + postColumns

	updated, err := scanPost(s.pool.QueryRow(ctx, query,
		existing.ID, existing.Title, existing.Type, existing.Date, existing.Excerpt,
		existing.Content, existing.ContentHTML, existing.Link, existing.Tags,
		existing.Status, existing.FeaturedImage, existing.Author,
		existing.SEOTitle, existing.SEODescription, existing.SEOKeywords,
		existing.SEOImage, existing.CanonicalURL, existing.NoIndex, existing.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

func applyPatch(p *models.Post, patch models.PostPatch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	if patch.Excerpt != nil {
		p.Excerpt = *patch.Excerpt
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.ContentHTML != nil {
		p.ContentHTML = *patch.ContentHTML
	}
	if patch.Link != nil {
		p.Link = *patch.Link
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.FeaturedImage != nil {
		p.FeaturedImage = *patch.FeaturedImage
	}
	if patch.SEOTitle != nil {
		p.SEOTitle = *patch.SEOTitle
	}
	if patch.SEODescription != nil {
		p.SEODescription = *patch.SEODescription
	}
	if patch.SEOKeywords != nil {
		p.SEOKeywords = *patch.SEOKeywords
	}
	if patch.SEOImage != nil {
		p.SEOImage = *patch.SEOImage
	}
	if patch.CanonicalURL != nil {
		p.CanonicalURL = *patch.CanonicalURL
	}
	if patch.NoIndex != nil {
		p.NoIndex = *patch.NoIndex
	}
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetFeatured clears the featured flag everywhere and, when id is non-empty,
// sets it on that post, which must be published. Both steps run in one
// transaction so readers never observe zero featured posts mid-update.
// Returns (nil, nil) when the target id is unknown or not published.
func (s *Store) SetFeatured(ctx context.Context, id string) (*models.Post, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE posts SET featured = FALSE WHERE featured`); err != nil {
		return nil, fmt.Errorf("clear featured: %w", err)
	}

	var target *models.Post
	if id != "" {
		target, err = scanPost(tx.QueryRow(ctx,
			`UPDATE posts SET featured = TRUE, updated_at = now()
			 WHERE id = $1 AND status = $2
			 RETURNING `+postColumns,
			id, models.StatusPublished))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}
			return nil, fmt.Errorf("set featured: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return target, nil
}
