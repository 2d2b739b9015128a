package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Post statuses.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

type Post struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Type          string   `json:"type"`
	Date          string   `json:"date"`
	Excerpt       string   `json:"excerpt,omitempty"`
	Content       string   `json:"content,omitempty"`
	ContentHTML   string   `json:"contentHtml,omitempty"`
	Link          string   `json:"link,omitempty"`
	Tags          []string `json:"tags"`
	Status        string   `json:"status"`
	Featured      bool     `json:"featured"`
	FeaturedImage string   `json:"featuredImage,omitempty"`
	Author        string   `json:"author"`

	SEOTitle       string `json:"seoTitle,omitempty"`
	SEODescription string `json:"seoDescription,omitempty"`
	SEOKeywords    string `json:"seoKeywords,omitempty"`
	SEOImage       string `json:"seoImage,omitempty"`
	CanonicalURL   string `json:"canonicalUrl,omitempty"`
	NoIndex        bool   `json:"noIndex"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TagList accepts either a JSON array of strings or a single comma-separated
// string, the two shapes the admin UI has historically sent.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		parts := strings.Split(joined, ",")
		tags := make([]string, 0, len(parts))
		for _, part := range parts {
			if tag := strings.TrimSpace(part); tag != "" {
				tags = append(tags, tag)
			}
		}
		*t = tags
		return nil
	}
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*t = tags
	return nil
}

// PostPatch is the update payload. Nil fields are left untouched.
type PostPatch struct {
	Title          *string  `json:"title"`
	Type           *string  `json:"type"`
	Date           *string  `json:"date"`
	Excerpt        *string  `json:"excerpt"`
	Content        *string  `json:"content"`
	ContentHTML    *string  `json:"contentHtml"`
	Link           *string  `json:"link"`
	Tags           *TagList `json:"tags"`
	Status         *string  `json:"status"`
	FeaturedImage  *string  `json:"featuredImage"`
	SEOTitle       *string  `json:"seoTitle"`
	SEODescription *string  `json:"seoDescription"`
	SEOKeywords    *string  `json:"seoKeywords"`
	SEOImage       *string  `json:"seoImage"`
	CanonicalURL   *string  `json:"canonicalUrl"`
	NoIndex        *bool    `json:"noIndex"`
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
