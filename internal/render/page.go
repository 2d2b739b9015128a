package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/soleracask/solera-cask-sub000/internal/models"
	"github.com/soleracask/solera-cask-sub000/internal/slug"
)

// Site carries the deployment facts the page renderer needs. It has no I/O;
// Page is a pure function of the post and these values.
type Site struct {
	BaseURL string
	Name    string
}

const wordsPerMinute = 200

type pageData struct {
	Site           Site
	Post           *models.Post
	Title          string
	Description    string
	Keywords       string
	Canonical      string
	ImageURL       string
	Content        template.HTML
	ReadingTime    int
	PublishedISO   string
	ModifiedISO    string
	StructuredData template.HTML
}

// Page renders the complete HTML document for a post. All post fields pass
// through html/template and are escaped; only the formatter output and an
// explicit ContentHTML override are trusted markup.
func (s Site) Page(p *models.Post) (string, error) {
	data := pageData{
		Site:         s,
		Post:         p,
		Title:        s.seoTitle(p),
		Description:  seoDescription(p),
		Keywords:     seoKeywords(p),
		Canonical:    s.canonicalURL(p),
		ImageURL:     s.imageURL(p),
		Content:      postContent(p),
		ReadingTime:  ReadingTime(p.Content),
		PublishedISO: p.CreatedAt.UTC().Format(time.RFC3339),
		ModifiedISO:  p.UpdatedAt.UTC().Format(time.RFC3339),
	}

	ld, err := s.structuredData(p, data)
	if err != nil {
		return "", fmt.Errorf("structured data: %w", err)
	}
	data.StructuredData = ld

	var b strings.Builder
	if err := pageTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render post page: %w", err)
	}
	return b.String(), nil
}

// NotFound renders the document returned when no published post matches a
// requested slug.
func (s Site) NotFound() string {
	var b strings.Builder
	_ = notFoundTemplate.Execute(&b, s)
	return b.String()
}

func (s Site) seoTitle(p *models.Post) string {
	if p.SEOTitle != "" {
		return p.SEOTitle
	}
	return p.Title + " | " + s.Name
}

func seoDescription(p *models.Post) string {
	if p.SEODescription != "" {
		return p.SEODescription
	}
	if p.Excerpt != "" {
		return p.Excerpt
	}
	if text := collapseText(p.Content); text != "" {
		return truncate(text, 160)
	}
	return "News and stories from the cellar."
}

func seoKeywords(p *models.Post) string {
	if p.SEOKeywords != "" {
		return p.SEOKeywords
	}
	return strings.Join(p.Tags, ", ")
}

func (s Site) canonicalURL(p *models.Post) string {
	if p.CanonicalURL != "" {
		return p.CanonicalURL
	}
	return s.BaseURL + "/post/" + slug.Make(p.Title)
}

// imageURL resolves the page image: explicit SEO override first, then the
// featured image. Absolute URLs pass through; site-relative paths get the
// base URL prefixed.
func (s Site) imageURL(p *models.Post) string {
	img := p.SEOImage
	if img == "" {
		img = p.FeaturedImage
	}
	if img == "" {
		return ""
	}
	if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
		return img
	}
	if !strings.HasPrefix(img, "/") {
		img = "/" + img
	}
	return s.BaseURL + img
}

func postContent(p *models.Post) template.HTML {
	if p.ContentHTML != "" {
		return template.HTML(p.ContentHTML)
	}
	return FormatContent(p.Content)
}

// ReadingTime estimates minutes to read at 200 words per minute, never less
// than one.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// structuredData builds the JSON-LD Article block as a complete script
// element. json.Marshal escapes <, > and & inside strings, so the payload is
// safe to embed verbatim.
func (s Site) structuredData(p *models.Post, d pageData) (template.HTML, error) {
	article := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "Article",
		"headline":      p.Title,
		"description":   d.Description,
		"datePublished": d.PublishedISO,
		"dateModified":  d.ModifiedISO,
		"author": map[string]any{
			"@type": "Person",
			"name":  p.Author,
		},
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  s.Name,
		},
		"mainEntityOfPage": d.Canonical,
	}
	if d.ImageURL != "" {
		article["image"] = d.ImageURL
	}
	if d.Keywords != "" {
		article["keywords"] = d.Keywords
	}
	out, err := json.MarshalIndent(article, "", "  ")
	if err != nil {
		return "", err
	}
	return template.HTML(`<script type="application/ld+json">` + "\n" + string(out) + "\n</script>"), nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func collapseText(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}

var pageTemplate = template.Must(template.New("post").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
{{- if .Keywords}}
<meta name="keywords" content="{{.Keywords}}">
{{- end}}
{{- if .Post.NoIndex}}
<meta name="robots" content="noindex, nofollow">
{{- end}}
<link rel="canonical" href="{{.Canonical}}">
<meta property="og:type" content="article">
<meta property="og:site_name" content="{{.Site.Name}}">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:url" content="{{.Canonical}}">
{{- if .ImageURL}}
<meta property="og:image" content="{{.ImageURL}}">
{{- end}}
<meta property="article:published_time" content="{{.PublishedISO}}">
<meta property="article:modified_time" content="{{.ModifiedISO}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
{{- if .ImageURL}}
<meta name="twitter:image" content="{{.ImageURL}}">
{{- end}}
{{.StructuredData}}
<link rel="stylesheet" href="/static/css/site.css">
</head>
<body>
<article class="post">
<header class="post-header">
<p class="post-meta"><span class="post-type">{{.Post.Type}}</span>{{if .Post.Date}} · <time>{{.Post.Date}}</time>{{end}} · <span class="post-reading-time">{{.ReadingTime}} min read</span></p>
<h1 class="post-title">{{.Post.Title}}</h1>
{{- if .Post.Author}}
<p class="post-author">By {{.Post.Author}}</p>
{{- end}}
</header>
{{- if .ImageURL}}
<img class="post-hero" src="{{.ImageURL}}" alt="{{.Post.Title}}" loading="lazy">
{{- end}}
<div class="post-content">
{{.Content}}
</div>
{{- if .Post.Link}}
<p class="post-link"><a href="{{.Post.Link}}" target="_blank" rel="noopener noreferrer">Read the full story</a></p>
{{- end}}
{{- if .Post.Tags}}
<ul class="post-tags">
{{- range .Post.Tags}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
</article>
<script src="/static/js/accessibility.js" defer></script>
<script src="/static/js/translate.js" defer></script>
</body>
</html>
`))

var notFoundTemplate = template.Must(template.New("notfound").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Post not found | {{.Name}}</title>
<meta name="robots" content="noindex">
<link rel="stylesheet" href="/static/css/site.css">
</head>
<body>
<main class="not-found">
<h1>Post not found</h1>
<p>The story you are looking for has moved or no longer exists.</p>
<p><a href="{{.BaseURL}}">Back to the homepage</a></p>
</main>
</body>
</html>
`))
