package render

import (
	"strings"
	"testing"
	"time"

	"github.com/soleracask/solera-cask-sub000/internal/models"
)

var testSite = Site{BaseURL: "https://soleracask.example", Name: "Solera Cask"}

func testPost() *models.Post {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &models.Post{
		ID:        "hello-world-2024-1717243200000",
		Title:     "Hello, World! 2024",
		Type:      "News",
		Date:      "June 1, 2024",
		Excerpt:   "A first look at the new cellar.",
		Content:   "First paragraph.\n\nSecond paragraph.",
		Tags:      []string{"cellar", "news"},
		Status:    models.StatusPublished,
		Author:    "marta",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func renderPage(t *testing.T, p *models.Post) string {
	t.Helper()
	doc, err := testSite.Page(p)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return doc
}

func TestPageTitleAndCanonical(t *testing.T) {
	doc := renderPage(t, testPost())

	if !strings.Contains(doc, "<title>Hello, World! 2024 | Solera Cask</title>") {
		t.Errorf("missing title tag in document")
	}
	if !strings.Contains(doc, `<link rel="canonical" href="https://soleracask.example/post/hello-world-2024">`) {
		t.Errorf("missing canonical link in document")
	}
	if !strings.Contains(doc, `<meta name="description" content="A first look at the new cellar.">`) {
		t.Errorf("missing description meta in document")
	}
	if !strings.Contains(doc, `<meta name="keywords" content="cellar, news">`) {
		t.Errorf("missing keywords meta in document")
	}
	if strings.Contains(doc, "noindex") {
		t.Errorf("unexpected robots noindex for indexable post")
	}
}

func TestPageSEOOverrides(t *testing.T) {
	p := testPost()
	p.SEOTitle = "Custom Title"
	p.SEODescription = "Custom description."
	p.CanonicalURL = "https://elsewhere.example/canonical"
	p.NoIndex = true
	doc := renderPage(t, p)

	if !strings.Contains(doc, "<title>Custom Title</title>") {
		t.Errorf("seo title override not applied")
	}
	if !strings.Contains(doc, `content="Custom description."`) {
		t.Errorf("seo description override not applied")
	}
	if !strings.Contains(doc, `href="https://elsewhere.example/canonical"`) {
		t.Errorf("canonical override not applied")
	}
	if !strings.Contains(doc, `content="noindex, nofollow"`) {
		t.Errorf("noindex meta not emitted")
	}
}

func TestPageImageResolution(t *testing.T) {
	p := testPost()
	p.FeaturedImage = "/uploads/cellar.jpg"
	doc := renderPage(t, p)
	if !strings.Contains(doc, `content="https://soleracask.example/uploads/cellar.jpg"`) {
		t.Errorf("relative image not prefixed with base URL")
	}

	p.SEOImage = "https://cdn.example/hero.jpg"
	doc = renderPage(t, p)
	if !strings.Contains(doc, `content="https://cdn.example/hero.jpg"`) {
		t.Errorf("absolute seo image not passed through")
	}
}

func TestPageContentHTMLOverride(t *testing.T) {
	p := testPost()
	p.ContentHTML = "<p class=\"custom\">Pre-rendered body.</p>"
	doc := renderPage(t, p)
	if !strings.Contains(doc, `<p class="custom">Pre-rendered body.</p>`) {
		t.Errorf("contentHtml override not used verbatim")
	}
	if strings.Contains(doc, "First paragraph.") {
		t.Errorf("formatter output rendered despite contentHtml override")
	}
}

func TestPageEscapesUserData(t *testing.T) {
	p := testPost()
	p.Title = `<script>alert("x")</script>`
	doc := renderPage(t, p)
	if strings.Contains(doc, `<script>alert`) {
		t.Fatalf("unescaped title in document")
	}
}

func TestPageStructuredData(t *testing.T) {
	doc := renderPage(t, testPost())
	for _, want := range []string{
		`"@type": "Article"`,
		`"headline": "Hello, World! 2024"`,
		`"name": "marta"`,
		`"datePublished": "2024-06-01T12:00:00Z"`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("structured data missing %s", want)
		}
	}
}

func TestReadingTime(t *testing.T) {
	cases := []struct {
		words int
		want  int
	}{
		{0, 1},
		{1, 1},
		{199, 1},
		{200, 1},
		{201, 2},
		{400, 2},
		{401, 3},
	}
	for _, tc := range cases {
		content := strings.TrimSpace(strings.Repeat("word ", tc.words))
		if got := ReadingTime(content); got != tc.want {
			t.Errorf("ReadingTime(%d words) = %d, want %d", tc.words, got, tc.want)
		}
	}
}

func TestPageReadingTimeFourHundredWords(t *testing.T) {
	p := testPost()
	p.Content = strings.TrimSpace(strings.Repeat("word ", 400))
	doc := renderPage(t, p)
	if !strings.Contains(doc, "2 min read") {
		t.Errorf("expected 2 min read for a 400-word body")
	}
}

func TestNotFoundPage(t *testing.T) {
	doc := testSite.NotFound()
	if !strings.Contains(doc, "Post not found") {
		t.Errorf("not-found page missing heading")
	}
	if !strings.Contains(doc, testSite.BaseURL) {
		t.Errorf("not-found page missing homepage link")
	}
}
