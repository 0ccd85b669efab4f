// Package content loads the blog post collection from a directory of
// markdown files with YAML front matter. The collection is read-only
// from the rest of the system's perspective.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Post is one blog article.
type Post struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Excerpt  string `json:"excerpt"`
	Author   string `json:"author"`
	Category string `json:"category,omitempty"`
	Image    string `json:"image,omitempty"`
	Content  string `json:"content"`
}

// frontMatter is the YAML header of a markdown post.
type frontMatter struct {
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Excerpt  string `yaml:"excerpt"`
	Author   string `yaml:"author"`
	Category string `yaml:"category"`
	Image    string `yaml:"image"`
}

// Library is an in-memory post collection sorted by date descending.
type Library struct {
	posts  []Post
	bySlug map[string]Post
}

// Load reads every .md file in dir into a Library.
func Load(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content dir: %w", err)
	}

	var posts []Post
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		post, err := parsePost(strings.TrimSuffix(entry.Name(), ".md"), string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}

		posts = append(posts, post)
	}

	return NewLibrary(posts), nil
}

// NewLibrary builds a Library from an explicit post list.
func NewLibrary(posts []Post) *Library {
	sorted := make([]Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	bySlug := make(map[string]Post, len(sorted))
	for _, p := range sorted {
		bySlug[p.Slug] = p
	}

	return &Library{posts: sorted, bySlug: bySlug}
}

// parsePost splits a markdown document into YAML front matter and body.
func parsePost(slug, raw string) (Post, error) {
	body := raw
	var fm frontMatter

	if strings.HasPrefix(raw, "---") {
		parts := strings.SplitN(raw, "---", 3)
		if len(parts) < 3 {
			return Post{}, fmt.Errorf("unterminated front matter")
		}
		if err := yaml.Unmarshal([]byte(parts[1]), &fm); err != nil {
			return Post{}, fmt.Errorf("invalid front matter: %w", err)
		}
		body = strings.TrimLeft(parts[2], "\n")
	}

	return Post{
		Slug:     slug,
		Title:    fm.Title,
		Date:     fm.Date,
		Excerpt:  fm.Excerpt,
		Author:   fm.Author,
		Category: fm.Category,
		Image:    fm.Image,
		Content:  body,
	}, nil
}

// Posts returns all posts, newest first.
func (l *Library) Posts() []Post {
	return l.posts
}

// Get returns the post with the given slug.
func (l *Library) Get(slug string) (Post, bool) {
	p, ok := l.bySlug[slug]
	return p, ok
}

// Len returns the number of posts.
func (l *Library) Len() int {
	return len(l.posts)
}
