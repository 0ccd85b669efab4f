// Package search filters and ranks the post collection against a
// free-text query with optional category and author filters.
package search

import (
	"sort"
	"strings"

	"github.com/leadlift/leadlift/internal/content"
)

const (
	DefaultLimit = 10

	titleScore   = 10
	excerptScore = 5
	contentScore = 1
)

// Query is one search request. Page is 1-indexed.
type Query struct {
	Q        string
	Category string
	Author   string
	Page     int
	Limit    int
}

// ScoredPost is a post with its relevance score for the query.
type ScoredPost struct {
	content.Post
	SearchScore int `json:"searchScore"`
}

// Pagination describes the result window.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalPosts  int  `json:"totalPosts"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Filters echoes the applied filters back to the caller.
type Filters struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	Author   string `json:"author"`
}

// Results is a page of ranked posts.
type Results struct {
	Posts      []ScoredPost `json:"posts"`
	Pagination Pagination   `json:"pagination"`
	Filters    Filters      `json:"filters"`
}

// Search filters the collection, ranks the whole filtered set by
// relevance, then paginates. Ranking before slicing keeps the global
// top match on page one.
func Search(posts []content.Post, q Query) Results {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}

	query := strings.ToLower(q.Q)
	category := strings.ToLower(q.Category)
	author := strings.ToLower(q.Author)

	var scored []ScoredPost
	for _, post := range posts {
		if !matches(post, query, category, author) {
			continue
		}
		scored = append(scored, ScoredPost{Post: post, SearchScore: relevance(post, query)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SearchScore > scored[j].SearchScore
	})

	totalPosts := len(scored)
	totalPages := (totalPosts + q.Limit - 1) / q.Limit

	start := (q.Page - 1) * q.Limit
	end := start + q.Limit
	if start > totalPosts {
		start = totalPosts
	}
	if end > totalPosts {
		end = totalPosts
	}

	page := scored[start:end]
	if page == nil {
		page = []ScoredPost{}
	}

	return Results{
		Posts: page,
		Pagination: Pagination{
			CurrentPage: q.Page,
			TotalPages:  totalPages,
			TotalPosts:  totalPosts,
			HasNextPage: q.Page < totalPages,
			HasPrevPage: q.Page > 1,
		},
		Filters: Filters{Query: query, Category: q.Category, Author: q.Author},
	}
}

// matches applies the query, category and author filters. Empty filters
// match everything.
func matches(post content.Post, query, category, author string) bool {
	if query != "" {
		hit := strings.Contains(strings.ToLower(post.Title), query) ||
			strings.Contains(strings.ToLower(post.Excerpt), query) ||
			strings.Contains(strings.ToLower(post.Content), query) ||
			strings.Contains(strings.ToLower(post.Author), query)
		if !hit {
			return false
		}
	}

	if category != "" && strings.ToLower(post.Category) != category {
		return false
	}

	if author != "" && !strings.Contains(strings.ToLower(post.Author), author) {
		return false
	}

	return true
}

// relevance scores a post for a query. Scores are additive: a term in
// title, excerpt and content earns all three bonuses.
func relevance(post content.Post, query string) int {
	if query == "" {
		return 0
	}

	score := 0
	if strings.Contains(strings.ToLower(post.Title), query) {
		score += titleScore
	}
	if strings.Contains(strings.ToLower(post.Excerpt), query) {
		score += excerptScore
	}
	if strings.Contains(strings.ToLower(post.Content), query) {
		score += contentScore
	}
	return score
}
