package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leadlift/leadlift/internal/recommend"
	"github.com/leadlift/leadlift/internal/search"
)

type HealthResponse struct {
	Status        string `json:"status"`
	PostsCount    int    `json:"posts_count"`
	TestsCount    int    `json:"tests_count"`
	DBSizeBytes   int64  `json:"db_size_bytes"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var dbSize int64
	row := s.store.DB().QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	_ = row.Scan(&dbSize)

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		PostsCount:    s.library.Len(),
		TestsCount:    len(s.registry.List()),
		DBSizeBytes:   dbSize,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.library.Posts())
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, ok := s.library.Get(slug)
	if !ok {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := search.Query{
		Q:        r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
		Author:   r.URL.Query().Get("author"),
		Page:     1,
		Limit:    search.DefaultLimit,
	}

	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}

	writeJSON(w, http.StatusOK, search.Search(s.library.Posts(), q))
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	maxResults := recommend.DefaultMaxResults
	if n, err := strconv.Atoi(r.URL.Query().Get("max")); err == nil && n > 0 {
		maxResults = n
	}

	var rng *rand.Rand
	if seed, err := strconv.ParseInt(r.URL.Query().Get("seed"), 10, 64); err == nil {
		rng = rand.New(rand.NewSource(seed))
	}

	var related []recommend.RelatedPost
	if slug := r.URL.Query().Get("slug"); slug != "" {
		current, ok := s.library.Get(slug)
		if !ok {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		related = recommend.Related(s.library.Posts(), &current, maxResults, rng)
	} else {
		related = recommend.Related(s.library.Posts(), nil, maxResults, rng)
	}

	if related == nil {
		related = []recommend.RelatedPost{}
	}
	writeJSON(w, http.StatusOK, related)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
