// Package recommend produces "related articles" via keyword-overlap
// similarity between posts.
package recommend

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/leadlift/leadlift/internal/content"
)

const (
	// DefaultMaxResults is the number of recommendations returned when
	// the caller does not say.
	DefaultMaxResults = 3

	// popularSimilarity tags the fallback list returned without a
	// current post.
	popularSimilarity = 0.8

	maxKeywords    = 20
	wordsPerMinute = 200
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "can": true, "this": true, "that": true, "these": true,
	"those": true,
}

// RelatedPost is a candidate recommendation with its similarity in
// [0, 1] and an estimated reading time in minutes.
type RelatedPost struct {
	content.Post
	Similarity  float64 `json:"similarity"`
	ReadingTime int     `json:"readingTime"`
}

// Related ranks candidates by keyword-overlap similarity to the current
// post. Similarity is multiplied by a random factor in [0.8, 1.2] so
// repeated calls vary; pass a seeded rng for deterministic output, or
// nil for the shared source. Without a current post the first max posts
// are returned at a constant similarity.
func Related(posts []content.Post, current *content.Post, max int, rng *rand.Rand) []RelatedPost {
	if max <= 0 {
		max = DefaultMaxResults
	}

	if current == nil {
		n := min(max, len(posts))
		out := make([]RelatedPost, n)
		for i := 0; i < n; i++ {
			out[i] = RelatedPost{
				Post:        posts[i],
				Similarity:  popularSimilarity,
				ReadingTime: ReadingTime(posts[i].Content),
			}
		}
		return out
	}

	randomFactor := func() float64 {
		if rng != nil {
			return 0.8 + rng.Float64()*0.4
		}
		return 0.8 + rand.Float64()*0.4
	}

	currentKeywords := Keywords(current.Title + " " + current.Excerpt)

	var scored []RelatedPost
	for _, post := range posts {
		if post.Slug == current.Slug {
			continue
		}

		similarity := Jaccard(currentKeywords, Keywords(post.Title+" "+post.Excerpt))
		similarity = math.Min(similarity*randomFactor(), 1)

		scored = append(scored, RelatedPost{
			Post:        post,
			Similarity:  similarity,
			ReadingTime: ReadingTime(post.Content),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > max {
		scored = scored[:max]
	}
	return scored
}

// Keywords extracts up to 20 lowercased, punctuation-stripped,
// stop-word-filtered tokens from text.
func Keywords(text string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	var keywords []string
	for _, word := range strings.Fields(b.String()) {
		if len(word) <= 2 || stopWords[word] {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// Jaccard computes intersection-over-union of two keyword lists.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, w := range a {
		setA[w] = true
	}
	setB := make(map[string]bool, len(b))
	for _, w := range b {
		setB[w] = true
	}

	intersection := 0
	union := len(setB)
	for w := range setA {
		if setB[w] {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// ReadingTime estimates minutes to read content at 200 words per minute.
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) / wordsPerMinute))
}
