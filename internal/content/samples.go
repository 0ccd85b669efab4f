package content

import "log/slog"

// LoadOrSample loads the content directory, substituting the built-in
// sample set when the directory is unreadable. Upstream content being
// unavailable degrades, never crashes.
func LoadOrSample(dir string, logger *slog.Logger) *Library {
	lib, err := Load(dir)
	if err != nil {
		logger.Warn("content dir unavailable, using sample posts", "dir", dir, "error", err)
		return NewLibrary(SamplePosts())
	}
	return lib
}

// SamplePosts is the fallback collection served when no content
// directory is available.
func SamplePosts() []Post {
	return []Post{
		{
			Slug:    "future-of-seo",
			Title:   "The Future of SEO: What You Need to Know in 2025",
			Date:    "2025-07-10",
			Excerpt: "Explore the evolving landscape of SEO and discover key strategies to stay ahead in 2025.",
			Author:  "Jane Doe",
			Content: "The world of Search Engine Optimization is constantly evolving. Staying ahead means understanding how search engines weigh content quality, user intent and site experience, and adapting your strategy before the next algorithm update lands.",
		},
		{
			Slug:    "digital-marketing-strategy",
			Title:   "Building a Robust Digital Marketing Strategy for Small Businesses",
			Date:    "2025-06-25",
			Excerpt: "Small businesses can thrive online with the right digital marketing strategy.",
			Author:  "John Smith",
			Content: "For small businesses, a well-defined digital marketing strategy is the difference between being found and being forgotten. Start with clear goals, know your audience, and invest in the channels where they already spend their time.",
		},
		{
			Slug:    "content-marketing-guide",
			Title:   "Content Marketing: Creating Valuable Content That Converts",
			Date:    "2025-07-05",
			Excerpt: "Learn how to create compelling content that not only engages your audience but also drives conversions.",
			Author:  "Jane Doe",
			Content: "Content marketing is about earning attention rather than buying it. Valuable content answers real questions, builds trust over repeated visits, and gives readers a natural next step toward becoming customers.",
		},
	}
}
