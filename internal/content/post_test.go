package content_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlift/leadlift/internal/content"
)

func writePost(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "older-post.md", `---
title: "An Older Post"
date: "2025-01-10"
excerpt: "From January"
author: "Jane Doe"
category: "SEO"
---

Older body.
`)
	writePost(t, dir, "newer-post.md", `---
title: "A Newer Post"
date: "2025-03-02"
excerpt: "From March"
author: "John Smith"
---

Newer body.
`)
	writePost(t, dir, "notes.txt", "ignored")

	lib, err := content.Load(dir)
	require.NoError(t, err)
	require.Equal(t, 2, lib.Len())

	posts := lib.Posts()
	assert.Equal(t, "newer-post", posts[0].Slug, "posts sort newest first")
	assert.Equal(t, "older-post", posts[1].Slug)

	post, ok := lib.Get("older-post")
	require.True(t, ok)
	assert.Equal(t, "An Older Post", post.Title)
	assert.Equal(t, "2025-01-10", post.Date)
	assert.Equal(t, "From January", post.Excerpt)
	assert.Equal(t, "Jane Doe", post.Author)
	assert.Equal(t, "SEO", post.Category)
	assert.Equal(t, "Older body.\n", post.Content)

	_, ok = lib.Get("missing")
	assert.False(t, ok)
}

func TestLoad_NoFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "plain.md", "Just a body.\n")

	lib, err := content.Load(dir)
	require.NoError(t, err)

	post, ok := lib.Get("plain")
	require.True(t, ok)
	assert.Empty(t, post.Title)
	assert.Equal(t, "Just a body.\n", post.Content)
}

func TestLoad_UnterminatedFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "broken.md", "---\ntitle: oops\n")

	_, err := content.Load(dir)
	assert.Error(t, err)
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := content.Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadOrSample_Fallback(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	lib := content.LoadOrSample(filepath.Join(t.TempDir(), "nope"), logger)

	require.Equal(t, len(content.SamplePosts()), lib.Len())
	_, ok := lib.Get("future-of-seo")
	assert.True(t, ok)
}

func TestLoadOrSample_UsesDir(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "real-post.md", `---
title: "Real Post"
date: "2025-05-01"
---

Body.
`)

	lib := content.LoadOrSample(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.Equal(t, 1, lib.Len())
	_, ok := lib.Get("real-post")
	assert.True(t, ok)
}
