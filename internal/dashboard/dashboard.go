// Package dashboard holds the embedded templates and styles for the
// admin dashboard.
package dashboard

import "embed"

//go:embed templates
var Templates embed.FS

//go:embed assets
var Assets embed.FS
