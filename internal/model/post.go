// Package model defines the core data structures of the blog.
package model

import (
	"html/template"
	"time"

	"github.com/quietfold/the-journal/internal/config"
)

type Slug string

// DateFormat is the fixed long-form layout used for display dates.
// It is deliberately not user-localized.
const DateFormat = "January 02, 2006"

// Post is one content entry. Posts are immutable once loaded; a reload
// replaces the whole entry.
type Post struct {
	Slug Slug

	Title       string
	Description string
	PubDate     time.Time
	Draft       bool
	Tags        []string

	Markdown []byte
	Content  template.HTML

	// MDContentHash identifies the raw markdown, used for render caching
	// and change detection across reloads.
	MDContentHash string

	Modified time.Time
}

// FrontMatter is the schema of the TOML block at the top of every post file.
type FrontMatter struct {
	Title       string    `toml:"title"`
	Description string    `toml:"description"`
	PubDate     time.Time `toml:"date"`
	Draft       bool      `toml:"draft"`
	Tags        []string  `toml:"tags"`
}

// FormattedDate renders the publish date in the fixed display locale,
// e.g. "August 30, 2025".
func (p *Post) FormattedDate() string {
	return p.PubDate.Format(DateFormat)
}

// URL is the site-relative link to the post.
func (p *Post) URL() string {
	return config.PostsUrlPath + string(p.Slug)
}
