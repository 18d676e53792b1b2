// Package repository loads blog posts from a content source and exposes an
// ordered, draft-filtered view of them.
package repository

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quietfold/the-journal/internal/model"
	"github.com/quietfold/the-journal/internal/util"
)

type PostRepository interface {
	Init() error

	// List returns the published view: drafts filtered by the process-wide
	// draft-visibility rule, ordered by publish date descending.
	List() []model.Post

	Get(slug model.Slug) (*model.Post, error)

	// SetReloadNotifier sets a function called when a post's content changes.
	SetReloadNotifier(notifier func(model.Slug))

	Close() error
}

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

// parsePost builds a Post from raw markdown. Title and publish date are
// required; anything else defaults.
func parsePost(slug model.Slug, md []byte, modified time.Time) (model.Post, error) {
	var fm model.FrontMatter
	body, err := util.ParseFrontMatter(md, &fm)
	if err != nil {
		return model.Post{}, fmt.Errorf("post %q: %w", slug, err)
	}

	if fm.Title == "" {
		return model.Post{}, fmt.Errorf("post %q: front matter is missing a title", slug)
	}
	if fm.PubDate.IsZero() {
		return model.Post{}, fmt.Errorf("post %q: front matter is missing a date", slug)
	}

	return model.Post{
		Slug:          slug,
		Title:         fm.Title,
		Description:   fm.Description,
		PubDate:       fm.PubDate,
		Draft:         fm.Draft,
		Tags:          fm.Tags,
		Markdown:      body,
		MDContentHash: util.ContentHash(md),
		Modified:      modified,
	}, nil
}
