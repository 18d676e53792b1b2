package repository

import (
	"slices"

	"github.com/quietfold/the-journal/internal/model"
)

// SelectPosts is the pure core of List: it drops drafts unless includeDrafts
// is set and orders the result by publish date descending. The sort is stable
// so equal dates keep their input order.
func SelectPosts(posts []model.Post, includeDrafts bool) []model.Post {
	selected := make([]model.Post, 0, len(posts))
	for _, post := range posts {
		if post.Draft && !includeDrafts {
			continue
		}
		selected = append(selected, post)
	}

	slices.SortStableFunc(selected, func(a, b model.Post) int {
		return -a.PubDate.Compare(b.PubDate)
	})

	return selected
}
