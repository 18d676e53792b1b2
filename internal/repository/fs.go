package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/quietfold/the-journal/internal/cache"
	"github.com/quietfold/the-journal/internal/config"
	"github.com/quietfold/the-journal/internal/model"
)

type FSPostRepository struct { // implements PostRepository
	postsPath string

	mu    sync.RWMutex
	posts []model.Post

	postsBySlug *cache.Cache[model.Slug, *model.Post]

	watcher *fsnotify.Watcher

	reloadNotifier func(model.Slug)
}

func NewFSPostRepository(postsPath string) *FSPostRepository {
	return &FSPostRepository{
		postsPath:   postsPath,
		postsBySlug: cache.NewCache[model.Slug, *model.Post](),
	}
}

func (r *FSPostRepository) SetReloadNotifier(notifier func(model.Slug)) {
	r.reloadNotifier = notifier
}

func (r *FSPostRepository) notifyPostReload(slug model.Slug) {
	if r.reloadNotifier != nil {
		r.reloadNotifier(slug)
	}
}

func (r *FSPostRepository) Init() error {
	posts, postMap, err := r.loadPosts()
	if err != nil {
		return fmt.Errorf("error loading posts from %s: %w", r.postsPath, err)
	}

	r.mu.Lock()
	r.posts = posts
	r.mu.Unlock()
	r.postsBySlug.SetTo(postMap)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating content watcher: %w", err)
	}
	if err := watcher.Add(r.postsPath); err != nil {
		watcher.Close()
		return fmt.Errorf("error watching %s: %w", r.postsPath, err)
	}
	r.watcher = watcher

	go r.watch()
	return nil
}

func (r *FSPostRepository) List() []model.Post {
	r.mu.RLock()
	posts := r.posts
	r.mu.RUnlock()

	return SelectPosts(posts, config.ShowDrafts())
}

func (r *FSPostRepository) Get(slug model.Slug) (*model.Post, error) {
	if post, ok := r.postsBySlug.Get(slug); ok {
		return post, nil
	}
	return nil, os.ErrNotExist
}

func (r *FSPostRepository) Close() error {
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

func (r *FSPostRepository) loadPosts() ([]model.Post, map[model.Slug]*model.Post, error) {
	entries, err := os.ReadDir(r.postsPath)
	if err != nil {
		return nil, nil, err
	}

	var posts []model.Post
	postMap := make(map[model.Slug]*model.Post)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		slug := model.Slug(strings.TrimSuffix(entry.Name(), ".md"))

		mdContent, err := os.ReadFile(filepath.Join(r.postsPath, entry.Name()))
		if err != nil {
			return nil, nil, err
		}

		fileInfo, err := entry.Info()
		if err != nil {
			return nil, nil, err
		}

		post, err := parsePost(slug, mdContent, fileInfo.ModTime())
		if err != nil {
			return nil, nil, err
		}

		posts = append(posts, post)
		postMap[slug] = &post
	}

	return posts, postMap, nil
}

// watch reloads the collection on file events in the posts directory and
// notifies for every post whose content hash changed.
func (r *FSPostRepository) watch() {
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".md") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			r.reload()
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			repoLogger.Error().Err(err).Msg("Content watcher error")
		}
	}
}

func (r *FSPostRepository) reload() {
	posts, postMap, err := r.loadPosts()
	if err != nil {
		// Keep serving the previous state.
		repoLogger.Error().Err(err).Msg("Error reloading posts")
		return
	}

	r.mu.Lock()
	previous := r.posts
	r.posts = posts
	r.mu.Unlock()

	for _, post := range previous {
		if newPost, ok := postMap[post.Slug]; ok {
			if newPost.MDContentHash != post.MDContentHash {
				repoLogger.Info().
					Str("slug", string(post.Slug)).
					Str("title", post.Title).
					Msg("Reloading post")
				go r.notifyPostReload(post.Slug)
			}
		}
	}

	r.postsBySlug.SetTo(postMap)
}
