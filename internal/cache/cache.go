// Package cache provides a thread-safe generic cache plus the process-wide
// caches for rendered markdown, syntax CSS and static asset hashes.
package cache

import "sync"

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

func (c *Cache[K, V]) SetTo(items map[K]V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

// RenderedContent is a cached markdown rendering.
type RenderedContent struct {
	HTML []byte
}

var renderedMarkdownCache = NewCache[string, *RenderedContent]()

func GetRenderedMarkdown(contentHash, syntaxTheme string) (*RenderedContent, bool) {
	return renderedMarkdownCache.Get(contentHash + ":" + syntaxTheme)
}

func SetRenderedMarkdown(contentHash, syntaxTheme string, html []byte) {
	renderedMarkdownCache.Set(contentHash+":"+syntaxTheme, &RenderedContent{HTML: html})
}

func ClearRenderedMarkdownCache() {
	renderedMarkdownCache.Clear()
}
