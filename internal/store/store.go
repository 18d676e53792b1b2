// Package store provides the persistent key-value store used for settings
// such as the theme preference.
package store

import "github.com/rs/zerolog"

// Store is a small persistent key-value store. Implementations must be safe
// for concurrent use.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

var storeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storeLogger = l
}
