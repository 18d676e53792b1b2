// Package util provides content hashing and front matter parsing.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"
)

// FrontMatterDelimiter separates TOML front matter from the markdown body.
var FrontMatterDelimiter = []byte("%%%")

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

// ParseFrontMatter decodes the TOML front matter block at the top of md into v
// and returns the markdown body that follows the block. The block is
// delimited by FrontMatterDelimiter lines.
func ParseFrontMatter(md []byte, v any) ([]byte, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	delimiter := FrontMatterDelimiter

	if len(md) < 2*len(delimiter) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	first := bytes.Index(md[:len(delimiter)+1], delimiter)
	if first == -1 {
		return nil, fmt.Errorf("invalid front matter format")
	}

	second := bytes.Index(md[first+len(delimiter):], delimiter)
	if second == -1 {
		return nil, fmt.Errorf("invalid front matter format")
	}

	end := second + 2*len(delimiter) + 1
	if end > len(md) {
		return nil, fmt.Errorf("invalid front matter format")
	}

	frontMatter := md[len(delimiter) : end-len(delimiter)-1]
	if _, err := toml.Decode(string(frontMatter), v); err != nil {
		return nil, fmt.Errorf("failed to decode front matter: %w", err)
	}

	return bytes.TrimLeft(md[end:], "\n"), nil
}
