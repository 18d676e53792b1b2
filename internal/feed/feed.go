// Package feed builds the site's RSS 2.0 document from the post collection.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/quietfold/the-journal/internal/model"
)

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	LastBuildDate string `xml:"lastBuildDate,omitempty"`
	Items         []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description,omitempty"`
}

// Build renders the feed for posts, which are expected in display order
// (publish date descending). Links follow the fixed per-post URL template
// baseURL + /posts/{slug}.
func Build(siteName, siteDesc, baseURL string, posts []model.Post) ([]byte, error) {
	base := strings.TrimSuffix(baseURL, "/")

	items := make([]item, 0, len(posts))
	for _, post := range posts {
		link := base + post.URL()
		items = append(items, item{
			Title:       post.Title,
			Link:        link,
			GUID:        link,
			PubDate:     post.PubDate.Format(time.RFC1123Z),
			Description: post.Description,
		})
	}

	doc := rss{
		Version: "2.0",
		Channel: channel{
			Title:       siteName,
			Link:        base,
			Description: siteDesc,
			Items:       items,
		},
	}
	if len(posts) > 0 {
		doc.Channel.LastBuildDate = posts[0].PubDate.Format(time.RFC1123Z)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error building feed: %w", err)
	}

	return append([]byte(xml.Header), out...), nil
}
