// Package ytmeta looks up display metadata for an embedded-widget video:
// title, author and thumbnail. Purely cosmetic; rooms work fine when the
// lookup fails.
package ytmeta

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrVideoNotEmbeddable = errors.New("video is not embeddable")
)

type VideoData struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 5 * time.Second}}
}

func (c *Client) Get(ctx context.Context, videoID string) (*VideoData, error) {
	videoData, err := c.getWithEmbed(ctx, videoID)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = c.getFromPage(ctx, videoID)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	return videoData, nil
}
