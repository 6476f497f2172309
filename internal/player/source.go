package player

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/alicehocane/watch/internal/domain"
)

type SourceKind int

const (
	SourceWidget SourceKind = iota
	SourceMedia
)

// Source is the classification result for a room's video URL. The concrete
// controller variant is selected from Kind exactly once per room; nothing
// else branches on it.
type Source struct {
	Kind    SourceKind
	URL     string
	VideoID string
}

var widgetHosts = map[string]struct{}{
	"youtube.com":     {},
	"www.youtube.com": {},
	"m.youtube.com":   {},
	"youtu.be":        {},
}

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{6,16}$`)

// ClassifySource decides which backend a video URL belongs to. URLs on the
// platform's domains must yield a video id from the short-link path, the
// "v" query parameter or an /embed/<id> path, first match wins; otherwise
// classification fails with ErrUnplayableSource and no controller may be
// constructed. Any other http(s) URL is treated as direct media.
func ClassifySource(rawURL string) (Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s", domain.ErrUnplayableSource, rawURL)
	}

	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return Source{}, fmt.Errorf("%w: %s", domain.ErrUnplayableSource, rawURL)
	}

	host := strings.ToLower(u.Hostname())
	if _, ok := widgetHosts[host]; !ok {
		return Source{Kind: SourceMedia, URL: rawURL}, nil
	}

	if id := extractVideoID(host, u); id != "" {
		return Source{Kind: SourceWidget, URL: rawURL, VideoID: id}, nil
	}

	return Source{}, fmt.Errorf("%w: %s", domain.ErrUnplayableSource, rawURL)
}

func extractVideoID(host string, u *url.URL) string {
	if host == "youtu.be" {
		if id := firstPathSegment(u.Path); videoIDRe.MatchString(id) {
			return id
		}
	}

	if id := u.Query().Get("v"); videoIDRe.MatchString(id) {
		return id
	}

	if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok {
		if id := firstPathSegment(rest); videoIDRe.MatchString(id) {
			return id
		}
	}

	return ""
}

func firstPathSegment(path string) string {
	segment, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return segment
}
