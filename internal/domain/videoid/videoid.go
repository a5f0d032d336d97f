// Package videoid derives the canonical content identifier from a video URL.
package videoid

import (
	"net/url"
	"strings"

	"github.com/forPelevin/viralcut/internal/pipeerr"
)

// Extract returns the content identifier for rawURL. Rules are tried in order:
// youtu.be short link, /shorts/<id>, /embed/<id>, the v query parameter and
// finally the last non-empty path segment.
func Extract(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", pipeerr.Newf(pipeerr.InvalidInput, "invalid video URL: %v", err)
	}

	host := strings.ToLower(u.Hostname())
	if host == "youtu.be" || strings.HasSuffix(host, ".youtu.be") {
		if id := firstSegment(u.Path); id != "" {
			return id, nil
		}
	}
	for _, prefix := range []string{"/shorts/", "/embed/"} {
		if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
			if id := firstSegment(rest); id != "" {
				return id, nil
			}
		}
	}
	if v := u.Query().Get("v"); v != "" {
		return v, nil
	}
	if id := lastSegment(u.Path); id != "" {
		return id, nil
	}
	return "", pipeerr.Newf(pipeerr.InvalidInput, "unable to extract video identifier from URL")
}

func firstSegment(p string) string {
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			return s
		}
	}
	return ""
}

func lastSegment(p string) string {
	parts := strings.Split(p, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}
