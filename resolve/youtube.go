package resolve

import (
	"errors"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	ErrNoVideoID = errors.New("no youtube video id in url")

	youtubeIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

	// path words that happen to look like ids
	reservedYouTubeSegments = map[string]bool{
		"videoseries": true,
		"live_stream": true,
	}
)

// ExtractYouTubeID returns the 11 character video id of mediaURL. An explicit
// v= parameter always wins; otherwise only the final path segment is
// considered.
func ExtractYouTubeID(mediaURL string) (string, error) {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return "", ErrNoVideoID
	}

	if q := u.Query(); q.Has("v") {
		if v := q.Get("v"); youtubeIDPattern.MatchString(v) {
			return v, nil
		}
		return "", ErrNoVideoID
	}

	seg := path.Base(strings.TrimSuffix(u.Path, "/"))
	if !youtubeIDPattern.MatchString(seg) || reservedYouTubeSegments[seg] {
		return "", ErrNoVideoID
	}
	return seg, nil
}
