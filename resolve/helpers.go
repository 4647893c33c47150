package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/match"
)

const maxResponseSize = 4 * 1024 * 1024

var (
	defaultHTTPClient = &http.Client{
		Transport: http.DefaultTransport,
		Timeout:   15 * time.Second,
	}
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36"

	youtubePatterns = []string{
		"*youtube.com*",
		"*youtu.be*",
	}
)

// IsYouTube reports whether mediaURL belongs to the YouTube platform class.
// The match is a plain case-sensitive substring match on the canonical domains.
func IsYouTube(mediaURL string) bool {
	return simpleURLMatch(mediaURL, youtubePatterns)
}

// supportedPatterns are the platforms worth resolving from free text chat.
var supportedPatterns = []string{
	"*youtube.com/*",
	"*youtu.be/*",
	"*tiktok.com/*",
	"*instagram.com/*",
	"*twitter.com/*/status/*",
	"*x.com/*/status/*",
	"*reddit.com/r/*/comments/*",
	"*redd.it/*",
	"*facebook.com/*",
	"*fb.watch/*",
	"*twitch.tv/*/clip/*",
	"*clips.twitch.tv/*",
	"*vimeo.com/*",
	"*bsky.app/profile/*/post/*",
}

// IsSupported reports whether mediaURL belongs to a known video platform.
func IsSupported(mediaURL string) bool {
	return simpleURLMatch(mediaURL, supportedPatterns)
}

func simpleURLMatch(url string, patterns []string) bool {
	for _, p := range patterns {
		if ok := match.Match(url, p); ok {
			return true
		}
	}
	return false
}

// getJSON performs a GET against endpoint with query and headers (given as
// key, value pairs) and returns the parsed document. Non-2xx responses and
// bodies that are not a JSON object are errors.
func getJSON(ctx context.Context, client *http.Client, endpoint string, query url.Values, headers ...string) (gjson.Result, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("parsing endpoint: %w", err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for i := 0; i+1 < len(headers); i += 2 {
		if headers[i+1] != "" {
			req.Header.Set(headers[i], headers[i+1])
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("sending http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading response body: %s: %w", resp.Status, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, fmt.Errorf("not OK: %s", resp.Status)
	}

	return parseObject(body)
}

func parseObject(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("response is not valid json")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return gjson.Result{}, fmt.Errorf("expecting json object, got %s", doc.Type)
	}
	return doc, nil
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := doc.Get(p)
		if v.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}
