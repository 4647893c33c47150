package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	info     string
	err      error
	gotURL   string
	gotOpts  ExtractOptions
	numCalls int
}

func (s *stubExtractor) ExtractInfo(ctx context.Context, mediaURL string, opts ExtractOptions) ([]byte, error) {
	s.numCalls++
	s.gotURL = mediaURL
	s.gotOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.info), nil
}

func TestLocalResolve(t *testing.T) {
	ex := &stubExtractor{info: `{
		"title": "Cat",
		"thumbnail": "https://cdn.example/t.jpg",
		"extractor_key": "TikTok",
		"url": "https://cdn.example/cat.mp4",
		"ext": "mp4",
		"format_note": "720p",
		"filesize_approx": 2400000
	}`}
	l := NewLocal(ex)

	res, err := l.Resolve(context.Background(), "https://www.tiktok.com/@u/video/1")
	require.NoError(t, err)

	assert.Equal(t, &MediaLinkResult{
		Source:    SourceLocal,
		Title:     "Cat",
		Thumbnail: "https://cdn.example/t.jpg",
		Platform:  "TikTok",
		Items: []MediaAsset{{
			Label:     "720p",
			Kind:      KindVideo,
			Extension: "mp4",
			SizeHint:  "~2.4 MB",
			URL:       "https://cdn.example/cat.mp4",
		}},
	}, res)

	assert.Equal(t, ExtractOptions{Format: "best", NoPlaylist: true, UserAgent: userAgent}, ex.gotOpts)
}

func TestLocalResolvePlaylistUsesFirstEntry(t *testing.T) {
	ex := &stubExtractor{info: `{"_type": "playlist", "entries": [{"url": "https://cdn.example/1.mp4", "title": "one"}, {"url": "https://cdn.example/2.mp4"}]}`}

	res, err := NewLocal(ex).Resolve(context.Background(), "https://example.com/list")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "https://cdn.example/1.mp4", res.Items[0].URL)
	assert.Equal(t, "best", res.Items[0].Label)
}

func TestLocalResolveAudioOnly(t *testing.T) {
	ex := &stubExtractor{info: `{"url": "https://cdn.example/a.m4a", "ext": "m4a", "vcodec": "none"}`}

	res, err := NewLocal(ex).Resolve(context.Background(), "https://soundcloud.com/a/b")
	require.NoError(t, err)
	assert.Equal(t, KindAudio, res.Items[0].Kind)
	assert.Equal(t, "m4a", res.Items[0].Extension)
}

func TestLocalResolveFailures(t *testing.T) {
	tests := []struct {
		name string
		ex   *stubExtractor
	}{
		{"extractor error", &stubExtractor{err: errors.New("ERROR: Private video")}},
		{"garbage output", &stubExtractor{info: "WARNING: something"}},
		{"no direct url", &stubExtractor{info: `{"title": "needs merge", "requested_formats": [{}, {}]}`}},
		{"empty playlist", &stubExtractor{info: `{"_type": "playlist", "entries": []}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewLocal(tt.ex).Resolve(context.Background(), "https://example.com/v")
			assert.Error(t, err)
			assert.Nil(t, res)
		})
	}
}

func TestYTDLPArgs(t *testing.T) {
	y := &YTDLP{Path: "/usr/bin/yt-dlp"}
	args := y.args("https://example.com/v", ExtractOptions{Format: "best", NoPlaylist: true, UserAgent: "UA"})

	assert.Equal(t, []string{
		"--dump-single-json",
		"--no-warnings",
		"--no-progress",
		"-f", "best",
		"--no-playlist", "--playlist-items", "1",
		"--user-agent", "UA",
		"--", "https://example.com/v",
	}, args)
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "ERROR: Unsupported URL", lastLine("WARNING: a\nERROR: Unsupported URL\n"))
	assert.Equal(t, "", lastLine(""))
}
