package resolve

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type ExtractOptions struct {
	Format     string
	NoPlaylist bool
	UserAgent  string
}

// InfoExtractor produces the metadata document for a url without fetching any
// media bytes.
type InfoExtractor interface {
	ExtractInfo(ctx context.Context, mediaURL string, opts ExtractOptions) ([]byte, error)
}

var _ InfoExtractor = (*YTDLP)(nil)

type YTDLP struct {
	Path string
}

// NewYTDLP looks up the yt-dlp binary. An error means the local engine is not
// available on this host.
func NewYTDLP(file string) (*YTDLP, error) {
	if file == "" {
		file = "yt-dlp"
	}
	path, err := exec.LookPath(file)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", file, err)
	}
	return &YTDLP{Path: path}, nil
}

func (y *YTDLP) String() string {
	return "yt-dlp at " + y.Path
}

func (y *YTDLP) ExtractInfo(ctx context.Context, mediaURL string, opts ExtractOptions) ([]byte, error) {
	cmd := exec.CommandContext(ctx, y.Path, y.args(mediaURL, opts)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, lastLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func (y *YTDLP) args(mediaURL string, opts ExtractOptions) []string {
	args := []string{
		"--dump-single-json", // metadata only, nothing is written to disk
		"--no-warnings",
		"--no-progress",
	}
	if opts.Format != "" {
		args = append(args, "-f", opts.Format)
	}
	if opts.NoPlaylist {
		args = append(args, "--no-playlist", "--playlist-items", "1")
	}
	if opts.UserAgent != "" {
		args = append(args, "--user-agent", opts.UserAgent)
	}
	return append(args, "--", mediaURL)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
