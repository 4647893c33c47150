package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/robertkozin/video-link-resolver/tr"
)

var (
	_ Resolver = (*LocalResolver)(nil)

	errNoDirectURL = errors.New("extractor returned no direct url")
)

// LocalResolver resolves urls on this host through an InfoExtractor,
// requesting the best single combined stream of a single item.
type LocalResolver struct {
	extractor InfoExtractor
	opts      ExtractOptions
}

func NewLocal(extractor InfoExtractor) *LocalResolver {
	return &LocalResolver{
		extractor: extractor,
		opts: ExtractOptions{
			Format:     "best",
			NoPlaylist: true,
			UserAgent:  userAgent,
		},
	}
}

func (l *LocalResolver) String() string {
	return fmt.Sprintf("local resolver (%v)", l.extractor)
}

func (l *LocalResolver) Resolve(ctx context.Context, mediaURL string) (res *MediaLinkResult, err error) {
	ctx, span := tracer.Start(ctx, "local_resolve")
	defer tr.End(span, &err)

	raw, err := l.extractor.ExtractInfo(ctx, mediaURL, l.opts)
	if err != nil {
		return nil, fmt.Errorf("extracting info: %w", err)
	}

	info, err := parseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing info: %w", err)
	}

	// playlists that slipped through resolve to their first entry
	if info.Get("_type").String() == "playlist" {
		info = info.Get("entries.0")
	}

	direct := info.Get("url").String()
	if direct == "" {
		return nil, errNoDirectURL
	}

	res = &MediaLinkResult{
		Source:    SourceLocal,
		Title:     info.Get("title").String(),
		Thumbnail: info.Get("thumbnail").String(),
		Platform:  firstString(info, "extractor_key", "extractor"),
		Items: []MediaAsset{{
			Label:     orDefault(firstString(info, "format_note", "resolution"), "best"),
			Kind:      localKind(info),
			Extension: orDefault(info.Get("ext").String(), "mp4"),
			SizeHint:  localSize(info),
			URL:       direct,
		}},
	}
	span.SetAttributes(attribute.String("platform", res.Platform))
	return res, nil
}

func localKind(info gjson.Result) AssetKind {
	if info.Get("vcodec").String() == "none" {
		return KindAudio
	}
	return KindVideo
}

func localSize(info gjson.Result) string {
	if n := info.Get("filesize").Uint(); n > 0 {
		return humanize.Bytes(n)
	}
	if n := info.Get("filesize_approx").Uint(); n > 0 {
		return "~" + humanize.Bytes(n)
	}
	return ""
}
