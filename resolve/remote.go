package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/robertkozin/video-link-resolver/tr"
)

const (
	DefaultGenericEndpoint = "https://social-media-video-downloader.p.rapidapi.com/smvd/get/all"
	DefaultYouTubeEndpoint = "https://youtube-media-downloader.p.rapidapi.com/v2/video/details"
)

var (
	_ Resolver = (*RemoteResolver)(nil)

	ErrRemoteDisabled = errors.New("remote resolver has no api key")
	errNoRemoteAssets = errors.New("no recognized asset shape in response")
)

type RemoteConfig struct {
	Key  string
	Host string

	GenericEndpoint   string
	YouTubeEndpoint   string
	RenderableFormats []string
	URLAccess         string

	HTTPClient *http.Client
}

// RemoteResolver asks a paid aggregation service for download links.
type RemoteResolver struct {
	cfg     RemoteConfig
	enabled bool
}

func NewRemote(cfg RemoteConfig) *RemoteResolver {
	if cfg.GenericEndpoint == "" {
		cfg.GenericEndpoint = DefaultGenericEndpoint
	}
	if cfg.YouTubeEndpoint == "" {
		cfg.YouTubeEndpoint = DefaultYouTubeEndpoint
	}
	if len(cfg.RenderableFormats) == 0 {
		cfg.RenderableFormats = []string{"720p", "1080p"}
	}
	if cfg.URLAccess == "" {
		cfg.URLAccess = "proxied"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = defaultHTTPClient
	}
	return &RemoteResolver{
		cfg:     cfg,
		enabled: cfg.Key != "",
	}
}

func (r *RemoteResolver) String() string {
	return fmt.Sprintf("remote resolver at %s", hostOf(r.cfg.GenericEndpoint))
}

func (r *RemoteResolver) Enabled() bool {
	return r.enabled
}

func (r *RemoteResolver) Resolve(ctx context.Context, mediaURL string) (res *MediaLinkResult, err error) {
	ctx, span := tracer.Start(ctx, "remote_resolve")
	defer tr.End(span, &err)

	if !r.enabled {
		return nil, ErrRemoteDisabled
	}

	endpoint, query, err := r.buildRequest(mediaURL)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("endpoint", endpoint))

	host := r.cfg.Host
	if host == "" {
		host = hostOf(endpoint)
	}

	doc, err := getJSON(ctx, r.cfg.HTTPClient, endpoint, query,
		"X-RapidAPI-Key", r.cfg.Key,
		"X-RapidAPI-Host", host,
	)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", hostOf(endpoint), err)
	}

	res, rule, ok := normalize(doc)
	if !ok {
		return nil, errNoRemoteAssets
	}
	span.SetAttributes(attribute.String("rule", rule), attribute.Int("assets", len(res.Items)))
	return res, nil
}

func (r *RemoteResolver) buildRequest(mediaURL string) (string, url.Values, error) {
	if !IsYouTube(mediaURL) {
		return r.cfg.GenericEndpoint, url.Values{"url": {mediaURL}}, nil
	}

	id, err := ExtractYouTubeID(mediaURL)
	if err != nil {
		return "", nil, err
	}
	return r.cfg.YouTubeEndpoint, url.Values{
		"videoId":           {id},
		"renderableFormats": {strings.Join(r.cfg.RenderableFormats, ",")},
		"urlAccess":         {r.cfg.URLAccess},
		"getTranscript":     {"false"},
	}, nil
}
