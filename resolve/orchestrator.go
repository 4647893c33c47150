package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/robertkozin/video-link-resolver/tr"
)

const DefaultEngineTimeout = 15 * time.Second

var (
	tracer = otel.Tracer("resolve")

	// ErrResolutionFailed is the only error Resolve returns. Its message is
	// safe to show to end users.
	ErrResolutionFailed = errors.New("failed to get the video; the link may be private or the server is blocked")
)

// Resolver is one engine. Any error means "no result".
type Resolver interface {
	Resolve(ctx context.Context, mediaURL string) (*MediaLinkResult, error)
}

// Orchestrator picks an engine order for each url and returns the first
// valid result. It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	Local   Resolver
	Remote  Resolver
	Timeout time.Duration
}

func (o *Orchestrator) Resolve(ctx context.Context, mediaURL string) (res *MediaLinkResult, err error) {
	ctx, span := tracer.Start(ctx, "resolve")
	defer tr.End(span, &err)

	if mediaURL == "" {
		return nil, ErrResolutionFailed
	}

	youtube := IsYouTube(mediaURL)
	span.SetAttributes(attribute.String("media_url", mediaURL), attribute.Bool("youtube", youtube))

	for _, engine := range o.order(youtube) {
		if ctx.Err() != nil {
			break
		}
		got, engineErr := o.attempt(ctx, engine.resolver, mediaURL)
		if engineErr != nil {
			slog.WarnContext(ctx, "engine failed", "engine", engine.name, "url", mediaURL, "err", engineErr)
			continue
		}
		span.SetAttributes(attribute.String("source", string(got.Source)))
		return got, nil
	}

	return nil, ErrResolutionFailed
}

type namedResolver struct {
	name     string
	resolver Resolver
}

func (o *Orchestrator) order(youtube bool) []namedResolver {
	local := namedResolver{"local", o.Local}
	remote := namedResolver{"remote", o.Remote}
	if youtube {
		return []namedResolver{remote, local}
	}
	return []namedResolver{local, remote}
}

// attempt runs a single engine call under the per-engine timeout and turns
// panics and invalid results into errors.
func (o *Orchestrator) attempt(ctx context.Context, r Resolver, mediaURL string) (res *MediaLinkResult, err error) {
	if r == nil {
		return nil, errors.New("engine not configured")
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			res, err = nil, fmt.Errorf("engine panicked: %v", p)
		}
	}()

	res, err = r.Resolve(ctx, mediaURL)
	if err != nil {
		return nil, err
	}
	if err = res.Validate(); err != nil {
		return nil, fmt.Errorf("invalid result: %w", err)
	}
	return res, nil
}
