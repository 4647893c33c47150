package tr

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	tp trace.TracerProvider

	hostPortRe = regexp.MustCompile(`^[\w.-]+:\d+$`)
	uriRe      = regexp.MustCompile(`^(http|https)`)
)

type Config struct {
	ServiceName string
	// Endpoint is the OTLP gRPC collector. Tracing is a noop when empty.
	Endpoint string
	// Headers uses the OTEL_EXPORTER_OTLP_HEADERS format: k1=v1,k2=v2
	Headers string
}

func Init(ctx context.Context, cfg Config) error {
	var err error
	tp, err = newTracerProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	otel.SetTracerProvider(tp)
	return nil
}

func Shutdown() {
	if tp == nil {
		return
	}

	if sdk, ok := tp.(*sdktrace.TracerProvider); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sdk.Shutdown(ctx)
	}
}

func newTracerProvider(ctx context.Context, cfg Config) (trace.TracerProvider, error) {
	if cfg.Endpoint == "" {
		return noop.NewTracerProvider(), nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating otel resource: %w", err)
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}

	isLocal, err := isLoopbackAddress(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("figuring out if %q is a local address: %w", cfg.Endpoint, err)
	} else if isLocal {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if cfg.Headers != "" {
		opts = append(opts, otlptracegrpc.WithHeaders(parseOtelEnvHeaders(cfg.Headers)))
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating otlp trace grpc exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	), nil
}

func parseOtelEnvHeaders(fromEnv string) map[string]string {
	headers := map[string]string{}
	for _, pair := range strings.Split(fromEnv, ",") {
		key, val, _ := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(val)
	}
	return headers
}

func isLoopbackAddress(endpoint string) (bool, error) {
	endpoint = strings.TrimSpace(endpoint)

	var hostname string
	if hostPortRe.MatchString(endpoint) {
		hostname, _, _ = strings.Cut(endpoint, ":")
	} else if uriRe.MatchString(endpoint) {
		u, err := url.Parse(endpoint)
		if err != nil {
			return false, err
		}
		hostname = u.Hostname()
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return false, err
	}

	for _, ip := range ips {
		if !ip.IsLoopback() && !ip.IsPrivate() {
			return false, nil
		}
	}
	return true, nil
}
