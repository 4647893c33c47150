package tr

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// End finishes span with the outcome in *err. A cancelled caller is recorded
// as an attribute rather than an error.
func End(span trace.Span, err *error) {
	defer span.End()
	switch {
	case err == nil || *err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(*err, context.Canceled):
		span.SetAttributes(attribute.Bool("canceled", true))
	default:
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
}
