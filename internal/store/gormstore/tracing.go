package gormstore

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/station-pos/internal/apperror"
)

var tracer = otel.Tracer("pos-repository")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on the span. Business rejections are tagged but do not
// mark the span as failed.
func endSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		return
	}
	if errors.Is(err, apperror.ErrInsufficientStock) ||
		errors.Is(err, apperror.ErrInvalidAdjustment) ||
		errors.Is(err, apperror.ErrInvalidTransition) {
		span.SetAttributes(attribute.String("pos.rejection", apperror.Code(err)))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
