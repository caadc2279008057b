package store

import (
	"context"

	"github.com/sakashimaa/storefront/pkg/kafka"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("storefront/store")

// Deps are the collaborators every container shares.
type Deps struct {
	Logger *zap.Logger
	UI     *UIStore
	Events kafka.EventPublisher
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.UI == nil {
		d.UI = NewUIStore(0)
	}
	if d.Events == nil {
		d.Events = kafka.NewNoopPublisher()
	}

	return d
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// fail records msg on the container, logs the cause and raises an error toast.
func fail[T any](ctx context.Context, d Deps, c *container[T], span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)

	mylogger.Warn(ctx, d.Logger, msg, zap.Error(err))

	c.fail(msg)
	d.UI.PushToast(ToastError, msg)

	return err
}
