package outbox

import (
	"context"
	"time"

	"github.com/sakashimaa/storefront/pkg/domain"
	"github.com/sakashimaa/storefront/pkg/kafka"
	"github.com/sakashimaa/storefront/pkg/metrics"
	"github.com/sakashimaa/storefront/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Processor struct {
	outbox    *Outbox
	producer  kafka.Producer
	topic     string
	logger    *zap.Logger
	metrics   *metrics.Metrics
	batchSize int
	interval  time.Duration
	tracer    trace.Tracer
}

func NewProcessor(
	outbox *Outbox,
	producer kafka.Producer,
	topic string,
	interval time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Processor {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	return &Processor{
		outbox:    outbox,
		producer:  producer,
		topic:     topic,
		logger:    logger,
		metrics:   m,
		batchSize: 50,
		interval:  interval,
		tracer:    otel.Tracer("outbox-worker"),
	}
}

// Start relays queued events until ctx is done, then makes one last pass so events raised
// during shutdown still go out.
func (p *Processor) Start(ctx context.Context) {
	mylogger.Info(
		ctx,
		p.logger,
		"Starting outbox processor",
		zap.String("topic", p.topic),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			mylogger.Info(
				ctx,
				p.logger,
				"Outbox processor stopping",
				zap.Int("pending", p.outbox.Len()),
			)

			p.processBatch(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			p.processBatch(ctx)
		}
	}
}

func (p *Processor) processBatch(ctx context.Context) {
	events := p.outbox.unpublished(p.batchSize)
	if len(events) == 0 {
		return
	}

	ctx, span := p.tracer.Start(ctx, "OutboxProcessor.processBatch")
	defer span.End()

	span.SetAttributes(attribute.Int("batch_size", len(events)))

	mylogger.Debug(
		ctx,
		p.logger,
		"Processing outbox events",
		zap.Int("count", len(events)),
	)

	for _, event := range events {
		err := p.producer.ProduceMessage(ctx, p.topic, domain.Envelope{
			EventID:    event.ID,
			Event:      event.Type,
			Payload:    event.Payload,
			OccurredAt: event.CreatedAt,
		})
		if err != nil {
			span.RecordError(err)

			dropped := p.outbox.markFailed(event.ID, err.Error())
			p.metrics.OutboxEvent("failed")
			if dropped {
				p.metrics.OutboxEvent("dropped")
			}
			mylogger.Error(
				ctx,
				p.logger,
				"outbox worker produce message failed",
				zap.Int64("id", event.ID),
				zap.String("event", event.Type),
				zap.Int("attempts", event.Attempts+1),
				zap.Bool("dropped", dropped),
				zap.Error(err),
			)

			// keep order: later events wait for the failed one
			return
		}

		p.outbox.markPublished(event.ID)
		p.metrics.OutboxEvent("published")

		mylogger.Debug(
			ctx,
			p.logger,
			"outbox worker event published successfully",
			zap.Int64("id", event.ID),
		)
	}
}
