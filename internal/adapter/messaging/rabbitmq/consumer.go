package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrDeliveriesClosed is returned when the broker closes the delivery stream.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// DeliveryChannel is the part of *amqp.Channel the consumer needs.
type DeliveryChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Handler processes one message body. It cannot fail: the message is acked
// once Handle returns.
type Handler interface {
	Handle(ctx context.Context, body []byte)
}

// ConsumerOptions configures a Consumer.
type ConsumerOptions struct {
	Queue       string
	Tag         string
	Concurrency int
}

// Consumer feeds deliveries from one queue to a Handler with bounded concurrency.
type Consumer struct {
	ch      DeliveryChannel
	handler Handler
	opts    ConsumerOptions
	log     zerolog.Logger
}

// NewConsumer creates a new Consumer.
func NewConsumer(ch DeliveryChannel, handler Handler, opts ConsumerOptions, log zerolog.Logger) *Consumer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	return &Consumer{
		ch:      ch,
		handler: handler,
		opts:    opts,
		log:     log.With().Str("component", "consumer").Str("queue", opts.Queue).Logger(),
	}
}

// Run consumes until ctx is cancelled or the broker closes the stream. It
// waits for in-flight handlers before returning. Handlers run on a context
// that is not cancelled with ctx so a shutdown never cuts a transfer short.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ch.Qos(c.opts.Concurrency, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := c.ch.ConsumeWithContext(ctx, c.opts.Queue, c.opts.Tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.opts.Queue, err)
	}

	c.log.Info().Int("concurrency", c.opts.Concurrency).Msg("consumer started")

	handlerCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(c.opts.Concurrency)

	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			c.log.Info().Msg("consumer stopped")

			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				_ = g.Wait()
				return ErrDeliveriesClosed
			}

			g.Go(func() error {
				c.handle(handlerCtx, d)
				return nil
			})
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Uint64("delivery_tag", d.DeliveryTag).Msg("handler panicked")
		}

		if err := d.Ack(false); err != nil {
			c.log.Error().Err(err).Uint64("delivery_tag", d.DeliveryTag).Msg("failed to ack delivery")
		}
	}()

	c.handler.Handle(ctx, d.Body)
}
