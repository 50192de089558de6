package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/iho/gobank/internal/domain"
)

// Publisher errors.
var (
	ErrPublishNacked          = errors.New("message was nacked by broker")
	ErrConfirmTimeout         = errors.New("confirmation timed out")
	ErrConfirmsClosed         = errors.New("confirmation channel closed")
	ErrPublisherUnavailable   = errors.New("event channel unavailable")
	ErrConfirmModeUnavailable = errors.New("channel does not support confirm mode")
)

const (
	DefaultConfirmTimeout = 5 * time.Second

	// confirmBuffer must cover every unconfirmed message so the library never blocks.
	confirmBuffer = 256
)

// ConfirmChannel is the part of *amqp.Channel the publisher needs.
type ConfirmChannel interface {
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublisherOptions configures a Publisher.
type PublisherOptions struct {
	ConfirmTimeout time.Duration
	// BreakerFailures consecutive failures open the breaker for BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Publisher implements usecase.EventPublisher on a topic exchange with
// publisher confirms. Every message waits for its broker ack.
type Publisher struct {
	ch       ConfirmChannel
	confirms chan amqp.Confirmation
	exchange string
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker
	log      zerolog.Logger

	mu  sync.Mutex
	tag uint64
}

// NewPublisher puts ch in confirm mode and returns a Publisher bound to exchange.
func NewPublisher(ch ConfirmChannel, exchange string, opts PublisherOptions, log zerolog.Logger) (*Publisher, error) {
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfirmModeUnavailable, err)
	}

	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = DefaultConfirmTimeout
	}

	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}

	p := &Publisher{
		ch:       ch,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer)),
		exchange: exchange,
		timeout:  opts.ConfirmTimeout,
		log:      log.With().Str("component", "event_publisher").Logger(),
	}

	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "rabbitmq-publisher",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("publisher circuit breaker state changed")
		},
	})

	return p, nil
}

// Publish sends one event and waits for the broker to confirm it.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.Envelope().EventType, err)
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.publish(ctx, event, body)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrPublisherUnavailable, err)
	}

	return err
}

// PublishMany publishes events in order and stops at the first failure.
func (p *Publisher) PublishMany(ctx context.Context, events []domain.Event) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

func (p *Publisher) publish(ctx context.Context, event domain.Event, body []byte) error {
	env := event.Envelope()

	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.PublishWithContext(ctx, p.exchange, event.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.EventID,
		Type:         string(env.EventType),
		Timestamp:    env.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.RoutingKey(), err)
	}

	p.tag++

	return p.waitForConfirm(ctx, p.tag)
}

// waitForConfirm skips confirmations left over from publishes that timed out.
func (p *Publisher) waitForConfirm(ctx context.Context, tag uint64) error {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	for {
		select {
		case c, ok := <-p.confirms:
			if !ok {
				return ErrConfirmsClosed
			}

			if c.DeliveryTag < tag {
				continue
			}

			if !c.Ack {
				return fmt.Errorf("%w: delivery_tag=%d", ErrPublishNacked, c.DeliveryTag)
			}

			return nil
		case <-timer.C:
			return fmt.Errorf("%w: delivery_tag=%d", ErrConfirmTimeout, tag)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
