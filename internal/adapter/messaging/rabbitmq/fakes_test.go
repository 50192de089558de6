package rabbitmq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

// fakeConfirmChannel confirms every publish synchronously unless told otherwise.
type fakeConfirmChannel struct {
	mu         sync.Mutex
	confirmErr error
	publishErr error
	nack       bool
	silent     bool
	confirms   chan amqp.Confirmation
	tag        uint64
	messages   []published
}

func (f *fakeConfirmChannel) Confirm(bool) error { return f.confirmErr }

func (f *fakeConfirmChannel) NotifyPublish(c chan amqp.Confirmation) chan amqp.Confirmation {
	f.confirms = c
	return c
}

func (f *fakeConfirmChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.publishErr != nil {
		return f.publishErr
	}

	f.tag++
	f.messages = append(f.messages, published{exchange: exchange, key: key, msg: msg})

	if !f.silent {
		f.confirms <- amqp.Confirmation{DeliveryTag: f.tag, Ack: !f.nack}
	}

	return nil
}

func (f *fakeConfirmChannel) sent() []published {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]published(nil), f.messages...)
}

// fakeAcknowledger counts acks per delivery tag.
type fakeAcknowledger struct {
	mu   sync.Mutex
	acks []uint64
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.acks = append(a.acks, tag)

	return nil
}

func (a *fakeAcknowledger) Nack(uint64, bool, bool) error { return nil }
func (a *fakeAcknowledger) Reject(uint64, bool) error     { return nil }

func (a *fakeAcknowledger) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.acks)
}

type fakeDeliveryChannel struct {
	deliveries chan amqp.Delivery
	prefetch   int
	consumeErr error
	queue      string
}

func (f *fakeDeliveryChannel) Qos(prefetchCount, _ int, _ bool) error {
	f.prefetch = prefetchCount
	return nil
}

func (f *fakeDeliveryChannel) ConsumeWithContext(_ context.Context, queue, _ string, _, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	f.queue = queue
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}

	return f.deliveries, nil
}
