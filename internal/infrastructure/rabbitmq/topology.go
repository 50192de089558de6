package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iho/gobank/internal/domain"
)

// TopologyChannel is the part of *amqp.Channel needed to declare the topology.
type TopologyChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// Topology names the exchange and the transfer command queue.
type Topology struct {
	Exchange      string
	TransferQueue string
}

// Declare creates the durable topic exchange and, when a queue name is set,
// the durable transfer queue bound to transfer.requested. Declaring is
// idempotent so both binaries call it on startup.
func (t Topology) Declare(ch TopologyChannel) error {
	if err := ch.ExchangeDeclare(t.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", t.Exchange, err)
	}

	if t.TransferQueue == "" {
		return nil
	}

	if _, err := ch.QueueDeclare(t.TransferQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", t.TransferQueue, err)
	}

	if err := ch.QueueBind(t.TransferQueue, domain.RoutingKeyTransferRequested, t.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", t.TransferQueue, err)
	}

	return nil
}
