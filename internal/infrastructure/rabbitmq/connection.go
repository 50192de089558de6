package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// ErrConnectionClosed is returned by Ping once the broker connection is gone.
var ErrConnectionClosed = errors.New("rabbitmq connection closed")

const (
	dialTimeout = 10 * time.Second
	heartbeat   = 10 * time.Second
)

// Connection owns one AMQP connection. Publishers and consumers each take
// their own channel from it.
type Connection struct {
	conn *amqp.Connection
	log  zerolog.Logger
}

// Dial connects to the broker at url.
func Dial(ctx context.Context, url, connectionName string, log zerolog.Logger) (*Connection, error) {
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(connectionName)

	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat:  heartbeat,
		Properties: props,
		Dial:       amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	if err := ctx.Err(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	c := &Connection{
		conn: conn,
		log:  log.With().Str("component", "rabbitmq").Logger(),
	}

	go c.watch(conn.NotifyClose(make(chan *amqp.Error, 1)))

	return c, nil
}

// Channel opens a new channel on the connection.
func (c *Connection) Channel() (*amqp.Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	return ch, nil
}

// Ping reports whether the connection is still open.
func (c *Connection) Ping(context.Context) error {
	if c.conn.IsClosed() {
		return ErrConnectionClosed
	}

	return nil
}

// Close closes the connection and every channel on it.
func (c *Connection) Close() error {
	if c.conn.IsClosed() {
		return nil
	}

	return c.conn.Close()
}

func (c *Connection) watch(closed <-chan *amqp.Error) {
	if err, ok := <-closed; ok && err != nil {
		c.log.Error().Int("code", err.Code).Str("reason", err.Reason).Msg("rabbitmq connection lost")
	}
}
