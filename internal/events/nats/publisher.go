// Package nats publishes domain events to a NATS server as JSON.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mcoot/gomoku-go/internal/events"
	"github.com/mcoot/gomoku-go/internal/model"
)

// SubjectPrefix is prepended to the event type to form the subject
const SubjectPrefix = "gomoku.events."

// Conn is the part of *nats.Conn the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends each event to gomoku.events.<type>
type Publisher struct {
	conn   Conn
	nc     *nats.Conn
	logger *slog.Logger
}

// Connect dials the server at url, retrying in the background if it is not up yet
func Connect(url string, logger *slog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("gomoku-server"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	p := NewWithConn(nc, logger)
	p.nc = nc
	return p, nil
}

// NewWithConn creates a publisher over an existing connection (for testing)
func NewWithConn(conn Conn, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger.With(slog.String("component", "nats")),
	}
}

// Subject returns the subject an event type is published on
func Subject(t model.EventType) string {
	return SubjectPrefix + string(t)
}

func (p *Publisher) Publish(_ context.Context, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := p.conn.Publish(Subject(event.Type), data); err != nil {
		p.logger.Warn("failed to publish event",
			slog.String("type", string(event.Type)),
			slog.String("game_id", string(event.GameID)),
			slog.String("error", err.Error()),
		)
	}
}

// Close flushes pending messages and closes the connection, if this publisher opened it
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

// Ensure Publisher implements the interface
var _ events.Publisher = (*Publisher)(nil)
