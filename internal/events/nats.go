package events

import (
	"context"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes events as core NATS messages.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url, token string) (*NATSPublisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	opts := []nats.Option{
		nats.Name("office-duty-card"),
	}
	// if token provided
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.conn.Publish(subject, payload)
}

func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
