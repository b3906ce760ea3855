package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// streamPublisher is the subset of jetstream.JetStream used here.
type streamPublisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// deduplicated payloads carry a stable id; JetStream drops repeats inside its
// duplicate window.
type deduplicated interface {
	DedupKey() string
}

// Publisher implements ports.EventPublisher on NATS JetStream.
type Publisher struct {
	nc     *nats.Conn
	js     streamPublisher
	prefix string
	log    zerolog.Logger
}

// Connect dials NATS and makes sure the stream exists.
// Events are published on "<stream>.<event_type>" in lower case.
func Connect(ctx context.Context, url, stream string, log zerolog.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("refund-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	prefix := strings.ToLower(stream)
	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
		Name:       stream,
		Subjects:   []string{prefix + ".>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		Duplicates: 10 * time.Minute,
	})
	if err != nil {
		log.Warn().Err(err).Str("stream", stream).Msg("failed to ensure event stream")
	}

	p := newPublisher(js, prefix, log)
	p.nc = nc
	return p, nil
}

func newPublisher(js streamPublisher, prefix string, log zerolog.Logger) *Publisher {
	return &Publisher{js: js, prefix: prefix, log: log}
}

// Publish sends payload as JSON.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	subject := p.prefix + "." + strings.ToLower(eventType)
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set("Event-Type", eventType)
	if d, ok := payload.(deduplicated); ok {
		msg.Header.Set(nats.MsgIdHdr, d.DedupKey())
	}

	ack, err := p.js.PublishMsg(ctx, msg)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	if ack != nil && ack.Duplicate {
		p.log.Debug().Str("subject", subject).Msg("event already published")
	}
	return nil
}

// Ping reports whether the NATS connection is up.
func (p *Publisher) Ping(_ context.Context) error {
	if p.nc == nil || !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

// Name returns the dependency name.
func (p *Publisher) Name() string {
	return "nats"
}

// Close drains the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			p.nc.Close()
		}
	}
}
