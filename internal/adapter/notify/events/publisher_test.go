package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"refund-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStream struct {
	msgs []*nats.Msg
	ack  *jetstream.PubAck
	err  error
}

func (r *recordingStream) PublishMsg(_ context.Context, msg *nats.Msg, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	r.msgs = append(r.msgs, msg)
	return r.ack, r.err
}

func TestPublisher_Publish_Notification(t *testing.T) {
	stream := &recordingStream{ack: &jetstream.PubAck{Stream: "REFUNDS", Sequence: 1}}
	p := newPublisher(stream, "refunds", zerolog.New(io.Discard))

	n := domain.Notification{
		Kind:             domain.NotificationApproved,
		UserID:           uuid.New(),
		RequestID:        uuid.New(),
		PaymentReference: "ORDER-1",
		Amount:           149000,
		Currency:         "IDR",
	}
	require.NoError(t, p.Publish(context.Background(), n.Kind.EventType(), n))
	require.Len(t, stream.msgs, 1)

	msg := stream.msgs[0]
	assert.Equal(t, "refunds.refund_approved", msg.Subject)
	assert.Equal(t, "REFUND_APPROVED", msg.Header.Get("Event-Type"))
	assert.Equal(t, n.DedupKey(), msg.Header.Get(nats.MsgIdHdr))

	var got domain.Notification
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, n, got)
}

func TestPublisher_Publish_PlainPayloadHasNoMsgID(t *testing.T) {
	stream := &recordingStream{}
	p := newPublisher(stream, "refunds", zerolog.New(io.Discard))

	require.NoError(t, p.Publish(context.Background(), "PING", map[string]string{"a": "b"}))
	assert.Empty(t, stream.msgs[0].Header.Get(nats.MsgIdHdr))
}

func TestPublisher_Publish_Errors(t *testing.T) {
	p := newPublisher(&recordingStream{err: errors.New("no responders")}, "refunds", zerolog.New(io.Discard))
	assert.ErrorContains(t, p.Publish(context.Background(), "X", map[string]int{}), "no responders")

	assert.Error(t, p.Publish(context.Background(), "X", make(chan int)))
}

func TestPublisher_PingWithoutConnection(t *testing.T) {
	p := newPublisher(&recordingStream{}, "refunds", zerolog.New(io.Discard))
	assert.Error(t, p.Ping(context.Background()))
	assert.Equal(t, "nats", p.Name())
	p.Close()
}
