package redisstore

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/platinummonkey/pulse/pkg/api"
	"github.com/platinummonkey/pulse/pkg/storage"
)

// EventQueue is a durable list-backed queue of serialized envelopes with
// a bounded retention window.
//
// Retention trade-off: every push resets (does not accumulate) the TTL
// on the queue key. A queue fed faster than its TTL window keeps its
// backlog alive indefinitely through repeated resets, while a queue left
// idle past the TTL silently loses any unconsumed backlog. This mirrors
// the intended retention contract and is not to be "fixed" here.
type EventQueue struct {
	client *Client
}

// NewEventQueue creates an event queue on the shared store client.
func NewEventQueue(client *Client) *EventQueue {
	return &EventQueue{client: client}
}

// Enqueue encodes the envelope and pushes it onto the queue, refreshing
// the retention TTL. Encoding failures surface as SerializationError;
// store failures as ErrUnavailable.
func (q *EventQueue) Enqueue(ctx context.Context, env *api.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return &storage.SerializationError{Err: err}
	}

	if err := q.client.rdb.LPush(ctx, keyEventQueue, payload).Err(); err != nil {
		return storage.Unavailable("enqueue", err)
	}
	if err := q.client.rdb.Expire(ctx, keyEventQueue, q.client.config.QueueTTL).Err(); err != nil {
		return storage.Unavailable("enqueue expire", err)
	}
	return nil
}

// Dequeue pops one raw payload without blocking. An empty queue returns
// (nil, nil), not an error. The pop is a single atomic store operation,
// so concurrent consumers never receive the same payload.
func (q *EventQueue) Dequeue(ctx context.Context) ([]byte, error) {
	payload, err := q.client.rdb.RPop(ctx, keyEventQueue).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, storage.Unavailable("dequeue", err)
	}
	return payload, nil
}

// DecodeEnvelope decodes a dequeued payload. Failures surface as
// MalformedEnvelopeError; the caller decides what to do with the drop.
func DecodeEnvelope(payload []byte) (*api.Envelope, error) {
	var env api.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &storage.MalformedEnvelopeError{Payload: string(payload), Err: err}
	}
	return &env, nil
}

// Len returns the current queue depth.
func (q *EventQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.rdb.LLen(ctx, keyEventQueue).Result()
	if err != nil {
		return 0, storage.Unavailable("queue len", err)
	}
	return n, nil
}
