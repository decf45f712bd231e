package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	relayMinBackoff = 500 * time.Millisecond
	relayMaxBackoff = 30 * time.Second
)

// relayTransport is the pub/sub surface the relay needs from Redis.
type relayTransport interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (relaySubscription, error)
}

// relaySubscription yields messages until it is closed or the connection is lost.
type relaySubscription interface {
	Messages() <-chan *redis.Message
	Close() error
}

type redisTransport struct {
	client *redis.Client
}

func (t redisTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	return t.client.Publish(ctx, channel, payload).Err()
}

func (t redisTransport) Subscribe(ctx context.Context, channel string) (relaySubscription, error) {
	sub := t.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	return redisSubscription{sub: sub}, nil
}

type redisSubscription struct {
	sub *redis.PubSub
}

func (s redisSubscription) Messages() <-chan *redis.Message { return s.sub.Channel() }
func (s redisSubscription) Close() error                    { return s.sub.Close() }

// RedisRelay shares notifications between instances through a Redis channel.
// Send publishes; Run delivers everything on the channel to the local feed,
// including this instance's own publications. While Run holds no
// subscription, Send also delivers locally so streams on this instance keep
// re-rendering.
type RedisRelay struct {
	transport  relayTransport
	channel    string
	feed       *Feed
	logger     *zap.Logger
	subscribed atomic.Bool
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewRedisRelay creates a relay bound to channel.
func NewRedisRelay(client *redis.Client, channel string, feed *Feed, logger *zap.Logger) *RedisRelay {
	return newRelay(redisTransport{client: client}, channel, feed, logger)
}

func newRelay(transport relayTransport, channel string, feed *Feed, logger *zap.Logger) *RedisRelay {
	return &RedisRelay{
		transport:  transport,
		channel:    channel,
		feed:       feed,
		logger:     logger,
		minBackoff: relayMinBackoff,
		maxBackoff: relayMaxBackoff,
	}
}

// Subscribed reports whether Run currently holds a subscription.
func (r *RedisRelay) Subscribed() bool {
	return r.subscribed.Load()
}

// Send implements Sink.
func (r *RedisRelay) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := r.transport.Publish(ctx, r.channel, payload); err != nil {
		r.logger.Warn("change feed publish failed; delivering locally", zap.Error(err))
		r.feed.Broadcast(n)
		return nil
	}
	if !r.Subscribed() {
		r.feed.Broadcast(n)
	}
	return nil
}

// Run keeps a subscription to the channel until ctx is done, re-subscribing
// with exponential backoff whenever Redis is unreachable or the subscription ends.
func (r *RedisRelay) Run(ctx context.Context) error {
	backoff := r.minBackoff
	for {
		sub, err := r.transport.Subscribe(ctx, r.channel)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Warn("change feed subscribe failed; retrying",
				zap.String("channel", r.channel),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, r.maxBackoff)
			continue
		}

		backoff = r.minBackoff
		r.subscribed.Store(true)
		r.logger.Info("change feed relay subscribed", zap.String("channel", r.channel))
		stopped := r.consume(ctx, sub)
		r.subscribed.Store(false)
		_ = sub.Close()
		if stopped {
			return nil
		}
		r.logger.Warn("change feed subscription ended; resubscribing", zap.String("channel", r.channel))
	}
}

// consume reports true when ctx ended, false when the subscription did.
func (r *RedisRelay) consume(ctx context.Context, sub relaySubscription) bool {
	messages := sub.Messages()
	for {
		select {
		case <-ctx.Done():
			return true
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			var n Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				r.logger.Warn("dropping malformed change notification", zap.Error(err))
				continue
			}
			r.feed.Broadcast(n)
		}
	}
}
