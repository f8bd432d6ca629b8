package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const publishTimeout = 2 * time.Second

// RedisPublisher publishes events on a pub/sub channel for widget and cache
// refreshers running outside this process.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

func NewRedisPublisher(client *redis.Client, channel string, log zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, log: log}
}

func (p *RedisPublisher) Notify(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Str("type", string(event.Type)).Msg("encode notification failed")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.Warn().
			Err(err).
			Str("channel", p.channel).
			Str("type", string(event.Type)).
			Msg("publish notification failed")
	}
}
