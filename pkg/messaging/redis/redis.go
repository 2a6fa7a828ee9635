package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-intake-api/pkg/circuitbreaker"
	"github.com/jwalitptl/dental-intake-api/pkg/messaging"
)

type Config struct {
	URL          string
	Prefix       string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

// Publisher publishes events on Redis pub/sub channels named
// "<prefix><event type>".
type Publisher struct {
	client *redis.Client
	cb     *circuitbreaker.CircuitBreaker
	prefix string
	logger zerolog.Logger
}

func NewPublisher(ctx context.Context, config Config, logger zerolog.Logger) (*Publisher, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Configure connection pooling
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}
	if config.RetryBackoff > 0 {
		opts.MinRetryBackoff = config.RetryBackoff
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewPublisherFromClient(client, config.Prefix, logger), nil
}

func NewPublisherFromClient(client *redis.Client, prefix string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		client: client,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "redis-publisher",
			MaxFailures: 5,
			Timeout:     5 * time.Second,
		}),
		prefix: prefix,
		logger: logger.With().Str("component", "redis-publisher").Logger(),
	}
}

func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(messaging.Message{
		Type:        eventType,
		Payload:     payload,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	channel := p.prefix + eventType
	err = p.cb.Execute(func() error {
		return p.client.Publish(ctx, channel, body).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	p.logger.Debug().Str("channel", channel).Msg("event published")
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

var _ messaging.Publisher = (*Publisher)(nil)
