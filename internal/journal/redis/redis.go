// Package redisjournal keeps the journal in a capped redis list and
// publishes every entry on a channel so support tooling can follow along.
package redisjournal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/qc-advancedmedic/nui/internal/config"
	"github.com/qc-advancedmedic/nui/internal/journal"
)

// DefaultMaxLen caps the list length.
const DefaultMaxLen = 5000

// Backend implements journal.Backend on top of redis.
type Backend struct {
	cfg    config.RedisConfig
	client redis.UniversalClient
	maxLen int64
	log    zerolog.Logger
}

// New creates a redis backend connecting with cfg.
func New(cfg config.RedisConfig, log zerolog.Logger) *Backend {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewWithClient(cfg, client, log)
}

// NewWithClient creates a redis backend on an existing client.
func NewWithClient(cfg config.RedisConfig, client redis.UniversalClient, log zerolog.Logger) *Backend {
	return &Backend{cfg: cfg, client: client, maxLen: DefaultMaxLen, log: log}
}

// Init checks the connection.
func (b *Backend) Init() error {
	if b.cfg.Key == "" {
		return errors.New("redis journal key not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis at %s: %w", b.cfg.Addr, err)
	}
	b.log.Info().Str("addr", b.cfg.Addr).Str("key", b.cfg.Key).Msg("Connected to redis journal")
	return nil
}

// Close closes the client.
func (b *Backend) Close() error {
	return b.client.Close()
}

// Record appends the entry to the list, trims it and publishes it.
func (b *Backend) Record(ctx context.Context, e journal.Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}

	pipe := b.client.TxPipeline()
	pipe.RPush(ctx, b.cfg.Key, raw)
	pipe.LTrim(ctx, b.cfg.Key, -b.maxLen, -1)
	if b.cfg.Channel != "" {
		pipe.Publish(ctx, b.cfg.Channel, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}
	return nil
}

// Entries reads the list and applies f.
func (b *Backend) Entries(ctx context.Context, f journal.Filter) ([]journal.Entry, error) {
	raws, err := b.client.LRange(ctx, b.cfg.Key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return f.Apply(decodeEntries(raws, b.log)), nil
}

// Follow streams entries published on the channel until ctx is done.
func (b *Backend) Follow(ctx context.Context, fn func(journal.Entry)) error {
	if b.cfg.Channel == "" {
		return errors.New("redis journal channel not set")
	}
	sub := b.client.Subscribe(ctx, b.cfg.Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.cfg.Channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var e journal.Entry
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.log.Warn().Err(err).Msg("Skipping malformed journal message")
				continue
			}
			fn(e)
		}
	}
}

func decodeEntries(raws []string, log zerolog.Logger) []journal.Entry {
	out := make([]journal.Entry, 0, len(raws))
	for _, raw := range raws {
		var e journal.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			log.Warn().Err(err).Msg("Skipping malformed journal entry")
			continue
		}
		out = append(out, e)
	}
	return out
}
