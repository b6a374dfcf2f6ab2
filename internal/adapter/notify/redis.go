package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/simaogato/tusec-backend/internal/domain"
)

const DefaultPrefix = "tusec:"

// PriceMessage is the payload published on <prefix>prices and stored at <prefix>snapshot
type PriceMessage struct {
	ID     string       `json:"id"`
	Seq    uint64       `json:"seq"`
	At     time.Time    `json:"at"`
	Prices []PriceEntry `json:"prices"`
}

type PriceEntry struct {
	Company string `json:"company"`
	Price   string `json:"price"`
}

// UserEntry is one element of the payload published on <prefix>users.
// Credentials are never published.
type UserEntry struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Position  string           `json:"position"`
	Portfolio map[string]int64 `json:"portfolio"`
}

// RedisPublisher mirrors every refresh onto Redis pub/sub channels
type RedisPublisher struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

var _ domain.Presenter = (*RedisPublisher)(nil)

// NewRedisPublisher creates a new RedisPublisher instance
func NewRedisPublisher(client redis.UniversalClient, prefix string, logger *zap.Logger) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{client: client, prefix: prefix, logger: logger}
}

func (p *RedisPublisher) PricesChannel() string { return p.prefix + "prices" }
func (p *RedisPublisher) UsersChannel() string  { return p.prefix + "users" }
func (p *RedisPublisher) SnapshotKey() string   { return p.prefix + "snapshot" }

// RefreshPrices stores the snapshot and publishes it in one pipeline
func (p *RedisPublisher) RefreshPrices(ctx context.Context, event domain.TickEvent) {
	msg := PriceMessage{
		ID:     event.ID.String(),
		Seq:    event.Seq,
		At:     event.At.UTC(),
		Prices: make([]PriceEntry, 0, len(event.Prices)),
	}
	for _, s := range event.Prices {
		msg.Prices = append(msg.Prices, PriceEntry{Company: s.Company, Price: s.Price.StringFixed(2)})
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to encode prices", zap.Error(err))
		return
	}

	pipe := p.client.Pipeline()
	pipe.Set(ctx, p.SnapshotKey(), payload, 0)
	pipe.Publish(ctx, p.PricesChannel(), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		p.logger.Error("Redis Pipeline Error", zap.Error(err), zap.Uint64("seq", event.Seq))
	}
}

// RefreshUsers publishes the user table without credentials
func (p *RedisPublisher) RefreshUsers(ctx context.Context, users []domain.User) {
	entries := make([]UserEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, UserEntry{
			ID:        u.ID,
			Name:      u.Name,
			Position:  string(u.Position),
			Portfolio: u.Portfolio,
		})
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		p.logger.Error("Failed to encode users", zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, p.UsersChannel(), payload).Err(); err != nil {
		p.logger.Error("Redis Publish Error", zap.Error(err), zap.String("channel", p.UsersChannel()))
	}
}

// Snapshot reads the last stored price message
func (p *RedisPublisher) Snapshot(ctx context.Context) (*PriceMessage, error) {
	raw, err := p.client.Get(ctx, p.SnapshotKey()).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var msg PriceMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &msg, nil
}
