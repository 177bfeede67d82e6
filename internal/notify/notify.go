// Package notify fans committed block events out to off-chain subscribers.
package notify

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"onchainwager/internal/host"
)

// TxEvents are the events of one successful transaction.
type TxEvents struct {
	Index  int          `json:"index"`
	Type   string       `json:"type"`
	Events []host.Event `json:"events"`
}

// BlockEvents is the payload published after each commit.
type BlockEvents struct {
	Height  int64      `json:"height"`
	Time    time.Time  `json:"time"`
	AppHash string     `json:"appHash"`
	Txs     []TxEvents `json:"txs,omitempty"`
}

func NewBlockEvents(height int64, blockTime time.Time, appHash []byte, txs []TxEvents) BlockEvents {
	return BlockEvents{
		Height:  height,
		Time:    blockTime.UTC(),
		AppHash: hex.EncodeToString(appHash),
		Txs:     txs,
	}
}

// Publisher receives every committed block. Publishing is best effort: a failure
// never affects consensus state.
type Publisher interface {
	Publish(ctx context.Context, block BlockEvents) error
	Close() error
}

// Nop drops everything.
type Nop struct{}

func (Nop) Publish(context.Context, BlockEvents) error { return nil }
func (Nop) Close() error                               { return nil }

// redisClient is the subset of *redis.Client the publisher needs.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// Redis publishes each block as one JSON message on a pub/sub channel.
type Redis struct {
	client  redisClient
	channel string
	timeout time.Duration
}

func NewRedis(addr, channel string) *Redis {
	return newRedis(redis.NewClient(&redis.Options{Addr: addr}), channel)
}

func newRedis(client redisClient, channel string) *Redis {
	return &Redis{client: client, channel: channel, timeout: 2 * time.Second}
}

func (r *Redis) Publish(ctx context.Context, block BlockEvents) error {
	payload, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("encode block %d: %w", block.Height, err)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish block %d to %s: %w", block.Height, r.channel, err)
	}
	return nil
}

func (r *Redis) Close() error { return r.client.Close() }
