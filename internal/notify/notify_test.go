package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"onchainwager/internal/host"
)

type fakeRedis struct {
	channel  string
	messages [][]byte
	err      error
	closed   bool
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.messages = append(f.messages, message.([]byte))
	return redis.NewIntResult(1, f.err)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedis_PublishesJSON(t *testing.T) {
	fake := &fakeRedis{}
	p := newRedis(fake, "wager:blocks")

	block := NewBlockEvents(7, time.Unix(1_700_000_000, 0), []byte{0xab, 0xcd}, []TxEvents{{
		Index:  0,
		Type:   "wager/create_session",
		Events: []host.Event{host.NewEvent("session_created", host.NewAttribute("session_id", "1"))},
	}})
	require.NoError(t, p.Publish(context.Background(), block))
	require.Equal(t, "wager:blocks", fake.channel)
	require.Len(t, fake.messages, 1)

	var got BlockEvents
	require.NoError(t, json.Unmarshal(fake.messages[0], &got))
	require.Equal(t, int64(7), got.Height)
	require.Equal(t, "abcd", got.AppHash)
	require.Equal(t, "session_created", got.Txs[0].Events[0].Type)

	require.NoError(t, p.Close())
	require.True(t, fake.closed)
}

func TestRedis_PublishError(t *testing.T) {
	p := newRedis(&fakeRedis{err: errors.New("connection refused")}, "c")
	err := p.Publish(context.Background(), BlockEvents{Height: 3})
	require.ErrorContains(t, err, "publish block 3")
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	require.NoError(t, p.Publish(context.Background(), BlockEvents{}))
	require.NoError(t, p.Close())
}
