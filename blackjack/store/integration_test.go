package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terminal-blackjack/blackjack/account"
)

// Backend tests run against real servers only when pointed at one.

func TestPostgresBackend(t *testing.T) {
	dsn := os.Getenv("BLACKJACK_TEST_DSN")
	if dsn == "" {
		t.Skip("BLACKJACK_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close(ctx)
	require.NoError(t, Migrate(ctx, db))

	name := "it-" + uuid.NewString()[:8]
	_, err = db.Load(ctx, name)
	assert.ErrorIs(t, err, account.ErrNotFound)

	require.NoError(t, db.Save(ctx, account.Player{Name: name, PIN: "1", Balance: 100}))
	require.NoError(t, db.Save(ctx, account.Player{Name: name, PIN: "1", Balance: 90}))
	p, err := db.Load(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, 90, p.Balance)

	for _, res := range []string{"Win", "Loss", "Loss"} {
		require.NoError(t, db.Append(ctx, account.RoundRecord{
			ID: uuid.NewString(), Player: name, Result: res, Bet: 10, At: time.Now(),
		}))
	}
	tally, err := db.PlayerTally(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, Tally{Wins: 1, Losses: 2}, tally)
}

func TestRedisBackend(t *testing.T) {
	url := os.Getenv("BLACKJACK_TEST_REDIS")
	if url == "" {
		t.Skip("BLACKJACK_TEST_REDIS not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r, err := OpenRedis(ctx, url)
	require.NoError(t, err)
	defer r.Close()

	name := "it-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		r.client.Del(context.Background(), playerKey(name), historyKey(name), statsKey(name))
	})

	_, err = r.Load(ctx, name)
	assert.ErrorIs(t, err, account.ErrNotFound)

	require.NoError(t, r.Save(ctx, account.Player{Name: name, PIN: "7", Balance: 40}))
	p, err := r.Load(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, account.Player{Name: name, PIN: "7", Balance: 40}, p)

	require.NoError(t, r.Append(ctx, account.RoundRecord{Player: name, Result: "Tie", At: time.Now()}))
	require.NoError(t, r.Append(ctx, account.RoundRecord{Player: name, Result: "Win", At: time.Now()}))
	tally, err := r.PlayerTally(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, Tally{Wins: 1, Ties: 1}, tally)

	n, err := r.client.LLen(ctx, historyKey(name)).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
