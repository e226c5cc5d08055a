package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"terminal-blackjack/blackjack/account"
)

// Redis keeps each player as a hash at player:<name>, the round log as a list
// at history:<name> and result counts at stats:<name>.
type Redis struct {
	client *redis.Client
}

func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, err
	}
	return &Redis{client: c}, nil
}

func (r *Redis) Close() error { return r.client.Close() }

func playerKey(name string) string  { return "player:" + name }
func historyKey(name string) string { return "history:" + name }
func statsKey(name string) string   { return "stats:" + name }

func (r *Redis) Load(ctx context.Context, name string) (account.Player, error) {
	fields, err := r.client.HGetAll(ctx, playerKey(name)).Result()
	if err != nil {
		return account.Player{}, err
	}
	if len(fields) == 0 {
		return account.Player{}, account.ErrNotFound
	}
	bal, err := strconv.Atoi(fields["balance"])
	if err != nil {
		return account.Player{}, fmt.Errorf("player %s: balance %q: %w", name, fields["balance"], err)
	}
	return account.Player{Name: fields["name"], PIN: fields["pin"], Balance: bal}, nil
}

func (r *Redis) Save(ctx context.Context, p account.Player) error {
	return r.client.HSet(ctx, playerKey(p.Name),
		"name", p.Name,
		"pin", p.PIN,
		"balance", strconv.Itoa(p.Balance),
	).Err()
}

func (r *Redis) Append(ctx context.Context, rec account.RoundRecord) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, historyKey(rec.Player), FormatBlock(rec))
		pipe.HIncrBy(ctx, statsKey(rec.Player), strings.ToLower(rec.Result), 1)
		return nil
	})
	return err
}

func (r *Redis) PlayerTally(ctx context.Context, name string) (Tally, error) {
	fields, err := r.client.HGetAll(ctx, statsKey(name)).Result()
	if err != nil {
		return Tally{}, err
	}
	atoi := func(k string) int {
		n, _ := strconv.Atoi(fields[k])
		return n
	}
	return Tally{Wins: atoi("win"), Losses: atoi("loss"), Ties: atoi("tie")}, nil
}
