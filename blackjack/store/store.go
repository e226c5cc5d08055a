package store

import (
	"context"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"terminal-blackjack/blackjack/account"
)

//go:embed schema.sql
var schema embed.FS

// DB is the Postgres backend for player records and round history.
type DB struct{ *pgxpool.Pool }

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

func (db *DB) Load(ctx context.Context, name string) (account.Player, error) {
	var p account.Player
	err := db.QueryRow(ctx, `
		SELECT name, pin, balance
		  FROM players
		 WHERE name = $1
	`, name).Scan(&p.Name, &p.PIN, &p.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Player{}, account.ErrNotFound
		}
		return account.Player{}, err
	}
	return p, nil
}

// Save upserts the player record.
func (db *DB) Save(ctx context.Context, p account.Player) error {
	_, err := db.Exec(ctx, `
		INSERT INTO players(name, pin, balance)
		VALUES ($1,$2,$3)
		ON CONFLICT (name) DO UPDATE
		  SET pin = EXCLUDED.pin,
		      balance = EXCLUDED.balance,
		      updated_at = now()
	`, p.Name, p.PIN, p.Balance)
	return err
}

// Append records one settled round.
func (db *DB) Append(ctx context.Context, rec account.RoundRecord) error {
	_, err := db.Exec(ctx, `
		INSERT INTO rounds(id, player, result, bet, net, player_score, house_score, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.ID, rec.Player, rec.Result, rec.Bet, rec.Net, rec.PlayerScore, rec.HouseScore, rec.At)
	return err
}

// Tally is a player's lifetime record from the rounds table.
type Tally struct {
	Wins, Losses, Ties int
}

func (db *DB) PlayerTally(ctx context.Context, name string) (Tally, error) {
	var t Tally
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN result = 'Win' THEN 1 ELSE 0 END), 0)::int,
		       COALESCE(SUM(CASE WHEN result = 'Loss' THEN 1 ELSE 0 END), 0)::int,
		       COALESCE(SUM(CASE WHEN result = 'Tie' THEN 1 ELSE 0 END), 0)::int
		  FROM rounds
		 WHERE player = $1
	`, name).Scan(&t.Wins, &t.Losses, &t.Ties)
	return t, err
}
