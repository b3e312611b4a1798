// Package stats persists run statistics. It is a collaborator outside the
// rule engine: battles report results here, nothing reads back into play.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS battle_results (
	id          BIGSERIAL PRIMARY KEY,
	battle_id   TEXT NOT NULL,
	stage       INT NOT NULL,
	winner      TEXT NOT NULL,
	captures    INT NOT NULL,
	promotions  INT NOT NULL,
	pieces_left INT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// BattleRecord is one finished battle.
type BattleRecord struct {
	BattleID   string
	Stage      int
	Winner     string
	Captures   int
	Promotions int
	PiecesLeft int
}

// Store writes battle results to Postgres through a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// New connects to the database and ensures the schema exists.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database dsn: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	logger.Info("stats store connected",
		zap.Int32("total_conns", pool.Stat().TotalConns()),
	)
	return &Store{pool: pool, log: logger}, nil
}

// RecordBattle inserts one finished battle.
func (s *Store) RecordBattle(ctx context.Context, rec BattleRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO battle_results (battle_id, stage, winner, captures, promotions, pieces_left)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.BattleID, rec.Stage, rec.Winner, rec.Captures, rec.Promotions, rec.PiecesLeft,
	)
	if err != nil {
		return fmt.Errorf("inserting battle result: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
