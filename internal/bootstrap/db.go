package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DBOptions struct {
	DSN         string
	MaxConns    int32
	ConnTimeout time.Duration
	PingTimeout time.Duration
}

// OpenDB opens a pgx pool and verifies the connection. The pool is sized
// small; the tracker's queries are short and per-request.
func OpenDB(ctx context.Context, opt DBOptions) (*pgxpool.Pool, error) {
	if opt.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is not set")
	}
	if opt.MaxConns == 0 {
		opt.MaxConns = 8
	}
	if opt.ConnTimeout == 0 {
		opt.ConnTimeout = 5 * time.Second
	}
	if opt.PingTimeout == 0 {
		opt.PingTimeout = 2 * time.Second
	}

	cfg, err := pgxpool.ParseConfig(opt.DSN)
	if err != nil {
		return nil, fmt.Errorf("db config: %w", err)
	}
	cfg.MaxConns = opt.MaxConns

	cctx, cancel := context.WithTimeout(ctx, opt.ConnTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(cctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pctx, pcancel := context.WithTimeout(ctx, opt.PingTimeout)
	defer pcancel()

	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return pool, nil
}
