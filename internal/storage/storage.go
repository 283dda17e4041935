// Package storage owns the database handle abstractions. The importer only
// ever sees these narrow interfaces; pgx types stay behind the adapters so
// tests can substitute in-memory fakes.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the read/write surface shared by pooled connections and open
// transactions. Satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is one open transaction. Each imported file owns exactly one.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB hands out transactions. Each concurrent import task calls Begin on its
// own; the pool serializes nothing across tasks.
type DB interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
}

// Pool wraps *pgxpool.Pool as a DB.
type Pool struct {
	*pgxpool.Pool
}

// Begin opens a transaction on a pooled connection.
func (p *Pool) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

// Connect builds a pgx pool from a connection URL and verifies it with a
// ping before handing it back.
func Connect(ctx context.Context, url string, maxConns, minConns int) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	cfg.MaxConns = int32(maxConns)
	cfg.MinConns = int32(minConns)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Pool{Pool: pool}, nil
}
