// Package postgres exports reconciled carrier outputs to a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benefits-incoming/internal/config"
	"github.com/benefits-incoming/internal/errors"
	"github.com/benefits-incoming/internal/model"
	"github.com/benefits-incoming/internal/sink"
)

// Sink replaces a carrier's rows in one transaction per Write.
type Sink struct {
	pool      *pgxpool.Pool
	table     string
	batchSize int
	runID     uuid.UUID
	now       func() time.Time
}

// Open connects, pings and creates the table.
func Open(ctx context.Context, cfg config.PostgresConfig, runID uuid.UUID) (*Sink, error) {
	pool, err := CreatePool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	if err := InitSchema(ctx, pool, cfg.Table); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	return &Sink{
		pool:      pool,
		table:     cfg.Table,
		batchSize: cfg.BatchSize,
		runID:     runID,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Name implements sink.Sink.
func (s *Sink) Name() string { return config.SinkPostgres }

// Write implements sink.Sink.
func (s *Sink) Write(ctx context.Context, carrier string, records []model.BenefitRecord) error {
	if err := s.write(ctx, carrier, records); err != nil {
		return errors.NewOutputUnavailableError(s.Name(), carrier, err)
	}
	return nil
}

func (s *Sink) write(ctx context.Context, carrier string, records []model.BenefitRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback(ctx)

	if err := replaceCarrier(ctx, tx, s.table, carrier, records, s.batchSize, s.runID.String(), s.now()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// execer is the part of pgx.Tx that replaceCarrier needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// replaceCarrier deletes the carrier's previous export and inserts records
// in batches of batchSize, numbering positions across batches.
func replaceCarrier(ctx context.Context, tx execer, table, carrier string, records []model.BenefitRecord, batchSize int, runID string, now time.Time) error {
	if _, err := tx.Exec(ctx, deleteCarrierSQL(table), carrier); err != nil {
		return err
	}
	offset := 0
	for _, batch := range sink.Batches(records, batchSize) {
		sql, args := buildInsert(table, batch, offset, runID, now)
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
		offset += len(batch)
	}
	return nil
}

// Close closes the pool.
func (s *Sink) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

var _ sink.Sink = (*Sink)(nil)
