// Package clickhouse exports reconciled carrier outputs to a ClickHouse table.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"github.com/benefits-incoming/internal/config"
	"github.com/benefits-incoming/internal/errors"
	"github.com/benefits-incoming/internal/model"
	"github.com/benefits-incoming/internal/sink"
)

// Sink deletes a carrier's previous rows, then inserts the new survivors.
type Sink struct {
	conn  driver.Conn
	db    string
	table string
	runID uuid.UUID
	now   func() time.Time
}

// Open connects and creates the schema.
func Open(ctx context.Context, cfg config.ClickHouseConfig, runID uuid.UUID) (*Sink, error) {
	conn, err := Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("clickhouse connect %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	if err := InitSchema(ctx, conn, cfg.Database, cfg.Table); err != nil {
		conn.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return &Sink{
		conn:  conn,
		db:    cfg.Database,
		table: cfg.Table,
		runID: runID,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Name implements sink.Sink.
func (s *Sink) Name() string { return config.SinkClickHouse }

// Write implements sink.Sink.
func (s *Sink) Write(ctx context.Context, carrier string, records []model.BenefitRecord) error {
	if err := s.conn.Exec(ctx, deleteCarrierSQL(s.db, s.table), carrier); err != nil {
		return errors.NewOutputUnavailableError(s.Name(), carrier, err)
	}
	if err := InsertBatch(ctx, s.conn, s.db, s.table, records, s.runID, s.now()); err != nil {
		return errors.NewOutputUnavailableError(s.Name(), carrier, err)
	}
	return nil
}

// Close closes the connection.
func (s *Sink) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

var _ sink.Sink = (*Sink)(nil)
