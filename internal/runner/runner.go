// Package runner drives one reconciliation run: read, marshal, reconcile,
// then hand every carrier to every sink.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/benefits-incoming/internal/clickhouse"
	"github.com/benefits-incoming/internal/config"
	"github.com/benefits-incoming/internal/logging"
	"github.com/benefits-incoming/internal/model"
	"github.com/benefits-incoming/internal/parser"
	"github.com/benefits-incoming/internal/postgres"
	"github.com/benefits-incoming/internal/progress"
	"github.com/benefits-incoming/internal/reconcile"
	"github.com/benefits-incoming/internal/sink"
	"github.com/benefits-incoming/internal/source"
)

// Report is the outcome of a run. Every failure in it was handled locally.
type Report struct {
	RunID      uuid.UUID
	Input      string
	InputErr   error
	Rejections []model.Rejection
	Results    []reconcile.Result
	Failures   []error
	Stats      progress.Stats
	Elapsed    time.Duration
}

// OpenSinks opens the sinks named in cfg. A sink that cannot be opened is
// reported in failures and left out; the rest still run.
func OpenSinks(ctx context.Context, cfg *config.Config, runID uuid.UUID) (sinks []sink.Sink, failures []error) {
	log := logging.FromContext(ctx)
	for _, name := range cfg.Sinks {
		var (
			s   sink.Sink
			err error
		)
		switch name {
		case config.SinkFile:
			s = sink.NewFile(cfg.OutDir)
		case config.SinkPostgres:
			s, err = openPostgres(ctx, cfg.Postgres, runID)
		case config.SinkClickHouse:
			s, err = openClickHouse(ctx, cfg.ClickHouse, runID)
		}
		if err != nil {
			log.Error().Err(err).Str("sink", name).Msg("Sink unavailable, skipping")
			failures = append(failures, err)
			continue
		}
		if s != nil {
			sinks = append(sinks, s)
		}
	}
	return sinks, failures
}

// openPostgres and openClickHouse keep a typed nil out of the sink.Sink interface.
func openPostgres(ctx context.Context, cfg config.PostgresConfig, runID uuid.UUID) (sink.Sink, error) {
	s, err := postgres.Open(ctx, cfg, runID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openClickHouse(ctx context.Context, cfg config.ClickHouseConfig, runID uuid.UUID) (sink.Sink, error) {
	s, err := clickhouse.Open(ctx, cfg, runID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CloseSinks closes every sink, logging close errors.
func CloseSinks(ctx context.Context, sinks []sink.Sink) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			logging.FromContext(ctx).Error().Err(err).Str("sink", s.Name()).Msg("Closing sink")
		}
	}
}

// Runner holds the sinks of one run.
type Runner struct {
	RunID uuid.UUID
	Sinks []sink.Sink
	// SinkFailures are the sinks OpenSinks could not open; they are carried into the Report.
	SinkFailures []error
}

// Run reconciles the file at input and writes each carrier to every sink.
// It never fails as a whole: an unreadable input yields an empty run and a
// failed write skips only that (sink, carrier) pair.
func (r *Runner) Run(ctx context.Context, input string) *Report {
	start := time.Now()
	log := logging.FromContext(ctx).With().Str("run_id", r.RunID.String()).Logger()
	report := &Report{RunID: r.RunID, Input: input}
	report.Failures = append(report.Failures, r.SinkFailures...)

	lines, err := source.ReadLines(input)
	if err != nil {
		log.Error().Err(err).Str("input", input).Msg("Input unavailable, continuing with no records")
		report.InputErr = err
	}
	log.Debug().Str("input", input).Int("lines", len(lines)).Msg("Input read")

	records, rejections := parser.ParseLines(lines)
	for _, rej := range rejections {
		log.Warn().Int("line", rej.Line).Str("row", rej.Row).Err(rej.Err).Msg("Bad record, skipping")
	}
	report.Rejections = rejections

	report.Results = reconcile.Reconcile(records)
	carrierStats := make([]progress.CarrierStats, 0, len(report.Results))
	stats := progress.Stats{
		Lines:        len(lines),
		Valid:        len(records),
		Rejected:     len(rejections),
		Carriers:     len(report.Results),
		SinkFailures: len(r.SinkFailures),
	}

	for _, res := range report.Results {
		stats.Superseded += res.Superseded
		stats.Survivors += len(res.Records)
		carrierStats = append(carrierStats, progress.CarrierStats{
			Carrier:    res.Carrier,
			Input:      res.Input,
			Superseded: res.Superseded,
			Survivors:  len(res.Records),
		})
		for _, s := range r.Sinks {
			if err := s.Write(ctx, res.Carrier, res.Records); err != nil {
				log.Error().Err(err).Str("sink", s.Name()).Str("carrier", res.Carrier).Msg("Carrier output skipped")
				report.Failures = append(report.Failures, err)
				stats.WriteFailures++
				continue
			}
			stats.Writes++
			log.Debug().Str("sink", s.Name()).Str("carrier", res.Carrier).Int("records", len(res.Records)).Msg("Carrier written")
		}
	}

	report.Stats = stats
	report.Elapsed = time.Since(start)
	progress.Log(&log, stats, carrierStats, report.Elapsed)
	return report
}
