package progress

import (
	"time"

	"github.com/rs/zerolog"
)

// Stats counts what happened to the input of one run.
type Stats struct {
	Lines      int
	Valid      int
	Rejected   int
	Superseded int
	Survivors  int
	Carriers   int

	Writes        int
	WriteFailures int
	SinkFailures  int
}

// CarrierStats is the per-carrier breakdown.
type CarrierStats struct {
	Carrier    string
	Input      int
	Superseded int
	Survivors  int
}

// Log writes the run summary at info, or warn when anything was dropped or failed.
func Log(logger *zerolog.Logger, stats Stats, carriers []CarrierStats, elapsed time.Duration) {
	for _, c := range carriers {
		logger.Debug().
			Str("carrier", c.Carrier).
			Int("input", c.Input).
			Int("superseded", c.Superseded).
			Int("survivors", c.Survivors).
			Msg("Carrier reconciled")
	}

	ev := logger.Info()
	if stats.Rejected > 0 || stats.WriteFailures > 0 || stats.SinkFailures > 0 {
		ev = logger.Warn()
	}
	rate := 0.0
	if elapsed > 0 {
		rate = float64(stats.Lines) / elapsed.Seconds()
	}
	ev.Int("lines", stats.Lines).
		Int("valid", stats.Valid).
		Int("rejected", stats.Rejected).
		Int("superseded", stats.Superseded).
		Int("survivors", stats.Survivors).
		Int("carriers", stats.Carriers).
		Int("writes", stats.Writes).
		Int("write_failures", stats.WriteFailures).
		Int("sink_failures", stats.SinkFailures).
		Dur("elapsed", elapsed).
		Float64("lines_per_sec", rate).
		Msg("Run finished")
}
