package core

import (
	"log/slog"
)

// Reporter folds row outcomes into a RunSummary.
// A Reporter belongs to exactly one run; counters never outlive it.
type Reporter struct {
	logger  *slog.Logger
	summary RunSummary
}

// NewReporter returns a Reporter that logs failures to logger.
// A nil logger uses slog.Default().
func NewReporter(logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{logger: logger}
}

// Record adds one outcome. Failures are logged immediately with the row index,
// at error level so no configured LOG_LEVEL filters them out.
func (r *Reporter) Record(o Outcome) {
	r.summary.Total++

	if o.OK() {
		r.summary.Migrated++
		r.logger.Debug("row migrated", "index", o.Index, "id", o.StoredID, "fields", o.Document.FieldCount())
		return
	}

	code := MapError(o.Err).Code
	r.summary.Skipped++
	r.summary.Failures = append(r.summary.Failures, Failure{
		Index:  o.Index,
		Reason: o.Err.Error(),
		Code:   code,
	})
	r.logger.Error("row skipped", "index", o.Index, "error", o.Err.Error(), "code", code)
}

// Summary returns a copy of the counters recorded so far.
func (r *Reporter) Summary() RunSummary {
	s := r.summary
	s.Failures = append([]Failure(nil), r.summary.Failures...)
	return s
}
