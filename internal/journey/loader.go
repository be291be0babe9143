package journey

import (
	"time"

	domain "journeygrid/domain/journey"
	"journeygrid/internal"
	"journeygrid/internal/csvparse"
	"journeygrid/internal/errors"
)

// Loader runs tokenize -> map -> extract for one source snapshot
type Loader struct {
	registry *domain.Registry
	logger   *internal.Logger
}

// NewLoader creates a loader for reg. A nil logger falls back to the default one.
func NewLoader(reg *domain.Registry, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loader{registry: reg, logger: logger.With("Loader")}
}

// Load parses CSV text into records and canonical axis lists
func (l *Loader) Load(text string) (*domain.LoadResult, error) {
	return l.LoadTable(domain.RawTable{
		Rows:    csvparse.Tokenize(text),
		Preview: csvparse.Preview(text),
	})
}

// LoadTable maps an already tokenized table. A table without data rows is
// reported as EMPTY_INPUT; a header lacking Stage or Stakeholder is not an error
// and is reported through LoadResult.MissingAxisColumns.
func (l *Loader) LoadTable(table domain.RawTable) (*domain.LoadResult, error) {
	start := time.Now()

	rows := make([][]string, 0, len(table.Rows))
	for _, r := range table.Rows {
		if !csvparse.IsBlankRow(r) {
			rows = append(rows, r)
		}
	}

	var headers []string
	if len(rows) > 0 {
		headers = TrimHeaders(rows[0])
	}
	if len(rows) < 2 {
		l.logger.Warn("no data rows under header (origin=%q, headers=%v)", table.Origin, headers)
		return nil, errors.EmptyInput(headers)
	}

	records := MapRecords(rows, l.registry)
	result := &domain.LoadResult{
		Records:         records,
		StageAxis:       AxisValues(records, domain.AxisStage),
		StakeholderAxis: AxisValues(records, domain.AxisStakeholder),
		Headers:         headers,
		Preview:         table.Preview,
	}

	index := NewHeaderIndex(headers)
	for _, axis := range []string{"stage", "stakeholder"} {
		spec, _ := l.registry.Lookup(axis)
		if _, ok := index.Column(spec.Header); !ok {
			result.MissingAxisColumns = append(result.MissingAxisColumns, spec.Header)
		}
	}
	if len(result.MissingAxisColumns) > 0 {
		l.logger.Warn("header has no %v column; axis lists will be empty", result.MissingAxisColumns)
	}

	l.logger.Info("loaded %d records (%d stages, %d stakeholders) from %d columns in %.2fms",
		len(records), len(result.StageAxis), len(result.StakeholderAxis), len(headers),
		float64(time.Since(start).Nanoseconds())/1e6)
	l.logger.Debug("headers detected: %v", headers)
	return result, nil
}

// Load is the package-level convenience for one-off loads with the default logger
func Load(text string, reg *domain.Registry) (*domain.LoadResult, error) {
	return NewLoader(reg, nil).Load(text)
}
