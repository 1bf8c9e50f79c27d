// Package analysis orchestrates the statement pipeline:
// extract -> clean -> advise -> render, with persisted results.
package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/paisalens/paisalens/internal/domain/charts"
)

// Analysis is one processed statement and everything derived from it.
type Analysis struct {
	ID             uuid.UUID
	Filename       string
	PageCount      int
	KeptLines      int
	DroppedLines   int
	CleanedText    string
	AdviceMarkdown string
	ChartData      *charts.Payload // nil until the charts tab is used
	Model          string
	ReportFileID   *uuid.UUID
	CreatedAt      time.Time
}
