package harness

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/harvester/executor"
	"github.com/kbukum/harvester/harvest"
	"github.com/kbukum/harvester/logger"
)

// NoDataMessage is reported when no task produced records.
const NoDataMessage = "no data collected"

// Summary is the end-of-run tally.
type Summary struct {
	RunID string
	// Attempted counts every task in the run, skipped ones included.
	Attempted int
	Succeeded int
	Failed    int
	TimedOut  int
	Skipped   int
	// Canceled counts tasks cut short by an interrupt; they are also
	// included in Skipped or Failed.
	Canceled int
	// WithData counts tasks that contributed at least one record.
	WithData int
	// EmptyHarvests counts stores that held the table but no rows.
	EmptyHarvests int
	Unreadable    int
	TotalRecords  int
	Columns       int
	// OutputPath is empty when nothing was exported.
	OutputPath  string
	Fallback    bool
	PrimaryErr  error
	PublishedTo string
	PublishErr  error
	Interrupted bool
	Duration    time.Duration
}

// Summarize tallies report.
func Summarize(report *Report, d time.Duration) *Summary {
	s := &Summary{RunID: report.RunID, Attempted: len(report.Results), Duration: d}
	for _, r := range report.Results {
		switch r.Outcome.Status {
		case executor.StatusSucceeded:
			s.Succeeded++
		case executor.StatusFailed:
			s.Failed++
		case executor.StatusTimedOut:
			s.TimedOut++
		case executor.StatusSkipped:
			s.Skipped++
		}
		if r.Outcome.Failure == executor.FailureCanceled {
			s.Canceled++
		}
		switch r.Harvest.Status {
		case harvest.StatusHarvested:
			s.WithData++
			s.TotalRecords += r.Harvest.Records()
		case harvest.StatusEmpty:
			s.EmptyHarvests++
		case harvest.StatusUnreadable, harvest.StatusMissingTable:
			s.Unreadable++
		}
	}
	if report.Aggregate != nil {
		s.Columns = len(report.Aggregate.Columns)
	}
	if e := report.Export; e != nil {
		s.OutputPath, s.Fallback, s.PrimaryErr = e.Path, e.Fallback, e.PrimaryErr
	}
	if report.Publish != nil {
		s.PublishedTo = report.Publish.URL
	}
	s.PublishErr = report.PublishErr
	return s
}

// Lines renders the summary for a terminal.
func (s *Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("run %s finished in %s", s.RunID, s.Duration.Round(time.Millisecond)),
		fmt.Sprintf("  attempted:      %d", s.Attempted),
		fmt.Sprintf("  succeeded:      %d", s.Succeeded),
		fmt.Sprintf("  failed:         %d", s.Failed),
		fmt.Sprintf("  timed out:      %d", s.TimedOut),
		fmt.Sprintf("  skipped:        %d", s.Skipped),
		fmt.Sprintf("  with data:      %d", s.WithData),
		fmt.Sprintf("  empty harvests: %d", s.EmptyHarvests),
		fmt.Sprintf("  total records:  %d", s.TotalRecords),
	}
	if s.Unreadable > 0 {
		lines = append(lines, fmt.Sprintf("  unreadable:     %d", s.Unreadable))
	}
	switch {
	case s.OutputPath == "":
		lines = append(lines, "  output:         "+NoDataMessage)
	case s.Fallback:
		lines = append(lines, fmt.Sprintf("  output:         %s (CSV fallback: %v)", s.OutputPath, s.PrimaryErr))
	default:
		lines = append(lines, "  output:         "+s.OutputPath)
	}
	if s.PublishedTo != "" {
		lines = append(lines, "  published:      "+s.PublishedTo)
	}
	if s.PublishErr != nil {
		lines = append(lines, fmt.Sprintf("  publish failed: %v", s.PublishErr))
	}
	if s.Interrupted {
		lines = append(lines, fmt.Sprintf("  interrupted:    %d tasks canceled", s.Canceled))
	}
	return lines
}

// String joins Lines.
func (s *Summary) String() string {
	return strings.Join(s.Lines(), "\n")
}

// WriteTo writes the summary followed by a newline.
func (s *Summary) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String()+"\n")
	return int64(n), err
}

// Fields returns the summary as log fields.
func (s *Summary) Fields() map[string]interface{} {
	fields := logger.MergeWithDuration(logger.Fields(
		"attempted", s.Attempted,
		"succeeded", s.Succeeded,
		"failed", s.Failed,
		"timed_out", s.TimedOut,
		"skipped", s.Skipped,
		"with_data", s.WithData,
		"empty_harvests", s.EmptyHarvests,
		logger.FieldRecords, s.TotalRecords,
		logger.FieldColumns, s.Columns,
	), s.Duration)
	if s.OutputPath != "" {
		fields[logger.FieldPath] = s.OutputPath
		fields["fallback"] = s.Fallback
	}
	if s.Interrupted {
		fields["interrupted"] = true
	}
	return fields
}
