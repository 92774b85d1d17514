package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/coachdesk/swimmeet/internal/logging"
	"github.com/coachdesk/swimmeet/internal/metrics"
	"github.com/coachdesk/swimmeet/internal/swim"
)

// Column positions fixed by the meet software's entries export.
const (
	colSwimmerID = 0
	colFullName  = 4
	colGender    = 5
	colBirthDate = 7
	colEvent     = 9
	colShortTime = 12
	colShortDate = 13
	colLongTime  = 14
	colLongDate  = 15

	entryColumns = 16
)

// entryRow wraps a raw CSV record with named-field accessors so column
// positions and per-field conversions live in one place.
type entryRow []string

func (r entryRow) swimmerID() string { return strings.TrimSpace(r[colSwimmerID]) }

func (r entryRow) name() (first, last string) {
	return swim.SplitEntryName(r[colFullName])
}

func (r entryRow) gender() string { return strings.ToUpper(strings.TrimSpace(r[colGender])) }

func (r entryRow) birthDate(line int) (time.Time, error) {
	return swim.ParseMeetDate(strings.TrimSpace(r[colBirthDate]), line)
}

// event decodes the "<distance> <style-code>" descriptor.
func (r entryRow) event() (distance int, style swim.Style, err error) {
	fields := strings.Fields(r[colEvent])
	if len(fields) < 2 {
		return 0, swim.StyleUnknown, fmt.Errorf("malformed event descriptor %q", r[colEvent])
	}
	distance, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, swim.StyleUnknown, fmt.Errorf("event distance %q: %w", fields[0], err)
	}
	return distance, swim.ParseStyle(fields[len(fields)-1]), nil
}

// bestTime returns the raw time and date cells for one course slot.
func (r entryRow) bestTime(course swim.Course) (rawTime, rawDate string) {
	if course == swim.CourseLong {
		return strings.TrimSpace(r[colLongTime]), strings.TrimSpace(r[colLongDate])
	}
	return strings.TrimSpace(r[colShortTime]), strings.TrimSpace(r[colShortDate])
}

// EntriesImporter streams a meet entries file into swimmer and performance
// records and finishes by writing one load audit record.
type EntriesImporter struct {
	store Store
}

// NewEntriesImporter creates an entries importer on top of a store.
func NewEntriesImporter(store Store) *EntriesImporter {
	return &EntriesImporter{store: store}
}

// Import consumes one entries file row-by-row. Row processing is strictly
// sequential; the only hard failures are an unreadable header and the final
// audit insert. Everything else degrades to entries in the report.
func (imp *EntriesImporter) Import(ctx context.Context, r io.Reader) (*Report, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With("pipeline", pipelineEntries)
	logger.Info("started importing meet entries")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Header row is present by contract; an empty file has nothing to import.
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("entries file is empty")
		}
		return nil, fmt.Errorf("read entries header: %w", err)
	}

	report := &Report{Pipeline: pipelineEntries}
	touched := make(map[string]struct{})

	line := 1
	for {
		line++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Structural CSV error: skip the row, do not count it as an entry.
			logger.Error("malformed entries row", "line", line, "error", err)
			report.fail(line, fmt.Sprintf("malformed row: %v", err))
			metrics.RecordRowSkipped(pipelineEntries, "malformed_row")
			continue
		}
		if len(row) < entryColumns {
			logger.Error("short entries row", "line", line, "columns", len(row))
			report.fail(line, fmt.Sprintf("row has %d columns, expected %d", len(row), entryColumns))
			metrics.RecordRowSkipped(pipelineEntries, "short_row")
			continue
		}

		er := entryRow(row)

		// Identity first. A failure here (bad birth date, storage error) skips
		// the swimmer insert only; the row's times are still attempted.
		if id, err := imp.importSwimmer(ctx, er, line); err != nil {
			logger.Warn("failed importing swimmer", "line", line, "error", err)
			report.fail(line, fmt.Sprintf("swimmer: %v", err))
			metrics.RecordRowSkipped(pipelineEntries, "swimmer")
		} else {
			touched[id] = struct{}{}
			metrics.RecordSwimmerTouched()
		}

		imp.importTimes(ctx, er, line, report, logger)

		report.Rows++
		report.Entries++
		metrics.RecordRowProcessed(pipelineEntries)
	}

	report.Swimmers = len(touched)
	duration := time.Since(start)
	report.DurationMs = duration.Milliseconds()

	ids := make([]string, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	loadID, err := imp.store.InsertEntriesLoad(ctx, len(touched), report.Entries, duration, ids)
	if err != nil {
		return report, fmt.Errorf("record entries load: %w", err)
	}
	report.LoadID = loadID

	metrics.RecordImportDuration(pipelineEntries, duration)
	logger.Info("finished importing meet entries",
		"load_id", loadID,
		"entries", report.Entries,
		"swimmers", report.Swimmers,
		"times", report.Times,
		"skipped", report.Skipped,
		"duration_ms", report.DurationMs,
	)
	return report, nil
}

// importSwimmer parses the identity columns and issues the idempotent upsert.
func (imp *EntriesImporter) importSwimmer(ctx context.Context, r entryRow, line int) (string, error) {
	birth, err := r.birthDate(line)
	if err != nil {
		return "", err
	}
	first, last := r.name()
	return imp.store.UpsertSwimmer(ctx, swim.Swimmer{
		ID:        r.swimmerID(),
		FirstName: first,
		LastName:  last,
		Gender:    r.gender(),
		BirthDate: birth,
	})
}

// importTimes imports the short- and long-course best-time slots of one row.
// Each slot fails independently: a bad date or clock value skips that slot
// only, and storage errors are row-recoverable by the idempotency guarantee.
func (imp *EntriesImporter) importTimes(ctx context.Context, r entryRow, line int, report *Report, logger *slog.Logger) {
	distance, style, err := r.event()
	if err != nil {
		logger.Warn("failed decoding event", "line", line, "error", err)
		report.fail(line, err.Error())
		metrics.RecordRowSkipped(pipelineEntries, "event")
		return
	}
	if style == swim.StyleUnknown {
		logger.Warn("unknown stroke code", "line", line, "event", r[colEvent])
		report.fail(line, fmt.Sprintf("unknown stroke code in event %q", r[colEvent]))
		metrics.RecordRowSkipped(pipelineEntries, "style")
		return
	}

	for _, course := range []swim.Course{swim.CourseShort, swim.CourseLong} {
		rawTime, rawDate := r.bestTime(course)
		if rawTime == "" {
			continue
		}

		date, err := swim.ParseMeetDate(rawDate, line)
		if err != nil {
			logger.Warn("failed decoding best time date", "line", line, "course", course, "error", err)
			report.fail(line, fmt.Sprintf("%s date: %v", course, err))
			metrics.RecordRowSkipped(pipelineEntries, "time_date")
			continue
		}

		millis, err := swim.ParseClock(swim.ClockPayload(rawTime))
		if err != nil {
			logger.Warn("failed decoding best time", "line", line, "course", course, "error", err)
			report.fail(line, fmt.Sprintf("%s time: %v", course, err))
			metrics.RecordRowSkipped(pipelineEntries, "time")
			continue
		}

		inserted, err := imp.store.InsertTime(ctx, swim.SwimmerTime{
			SwimmerID: r.swimmerID(),
			Style:     style,
			Distance:  distance,
			Course:    course,
			Millis:    millis,
			Date:      date,
		})
		if err != nil {
			logger.Warn("failed inserting best time", "line", line, "course", course, "error", err)
			report.fail(line, fmt.Sprintf("%s insert: %v", course, err))
			metrics.RecordRowSkipped(pipelineEntries, "storage")
			continue
		}
		if inserted {
			report.Times++
		} else {
			report.Duplicates++
			metrics.RecordDuplicateSuppressed()
		}
	}
}
