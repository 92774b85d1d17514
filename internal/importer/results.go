package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/coachdesk/swimmeet/internal/logging"
	"github.com/coachdesk/swimmeet/internal/metrics"
	"github.com/coachdesk/swimmeet/internal/swim"
	"golang.org/x/net/html"
)

// resultClockPattern matches a results time cell: a strict swim-clock payload
// followed by exactly one course marker character.
var resultClockPattern = regexp.MustCompile(`^[0-5][0-9]:[0-5][0-9]\.[0-9]{2}\S$`)

// Cell positions within a results data row.
const (
	resultCellTime  = 0
	resultCellEvent = 2

	resultRowCells = 3
)

// resultCell is one <td>: its flattened text, plus the text of the first
// bolded inline element when present. A bolded name marks a header row.
type resultCell struct {
	text string
	bold string
}

// resultRow is the ordered cells of one <tr>.
type resultRow []resultCell

// boldName returns the first bolded cell text in the row, or "".
func (r resultRow) boldName() string {
	for _, c := range r {
		if c.bold != "" {
			return c.bold
		}
	}
	return ""
}

// ResultsImporter walks the tables of a post-meet HTML report. A bolded name
// row selects the "current swimmer" via directory lookup; the plain rows that
// follow it describe that swimmer's timed performances.
type ResultsImporter struct {
	store Store
}

// NewResultsImporter creates a results importer on top of a store.
func NewResultsImporter(store Store) *ResultsImporter {
	return &ResultsImporter{store: store}
}

// Import consumes one results document. Accepted performances are persisted
// through the same duplicate-suppressed insert the entries pipeline uses; the
// report carries everything that was skipped and why.
func (imp *ResultsImporter) Import(ctx context.Context, r io.Reader) (*Report, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With("pipeline", pipelineResults)
	logger.Info("started importing meet results")

	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse results document: %w", err)
	}

	report := &Report{Pipeline: pipelineResults}
	touched := make(map[string]struct{})

	var current swim.Swimmer
	validSwimmer := false

	for i, row := range collectRows(doc) {
		line := i + 1

		if name := row.boldName(); name != "" {
			// Header row: resolve the swimmer and never treat it as data.
			// An unresolved name invalidates the current swimmer so the data
			// rows that follow are skipped until the next successful header.
			lookup := strings.TrimSpace(strings.SplitN(name, ",", 2)[0])
			sw, err := imp.store.FindSwimmerByName(ctx, lookup)
			if err != nil {
				logger.Warn("swimmer not found", "line", line, "name", name, "error", err)
				report.fail(line, fmt.Sprintf("swimmer %q not found", lookup))
				metrics.RecordRowSkipped(pipelineResults, "swimmer_lookup")
				validSwimmer = false
				continue
			}
			current = sw
			validSwimmer = true
			touched[sw.ID] = struct{}{}
			continue
		}

		if !validSwimmer {
			report.fail(line, "no resolved swimmer for row")
			metrics.RecordRowSkipped(pipelineResults, "no_swimmer")
			continue
		}

		st, ok := imp.parseDataRow(row, line, current, report, logger)
		if !ok {
			continue
		}

		inserted, err := imp.store.InsertTime(ctx, st)
		if err != nil {
			logger.Warn("failed inserting result", "line", line, "swimmer", current.ID, "error", err)
			report.fail(line, fmt.Sprintf("insert: %v", err))
			metrics.RecordRowSkipped(pipelineResults, "storage")
			continue
		}
		if inserted {
			report.Times++
		} else {
			report.Duplicates++
			metrics.RecordDuplicateSuppressed()
		}
		report.Rows++
		metrics.RecordRowProcessed(pipelineResults)
	}

	report.Swimmers = len(touched)
	duration := time.Since(start)
	report.DurationMs = duration.Milliseconds()

	metrics.RecordImportDuration(pipelineResults, duration)
	logger.Info("finished importing meet results",
		"rows", report.Rows,
		"swimmers", report.Swimmers,
		"times", report.Times,
		"skipped", report.Skipped,
		"duration_ms", report.DurationMs,
	)
	return report, nil
}

// parseDataRow validates one data row and builds the performance record.
// Cell 0 carries the clock value with its course marker, cell 2 the
// "<gender> <distance> <style-code>" event descriptor. The results tables
// carry no achieved-on date, so Date stays zero.
func (imp *ResultsImporter) parseDataRow(row resultRow, line int, current swim.Swimmer, report *Report, logger *slog.Logger) (swim.SwimmerTime, bool) {
	if len(row) < resultRowCells {
		report.fail(line, fmt.Sprintf("row has %d cells, expected %d", len(row), resultRowCells))
		metrics.RecordRowSkipped(pipelineResults, "short_row")
		return swim.SwimmerTime{}, false
	}

	raw := strings.TrimSpace(row[resultCellTime].text)
	if !resultClockPattern.MatchString(raw) {
		report.fail(line, fmt.Sprintf("unmatched time pattern %q", raw))
		metrics.RecordRowSkipped(pipelineResults, "time_pattern")
		return swim.SwimmerTime{}, false
	}

	millis, err := swim.ParseClock(swim.ClockPayload(raw))
	if err != nil {
		// Unreachable after the pattern match, but the codec owns the format.
		report.fail(line, err.Error())
		metrics.RecordRowSkipped(pipelineResults, "time")
		return swim.SwimmerTime{}, false
	}

	course := swim.CourseUnset
	switch raw[len(raw)-1] {
	case 'L':
		course = swim.CourseLong
	case 'S':
		course = swim.CourseShort
	}

	fields := strings.Fields(row[resultCellEvent].text)
	if len(fields) < 3 {
		report.fail(line, fmt.Sprintf("malformed event cell %q", row[resultCellEvent].text))
		metrics.RecordRowSkipped(pipelineResults, "event")
		return swim.SwimmerTime{}, false
	}

	distance, err := strconv.Atoi(fields[1])
	if err != nil {
		logger.Error("error parsing distance", "line", line, "swimmer", current.FirstName, "error", err)
		report.fail(line, fmt.Sprintf("distance %q: %v", fields[1], err))
		metrics.RecordRowSkipped(pipelineResults, "distance")
		return swim.SwimmerTime{}, false
	}

	style := swim.ParseStyle(fields[len(fields)-1])
	if style == swim.StyleUnknown {
		logger.Warn("unknown stroke code", "line", line, "event", row[resultCellEvent].text)
		report.fail(line, fmt.Sprintf("unknown stroke code in %q", row[resultCellEvent].text))
		metrics.RecordRowSkipped(pipelineResults, "style")
		return swim.SwimmerTime{}, false
	}

	return swim.SwimmerTime{
		SwimmerID: current.ID,
		Style:     style,
		Distance:  distance,
		Course:    course,
		Millis:    millis,
	}, true
}

// collectRows gathers every table row in document order. Rows are flattened
// to their <td> cells; nested tables are not expected in the source reports.
func collectRows(doc *html.Node) []resultRow {
	var rows []resultRow

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row resultRow
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "td" {
					row = append(row, resultCell{
						text: nodeText(c),
						bold: boldText(c),
					})
				}
			}
			if len(row) > 0 {
				rows = append(rows, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rows
}

// nodeText flattens the text content of a node.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// boldText returns the text of the first <b> descendant, or "".
func boldText(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "b" {
		return nodeText(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := boldText(c); t != "" {
			return t
		}
	}
	return ""
}
