package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/coachdesk/swimmeet/internal/swim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultsDoc(rows ...string) *strings.Reader {
	return strings.NewReader(
		"<html><body><table><tbody>" + strings.Join(rows, "") + "</tbody></table></body></html>",
	)
}

func headerRow(name string) string {
	return "<tr><td><b>" + name + "</b></td><td></td><td></td></tr>"
}

func dataRow(timeCell, eventCell string) string {
	return "<tr><td>" + timeCell + "</td><td>1</td><td>" + eventCell + "</td></tr>"
}

func directoryWith(swimmers ...swim.Swimmer) *fakeStore {
	store := newFakeStore()
	for _, sw := range swimmers {
		store.swimmers[sw.ID] = sw
	}
	return store
}

func TestResultsImportHeaderThenData(t *testing.T) {
	store := directoryWith(swim.Swimmer{ID: "S1", FirstName: "John", LastName: "Doe", Gender: "M"})
	imp := NewResultsImporter(store)

	report, err := imp.Import(context.Background(), resultsDoc(
		headerRow("John Doe, 2008"),
		dataRow("01:23.45L", "M 100 Free"),
	))
	require.NoError(t, err)

	require.Len(t, store.times, 1)
	st := store.times[0]
	assert.Equal(t, "S1", st.SwimmerID)
	assert.Equal(t, swim.Freestyle, st.Style)
	assert.Equal(t, 100, st.Distance)
	assert.Equal(t, swim.CourseLong, st.Course)
	assert.Equal(t, 83450, st.Millis)
	assert.True(t, st.Date.IsZero(), "results rows carry no achieved-on date")

	assert.Equal(t, 1, report.Rows)
	assert.Equal(t, 1, report.Swimmers)
	assert.Equal(t, 1, report.Times)
	assert.Equal(t, 0, report.Skipped)
}

func TestResultsImportCourseMarkers(t *testing.T) {
	tests := []struct {
		name       string
		timeCell   string
		wantMillis int
		wantCourse swim.Course
		wantSkip   bool
	}{
		{
			name:       "long course marker",
			timeCell:   "01:23.45L",
			wantMillis: 83450,
			wantCourse: swim.CourseLong,
		},
		{
			name:       "short course marker",
			timeCell:   "00:59.99S",
			wantMillis: 59990,
			wantCourse: swim.CourseShort,
		},
		{
			name:       "unknown marker leaves course unset",
			timeCell:   "00:31.00Q",
			wantMillis: 31000,
			wantCourse: swim.CourseUnset,
		},
		{
			name:     "wrong digit width rejected",
			timeCell: "1:23.45L",
			wantSkip: true,
		},
		{
			name:     "missing marker rejected",
			timeCell: "01:23.45",
			wantSkip: true,
		},
		{
			name:     "seconds out of clock range rejected",
			timeCell: "01:73.45L",
			wantSkip: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := directoryWith(swim.Swimmer{ID: "S1", FirstName: "John", LastName: "Doe"})
			imp := NewResultsImporter(store)

			report, err := imp.Import(context.Background(), resultsDoc(
				headerRow("John Doe"),
				dataRow(tt.timeCell, "M 100 Free"),
			))
			require.NoError(t, err)

			if tt.wantSkip {
				assert.Empty(t, store.times)
				assert.Equal(t, 1, report.Skipped)
				return
			}
			require.Len(t, store.times, 1)
			assert.Equal(t, tt.wantMillis, store.times[0].Millis)
			assert.Equal(t, tt.wantCourse, store.times[0].Course)
		})
	}
}

func TestResultsImportDataBeforeHeaderSkipped(t *testing.T) {
	store := directoryWith(swim.Swimmer{ID: "S1", FirstName: "John", LastName: "Doe"})
	imp := NewResultsImporter(store)

	report, err := imp.Import(context.Background(), resultsDoc(
		dataRow("01:23.45L", "M 100 Free"),
		headerRow("John Doe"),
		dataRow("01:24.00S", "M 100 Free"),
	))
	require.NoError(t, err)

	// The row before any successful header is never accepted.
	require.Len(t, store.times, 1)
	assert.Equal(t, 84000, store.times[0].Millis)
	assert.Equal(t, 1, report.Rows)
	assert.Equal(t, 1, report.Skipped)
}

func TestResultsImportUnresolvedHeaderInvalidates(t *testing.T) {
	store := directoryWith(swim.Swimmer{ID: "S1", FirstName: "John", LastName: "Doe"})
	imp := NewResultsImporter(store)

	report, err := imp.Import(context.Background(), resultsDoc(
		headerRow("John Doe"),
		dataRow("01:23.45L", "M 100 Free"),
		headerRow("Jane Nowhere"),
		dataRow("01:10.00S", "F 100 Free"),
		headerRow("John Doe"),
		dataRow("01:11.00S", "M 200 Free"),
	))
	require.NoError(t, err)

	// Rows after the failed lookup are dropped until the next good header.
	require.Len(t, store.times, 2)
	assert.Equal(t, 83450, store.times[0].Millis)
	assert.Equal(t, 200, store.times[1].Distance)
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 2, report.Skipped) // failed lookup + orphaned data row
	assert.Equal(t, 1, report.Swimmers)
}

func TestResultsImportLookupKeyStopsAtComma(t *testing.T) {
	store := directoryWith(swim.Swimmer{ID: "S1", FirstName: "John", LastName: "Doe"})
	imp := NewResultsImporter(store)

	report, err := imp.Import(context.Background(), resultsDoc(
		headerRow("John Doe, JR Sharks 2008"),
		dataRow("00:30.00S", "M 50 Free"),
	))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Times)
}

func TestResultsImportBadDistance(t *testing.T) {
	store := directoryWith(swim.Swimmer{ID: "S1", FirstName: "John", LastName: "Doe"})
	imp := NewResultsImporter(store)

	report, err := imp.Import(context.Background(), resultsDoc(
		headerRow("John Doe"),
		dataRow("01:23.45L", "M x00 Free"),
	))
	require.NoError(t, err)

	assert.Empty(t, store.times)
	assert.Equal(t, 1, report.Skipped)
	assert.Contains(t, report.FirstError(), "distance")
}

func TestResultsImportDuplicateSuppressed(t *testing.T) {
	store := directoryWith(swim.Swimmer{ID: "S1", FirstName: "John", LastName: "Doe"})
	imp := NewResultsImporter(store)

	report, err := imp.Import(context.Background(), resultsDoc(
		headerRow("John Doe"),
		dataRow("01:23.45L", "M 100 Free"),
		dataRow("01:23.45L", "M 100 Free"),
	))
	require.NoError(t, err)

	assert.Len(t, store.times, 1)
	assert.Equal(t, 1, report.Times)
	assert.Equal(t, 1, report.Duplicates)
}

func TestResultsImportMultipleTables(t *testing.T) {
	store := directoryWith(
		swim.Swimmer{ID: "S1", FirstName: "John", LastName: "Doe"},
		swim.Swimmer{ID: "S2", FirstName: "Jane", LastName: "Roe"},
	)
	imp := NewResultsImporter(store)

	doc := "<html><body>" +
		"<table><tbody>" + headerRow("John Doe") + dataRow("01:23.45L", "M 100 Free") + "</tbody></table>" +
		"<table><tbody>" + headerRow("Jane Roe") + dataRow("00:59.99S", "F 100 Back") + "</tbody></table>" +
		"</body></html>"

	report, err := imp.Import(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, store.times, 2)
	assert.Equal(t, 2, report.Swimmers)
	assert.Equal(t, swim.Backstroke, store.times[1].Style)
}

func TestResultsImportUnparseableDocument(t *testing.T) {
	// html.Parse is forgiving; even truncated markup yields a document. The
	// importer just finds no rows to process.
	store := newFakeStore()
	imp := NewResultsImporter(store)

	report, err := imp.Import(context.Background(), strings.NewReader("<table><tr><td"))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Rows)
	assert.Empty(t, store.times)
}

// Exercised indirectly elsewhere, pinned here: the fake directory resolves
// deterministically when two swimmers share a name.
func TestResultsImportDuplicateNamesFirstMatchWins(t *testing.T) {
	store := directoryWith(
		swim.Swimmer{ID: "S1", FirstName: "John", LastName: "Doe", BirthDate: time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC)},
		swim.Swimmer{ID: "S2", FirstName: "John", LastName: "Doe", BirthDate: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)},
	)
	imp := NewResultsImporter(store)

	_, err := imp.Import(context.Background(), resultsDoc(
		headerRow("John Doe"),
		dataRow("00:30.00S", "M 50 Free"),
	))
	require.NoError(t, err)

	require.Len(t, store.times, 1)
	assert.Equal(t, "S1", store.times[0].SwimmerID)
}
