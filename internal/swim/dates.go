package swim

import (
	"fmt"
	"time"
)

// meetDateLayout is the fixed date format used by both entries columns:
// 3-letter month, zero-padded day, 2-digit year ("Jan-02-00").
const meetDateLayout = "Jan-02-06"

// DateFormatError reports a date cell that does not match the meet format.
// Line is the 1-based source row, carried for log correlation. Callers must
// treat it as row-fatal (skip the row or slot), never batch-fatal.
type DateFormatError struct {
	Text string
	Line int
	Err  error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("line %d: invalid date %q: %v", e.Line, e.Text, e.Err)
}

func (e *DateFormatError) Unwrap() error { return e.Err }

// ParseMeetDate parses a "Mon-DD-YY" date cell.
func ParseMeetDate(text string, line int) (time.Time, error) {
	t, err := time.Parse(meetDateLayout, text)
	if err != nil {
		return time.Time{}, &DateFormatError{Text: text, Line: line, Err: err}
	}
	return t, nil
}
