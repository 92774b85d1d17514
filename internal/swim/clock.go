package swim

// clock.go converts between swim-clock strings and millisecond counts.
//
// The wire format is "MM:SS.CC" (minutes, seconds, centiseconds). Source
// files append a single-character annotation after the numeric payload
// (course marker in results documents, qualification flag in entries files);
// callers strip it with ClockPayload before decoding.
//
// A malformed segment is a typed error, never a silent zero: a codec must
// not conflate "zero duration" with "unparseable input".

import (
	"fmt"
	"strconv"
)

// clockLen is the length of the numeric payload "MM:SS.CC".
const clockLen = 8

// ClockFormatError reports a clock string that does not decode.
type ClockFormatError struct {
	Text   string
	Reason string
}

func (e *ClockFormatError) Error() string {
	return fmt.Sprintf("invalid clock value %q: %s", e.Text, e.Reason)
}

// ClockPayload strips any trailing annotation from a raw time cell by
// truncating to the numeric payload. Shorter input is returned unchanged
// and left for ParseClock to reject.
func ClockPayload(s string) string {
	if len(s) > clockLen {
		return s[:clockLen]
	}
	return s
}

// ParseClock decodes "MM:SS.CC" into milliseconds.
// The empty string means "no time recorded" and decodes to 0.
func ParseClock(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if len(s) != clockLen || s[2] != ':' || s[5] != '.' {
		return 0, &ClockFormatError{Text: s, Reason: "want MM:SS.CC"}
	}

	minutes, err := strconv.Atoi(s[0:2])
	if err != nil {
		return 0, &ClockFormatError{Text: s, Reason: "minutes not numeric"}
	}
	seconds, err := strconv.Atoi(s[3:5])
	if err != nil {
		return 0, &ClockFormatError{Text: s, Reason: "seconds not numeric"}
	}
	centis, err := strconv.Atoi(s[6:8])
	if err != nil {
		return 0, &ClockFormatError{Text: s, Reason: "centiseconds not numeric"}
	}

	return minutes*60000 + seconds*1000 + centis*10, nil
}

// FormatClock renders milliseconds as "MM:SS.CC". Sub-centisecond precision
// is truncated.
func FormatClock(ms int) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	centis := (ms % 1000) / 10
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, centis)
}
