// Package swim defines the canonical record model produced by the meet
// import pipeline and the codecs that normalize source encodings into it.
// This package has no storage or HTTP dependencies and can be used by any
// importer frontend.
package swim

import (
	"strings"
	"time"
)

// Style is the canonical stroke style enumeration.
type Style string

const (
	Freestyle    Style = "FREESTYLE"
	Backstroke   Style = "BACKSTROKE"
	Breaststroke Style = "BREASTSTROKE"
	Butterfly    Style = "BUTTERFLY"
	Medley       Style = "MEDLEY"

	// StyleUnknown is returned for any stroke code outside the known table.
	// It is a data-quality signal: importers must not persist it as a style.
	StyleUnknown Style = "UNKNOWN"
)

// Course is the pool length classification for a timed performance.
type Course string

const (
	CourseShort Course = "SHORT"
	CourseLong  Course = "LONG"

	// CourseUnset marks a performance whose source carried no recognizable
	// course marker.
	CourseUnset Course = ""
)

// Swimmer is the identity record keyed by the origin system's stable id.
type Swimmer struct {
	ID        string
	FirstName string
	LastName  string
	Gender    string
	BirthDate time.Time
}

// SwimmerTime is one timed performance. Millis is the official time in
// milliseconds. A zero Date means the source carried no achieved-on date
// (results documents do not include one).
type SwimmerTime struct {
	SwimmerID string
	Style     Style
	Distance  int
	Course    Course
	Millis    int
	Date      time.Time
}

// SplitEntryName splits a roster full name ("Last First") into components.
// The first token is the last name and the final token is the first name.
// Multi-word surnames are mis-split by this rule; the policy is kept in one
// place so a future fix is localized.
func SplitEntryName(full string) (first, last string) {
	tokens := strings.Fields(full)
	if len(tokens) == 0 {
		return "", ""
	}
	return tokens[len(tokens)-1], tokens[0]
}

// SplitLookupName splits a results-header lookup name ("First Last") into
// components for an exact directory match. A missing last name yields "".
func SplitLookupName(full string) (first, last string) {
	tokens := strings.Fields(full)
	if len(tokens) == 0 {
		return "", ""
	}
	first = tokens[0]
	if len(tokens) > 1 {
		last = tokens[1]
	}
	return first, last
}
