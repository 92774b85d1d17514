package swim

import (
	"errors"
	"testing"
	"time"
)

func TestParseMeetDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "roster birth date",
			input: "Jan-02-00",
			want:  time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "best time date",
			input: "Mar-01-24",
			want:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "december",
			input: "Dec-31-99",
			want:  time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "full month name",
			input:   "March-01-24",
			wantErr: true,
		},
		{
			name:    "four digit year",
			input:   "Mar-01-2024",
			wantErr: true,
		},
		{
			name:    "numeric month",
			input:   "03-01-24",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMeetDate(tt.input, 7)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMeetDate(%q) = %v, want error", tt.input, got)
				}
				var derr *DateFormatError
				if !errors.As(err, &derr) {
					t.Fatalf("ParseMeetDate(%q) error = %T, want *DateFormatError", tt.input, err)
				}
				if derr.Line != 7 || derr.Text != tt.input {
					t.Errorf("DateFormatError = %+v, want line 7 text %q", derr, tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMeetDate(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseMeetDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitEntryName(t *testing.T) {
	tests := []struct {
		full      string
		wantFirst string
		wantLast  string
	}{
		{"Doe John", "John", "Doe"},
		{"Doe  John", "John", "Doe"},
		{"Doe", "Doe", "Doe"},
		{"", "", ""},
		// Known limitation: multi-word surnames mis-split.
		{"van Dam John", "John", "van"},
	}

	for _, tt := range tests {
		first, last := SplitEntryName(tt.full)
		if first != tt.wantFirst || last != tt.wantLast {
			t.Errorf("SplitEntryName(%q) = (%q, %q), want (%q, %q)",
				tt.full, first, last, tt.wantFirst, tt.wantLast)
		}
	}
}

func TestSplitLookupName(t *testing.T) {
	tests := []struct {
		full      string
		wantFirst string
		wantLast  string
	}{
		{"John Doe", "John", "Doe"},
		{"John", "John", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		first, last := SplitLookupName(tt.full)
		if first != tt.wantFirst || last != tt.wantLast {
			t.Errorf("SplitLookupName(%q) = (%q, %q), want (%q, %q)",
				tt.full, first, last, tt.wantFirst, tt.wantLast)
		}
	}
}
