package transcript

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"empty", "", ErrUnavailable},
		{"whitespace only", "   \n ", ErrUnavailable},
		{"too short", "0123456789", ErrTooShort},
		{"long enough", strings.Repeat("[00:00] hello world. ", 5), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.text)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHasInlineTimestamps(t *testing.T) {
	if !HasInlineTimestamps("[00:00] Hello world. [01:30] Goodbye.") {
		t.Error("expected inline timestamps to be detected")
	}
	if !HasInlineTimestamps("[1:02:03] deep into the video") {
		t.Error("expected HH:MM:SS timestamps to be detected")
	}
	if HasInlineTimestamps("no annotations here") {
		t.Error("did not expect timestamps in plain text")
	}
}

func TestRender(t *testing.T) {
	segments := []Segment{
		{Start: 0, Text: "Hello world."},
		{Start: 90, Text: " Goodbye. "},
		{Start: 120, Text: ""},
	}

	got := Render(segments)
	want := "[00:00] Hello world. [01:30] Goodbye."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{90, "01:30"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3723, "1:02:03"},
		{-5, "00:00"},
	}

	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
