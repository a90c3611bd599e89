package loom

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	ref := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	t.Run("time passthrough", func(t *testing.T) {
		got, err := parseDate(ref)
		if err != nil {
			t.Fatalf("parseDate() error = %v", err)
		}
		if !got.Equal(ref) {
			t.Errorf("parseDate() = %v, want %v", got, ref)
		}
	})

	t.Run("time pointer", func(t *testing.T) {
		got, err := parseDate(&ref)
		if err != nil {
			t.Fatalf("parseDate() error = %v", err)
		}
		if !got.Equal(ref) {
			t.Errorf("parseDate() = %v, want %v", got, ref)
		}
	})

	t.Run("nil time pointer", func(t *testing.T) {
		if _, err := parseDate((*time.Time)(nil)); err == nil {
			t.Errorf("parseDate(nil pointer), want error")
		}
	})

	t.Run("unix seconds", func(t *testing.T) {
		got, err := parseDate(int64(1700000000))
		if err != nil {
			t.Fatalf("parseDate() error = %v", err)
		}
		if got.Unix() != 1700000000 {
			t.Errorf("parseDate().Unix() = %v, want 1700000000", got.Unix())
		}
	})

	t.Run("unix milliseconds", func(t *testing.T) {
		got, err := parseDate(int64(1700000000123))
		if err != nil {
			t.Fatalf("parseDate() error = %v", err)
		}
		if got.Unix() != 1700000000 {
			t.Errorf("parseDate().Unix() = %v, want 1700000000", got.Unix())
		}
		if got.Nanosecond() != 123000000 {
			t.Errorf("parseDate().Nanosecond() = %v, want 123000000", got.Nanosecond())
		}
	})

	t.Run("int and float timestamps", func(t *testing.T) {
		fromInt, err := parseDate(1700000000)
		if err != nil {
			t.Fatalf("parseDate(int) error = %v", err)
		}
		fromFloat, err := parseDate(float64(1700000000))
		if err != nil {
			t.Fatalf("parseDate(float64) error = %v", err)
		}
		if fromInt.Unix() != 1700000000 || fromFloat.Unix() != 1700000000 {
			t.Errorf("parseDate() unix = %v / %v, want 1700000000", fromInt.Unix(), fromFloat.Unix())
		}
	})

	stringTests := []struct {
		name  string
		value string
		year  int
		month time.Month
		day   int
	}{
		{"iso date", "2024-03-15", 2024, time.March, 15},
		{"rfc3339", "2024-03-15T10:30:00Z", 2024, time.March, 15},
		{"datetime without zone", "2024-03-15 10:30:00", 2024, time.March, 15},
		{"us slashes take precedence", "03/04/2024", 2024, time.March, 4},
		{"dotted european", "15.03.2024", 2024, time.March, 15},
		{"short month name", "Mar 15, 2024", 2024, time.March, 15},
		{"full month name", "March 15, 2024", 2024, time.March, 15},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.value)
			if err != nil {
				t.Fatalf("parseDate(%q) error = %v", tt.value, err)
			}
			if got.Year() != tt.year || got.Month() != tt.month || got.Day() != tt.day {
				t.Errorf("parseDate(%q) = %v, want %d-%d-%d", tt.value, got, tt.year, tt.month, tt.day)
			}
		})
	}

	t.Run("unparseable values", func(t *testing.T) {
		for _, value := range []interface{}{nil, "", "not a date", struct{}{}} {
			if _, err := parseDate(value); err == nil {
				t.Errorf("parseDate(%v), want error", value)
			}
		}
	})
}

func TestTranslateDateFormat(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"yyyy-MM-dd", "2006-01-02"},
		{"dd/MM/yyyy", "02/01/2006"},
		{"M/d/yy", "1/2/06"},
		{"MMMM d, yyyy", "January 2, 2006"},
		{"EEE, dd MMM yyyy HH:mm:ss", "Mon, 02 Jan 2006 15:04:05"},
		{"EEEE", "Monday"},
		{"hh:mm a", "03:04 PM"},
		{"H:mm", "15:04"},
		{"ss.SSS", "05.000"},
		{"yyyy-MM-ddTHH:mm:ss", "2006-01-02T15:04:05"},
		{"yyyy年MM月", "2006年01月"},
		{"", ""},
		// Layout text emitted for one token is never re-scanned, so the
		// "a" inside "January" stays intact.
		{"MMMM a", "January PM"},
	}

	for _, tt := range tests {
		if got := translateDateFormat(tt.pattern); got != tt.want {
			t.Errorf("translateDateFormat(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestFormatDateHelper(t *testing.T) {
	// 2024-03-15 is a Friday.
	ref := time.Date(2024, 3, 15, 14, 5, 0, 0, time.UTC)

	tests := []struct {
		name string
		args []interface{}
		want interface{}
	}{
		{"default pattern", []interface{}{ref}, "2024-03-15"},
		{"dotted pattern", []interface{}{ref, "dd.MM.yyyy"}, "15.03.2024"},
		{"month name", []interface{}{ref, "MMMM d, yyyy"}, "March 15, 2024"},
		{"twelve hour clock", []interface{}{ref, "hh:mm a"}, "02:05 PM"},
		{"german month", []interface{}{ref, "d. MMMM yyyy", "de-DE"}, "15. März 2024"},
		{"german underscore locale", []interface{}{ref, "d. MMMM yyyy", "de_DE"}, "15. März 2024"},
		{"french weekday", []interface{}{ref, "EEEE", "fr"}, "vendredi"},
		{"spanish full date", []interface{}{ref, "EEEE d MMMM", "es"}, "viernes 15 marzo"},
		{"italian short weekday", []interface{}{ref, "EEE", "it"}, "ven"},
		{"german short month", []interface{}{ref, "MMM", "de"}, "Mär"},
		{"english locale unchanged", []interface{}{ref, "MMMM", "en"}, "March"},
		{"unsupported locale unchanged", []interface{}{ref, "MMMM", "pt"}, "March"},
		{"string date input", []interface{}{"2024-03-15", "dd/MM/yyyy"}, "15/03/2024"},
		{"nil value", []interface{}{nil}, nil},
		{"empty pattern", []interface{}{ref, ""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := callHelper(t, "formatDate", tt.args...)
			if err != nil {
				t.Fatalf("formatDate(%v) error = %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("formatDate(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}

	if _, err := callHelper(t, "formatDate", "junk"); err == nil {
		t.Errorf("formatDate() with unparseable value, want error")
	}
}

func TestNowHelper(t *testing.T) {
	before := time.Now()
	got, err := callHelper(t, "now")
	if err != nil {
		t.Fatalf("now() error = %v", err)
	}
	after := time.Now()

	ts, ok := got.(time.Time)
	if !ok {
		t.Fatalf("now() = %T, want time.Time", got)
	}
	if ts.Before(before) || ts.After(after) {
		t.Errorf("now() = %v, want between %v and %v", ts, before, after)
	}
}

func TestRenderDateFormatting(t *testing.T) {
	data := TemplateData{
		"issued": time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	got := Render(RenderOptions{
		Template: `Issued {{ formatDate(issued, "dd/MM/yyyy") }}`,
		Data:     data,
	})
	if got != "Issued 15/03/2024" {
		t.Errorf("Render() = %q, want %q", got, "Issued 15/03/2024")
	}

	// An unparseable date degrades to an empty substitution.
	got = Render(RenderOptions{
		Template: `[{{ formatDate(issued, "yyyy") }}]`,
		Data:     TemplateData{"issued": "garbage"},
	})
	if got != "[]" {
		t.Errorf("Render() = %q, want []", got)
	}
}
