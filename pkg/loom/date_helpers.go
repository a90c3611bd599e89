package loom

import (
	"fmt"
	"strings"
	"time"
)

// Common date format patterns tried when parsing date strings
var commonDateFormats = []string{
	// ISO and RFC formats
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",

	// Common formats
	"01/02/2006",
	"01/02/2006 15:04:05",
	"02/01/2006", // European style
	"2006/01/02",
	"2.1.2006",
	"02.01.2006",
	"2006.01.02",

	// Other formats
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, 02 Jan 2006",
	"Mon, 02 Jan 2006 15:04:05",
	"Monday, 02 January 2006",
}

// parseDate attempts to parse a date from various input types
func parseDate(value interface{}) (time.Time, error) {
	if value == nil {
		return time.Time{}, fmt.Errorf("cannot parse nil as date")
	}

	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("cannot parse nil time pointer")
		}
		return *v, nil
	case int64:
		// Unix timestamp; large values are taken as milliseconds
		if v > 1e10 {
			return time.Unix(v/1000, (v%1000)*1e6), nil
		}
		return time.Unix(v, 0), nil
	case int:
		return parseDate(int64(v))
	case float64:
		return parseDate(int64(v))
	case string:
		if v == "" {
			return time.Time{}, fmt.Errorf("cannot parse empty string as date")
		}
		for _, format := range commonDateFormats {
			if parsed, err := time.Parse(format, v); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("could not parse date string: %s", v)
	default:
		str := fmt.Sprintf("%v", v)
		return parseDate(str)
	}
}

// dateLayoutTokens maps dd/MM/yyyy-style pattern tokens to Go time layout
// elements, longest token first within each letter family so "yyyy" wins
// over "yy".
var dateLayoutTokens = []struct {
	token  string
	layout string
}{
	{"yyyy", "2006"}, {"yy", "06"},
	{"MMMM", "January"}, {"MMM", "Jan"}, {"MM", "01"}, {"M", "1"},
	{"dd", "02"}, {"d", "2"},
	{"EEEE", "Monday"}, {"EEE", "Mon"}, {"E", "Mon"},
	{"HH", "15"}, {"H", "15"},
	{"hh", "03"}, {"h", "3"},
	{"mm", "04"}, {"m", "4"},
	{"SSS", "000"},
	{"ss", "05"}, {"s", "5"},
	{"a", "PM"},
	{"XXX", "Z07:00"}, {"XX", "Z0700"}, {"X", "Z07"},
	{"zzz", "MST"}, {"Z", "Z0700"},
}

// translateDateFormat converts dd/MM/yyyy-style date patterns to Go time
// layouts. A single left-to-right scan keeps layout text produced for one
// token (such as "January") out of reach of the tokens after it. Not
// exhaustive, but covers the common tokens.
func translateDateFormat(pattern string) string {
	var layout strings.Builder
	for i := 0; i < len(pattern); {
		matched := false
		for _, entry := range dateLayoutTokens {
			if strings.HasPrefix(pattern[i:], entry.token) {
				layout.WriteString(entry.layout)
				i += len(entry.token)
				matched = true
				break
			}
		}
		if !matched {
			layout.WriteByte(pattern[i])
			i++
		}
	}
	return layout.String()
}

// formatDateWithLocale formats a date with locale support
func formatDateWithLocale(t time.Time, pattern string, locale string) string {
	result := t.Format(translateDateFormat(pattern))
	if locale != "" && locale != "en" {
		result = applyLocaleTranslations(result, t, locale)
	}
	return result
}

// applyLocaleTranslations translates month and weekday names in formatted dates
func applyLocaleTranslations(formatted string, t time.Time, locale string) string {
	// Extract language from locale (e.g., "de-DE" -> "de")
	lang := locale
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		lang = locale[:idx]
	}

	translations := getDateTranslations(lang)
	if translations == nil {
		return formatted
	}

	monthName := t.Format("January")
	if translated, ok := translations.months[monthName]; ok {
		formatted = strings.ReplaceAll(formatted, monthName, translated)
	}

	monthShort := t.Format("Jan")
	if translated, ok := translations.monthsShort[monthShort]; ok {
		formatted = strings.ReplaceAll(formatted, monthShort, translated)
	}

	weekdayName := t.Format("Monday")
	if translated, ok := translations.weekdays[weekdayName]; ok {
		formatted = strings.ReplaceAll(formatted, weekdayName, translated)
	}

	weekdayShort := t.Format("Mon")
	if translated, ok := translations.weekdaysShort[weekdayShort]; ok {
		formatted = strings.ReplaceAll(formatted, weekdayShort, translated)
	}

	return formatted
}

type dateTranslations struct {
	months        map[string]string
	monthsShort   map[string]string
	weekdays      map[string]string
	weekdaysShort map[string]string
}

func getDateTranslations(lang string) *dateTranslations {
	switch lang {
	case "de": // German
		return &dateTranslations{
			months: map[string]string{
				"January": "Januar", "February": "Februar", "March": "März",
				"April": "April", "May": "Mai", "June": "Juni",
				"July": "Juli", "August": "August", "September": "September",
				"October": "Oktober", "November": "November", "December": "Dezember",
			},
			monthsShort: map[string]string{
				"Jan": "Jan", "Feb": "Feb", "Mar": "Mär",
				"Apr": "Apr", "May": "Mai", "Jun": "Jun",
				"Jul": "Jul", "Aug": "Aug", "Sep": "Sep",
				"Oct": "Okt", "Nov": "Nov", "Dec": "Dez",
			},
			weekdays: map[string]string{
				"Monday": "Montag", "Tuesday": "Dienstag", "Wednesday": "Mittwoch",
				"Thursday": "Donnerstag", "Friday": "Freitag",
				"Saturday": "Samstag", "Sunday": "Sonntag",
			},
			weekdaysShort: map[string]string{
				"Mon": "Mo", "Tue": "Di", "Wed": "Mi",
				"Thu": "Do", "Fri": "Fr", "Sat": "Sa", "Sun": "So",
			},
		}

	case "fr": // French
		return &dateTranslations{
			months: map[string]string{
				"January": "janvier", "February": "février", "March": "mars",
				"April": "avril", "May": "mai", "June": "juin",
				"July": "juillet", "August": "août", "September": "septembre",
				"October": "octobre", "November": "novembre", "December": "décembre",
			},
			monthsShort: map[string]string{
				"Jan": "jan", "Feb": "fév", "Mar": "mar",
				"Apr": "avr", "May": "mai", "Jun": "juin",
				"Jul": "juil", "Aug": "août", "Sep": "sep",
				"Oct": "oct", "Nov": "nov", "Dec": "déc",
			},
			weekdays: map[string]string{
				"Monday": "lundi", "Tuesday": "mardi", "Wednesday": "mercredi",
				"Thursday": "jeudi", "Friday": "vendredi",
				"Saturday": "samedi", "Sunday": "dimanche",
			},
			weekdaysShort: map[string]string{
				"Mon": "lun", "Tue": "mar", "Wed": "mer",
				"Thu": "jeu", "Fri": "ven", "Sat": "sam", "Sun": "dim",
			},
		}

	case "es": // Spanish
		return &dateTranslations{
			months: map[string]string{
				"January": "enero", "February": "febrero", "March": "marzo",
				"April": "abril", "May": "mayo", "June": "junio",
				"July": "julio", "August": "agosto", "September": "septiembre",
				"October": "octubre", "November": "noviembre", "December": "diciembre",
			},
			monthsShort: map[string]string{
				"Jan": "ene", "Feb": "feb", "Mar": "mar",
				"Apr": "abr", "May": "may", "Jun": "jun",
				"Jul": "jul", "Aug": "ago", "Sep": "sep",
				"Oct": "oct", "Nov": "nov", "Dec": "dic",
			},
			weekdays: map[string]string{
				"Monday": "lunes", "Tuesday": "martes", "Wednesday": "miércoles",
				"Thursday": "jueves", "Friday": "viernes",
				"Saturday": "sábado", "Sunday": "domingo",
			},
			weekdaysShort: map[string]string{
				"Mon": "lun", "Tue": "mar", "Wed": "mié",
				"Thu": "jue", "Fri": "vie", "Sat": "sáb", "Sun": "dom",
			},
		}

	case "it": // Italian
		return &dateTranslations{
			months: map[string]string{
				"January": "gennaio", "February": "febbraio", "March": "marzo",
				"April": "aprile", "May": "maggio", "June": "giugno",
				"July": "luglio", "August": "agosto", "September": "settembre",
				"October": "ottobre", "November": "novembre", "December": "dicembre",
			},
			monthsShort: map[string]string{
				"Jan": "gen", "Feb": "feb", "Mar": "mar",
				"Apr": "apr", "May": "mag", "Jun": "giu",
				"Jul": "lug", "Aug": "ago", "Sep": "set",
				"Oct": "ott", "Nov": "nov", "Dec": "dic",
			},
			weekdays: map[string]string{
				"Monday": "lunedì", "Tuesday": "martedì", "Wednesday": "mercoledì",
				"Thursday": "giovedì", "Friday": "venerdì",
				"Saturday": "sabato", "Sunday": "domenica",
			},
			weekdaysShort: map[string]string{
				"Mon": "lun", "Tue": "mar", "Wed": "mer",
				"Thu": "gio", "Fri": "ven", "Sat": "sab", "Sun": "dom",
			},
		}

	default:
		return nil
	}
}

// registerDateHelpers registers the date helpers.
func registerDateHelpers(registry *DefaultHelperRegistry) {
	// now() helper - returns the current time
	nowHelper := NewSimpleHelper("now", 0, 0, func(args ...interface{}) (interface{}, error) {
		return time.Now(), nil
	})
	registry.Register(nowHelper)

	// formatDate() helper - formats a date value with a pattern and locale
	formatDateHelper := NewSimpleHelper("formatDate", 1, 3, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}

		pattern := "yyyy-MM-dd"
		if len(args) >= 2 && args[1] != nil {
			pattern = FormatValue(args[1])
		}
		if pattern == "" {
			return nil, nil
		}

		locale := ""
		if len(args) == 3 && args[2] != nil {
			locale = FormatValue(args[2])
		}

		t, err := parseDate(args[0])
		if err != nil {
			return nil, fmt.Errorf("could not parse date value: %w", err)
		}

		return formatDateWithLocale(t, pattern, locale), nil
	})
	registry.Register(formatDateHelper)
}
