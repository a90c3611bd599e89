package loom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// toNumber converts numeric values and numeric strings to float64.
func toNumber(val interface{}) (float64, error) {
	if val == nil {
		return 0, nil
	}
	if f, ok := toFloat64(val); ok {
		return f, nil
	}
	if s, ok := val.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to number", s)
		}
		return f, nil
	}
	str := fmt.Sprintf("%v", val)
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %T to number", val)
	}
	return f, nil
}

// getNumberFormatter returns a function that formats numbers with the
// grouping and decimal separators of the given locale.
func getNumberFormatter(locale string) func(float64, int) string {
	lang := strings.Split(strings.ToLower(locale), "-")[0]

	return func(value float64, decimals int) string {
		result := strconv.FormatFloat(value, 'f', decimals, 64)

		parts := strings.Split(result, ".")
		intPart := parts[0]
		decPart := ""
		if len(parts) > 1 {
			decPart = parts[1]
		}

		negative := false
		if strings.HasPrefix(intPart, "-") {
			negative = true
			intPart = intPart[1:]
		}

		var formatted strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				switch lang {
				case "de":
					formatted.WriteRune('.')
				case "fr", "hu":
					formatted.WriteRune(' ')
				default:
					formatted.WriteRune(',')
				}
			}
			formatted.WriteRune(digit)
		}

		result = formatted.String()
		if decPart != "" {
			switch lang {
			case "de", "fr", "hu":
				result += "," + decPart
			default:
				result += "." + decPart
			}
		}

		if negative {
			result = "-" + result
		}

		return result
	}
}

// getCurrencyFormatter returns a function that formats amounts as currency
// for the given locale. A non-empty symbol or a precision >= 0 overrides
// the locale defaults.
func getCurrencyFormatter(locale, symbolOverride string, precision int) func(float64) string {
	parts := strings.Split(strings.ToUpper(locale), "-")
	lang := strings.ToLower(parts[0])
	country := ""
	if len(parts) > 1 {
		country = parts[1]
	}

	var symbol string
	var before bool
	var space bool

	switch {
	case lang == "en" && country == "US":
		symbol = "$"
		before = true
		space = false
	case lang == "en" && country == "GB":
		symbol = "£"
		before = true
		space = false
	case lang == "de" || (lang == "fr" && country == "FR"):
		symbol = "€"
		before = false
		space = true
	case lang == "ja":
		symbol = "¥"
		before = true
		space = false
	case lang == "hu":
		symbol = "Ft"
		before = false
		space = true
	default:
		symbol = "$"
		before = true
		space = false
	}

	if symbolOverride != "" {
		symbol = symbolOverride
	}

	formatter := getNumberFormatter(locale)

	return func(value float64) string {
		decimals := 2
		if lang == "ja" {
			decimals = 0
		}
		if precision >= 0 {
			decimals = precision
		}

		negative := value < 0
		if negative {
			value = -value
		}

		formatted := formatter(value, decimals)

		var result string
		if before {
			if space {
				result = symbol + " " + formatted
			} else {
				result = symbol + formatted
			}
		} else {
			if space {
				result = formatted + " " + symbol
			} else {
				result = formatted + symbol
			}
		}

		if negative {
			result = "-" + result
		}

		return result
	}
}

// getPercentFormatter returns a function that formats ratios as percentages
// for the given locale.
func getPercentFormatter(locale string) func(float64) string {
	lang := strings.ToLower(strings.Split(locale, "-")[0])
	formatter := getNumberFormatter(locale)

	return func(value float64) string {
		percentage := value * 100

		var decimals int
		if percentage == float64(int(percentage)) {
			decimals = 0
		} else {
			decimals = 2
		}

		formatted := formatter(percentage, decimals)

		switch lang {
		case "de", "fr":
			return formatted + " %"
		default:
			return formatted + "%"
		}
	}
}

// registerNumberHelpers registers the number formatting helpers.
func registerNumberHelpers(registry *DefaultHelperRegistry) {
	// formatNumber() helper - formats a number with locale separators
	formatNumberHelper := NewSimpleHelper("formatNumber", 1, 3, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		value, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}

		locale := "en-US"
		if len(args) >= 2 && args[1] != nil {
			locale = FormatValue(args[1])
		}

		decimals := 2
		if value == math.Trunc(value) {
			decimals = 0
		}
		if len(args) == 3 && args[2] != nil {
			f, ok := toFloat64(args[2])
			if !ok {
				return nil, fmt.Errorf("formatNumber() decimals must be a number, got %T", args[2])
			}
			decimals = int(f)
		}

		formatter := getNumberFormatter(locale)
		return formatter(value, decimals), nil
	})
	registry.Register(formatNumberHelper)

	// formatCurrency() helper - formats an amount as currency
	formatCurrencyHelper := NewSimpleHelper("formatCurrency", 1, 4, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		value, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}

		locale := "en-US"
		if len(args) >= 2 && args[1] != nil {
			locale = FormatValue(args[1])
		}

		symbol := ""
		if len(args) >= 3 && args[2] != nil {
			symbol = FormatValue(args[2])
		}

		precision := -1
		if len(args) == 4 && args[3] != nil {
			f, ok := toFloat64(args[3])
			if !ok {
				return nil, fmt.Errorf("formatCurrency() precision must be a number, got %T", args[3])
			}
			precision = int(f)
		}

		formatter := getCurrencyFormatter(locale, symbol, precision)
		return formatter(value), nil
	})
	registry.Register(formatCurrencyHelper)

	// percent() helper - formats a ratio as a percentage
	percentHelper := NewSimpleHelper("percent", 1, 2, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		value, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}

		locale := "en-US"
		if len(args) == 2 && args[1] != nil {
			locale = FormatValue(args[1])
		}

		formatter := getPercentFormatter(locale)
		return formatter(value), nil
	})
	registry.Register(percentHelper)

	// round() helper - rounds to the nearest integer, or to a decimal count
	roundHelper := NewSimpleHelper("round", 1, 2, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		value, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}
		if len(args) == 2 && args[1] != nil {
			f, ok := toFloat64(args[1])
			if !ok {
				return nil, fmt.Errorf("round() decimals must be a number, got %T", args[1])
			}
			shift := math.Pow(10, float64(int(f)))
			return math.Round(value*shift) / shift, nil
		}
		return int(math.Round(value)), nil
	})
	registry.Register(roundHelper)

	// floor() helper - rounds down to the closest smaller integer
	floorHelper := NewSimpleHelper("floor", 1, 1, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		value, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}
		return int(math.Floor(value)), nil
	})
	registry.Register(floorHelper)

	// ceil() helper - rounds up to the closest bigger integer
	ceilHelper := NewSimpleHelper("ceil", 1, 1, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		value, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}
		return int(math.Ceil(value)), nil
	})
	registry.Register(ceilHelper)
}
