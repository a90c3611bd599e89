package loom

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// registerCoreHelpers registers the general-purpose built-in helpers.
func registerCoreHelpers(registry *DefaultHelperRegistry) {
	// empty() helper - checks if a value is empty
	emptyHelper := NewSimpleHelper("empty", 1, 1, func(args ...interface{}) (interface{}, error) {
		return isEmpty(args[0]), nil
	})
	registry.Register(emptyHelper)

	// coalesce() helper - returns the first non-empty value
	coalesceHelper := NewSimpleHelper("coalesce", 1, -1, func(args ...interface{}) (interface{}, error) {
		for _, arg := range args {
			if !isEmpty(arg) {
				return arg, nil
			}
		}
		return nil, nil
	})
	registry.Register(coalesceHelper)

	// defaultValue() helper - returns a fallback when the value is empty
	defaultValueHelper := NewSimpleHelper("defaultValue", 2, 2, func(args ...interface{}) (interface{}, error) {
		if isEmpty(args[0]) {
			return args[1], nil
		}
		return args[0], nil
	})
	registry.Register(defaultValueHelper)

	// list() helper - creates a list from its arguments
	listHelper := NewSimpleHelper("list", 0, -1, func(args ...interface{}) (interface{}, error) {
		return args, nil
	})
	registry.Register(listHelper)

	// str() helper - converts a value to its string form
	strHelper := NewSimpleHelper("str", 1, 1, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return "", nil
		}
		return FormatValue(args[0]), nil
	})
	registry.Register(strHelper)

	// integer() helper - converts a value to an integer
	integerHelper := NewSimpleHelper("integer", 1, 1, func(args ...interface{}) (interface{}, error) {
		return toInteger(args[0])
	})
	registry.Register(integerHelper)

	// decimal() helper - converts a value to a decimal number
	decimalHelper := NewSimpleHelper("decimal", 1, 1, func(args ...interface{}) (interface{}, error) {
		return toDecimal(args[0])
	})
	registry.Register(decimalHelper)

	// length() helper - counts runes in text or elements in a collection
	lengthHelper := NewSimpleHelper("length", 1, 1, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return 0, nil
		}
		if s, ok := args[0].(string); ok {
			return len([]rune(s)), nil
		}
		if n, ok := collectionLen(args[0]); ok {
			return n, nil
		}
		return nil, fmt.Errorf("length() requires text or a collection, got %T", args[0])
	})
	registry.Register(lengthHelper)

	// contains() helper - substring test for text, membership test for lists
	containsHelper := NewSimpleHelper("contains", 2, 2, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return false, nil
		}
		if haystack, ok := args[0].(string); ok {
			return strings.Contains(haystack, FormatValue(args[1])), nil
		}
		items, err := toSlice(args[0])
		if err != nil {
			return nil, fmt.Errorf("contains() first parameter must be text or a list, got %T", args[0])
		}
		needle := FormatValue(args[1])
		for _, item := range items {
			if FormatValue(item) == needle {
				return true, nil
			}
		}
		return false, nil
	})
	registry.Register(containsHelper)

	// sum() helper - sums all numbers in a list
	sumHelper := NewSimpleHelper("sum", 1, 1, func(args ...interface{}) (interface{}, error) {
		return sumList(args[0])
	})
	registry.Register(sumHelper)

	// range() helper - creates a list of numbers
	rangeHelper := NewSimpleHelper("range", 1, 3, func(args ...interface{}) (interface{}, error) {
		nums := make([]int, len(args))
		for i, arg := range args {
			f, ok := toFloat64(arg)
			if !ok {
				return nil, fmt.Errorf("range() arguments must be numbers, got %T", arg)
			}
			nums[i] = int(f)
		}
		switch len(nums) {
		case 1:
			return rangeNumbers(0, nums[0], 1), nil
		case 2:
			return rangeNumbers(nums[0], nums[1], 1), nil
		default:
			if nums[2] == 0 {
				return nil, fmt.Errorf("range() step cannot be zero")
			}
			return rangeNumbers(nums[0], nums[1], nums[2]), nil
		}
	})
	registry.Register(rangeHelper)

	// switch() helper - matches a value against case/result pairs
	switchHelper := NewSimpleHelper("switch", 3, -1, func(args ...interface{}) (interface{}, error) {
		value := args[0]
		rest := args[1:]
		for len(rest) >= 2 {
			if evaluateEquals(value, rest[0]) {
				return rest[1], nil
			}
			rest = rest[2:]
		}
		// Trailing unpaired argument acts as the default branch.
		if len(rest) == 1 {
			return rest[0], nil
		}
		return nil, nil
	})
	registry.Register(switchHelper)

	// uuid() helper - generates a random v4 UUID
	uuidHelper := NewSimpleHelper("uuid", 0, 0, func(args ...interface{}) (interface{}, error) {
		return uuid.NewString(), nil
	})
	registry.Register(uuidHelper)
}

// registerTextHelpers registers the string manipulation helpers.
func registerTextHelpers(registry *DefaultHelperRegistry) {
	// lowercase() helper - converts text to lowercase
	lowercaseHelper := NewSimpleHelper("lowercase", 1, 1, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		return strings.ToLower(FormatValue(args[0])), nil
	})
	registry.Register(lowercaseHelper)

	// uppercase() helper - converts text to uppercase
	uppercaseHelper := NewSimpleHelper("uppercase", 1, 1, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		return strings.ToUpper(FormatValue(args[0])), nil
	})
	registry.Register(uppercaseHelper)

	// titlecase() helper - capitalizes the first letter of each word
	titlecaseHelper := NewSimpleHelper("titlecase", 1, 1, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		return toTitleCase(FormatValue(args[0])), nil
	})
	registry.Register(titlecaseHelper)

	// trim() helper - strips leading and trailing whitespace
	trimHelper := NewSimpleHelper("trim", 1, 1, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		return strings.TrimSpace(FormatValue(args[0])), nil
	})
	registry.Register(trimHelper)

	// truncate() helper - cuts text to a maximum rune count, with optional suffix
	truncateHelper := NewSimpleHelper("truncate", 2, 3, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		s := FormatValue(args[0])
		f, ok := toFloat64(args[1])
		if !ok {
			return nil, fmt.Errorf("truncate() length must be a number, got %T", args[1])
		}
		max := int(f)
		if max < 0 {
			max = 0
		}
		runes := []rune(s)
		if len(runes) <= max {
			return s, nil
		}
		suffix := ""
		if len(args) == 3 && args[2] != nil {
			suffix = FormatValue(args[2])
		}
		return string(runes[:max]) + suffix, nil
	})
	registry.Register(truncateHelper)

	// replace() helper - replaces all occurrences of a substring
	replaceHelper := NewSimpleHelper("replace", 3, 3, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		s := FormatValue(args[0])
		old := FormatValue(args[1])
		replacement := FormatValue(args[2])
		return strings.ReplaceAll(s, old, replacement), nil
	})
	registry.Register(replaceHelper)

	// join() helper - joins list elements with an optional separator
	joinHelper := NewSimpleHelper("join", 1, 2, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return "", nil
		}
		items, err := toSlice(args[0])
		if err != nil {
			return nil, fmt.Errorf("join() requires a list, got %T", args[0])
		}
		separator := ""
		if len(args) == 2 && args[1] != nil {
			separator = FormatValue(args[1])
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item == nil {
				continue
			}
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, separator), nil
	})
	registry.Register(joinHelper)

	// joinAnd() helper - joins with a separator and a distinct final separator
	joinAndHelper := NewSimpleHelper("joinAnd", 3, 3, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return "", nil
		}
		items, err := toSlice(args[0])
		if err != nil {
			return nil, fmt.Errorf("joinAnd() requires a list, got %T", args[0])
		}
		separator := FormatValue(args[1])
		lastSeparator := FormatValue(args[2])
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item == nil {
				continue
			}
			parts = append(parts, FormatValue(item))
		}
		switch len(parts) {
		case 0:
			return "", nil
		case 1:
			return parts[0], nil
		}
		return strings.Join(parts[:len(parts)-1], separator) + lastSeparator + parts[len(parts)-1], nil
	})
	registry.Register(joinAndHelper)

	// split() helper - splits text into a list of substrings
	splitHelper := NewSimpleHelper("split", 2, 2, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return []interface{}{}, nil
		}
		s := FormatValue(args[0])
		separator := FormatValue(args[1])
		pieces := strings.Split(s, separator)
		result := make([]interface{}, len(pieces))
		for i, piece := range pieces {
			result[i] = piece
		}
		return result, nil
	})
	registry.Register(splitHelper)
}

// isEmpty reports whether a value counts as empty: nil, false, zero,
// empty text, or an empty collection.
func isEmpty(val interface{}) bool {
	if val == nil {
		return true
	}
	switch v := val.(type) {
	case bool:
		return !v
	case string:
		return v == ""
	}
	if f, ok := toFloat64(val); ok {
		return f == 0
	}
	if n, ok := collectionLen(val); ok {
		return n == 0
	}
	return false
}

// toInteger converts various types to an integer.
func toInteger(val interface{}) (interface{}, error) {
	if val == nil {
		return nil, nil
	}
	switch v := val.(type) {
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return int(f), nil
		}
		return nil, fmt.Errorf("cannot convert string %q to integer", v)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	if f, ok := toFloat64(val); ok {
		return int(f), nil
	}
	return nil, fmt.Errorf("cannot convert %T to integer", val)
}

// toDecimal converts various types to a decimal number.
func toDecimal(val interface{}) (interface{}, error) {
	if val == nil {
		return nil, nil
	}
	switch v := val.(type) {
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, nil
		}
		return nil, fmt.Errorf("cannot convert string %q to decimal", v)
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	}
	if f, ok := toFloat64(val); ok {
		return f, nil
	}
	return nil, fmt.Errorf("cannot convert %T to decimal", val)
}

// sumList sums all numbers in a list. The result stays an integer when
// every element is an integer.
func sumList(val interface{}) (interface{}, error) {
	if val == nil {
		return 0, nil
	}
	switch val.(type) {
	case string, bool:
		return nil, fmt.Errorf("sum() requires a list, got %T", val)
	}
	if _, ok := toFloat64(val); ok {
		return nil, fmt.Errorf("sum() requires a list, got %T", val)
	}
	items, err := toSlice(val)
	if err != nil {
		return nil, fmt.Errorf("sum() requires a list, got %T", val)
	}
	var sum float64
	hasFloat := false
	for _, item := range items {
		if item == nil {
			continue
		}
		num, ok := toFloat64(item)
		if !ok {
			return nil, fmt.Errorf("sum() cannot convert item %v to a number", item)
		}
		sum += num
		if !isInteger(item) {
			hasFloat = true
		}
	}
	if !hasFloat && sum == float64(int(sum)) {
		return int(sum), nil
	}
	return sum, nil
}

// toTitleCase upper-cases the first rune of each space-separated word and
// lower-cases the rest, preserving the original spacing.
func toTitleCase(s string) string {
	runes := []rune(s)
	inWord := false
	for i, r := range runes {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			runes[i] = unicode.ToUpper(r)
			inWord = true
		} else {
			runes[i] = unicode.ToLower(r)
		}
	}
	return string(runes)
}

// rangeNumbers builds the list of integers from start toward end by step.
func rangeNumbers(start, end, step int) []interface{} {
	result := []interface{}{}
	if step > 0 {
		for i := start; i < end; i += step {
			result = append(result, i)
		}
	} else {
		for i := start; i > end; i += step {
			result = append(result, i)
		}
	}
	return result
}
