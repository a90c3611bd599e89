package loom

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Regular expressions for parsing path segments
var (
	// Matches array/map access like [0], ['key'], ["key"]
	bracketRegex = regexp.MustCompile(`^\[([^\]]+)\]`)
	// Matches dot notation like .field
	dotRegex = regexp.MustCompile(`^\.([^.\[]+)`)
)

// extendScope builds a child scope containing every parent binding plus the
// overrides, with overrides winning on key collision. The parent is never
// modified; loop bodies and nested blocks therefore cannot leak bindings
// back into the caller's data.
func extendScope(parent TemplateData, overrides TemplateData) TemplateData {
	child := make(TemplateData, len(parent)+len(overrides))
	for k, v := range parent {
		child[k] = v
	}
	for k, v := range overrides {
		child[k] = v
	}
	return child
}

// LookupPath resolves a dotted path like "user.address[0].city" against a
// scope. Resolution short-circuits to (nil, false) the moment a segment is
// missing or the intermediate value is not structured; no error is ever
// produced for an absent path.
func LookupPath(scope TemplateData, path string) (interface{}, bool) {
	path = strings.TrimSpace(path)
	if path == "" || scope == nil {
		return nil, false
	}

	parts, err := parsePathSegments(path)
	if err != nil || len(parts) == 0 {
		return nil, false
	}

	current := interface{}(scope)
	for _, part := range parts {
		switch part.kind {
		case segmentField:
			current = accessMapField(current, part.value)
		case segmentBracket:
			current = accessBracketField(current, part.value)
		}
		if current == nil {
			return nil, false
		}
	}

	return current, true
}

// pathSegment represents one step of a dotted/bracketed path
type pathSegment struct {
	kind  segmentKind
	value string
}

type segmentKind int

const (
	segmentField segmentKind = iota
	segmentBracket
)

// parsePathSegments splits a path expression into its access steps
func parsePathSegments(path string) ([]pathSegment, error) {
	var parts []pathSegment
	remaining := path

	if remaining == "" {
		return nil, nil
	}

	idx := strings.IndexAny(remaining, ".[")
	if idx == -1 {
		parts = append(parts, pathSegment{kind: segmentField, value: remaining})
		return parts, nil
	}

	if idx > 0 {
		parts = append(parts, pathSegment{kind: segmentField, value: remaining[:idx]})
		remaining = remaining[idx:]
	}

	for remaining != "" {
		if strings.HasPrefix(remaining, ".") {
			matches := dotRegex.FindStringSubmatch(remaining)
			if len(matches) < 2 {
				return nil, fmt.Errorf("invalid dot notation in %q", path)
			}
			parts = append(parts, pathSegment{kind: segmentField, value: matches[1]})
			remaining = remaining[len(matches[0]):]
		} else if strings.HasPrefix(remaining, "[") {
			matches := bracketRegex.FindStringSubmatch(remaining)
			if len(matches) < 2 {
				return nil, fmt.Errorf("invalid bracket notation in %q", path)
			}
			parts = append(parts, pathSegment{kind: segmentBracket, value: matches[1]})
			remaining = remaining[len(matches[0]):]
		} else {
			return nil, fmt.Errorf("unexpected character in path %q", path)
		}
	}

	return parts, nil
}

// accessMapField accesses a field in a map-like structure
func accessMapField(current interface{}, field string) interface{} {
	if current == nil {
		return nil
	}

	switch v := current.(type) {
	case TemplateData:
		return v[field]
	case map[string]interface{}:
		return v[field]
	case map[string]string:
		return v[field]
	case map[string]int:
		return v[field]
	case map[string]float64:
		return v[field]
	case map[string]bool:
		return v[field]
	}

	// Other map kinds with string keys resolve through reflection
	rv := reflect.ValueOf(current)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		item := rv.MapIndex(reflect.ValueOf(field))
		if item.IsValid() {
			return item.Interface()
		}
	}

	return nil
}

// accessBracketField accesses a field using bracket notation
func accessBracketField(current interface{}, key string) interface{} {
	if current == nil {
		return nil
	}

	// An integer key is an index into a sequence
	if idx, err := strconv.Atoi(key); err == nil {
		return accessArrayIndex(current, idx)
	}

	// Otherwise treat as string key (remove quotes if present)
	key = strings.Trim(key, `'"`)
	return accessMapField(current, key)
}

// accessArrayIndex accesses a sequence element by index. Negative indices
// count from the end.
func accessArrayIndex(current interface{}, index int) interface{} {
	if current == nil {
		return nil
	}

	switch v := current.(type) {
	case []interface{}:
		if index < 0 {
			index = len(v) + index
		}
		if index >= 0 && index < len(v) {
			return v[index]
		}
		return nil
	case []string:
		if index < 0 {
			index = len(v) + index
		}
		if index >= 0 && index < len(v) {
			return v[index]
		}
		return nil
	case []int:
		if index < 0 {
			index = len(v) + index
		}
		if index >= 0 && index < len(v) {
			return v[index]
		}
		return nil
	case []float64:
		if index < 0 {
			index = len(v) + index
		}
		if index >= 0 && index < len(v) {
			return v[index]
		}
		return nil
	case []map[string]interface{}:
		if index < 0 {
			index = len(v) + index
		}
		if index >= 0 && index < len(v) {
			return v[index]
		}
		return nil
	}

	rv := reflect.ValueOf(current)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if index < 0 {
			index = rv.Len() + index
		}
		if index >= 0 && index < rv.Len() {
			return rv.Index(index).Interface()
		}
	}

	return nil
}

// collectionLen reports the length of slice/array/map kinds the type
// switches do not enumerate
func collectionLen(v interface{}) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

// FormatValue converts a value to the text form used for substitution.
// Nil renders as the empty string, floats use the shortest representation
// that round-trips, and callables have no text form.
func FormatValue(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', 10, 32)
	case float64:
		// Removes unnecessary trailing zeros and handles precision issues
		return strconv.FormatFloat(v, 'g', 15, 64)
	case bool:
		return fmt.Sprintf("%v", v)
	case time.Time:
		return v.Format(time.RFC3339)
	}

	if reflect.ValueOf(value).Kind() == reflect.Func {
		return ""
	}

	return fmt.Sprintf("%v", value)
}
