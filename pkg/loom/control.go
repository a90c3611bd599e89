package loom

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Tag markers recognized by the block passes.
const (
	ifOpenMarker    = "{{#if"
	eachOpenMarker  = "{{#each"
	ifCloseMarker   = "{{/if}}"
	eachCloseMarker = "{{/each}}"
	elseMarker      = "{{else}}"
)

// blockTagRegex matches any block tag. The capture distinguishes opens,
// closes, and else for depth tracking across both block kinds.
var blockTagRegex = regexp.MustCompile(`\{\{(#if\s|#each\s|/if\}\}|/each\}\}|else\}\})`)

// blockMatch locates one complete block: the open tag, its header
// expression, the body span, and the matching close tag.
type blockMatch struct {
	start     int
	bodyStart int
	bodyEnd   int
	end       int
	header    string
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// indexOfOpenTag finds the next open tag for marker at or after from. The
// marker must be followed by whitespace to count, so {{#if}} or an
// unrelated {{#ifx ...}} tag never opens an if block.
func indexOfOpenTag(content, marker string, from int) int {
	for i := from; i < len(content); {
		idx := strings.Index(content[i:], marker)
		if idx < 0 {
			return -1
		}
		idx += i
		rest := idx + len(marker)
		if rest < len(content) && isSpaceByte(content[rest]) {
			return idx
		}
		i = rest
	}
	return -1
}

// findBlock locates the first complete block opened by openMarker at or
// after from. Nested blocks of the same kind are paired by depth, so the
// returned close tag is the one matching the open tag, not the nearest.
func findBlock(content, openMarker, closeMarker string, from int) (blockMatch, bool) {
	var m blockMatch

	start := indexOfOpenTag(content, openMarker, from)
	if start < 0 {
		return m, false
	}
	headerEnd := strings.Index(content[start:], "}}")
	if headerEnd < 0 {
		return m, false
	}
	headerEnd += start

	m.start = start
	m.header = strings.TrimSpace(content[start+len(openMarker) : headerEnd])
	m.bodyStart = headerEnd + 2

	depth := 1
	for i := m.bodyStart; i < len(content); {
		nextClose := strings.Index(content[i:], closeMarker)
		if nextClose < 0 {
			return m, false
		}
		nextClose += i

		if nextOpen := indexOfOpenTag(content, openMarker, i); nextOpen >= 0 && nextOpen < nextClose {
			depth++
			i = nextOpen + len(openMarker)
			continue
		}

		depth--
		if depth == 0 {
			m.bodyEnd = nextClose
			m.end = nextClose + len(closeMarker)
			return m, true
		}
		i = nextClose + len(closeMarker)
	}
	return m, false
}

// splitElse divides a block body at its top-level {{else}}. Depth is
// tracked across both block kinds so an else belonging to a nested block
// stays inside its branch.
func splitElse(body string) (thenPart, elsePart string) {
	depth := 0
	for _, loc := range blockTagRegex.FindAllStringSubmatchIndex(body, -1) {
		tag := body[loc[2]:loc[3]]
		switch {
		case strings.HasPrefix(tag, "#"):
			depth++
		case strings.HasPrefix(tag, "/"):
			if depth > 0 {
				depth--
			}
		case depth == 0:
			return body[:loc[0]], body[loc[1]:]
		}
	}
	return body, ""
}

// nextConditionalStart finds the next if tag that does not sit inside a
// loop body. Conditionals inside a loop are left for the loop pass, which
// re-renders each iteration with the element bindings in scope.
func nextConditionalStart(content string, from int) int {
	pos := from
	for {
		ifIdx := indexOfOpenTag(content, ifOpenMarker, pos)
		if ifIdx < 0 {
			return -1
		}
		eachIdx := indexOfOpenTag(content, eachOpenMarker, pos)
		if eachIdx < 0 || ifIdx < eachIdx {
			return ifIdx
		}
		em, ok := findBlock(content, eachOpenMarker, eachCloseMarker, eachIdx)
		if !ok {
			return ifIdx
		}
		pos = em.end
	}
}

// resolveConditionals is the first pass: every {{#if}} block outside a
// loop body is replaced by its selected branch, recursively rendered with
// the current scope.
func resolveConditionals(content string, state *renderState) string {
	var out strings.Builder
	pos := 0
	for pos < len(content) {
		start := nextConditionalStart(content, pos)
		if start < 0 {
			break
		}
		m, ok := findBlock(content, ifOpenMarker, ifCloseMarker, start)
		if !ok {
			// Unclosed block: emit the open marker verbatim and move on so
			// later complete blocks still resolve.
			out.WriteString(content[pos : start+len(ifOpenMarker)])
			pos = start + len(ifOpenMarker)
			continue
		}

		out.WriteString(content[pos:m.start])
		thenPart, elsePart := splitElse(content[m.bodyStart:m.bodyEnd])
		branch := elsePart
		if state.evalCondition(m.header) {
			branch = thenPart
		}
		out.WriteString(state.renderNested(state.scope, branch))
		pos = m.end
	}
	out.WriteString(content[pos:])
	return out.String()
}

// resolveLoops is the second pass: every {{#each}} block is replaced by
// its body rendered once per element of the named sequence.
func resolveLoops(content string, state *renderState) string {
	var out strings.Builder
	pos := 0
	for pos < len(content) {
		start := indexOfOpenTag(content, eachOpenMarker, pos)
		if start < 0 {
			break
		}
		m, ok := findBlock(content, eachOpenMarker, eachCloseMarker, start)
		if !ok {
			out.WriteString(content[pos : start+len(eachOpenMarker)])
			pos = start + len(eachOpenMarker)
			continue
		}

		out.WriteString(content[pos:m.start])
		out.WriteString(renderLoop(m.header, content[m.bodyStart:m.bodyEnd], state))
		pos = m.end
	}
	out.WriteString(content[pos:])
	return out.String()
}

// renderLoop resolves one loop block. The header names the sequence,
// preferably as a dotted path; a header that is not a resolvable path is
// evaluated as an expression, so helper results iterate too. Anything
// that is not a sequence yields an empty block.
func renderLoop(header, body string, state *renderState) string {
	value, found := LookupPath(state.scope, header)
	if !found {
		value = state.evalSilent(header)
	}

	items, err := toSlice(value)
	if err != nil {
		GetLogger().Debug("loop target is not a sequence",
			zap.String("target", header),
			zap.Error(err))
		return ""
	}

	var result strings.Builder
	for _, item := range items {
		iterScope := extendScope(state.scope, iterationBindings(item))
		result.WriteString(state.renderNested(iterScope, body))
	}
	return result.String()
}

// iterationBindings builds the per-element bindings: the element itself
// under "this", plus the element's own fields when it is a map. A field
// literally named "this" wins over the implicit binding.
func iterationBindings(item interface{}) TemplateData {
	bindings := TemplateData{"this": item}
	switch v := item.(type) {
	case TemplateData:
		for k, val := range v {
			bindings[k] = val
		}
	case map[string]interface{}:
		for k, val := range v {
			bindings[k] = val
		}
	}
	return bindings
}

// toSlice normalizes sequence values to []interface{}. Maps, strings, and
// scalars are not sequences; nil is an empty one.
func toSlice(val interface{}) ([]interface{}, error) {
	if val == nil {
		return []interface{}{}, nil
	}

	switch v := val.(type) {
	case []interface{}:
		return v, nil
	case []string:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = item
		}
		return result, nil
	case []int:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = item
		}
		return result, nil
	case []int64:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = item
		}
		return result, nil
	case []float64:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = item
		}
		return result, nil
	case []bool:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = item
		}
		return result, nil
	case []map[string]interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = item
		}
		return result, nil
	case []TemplateData:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = item
		}
		return result, nil
	}

	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		result := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			result[i] = rv.Index(i).Interface()
		}
		return result, nil
	}

	return nil, fmt.Errorf("%T is not a sequence", val)
}
