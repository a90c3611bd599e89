package loom

import (
	"go.uber.org/zap"
)

// applyHandlers is the third pass: caller handlers run in registration
// order, each rewriting every match of its pattern. Handlers see the text
// after block resolution, with the invocation's root scope and helper
// registry.
func applyHandlers(content string, state *renderState) string {
	for _, handler := range state.handlers {
		if handler.Pattern == nil || handler.Resolve == nil {
			continue
		}
		pattern := handler.Pattern
		resolve := handler.Resolve
		content = pattern.ReplaceAllStringFunc(content, func(match string) string {
			return state.resolveHandlerMatch(pattern.FindStringSubmatch(match), resolve, pattern.String())
		})
	}
	return content
}

// resolveHandlerMatch invokes one resolver with panic recovery; a panic
// degrades that match to empty text.
func (s *renderState) resolveHandlerMatch(groups []string, resolve HandlerFunc, pattern string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			GetLogger().Debug("handler resolver panicked",
				zap.String("pattern", pattern),
				zap.Any("panic", r))
			result = ""
		}
	}()
	return resolve(groups, s.scope, s.helpers)
}
