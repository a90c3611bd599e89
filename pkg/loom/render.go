package loom

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// rawExpressionRegex matches a {{ ... }} tag without nested braces.
var rawExpressionRegex = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// renderState carries one render invocation's bindings through the
// passes: the scope, the merged helper registry, the caller handlers,
// and the recursion depth.
type renderState struct {
	scope    TemplateData
	helpers  HelperRegistry
	handlers []Handler
	depth    int
	maxDepth int
}

// renderPasses is the fixed pipeline order: conditionals first, then
// loops, then caller handlers, then raw expressions. Each pass consumes
// its own directives and leaves the rest for the passes after it.
// Assigned in init to avoid an initialization cycle through renderNested.
var renderPasses []func(string, *renderState) string

func init() {
	renderPasses = []func(string, *renderState) string{
		resolveConditionals,
		resolveLoops,
		applyHandlers,
		substituteExpressions,
	}
}

// renderTemplate runs the full pipeline over content. It never fails:
// every unresolvable directive degrades to empty text.
func renderTemplate(content string, scope TemplateData, helpers HelperRegistry, handlers []Handler, maxDepth int) string {
	if scope == nil {
		scope = TemplateData{}
	}
	if helpers == nil {
		helpers = newBuiltinRegistry()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxRenderDepth
	}

	if IsDebugEnabled() {
		GetLogger().Debug("rendering template",
			zap.Int("length", len(content)),
			zap.Int("handlers", len(handlers)))
	}

	state := &renderState{
		scope:    scope,
		helpers:  helpers,
		handlers: handlers,
		maxDepth: maxDepth,
	}
	return state.run(content)
}

func (s *renderState) run(content string) string {
	for _, pass := range renderPasses {
		content = pass(content, s)
	}
	return content
}

// renderNested re-renders a block body with the given scope. Handlers are
// not forwarded: they run once, in the invocation that received them.
// Recursion depth is capped by maxDepth; beyond it the body is returned
// unrendered.
func (s *renderState) renderNested(scope TemplateData, content string) string {
	if s.depth >= s.maxDepth {
		GetLogger().Debug("max render depth exceeded", zap.Int("depth", s.depth))
		return content
	}
	nested := &renderState{
		scope:    scope,
		helpers:  s.helpers,
		depth:    s.depth + 1,
		maxDepth: s.maxDepth,
	}
	return nested.run(content)
}

// substituteExpressions is the final pass: every remaining {{ ... }} tag
// is evaluated and replaced with the value's text form. In nested renders,
// tags whose content starts with '#' are left alone so a handler directive
// inside a block survives until the invocation that owns the handler sees
// it. At the top level the handler pass has already run, so whatever is
// left - orphan block tags, directives no handler claimed - is consumed
// here and degrades to empty text like any other failing expression.
func substituteExpressions(content string, state *renderState) string {
	return rawExpressionRegex.ReplaceAllStringFunc(content, func(match string) string {
		inner := strings.TrimSpace(match[2 : len(match)-2])
		if strings.HasPrefix(inner, "#") && state.depth > 0 {
			return match
		}
		return FormatValue(state.evalSilent(inner))
	})
}
