package loom

import "regexp"

// TemplateData represents the data context for rendering templates.
// It's a map of key-value pairs where values can be strings, numbers,
// booleans, slices, maps, or any other type that can be accessed
// in template expressions.
//
// Example:
//
//	data := TemplateData{
//	    "name": "John Doe",
//	    "age": 30,
//	    "items": []map[string]interface{}{
//	        {"name": "Item 1", "price": 19.99},
//	        {"name": "Item 2", "price": 29.99},
//	    },
//	}
type TemplateData map[string]interface{}

// HelperFunc is the signature for caller-supplied helpers. Arguments arrive
// already evaluated; the returned value is substituted after text coercion.
// A returned error (or a panic) fails only the expression that made the
// call, never the render.
type HelperFunc func(args ...interface{}) (interface{}, error)

// HandlerFunc resolves one match of a custom directive pattern. It receives
// the submatch slice (match[0] is the full match), the render call's root
// scope, and the merged helper registry, and returns the replacement text.
type HandlerFunc func(match []string, scope TemplateData, helpers HelperRegistry) string

// Handler extends the directive syntax with a caller-defined pattern.
// Handlers run in slice order after conditionals and loops have been
// expanded and before raw expression substitution, each as one rewrite pass
// over the whole remaining text; a later handler sees the text already
// rewritten by earlier ones.
type Handler struct {
	Pattern *regexp.Regexp
	Resolve HandlerFunc
}

// RenderOptions bundles everything one render call needs. Template and Data
// are the essentials; Helpers extend (and can shadow) the built-in helper
// set for this call only; Handlers extend the directive syntax.
type RenderOptions struct {
	Template string
	Data     TemplateData
	Helpers  map[string]HelperFunc
	Handlers []Handler
}
