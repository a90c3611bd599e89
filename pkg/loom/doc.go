// Package loom provides a lightweight string-interpolation template engine.
//
// Loom expands text templates by resolving embedded directives against a
// hierarchical data scope and a registry of named helpers. It's designed for
// the places a full templating stack is too much: transactional emails,
// report bodies, notification text, simple HTML.
//
// # Quick Start
//
// The simplest way to use loom is through the package-level functions:
//
//	output := loom.Render(loom.RenderOptions{
//	    Template: "Hello {{ user.name }}, you have {{ user.balance }} points.",
//	    Data: loom.TemplateData{
//	        "user": map[string]interface{}{
//	            "name":    "Ada",
//	            "balance": 1000,
//	        },
//	    },
//	})
//	// output == "Hello Ada, you have 1000 points."
//
// # Template Syntax
//
// Raw expressions substitute their value's text form:
//
//	{{ name }}                   - Simple variable
//	{{ customer.address.city }}  - Nested field access
//	{{ items[0].price }}         - Index access
//	{{ price * 1.2 }}            - Arithmetic
//	{{ uppercase(name) }}        - Helper call
//
// Conditional blocks render one branch:
//
//	{{#if user.isMember}}Welcome back!{{else}}Join us!{{/if}}
//
// Loop blocks render their body once per element, with the element's fields
// merged into scope (the element itself is available as "this"):
//
//	{{#each items}}{{ name }}: {{ price }}
//	{{/each}}
//
// Caller-defined handlers extend the syntax with arbitrary patterns:
//
//	upper := loom.Handler{
//	    Pattern: regexp.MustCompile(`\{\{#upper (\w+)\}\}`),
//	    Resolve: func(match []string, scope loom.TemplateData, helpers loom.HelperRegistry) string {
//	        return strings.ToUpper(loom.FormatValue(scope[match[1]]))
//	    },
//	}
//	output := loom.Render(loom.RenderOptions{Template: tmpl, Data: data, Handlers: []loom.Handler{upper}})
//
// # Rendering Pipeline
//
// Each render call applies four passes in a fixed order: conditional blocks,
// loop blocks, custom handlers, raw expression substitution. Block contents
// re-enter the pipeline recursively with a narrowed scope. Handlers run only
// in the call that received them, over text whose blocks are already
// expanded.
//
// # Error Handling
//
// Render never fails. Unparseable expressions, missing values, helper
// errors, and resolver panics all degrade to empty text; enable debug
// logging via SetLogger or ConfigureLogging to see what was swallowed.
// LoadTemplate is the one operation that returns an error: a missing,
// unreadable, or non-UTF-8 file yields a LoadError before rendering begins.
//
// Use ValidateTemplate to surface the problems rendering would hide:
//
//	result := loom.ValidateTemplate(template)
//	if !result.Valid {
//	    for _, issue := range result.Issues {
//	        fmt.Println(issue)
//	    }
//	}
//
// # Helpers
//
// Built-in helpers cover text, numbers, currency, dates, and markup.
// Callers extend or shadow them per engine with RegisterHelper, or per call
// through RenderOptions.Helpers; per-call helpers win on name collision and
// vanish when the call returns.
//
// # Thread Safety
//
// An Engine is safe for concurrent use. Each render call owns its scope and
// merged helper registry; the template cache and the helper registry are
// internally locked.
package loom
