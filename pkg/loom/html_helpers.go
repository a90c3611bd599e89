package loom

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdownConverter is initialized once and reused. The converter
// configuration never changes and goldmark.Markdown is safe to share;
// each Convert call creates its own parse state.
var (
	markdownConverter     goldmark.Markdown
	markdownConverterOnce sync.Once
)

func getMarkdownConverter() goldmark.Markdown {
	markdownConverterOnce.Do(func() {
		markdownConverter = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownConverter
}

// registerMarkupHelpers registers the HTML and markup helpers.
func registerMarkupHelpers(registry *DefaultHelperRegistry) {
	// escapeHTML() helper - escapes special HTML characters
	escapeHTMLHelper := NewSimpleHelper("escapeHTML", 1, 1, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		return html.EscapeString(FormatValue(args[0])), nil
	})
	registry.Register(escapeHTMLHelper)

	// nl2br() helper - converts line breaks to <br> tags
	nl2brHelper := NewSimpleHelper("nl2br", 1, 1, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		s := FormatValue(args[0])
		s = strings.ReplaceAll(s, "\r\n", "\n")
		return strings.ReplaceAll(s, "\n", "<br>\n"), nil
	})
	registry.Register(nl2brHelper)

	// markdown() helper - converts markdown text to HTML
	markdownHelper := NewSimpleHelper("markdown", 1, 1, func(args ...interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		var buf bytes.Buffer
		if err := getMarkdownConverter().Convert([]byte(FormatValue(args[0])), &buf); err != nil {
			return nil, fmt.Errorf("could not convert markdown: %w", err)
		}
		return buf.String(), nil
	})
	registry.Register(markdownHelper)
}
