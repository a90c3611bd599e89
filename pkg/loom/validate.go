package loom

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const validationParserVersion = "v1"

// IssueSeverity indicates validation issue severity.
type IssueSeverity string

const (
	IssueSeverityError   IssueSeverity = "error"
	IssueSeverityWarning IssueSeverity = "warning"
)

// IssueCode contains the stable issue codes emitted by the validator.
type IssueCode string

const (
	IssueCodeSyntaxError          IssueCode = "SYNTAX_ERROR"
	IssueCodeControlBlockMismatch IssueCode = "CONTROL_BLOCK_MISMATCH"
	IssueCodeUnsupportedExpr      IssueCode = "UNSUPPORTED_EXPRESSION"
)

// TokenKind identifies extracted token/reference categories.
type TokenKind string

const (
	TokenKindVariable TokenKind = "variable"
	TokenKindControl  TokenKind = "control"
	TokenKindFunction TokenKind = "function"
)

// TemplateLocation identifies a token location in template text. Line and
// Column are 1-based; Column counts runes, Offset counts bytes.
type TemplateLocation struct {
	Line         int    `json:"line"`
	Column       int    `json:"column"`
	Offset       int    `json:"offset"`
	TokenOrdinal int    `json:"tokenOrdinal"`
	AnchorID     string `json:"anchorId,omitempty"`
}

// TemplateTokenRef references one token-derived item.
type TemplateTokenRef struct {
	Raw        string           `json:"raw"`
	Kind       TokenKind        `json:"kind"`
	Expression string           `json:"expression,omitempty"`
	Location   TemplateLocation `json:"location"`
}

// ValidationIssue is one problem found in a template.
type ValidationIssue struct {
	ID          string           `json:"id"`
	Severity    IssueSeverity    `json:"severity"`
	Code        IssueCode        `json:"code"`
	Message     string           `json:"message"`
	Token       TemplateTokenRef `json:"token"`
	Location    TemplateLocation `json:"location"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

func (i ValidationIssue) String() string {
	return fmt.Sprintf("[%s] line %d, column %d: %s", i.Code, i.Location.Line, i.Location.Column, i.Message)
}

// ValidationSummary contains validation counters.
type ValidationSummary struct {
	CheckedTokens      int `json:"checkedTokens"`
	ErrorCount         int `json:"errorCount"`
	WarningCount       int `json:"warningCount"`
	ReturnedIssueCount int `json:"returnedIssueCount"`
}

// ValidationMetadata identifies the validated input and the parser revision.
type ValidationMetadata struct {
	TemplateHash  string `json:"templateHash"`
	ParserVersion string `json:"parserVersion"`
}

// ValidationResult contains validation output. Valid is true when no
// error-severity issues were found; warnings alone do not invalidate a
// template.
type ValidationResult struct {
	Valid           bool               `json:"valid"`
	Summary         ValidationSummary  `json:"summary"`
	Issues          []ValidationIssue  `json:"issues"`
	IssuesTruncated bool               `json:"issuesTruncated"`
	Metadata        ValidationMetadata `json:"metadata"`
}

// Err converts the result into a ValidationError carrying the error-severity
// issues, or nil when the template is valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	errorIssues := make([]ValidationIssue, 0, len(r.Issues))
	for _, issue := range r.Issues {
		if issue.Severity == IssueSeverityError {
			errorIssues = append(errorIssues, issue)
		}
	}
	return &ValidationError{Issues: errorIssues}
}

// ValidateTemplate checks template text for problems the renderer would
// silently swallow: tokens that never close, expressions the parser rejects,
// and unbalanced control blocks. Render never fails, so this is the only
// place a template author hears about mistakes.
//
// Tokens in the custom-handler namespace ({{#name ...}} other than #if and
// #each) are reported as warnings, not errors, since they resolve only when
// a matching handler is supplied at render time.
func ValidateTemplate(template string) ValidationResult {
	return ValidateTemplateWithLimit(template, 0)
}

// ValidateTemplateWithLimit validates like ValidateTemplate but returns at
// most maxIssues issues. A limit of zero or less returns all issues.
func ValidateTemplateWithLimit(template string, maxIssues int) ValidationResult {
	spans := scanTemplateTokens(template)

	issues := validateTokenSpans(spans)
	sortValidationIssues(issues)
	for i := range issues {
		issues[i].ID = fmt.Sprintf("iss_%03d", i+1)
	}

	errorCount := 0
	warningCount := 0
	for _, issue := range issues {
		if issue.Severity == IssueSeverityError {
			errorCount++
		} else {
			warningCount++
		}
	}

	returnedIssues := issues
	issuesTruncated := false
	if maxIssues > 0 && len(issues) > maxIssues {
		returnedIssues = issues[:maxIssues]
		issuesTruncated = true
	}

	return ValidationResult{
		Valid: errorCount == 0,
		Summary: ValidationSummary{
			CheckedTokens:      len(spans),
			ErrorCount:         errorCount,
			WarningCount:       warningCount,
			ReturnedIssueCount: len(returnedIssues),
		},
		Issues:          returnedIssues,
		IssuesTruncated: issuesTruncated,
		Metadata:        newValidationMetadata(template),
	}
}

// ExtractReferences extracts variable/function/control references from the
// parseable tokens of a template, in template order.
func ExtractReferences(template string) []TemplateTokenRef {
	spans := scanTemplateTokens(template)
	references := extractReferencesFromSpans(spans)
	sortTemplateReferences(references)
	return references
}

type tokenSpan struct {
	Raw      string
	Inner    string
	Line     int
	Column   int
	Offset   int
	Ordinal  int
	Unclosed bool
	AnchorID string
}

type validationControlFrame struct {
	span    tokenSpan
	kind    string
	sawElse bool
}

// scanTemplateTokens finds every {{...}} span in the template, tracking
// line and column. An opening {{ with no closing }} consumes the rest of
// the text as a single unclosed span.
func scanTemplateTokens(template string) []tokenSpan {
	spans := make([]tokenSpan, 0, 16)
	line, column := 1, 1
	ordinal := 0

	i := 0
	for i < len(template) {
		if i+1 < len(template) && template[i] == '{' && template[i+1] == '{' {
			rel := strings.Index(template[i+2:], "}}")
			if rel < 0 {
				span := tokenSpan{
					Raw:      template[i:],
					Line:     line,
					Column:   column,
					Offset:   i,
					Ordinal:  ordinal,
					Unclosed: true,
				}
				span.AnchorID = buildAnchorID(span)
				spans = append(spans, span)
				break
			}

			raw := template[i : i+2+rel+2]
			span := tokenSpan{
				Raw:     raw,
				Inner:   strings.TrimSpace(raw[2 : len(raw)-2]),
				Line:    line,
				Column:  column,
				Offset:  i,
				Ordinal: ordinal,
			}
			span.AnchorID = buildAnchorID(span)
			spans = append(spans, span)
			ordinal++

			for _, r := range raw {
				if r == '\n' {
					line++
					column = 1
				} else {
					column++
				}
			}
			i += len(raw)
			continue
		}

		r, size := utf8.DecodeRuneInString(template[i:])
		if r == '\n' {
			line++
			column = 1
		} else {
			column++
		}
		i += size
	}

	return spans
}

// controlArgument returns the argument of a control marker such as "#if",
// and whether inner starts with that marker followed by whitespace or
// nothing. "#iffy" is not an #if token.
func controlArgument(inner, marker string) (string, bool) {
	if !strings.HasPrefix(inner, marker) {
		return "", false
	}
	rest := inner[len(marker):]
	if rest == "" {
		return "", true
	}
	if !isSpaceByte(rest[0]) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func validateTokenSpans(spans []tokenSpan) []ValidationIssue {
	issues := make([]ValidationIssue, 0)
	controlStack := make([]validationControlFrame, 0)

	appendIssue := func(severity IssueSeverity, code IssueCode, message string, span tokenSpan, kind TokenKind, expression string, suggestions []string) {
		issue := ValidationIssue{
			Severity: severity,
			Code:     code,
			Message:  message,
			Token: TemplateTokenRef{
				Raw:        span.Raw,
				Kind:       kind,
				Expression: expression,
				Location:   locationFromSpan(span),
			},
			Location:    locationFromSpan(span),
			Suggestions: suggestions,
		}
		issues = append(issues, issue)
	}

	for _, span := range spans {
		if span.Unclosed {
			appendIssue(IssueSeverityError, IssueCodeSyntaxError, "unclosed template token", span, TokenKindControl, "", nil)
			continue
		}

		inner := span.Inner
		switch {
		case inner == "":
			appendIssue(IssueSeverityError, IssueCodeSyntaxError, "empty template token", span, TokenKindControl, "", nil)

		case inner == "else":
			if len(controlStack) == 0 {
				appendIssue(IssueSeverityError, IssueCodeControlBlockMismatch, "{{else}} has no matching {{#if}} block", span, TokenKindControl, "", nil)
				continue
			}
			top := &controlStack[len(controlStack)-1]
			if top.kind != "if" {
				appendIssue(IssueSeverityError, IssueCodeControlBlockMismatch, "{{else}} only matches {{#if}} blocks", span, TokenKindControl, "", nil)
			} else if top.sawElse {
				appendIssue(IssueSeverityError, IssueCodeControlBlockMismatch, "{{else}} can only appear once in an {{#if}} block", span, TokenKindControl, "", nil)
			} else {
				top.sawElse = true
			}

		case inner == "/if":
			if len(controlStack) == 0 {
				appendIssue(IssueSeverityError, IssueCodeControlBlockMismatch, "{{/if}} has no matching {{#if}} block", span, TokenKindControl, "", nil)
				continue
			}
			top := controlStack[len(controlStack)-1]
			if top.kind != "if" {
				appendIssue(IssueSeverityError, IssueCodeControlBlockMismatch,
					fmt.Sprintf("{{/if}} closes the {{#each}} block opened by %q", top.span.Raw),
					span, TokenKindControl, "", []string{"{{/each}}"})
			}
			controlStack = controlStack[:len(controlStack)-1]

		case inner == "/each":
			if len(controlStack) == 0 {
				appendIssue(IssueSeverityError, IssueCodeControlBlockMismatch, "{{/each}} has no matching {{#each}} block", span, TokenKindControl, "", nil)
				continue
			}
			top := controlStack[len(controlStack)-1]
			if top.kind != "each" {
				appendIssue(IssueSeverityError, IssueCodeControlBlockMismatch,
					fmt.Sprintf("{{/each}} closes the {{#if}} block opened by %q", top.span.Raw),
					span, TokenKindControl, "", []string{"{{/if}}"})
			}
			controlStack = controlStack[:len(controlStack)-1]

		default:
			if condition, ok := controlArgument(inner, "#if"); ok {
				if condition == "" {
					appendIssue(IssueSeverityError, IssueCodeSyntaxError, "missing condition in {{#if}} block", span, TokenKindControl, "", nil)
				} else if _, err := ParseExpressionStrict(condition); err != nil {
					appendIssue(IssueSeverityError, IssueCodeUnsupportedExpr, fmt.Sprintf("unsupported if condition: %v", err), span, TokenKindControl, condition, nil)
				}
				controlStack = append(controlStack, validationControlFrame{span: span, kind: "if"})
				continue
			}

			if target, ok := controlArgument(inner, "#each"); ok {
				if target == "" {
					appendIssue(IssueSeverityError, IssueCodeSyntaxError, "missing target in {{#each}} block", span, TokenKindControl, "", nil)
				} else if _, err := ParseExpressionStrict(target); err != nil {
					appendIssue(IssueSeverityError, IssueCodeUnsupportedExpr, fmt.Sprintf("unsupported each target: %v", err), span, TokenKindControl, target, nil)
				}
				controlStack = append(controlStack, validationControlFrame{span: span, kind: "each"})
				continue
			}

			if strings.HasPrefix(inner, "#") {
				name := strings.Fields(inner)[0]
				appendIssue(IssueSeverityWarning, IssueCodeUnsupportedExpr,
					fmt.Sprintf("unknown directive %q resolves only if a custom handler matches it", name),
					span, TokenKindControl, "", nil)
				continue
			}

			if _, err := ParseExpressionStrict(inner); err != nil {
				appendIssue(IssueSeverityError, IssueCodeUnsupportedExpr, fmt.Sprintf("unsupported expression: %v", err), span, TokenKindVariable, inner, nil)
			}
		}
	}

	for _, opening := range controlStack {
		closer := "{{/if}}"
		if opening.kind == "each" {
			closer = "{{/each}}"
		}
		appendIssue(
			IssueSeverityError,
			IssueCodeControlBlockMismatch,
			fmt.Sprintf("missing %s for opening control block %q", closer, opening.span.Raw),
			opening.span,
			TokenKindControl,
			"",
			[]string{closer},
		)
	}

	return issues
}

func extractReferencesFromSpans(spans []tokenSpan) []TemplateTokenRef {
	references := make([]TemplateTokenRef, 0)

	appendRef := func(span tokenSpan, kind TokenKind, expression string) {
		ref := TemplateTokenRef{
			Raw:      span.Raw,
			Kind:     kind,
			Location: locationFromSpan(span),
		}
		if expression != "" {
			ref.Expression = expression
		}
		references = append(references, ref)
	}

	for _, span := range spans {
		if span.Unclosed || span.Inner == "" {
			continue
		}

		inner := span.Inner
		switch {
		case inner == "else" || inner == "/if" || inner == "/each":
			continue

		default:
			if condition, ok := controlArgument(inner, "#if"); ok {
				appendRef(span, TokenKindControl, condition)
				collectParsedReferences(condition, span, appendRef)
				continue
			}
			if target, ok := controlArgument(inner, "#each"); ok {
				appendRef(span, TokenKindControl, target)
				collectParsedReferences(target, span, appendRef)
				continue
			}
			if strings.HasPrefix(inner, "#") {
				continue
			}
			collectParsedReferences(inner, span, appendRef)
		}
	}

	return references
}

func collectParsedReferences(expression string, span tokenSpan, appendRef func(tokenSpan, TokenKind, string)) {
	node, err := ParseExpressionStrict(expression)
	if err != nil {
		return
	}
	collectExpressionReferences(node, func(kind TokenKind, expr string) {
		appendRef(span, kind, expr)
	})
}

func collectExpressionReferences(node ExpressionNode, emit func(kind TokenKind, expression string)) {
	if node == nil {
		return
	}

	if path, ok := referencePathFromNode(node); ok {
		emit(TokenKindVariable, path)
		if indexNode, ok := node.(*IndexAccessNode); ok {
			if _, literal := indexNode.Index.(*LiteralNode); !literal {
				collectExpressionReferences(indexNode.Index, emit)
			}
		}
		return
	}

	switch n := node.(type) {
	case *FunctionCallNode:
		emit(TokenKindFunction, n.Name)
		for _, arg := range n.Args {
			collectExpressionReferences(arg, emit)
		}
	case *BinaryOpNode:
		collectExpressionReferences(n.Left, emit)
		collectExpressionReferences(n.Right, emit)
	case *UnaryOpNode:
		collectExpressionReferences(n.Operand, emit)
	case *FieldAccessNode:
		collectExpressionReferences(n.Object, emit)
	case *IndexAccessNode:
		collectExpressionReferences(n.Object, emit)
		collectExpressionReferences(n.Index, emit)
	}
}

func referencePathFromNode(node ExpressionNode) (string, bool) {
	switch n := node.(type) {
	case *VariableNode:
		return n.Name, true
	case *FieldAccessNode:
		base, ok := referencePathFromNode(n.Object)
		if !ok {
			return "", false
		}
		return base + "." + n.Field, true
	case *IndexAccessNode:
		base, ok := referencePathFromNode(n.Object)
		if !ok {
			return "", false
		}

		literal, ok := n.Index.(*LiteralNode)
		if !ok {
			return "", false
		}

		switch v := literal.Value.(type) {
		case int:
			return fmt.Sprintf("%s[%d]", base, v), true
		case float64:
			if v == float64(int(v)) {
				return fmt.Sprintf("%s[%d]", base, int(v)), true
			}
			return fmt.Sprintf("%s[%g]", base, v), true
		case string:
			return fmt.Sprintf("%s[%q]", base, v), true
		default:
			return "", false
		}
	default:
		return "", false
	}
}

func locationFromSpan(span tokenSpan) TemplateLocation {
	return TemplateLocation{
		Line:         span.Line,
		Column:       span.Column,
		Offset:       span.Offset,
		TokenOrdinal: span.Ordinal,
		AnchorID:     span.AnchorID,
	}
}

func buildAnchorID(span tokenSpan) string {
	seed := strings.Join([]string{
		fmt.Sprintf("%d", span.Line),
		fmt.Sprintf("%d", span.Column),
		fmt.Sprintf("%d", span.Offset),
		span.Raw,
	}, "|")

	sum := sha256.Sum256([]byte(seed))
	return "anchor_" + hex.EncodeToString(sum[:8])
}

func newValidationMetadata(template string) ValidationMetadata {
	sum := sha256.Sum256([]byte(template))
	return ValidationMetadata{
		TemplateHash:  "sha256:" + hex.EncodeToString(sum[:]),
		ParserVersion: validationParserVersion,
	}
}

func sortValidationIssues(issues []ValidationIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		left := issues[i]
		right := issues[j]

		if left.Location.TokenOrdinal != right.Location.TokenOrdinal {
			return left.Location.TokenOrdinal < right.Location.TokenOrdinal
		}
		if left.Location.Offset != right.Location.Offset {
			return left.Location.Offset < right.Location.Offset
		}
		if left.Code != right.Code {
			return left.Code < right.Code
		}
		return left.Message < right.Message
	})
}

func sortTemplateReferences(references []TemplateTokenRef) {
	sort.SliceStable(references, func(i, j int) bool {
		left := references[i]
		right := references[j]

		if left.Location.TokenOrdinal != right.Location.TokenOrdinal {
			return left.Location.TokenOrdinal < right.Location.TokenOrdinal
		}
		if left.Location.Offset != right.Location.Offset {
			return left.Location.Offset < right.Location.Offset
		}
		if left.Kind != right.Kind {
			return left.Kind < right.Kind
		}
		if left.Expression != right.Expression {
			return left.Expression < right.Expression
		}
		return left.Raw < right.Raw
	})
}
