package loom

import (
	"errors"
	"strings"
	"testing"
)

func TestTemplateErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"line and column", NewTemplateError("bad tag", 2, 5), "template error at line 2, column 5: bad tag"},
		{"line only", NewTemplateError("bad tag", 2, 0), "template error at line 2: bad tag"},
		{"no position", NewTemplateError("bad tag", 0, 0), "template error: bad tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	err := NewParseError("unexpected token", "&&", 4)
	want := "parse error at position 4 near '&&': unexpected token"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = NewParseError("unexpected end of expression", "", 9)
	want = "parse error at position 9: unexpected end of expression"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestEvaluationErrorWrapsCause(t *testing.T) {
	cause := errors.New("division by zero")
	err := NewEvaluationError("1 / 0", cause)

	want := "evaluation error for expression '1 / 0': division by zero"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is() did not reach the cause")
	}

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Expression != "1 / 0" {
		t.Errorf("errors.As() = %v", evalErr)
	}
}

func TestHelperErrorMessage(t *testing.T) {
	cause := errors.New("bad input")
	err := NewHelperError("formatDate", []interface{}{1, "a"}, cause)

	want := "helper error in 'formatDate(1, a)': bad input"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is() did not reach the cause")
	}
}

func TestLoadErrorMessage(t *testing.T) {
	cause := errors.New("no such file")
	err := NewLoadError("letters/welcome.tpl", cause)

	want := "could not load template 'letters/welcome.tpl': no such file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is() did not reach the cause")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	issue := ValidationIssue{
		Code:     IssueCodeSyntaxError,
		Message:  "unbalanced quote",
		Location: TemplateLocation{Line: 1, Column: 3},
	}

	single := &ValidationError{Issues: []ValidationIssue{issue}}
	want := "validation error: [SYNTAX_ERROR] line 1, column 3: unbalanced quote"
	if single.Error() != want {
		t.Errorf("Error() = %q, want %q", single.Error(), want)
	}

	double := &ValidationError{Issues: []ValidationIssue{issue, issue}}
	msg := double.Error()
	if !strings.HasPrefix(msg, "2 validation issues:") {
		t.Errorf("Error() = %q, want a 2-issue header", msg)
	}
	if strings.Count(msg, "unbalanced quote") != 2 {
		t.Errorf("Error() = %q, want both issues listed", msg)
	}
}

func TestMultiError(t *testing.T) {
	m := NewMultiError()
	if m.Err() != nil {
		t.Errorf("Err() on empty collector = %v, want nil", m.Err())
	}

	m.Add(nil)
	if m.Len() != 0 {
		t.Errorf("Add(nil) was counted")
	}

	first := errors.New("first")
	m.Add(first)
	if m.Err() != first {
		t.Errorf("Err() with one entry = %v, want the entry itself", m.Err())
	}

	m.Add(errors.New("second"))
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	msg := m.Err().Error()
	if !strings.HasPrefix(msg, "2 errors occurred:") {
		t.Errorf("Error() = %q, want a 2-error header", msg)
	}
	if !strings.Contains(msg, "[1] first") || !strings.Contains(msg, "[2] second") {
		t.Errorf("Error() = %q, want numbered entries", msg)
	}
}

func TestRecoverError(t *testing.T) {
	cause := errors.New("inner")
	err := RecoverError(cause)
	if !errors.Is(err, cause) {
		t.Errorf("RecoverError(error) should wrap the original")
	}

	err = RecoverError("oops")
	if err.Error() != "panic recovered: oops" {
		t.Errorf("RecoverError(string) = %q", err.Error())
	}

	err = RecoverError(42)
	if err.Error() != "panic recovered: 42" {
		t.Errorf("RecoverError(int) = %q", err.Error())
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		want      bool
	}{
		{"template error", NewTemplateError("x", 1, 1), IsTemplateError, true},
		{"parse error", NewParseError("x", "", 0), IsParseError, true},
		{"evaluation error", NewEvaluationError("x", nil), IsEvaluationError, true},
		{"helper error", NewHelperError("h", nil, nil), IsHelperError, true},
		{"load error", NewLoadError("p", nil), IsLoadError, true},
		{"validation error", &ValidationError{}, IsValidationError, true},
		{"mismatched type", NewParseError("x", "", 0), IsLoadError, false},
		{"nil", nil, IsTemplateError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.predicate(tt.err); got != tt.want {
				t.Errorf("predicate(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	// The predicates check the error itself, not the chain; wrapped causes
	// are reached with errors.As.
	wrapped := NewEvaluationError("x", NewHelperError("h", nil, errors.New("boom")))
	if IsHelperError(wrapped) {
		t.Errorf("IsHelperError() matched through a wrapper")
	}
	var helperErr *HelperError
	if !errors.As(wrapped, &helperErr) {
		t.Errorf("errors.As() did not find the wrapped helper error")
	}
}
