package loom

import (
	"errors"
	"testing"
)

func TestEvaluateExpression(t *testing.T) {
	registry := newBuiltinRegistry()
	scope := TemplateData{"name": "go", "n": 4}

	tests := []struct {
		name string
		expr string
		want interface{}
	}{
		{"variable", "name", "go"},
		{"arithmetic", "n * 2 + 1", 9},
		{"helper", "uppercase(name)", "GO"},
		{"nested helpers", "lowercase(uppercase(name))", "go"},
		{"literal", `"plain"`, "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateExpression(tt.expr, scope, registry)
			if err != nil {
				t.Fatalf("EvaluateExpression(%q) error = %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateExpressionErrors(t *testing.T) {
	registry := newBuiltinRegistry()

	// Parse failures wrap the parse error
	_, err := EvaluateExpression("(name", nil, registry)
	if err == nil {
		t.Fatalf("EvaluateExpression() with bad syntax, want error")
	}
	if !IsEvaluationError(err) {
		t.Errorf("error = %T, want *EvaluationError", err)
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error chain %v does not contain *ParseError", err)
	}

	// Evaluation failures wrap the cause
	_, err = EvaluateExpression("1 / 0", nil, registry)
	if err == nil {
		t.Fatalf("EvaluateExpression(1 / 0), want error")
	}
	if !IsEvaluationError(err) {
		t.Errorf("error = %T, want *EvaluationError", err)
	}

	// Helper panics surface as helper errors inside the evaluation error
	_, err = EvaluateExpression("boom()", TemplateData{
		"boom": HelperFunc(func(args ...interface{}) (interface{}, error) {
			panic("no")
		}),
	}, registry)
	if err == nil {
		t.Fatalf("EvaluateExpression(boom()), want error")
	}
	var helperErr *HelperError
	if !errors.As(err, &helperErr) {
		t.Errorf("error chain %v does not contain *HelperError", err)
	}
	if helperErr.Helper != "boom" {
		t.Errorf("helper error names %q, want boom", helperErr.Helper)
	}
}

func TestEvalSilent(t *testing.T) {
	state := &renderState{
		scope:   TemplateData{"n": 2},
		helpers: newBuiltinRegistry(),
	}

	if got := state.evalSilent("n + 1"); got != 3 {
		t.Errorf("evalSilent(n + 1) = %v, want 3", got)
	}
	if got := state.evalSilent("1 / 0"); got != nil {
		t.Errorf("evalSilent(1 / 0) = %v, want nil", got)
	}
	if got := state.evalSilent("((("); got != nil {
		t.Errorf("evalSilent with bad syntax = %v, want nil", got)
	}
	if got := state.evalSilent("missing.deep.path"); got != nil {
		t.Errorf("evalSilent with missing path = %v, want nil", got)
	}
}

func TestEvalCondition(t *testing.T) {
	state := &renderState{
		scope: TemplateData{
			"yes":   true,
			"count": 0,
			"name":  "x",
		},
		helpers: newBuiltinRegistry(),
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"yes", true},
		{"count", false},
		{"name", true},
		{"missing", false},
		{"count == 0", true},
		{"count > 0", false},
		{"!yes", false},
		{"bad ( syntax", false},
	}

	for _, tt := range tests {
		if got := state.evalCondition(tt.expr); got != tt.want {
			t.Errorf("evalCondition(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}
