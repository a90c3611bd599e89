package loom

import (
	"reflect"
	"testing"
	"time"
)

func TestExtendScope(t *testing.T) {
	parent := TemplateData{"a": 1, "b": 2}
	child := extendScope(parent, TemplateData{"b": 3, "c": 4})

	if child["a"] != 1 || child["b"] != 3 || child["c"] != 4 {
		t.Errorf("extendScope() = %v, want a=1 b=3 c=4", child)
	}
	if parent["b"] != 2 {
		t.Errorf("extendScope() modified parent: b = %v, want 2", parent["b"])
	}
	if _, ok := parent["c"]; ok {
		t.Errorf("extendScope() leaked override key into parent")
	}
}

func TestExtendScopeNilInputs(t *testing.T) {
	child := extendScope(nil, TemplateData{"x": 1})
	if child["x"] != 1 {
		t.Errorf("extendScope(nil, overrides) = %v, want x=1", child)
	}

	child = extendScope(TemplateData{"y": 2}, nil)
	if child["y"] != 2 {
		t.Errorf("extendScope(parent, nil) = %v, want y=2", child)
	}
}

func TestLookupPath(t *testing.T) {
	scope := TemplateData{
		"name": "Faiz",
		"user": map[string]interface{}{
			"name": "Ada",
			"address": map[string]interface{}{
				"city": "London",
			},
		},
		"nested": TemplateData{
			"inner": "deep",
		},
		"items": []interface{}{
			map[string]interface{}{"name": "A", "price": 1},
			map[string]interface{}{"name": "B", "price": 2},
		},
		"tags":   []string{"go", "templates"},
		"scores": []float64{1.5, 2.5},
		"counts": map[string]int{"a": 5},
		"labels": map[string]string{"title": "Hi"},
		"matrix": []interface{}{
			[]interface{}{1, 2},
			[]interface{}{3, 4},
		},
		"grid":   [2]int{7, 8},
		"ratios": map[string]float32{"x": 1.5},
	}

	tests := []struct {
		name      string
		path      string
		want      interface{}
		wantFound bool
	}{
		{"top level", "name", "Faiz", true},
		{"dotted", "user.name", "Ada", true},
		{"deep dotted", "user.address.city", "London", true},
		{"template data nested", "nested.inner", "deep", true},
		{"index then field", "items[0].name", "A", true},
		{"index", "items[1]", map[string]interface{}{"name": "B", "price": 2}, true},
		{"negative index", "tags[-1]", "templates", true},
		{"typed string slice", "tags[0]", "go", true},
		{"typed float slice", "scores[1]", 2.5, true},
		{"typed int map", "counts.a", 5, true},
		{"typed string map", "labels.title", "Hi", true},
		{"quoted bracket key single", "user['name']", "Ada", true},
		{"quoted bracket key double", `user["name"]`, "Ada", true},
		{"nested index", "matrix[1][0]", 3, true},
		{"array via reflection", "grid[0]", 7, true},
		{"map via reflection", "ratios.x", float32(1.5), true},
		{"leading path then index", "user.address['city']", "London", true},
		{"whitespace trimmed", "  name  ", "Faiz", true},
		{"missing top level", "missing", nil, false},
		{"missing nested", "user.missing", nil, false},
		{"missing deep chain", "missing.deep.deeper", nil, false},
		{"index out of range", "tags[5]", nil, false},
		{"negative out of range", "tags[-3]", nil, false},
		{"field of scalar", "name.length", nil, false},
		{"index of scalar", "name[0]", nil, false},
		{"empty path", "", nil, false},
		{"blank path", "   ", nil, false},
		{"double dot", "user..name", nil, false},
		{"trailing dot", "user.", nil, false},
		{"unclosed bracket", "tags[0", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := LookupPath(scope, tt.path)
			if found != tt.wantFound {
				t.Fatalf("LookupPath(%q) found = %v, want %v", tt.path, found, tt.wantFound)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LookupPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestLookupPathNilScope(t *testing.T) {
	if _, found := LookupPath(nil, "anything"); found {
		t.Errorf("LookupPath(nil, ...) found = true, want false")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"int", 42, "42"},
		{"int64", int64(7), "7"},
		{"uint", uint8(9), "9"},
		{"float", 3.14, "3.14"},
		{"whole float", float64(1000), "1000"},
		{"float32", float32(2.5), "2.5"},
		{"float precision", 19.99, "19.99"},
		{"float artifact", 0.1 + 0.2, "0.3"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"time", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), "2024-03-15T10:30:00Z"},
		{"slice", []interface{}{1, 2}, "[1 2]"},
		{"map", map[string]interface{}{"a": 1}, "map[a:1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.value); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatValueCallables(t *testing.T) {
	fn := func() {}
	if got := FormatValue(fn); got != "" {
		t.Errorf("FormatValue(func) = %q, want empty", got)
	}

	var helper HelperFunc = func(args ...interface{}) (interface{}, error) { return nil, nil }
	if got := FormatValue(helper); got != "" {
		t.Errorf("FormatValue(HelperFunc) = %q, want empty", got)
	}
}

func TestParsePathSegments(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    []pathSegment
		wantErr bool
	}{
		{
			name: "single field",
			path: "name",
			want: []pathSegment{{kind: segmentField, value: "name"}},
		},
		{
			name: "dotted fields",
			path: "a.b.c",
			want: []pathSegment{
				{kind: segmentField, value: "a"},
				{kind: segmentField, value: "b"},
				{kind: segmentField, value: "c"},
			},
		},
		{
			name: "bracket index",
			path: "items[0]",
			want: []pathSegment{
				{kind: segmentField, value: "items"},
				{kind: segmentBracket, value: "0"},
			},
		},
		{
			name: "mixed",
			path: "a[1].b",
			want: []pathSegment{
				{kind: segmentField, value: "a"},
				{kind: segmentBracket, value: "1"},
				{kind: segmentField, value: "b"},
			},
		},
		{
			name:    "double dot",
			path:    "a..b",
			wantErr: true,
		},
		{
			name:    "unclosed bracket",
			path:    "a[0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePathSegments(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePathSegments(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parsePathSegments(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
