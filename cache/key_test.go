package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name  string
		fn    string
		input any
		want  string
	}{
		{
			name:  "no input",
			fn:    "getCollections",
			input: nil,
			want:  "cache:getCollections:",
		},
		{
			name:  "single field object",
			fn:    "getProductDetails",
			input: map[string]string{"productSlug": "widget-a"},
			want:  `cache:getProductDetails:{"productSlug":"widget-a"}`,
		},
		{
			name:  "struct fields sorted",
			fn:    "fn",
			input: struct{ Zeta, Alpha string }{Zeta: "z", Alpha: "a"},
			want:  `cache:fn:{"Alpha":"a","Zeta":"z"}`,
		},
		{
			name: "nested objects sorted",
			fn:   "fn",
			input: map[string]any{
				"b": map[string]any{"y": 1, "x": 2},
				"a": []any{map[string]any{"d": true, "c": nil}},
			},
			want: `cache:fn:{"a":[{"c":null,"d":true}],"b":{"x":2,"y":1}}`,
		},
		{
			name:  "numbers keep their representation",
			fn:    "fn",
			input: map[string]any{"n": 12345678901234567},
			want:  `cache:fn:{"n":12345678901234567}`,
		},
		{
			name:  "html characters are not escaped",
			fn:    "getSearchResults",
			input: map[string]string{"searchTerm": "a&b<c>"},
			want:  `cache:getSearchResults:{"searchTerm":"a&b<c>"}`,
		},
		{
			name:  "plain string",
			fn:    "fn",
			input: "hello:world",
			want:  `cache:fn:"hello:world"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildKey(tt.fn, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildKey_EquivalentInputs(t *testing.T) {
	type search struct {
		Term string `json:"searchTerm"`
		Page int    `json:"page"`
	}

	fromStruct, err := BuildKey("getSearchResults", search{Term: "blue", Page: 1})
	require.NoError(t, err)
	fromMap, err := BuildKey("getSearchResults", map[string]any{"page": 1, "searchTerm": "blue"})
	require.NoError(t, err)

	assert.Equal(t, fromStruct, fromMap)
}

func TestBuildKey_Unencodable(t *testing.T) {
	_, err := BuildKey("fn", func() {})
	assert.Error(t, err)
}

func TestFunctionPrefix(t *testing.T) {
	assert.Equal(t, "cache:getCategory:", FunctionPrefix("getCategory"))
}
