package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		declared string
		ok       bool
	}{
		// Bare containers fail downstream schema generation.
		{"dict", false},
		{"list", false},
		{"dict?", false},
		{"list?", false},

		// Parameterized containers are fine.
		{"dict[str, str]", true},
		{"dict[str,str]", true},
		{"list[int]", true},
		{"list[dict[str, int]]", true},
		{"dict[str, list[str]]", true},
		{"dict[str, str]?", true},

		// Scalars are accepted unconditionally, including unknown ones.
		{"str", true},
		{"int", true},
		{"float", true},
		{"bool", true},
		{"any", true},
		{"uuid", true},
		{"str?", true},

		// Malformed forms.
		{"", false},
		{"dict[str", false},
		{"dict[]", false},
		{"dict[str, str, str]", false},
		{"list[int, int]", false},
		{"str[int]", false},
		{"dict[str, list]", false},
		{"list[dict]", false},
		{"[str]", false},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			ok, reason := Validate(tt.declared)
			assert.Equal(t, tt.ok, ok, "reason: %s", reason)
			if !tt.ok {
				assert.NotEmpty(t, reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}

func TestValidateReasonNamesTheFix(t *testing.T) {
	ok, reason := Validate("dict")
	assert.False(t, ok)
	assert.Contains(t, reason, "dict[str, str]")

	ok, reason = Validate("list")
	assert.False(t, ok)
	assert.Contains(t, reason, "list[int]")
}

func TestSplitType(t *testing.T) {
	base, params, err := splitType("dict[str, list[int]]")
	assert.NoError(t, err)
	assert.Equal(t, "dict", base)
	assert.Equal(t, []string{"str", "list[int]"}, params)

	base, params, err = splitType("str")
	assert.NoError(t, err)
	assert.Equal(t, "str", base)
	assert.Nil(t, params)
}
