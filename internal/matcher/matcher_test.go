package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docsync/pkg/errors"
)

var tags = []string{"#cobot", "#palletizing", "#Pallet-Jack", "#vision", "#TMflow2"}

func TestDetectPatternType(t *testing.T) {
	tests := []struct {
		pattern string
		want    PatternType
	}{
		{"pallet*", Glob},
		{"#vis?on", Glob},
		{"tm[a-z]*", Glob},
		{"plain", Glob},
		{"^pallet", Regex},
		{"flow\\d$", Regex},
		{"cobot|vision", Regex},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, detectPatternType(tt.pattern))
		})
	}
}

func TestMatchAll(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{name: "empty matches all", pattern: "", want: tags},
		{name: "glob ignores case", pattern: "pallet*", want: []string{"#palletizing", "#Pallet-Jack"}},
		{name: "glob with hash", pattern: "#Vision", want: []string{"#vision"}},
		{name: "glob single char", pattern: "c?bot", want: []string{"#cobot"}},
		{name: "regex alternation", pattern: "^(cobot|vision)$", want: []string{"#cobot", "#vision"}},
		{name: "regex digits", pattern: "flow\\d$", want: []string{"#TMflow2"}},
		{name: "no match", pattern: "gripper*", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterStrings(tt.pattern, tags...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Explicit(t *testing.T) {
	m, err := New(Regex, "pallet")
	require.NoError(t, err)
	assert.Equal(t, Regex, m.Type())
	assert.Equal(t, "pallet", m.Pattern())
	assert.True(t, m.Match("#Palletizing"))

	m, err = New(Glob, "pallet")
	require.NoError(t, err)
	assert.False(t, m.Match("#Palletizing"))
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Glob, "[unclosed")
	assert.True(t, errors.IsValidationError(err))

	_, err = New(Regex, "(unclosed")
	assert.True(t, errors.IsValidationError(err))

	_, err = New(PatternType(9), "x")
	assert.True(t, errors.IsValidationError(err))
}

func TestPatternTypeString(t *testing.T) {
	assert.Equal(t, "glob", Glob.String())
	assert.Equal(t, "regex", Regex.String())
	assert.Equal(t, "auto", Auto.String())
	assert.Equal(t, "unknown", PatternType(7).String())
}
