// Package matcher selects hashtags and other catalog strings by glob or
// regular expression. Matching ignores case and a leading "#" so that
// "pallet*" and "#Pallet*" select the same hashtags.
package matcher

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/agentstation/docsync/pkg/errors"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher reports whether strings match one pattern.
type Matcher struct {
	pattern     string
	patternType PatternType
	glob        string
	compiled    *regexp.Regexp
}

// New compiles pattern. An empty pattern matches everything.
func New(patternType PatternType, pattern string) (*Matcher, error) {
	m := &Matcher{pattern: pattern, patternType: patternType}
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}

	switch m.patternType {
	case Glob:
		m.glob = fold(pattern)
		if _, err := path.Match(m.glob, ""); err != nil {
			return nil, errors.NewValidationError("pattern", pattern, fmt.Sprintf("invalid glob: %v", err))
		}
	case Regex:
		compiled, err := regexp.Compile("(?i)" + strings.TrimPrefix(pattern, "#"))
		if err != nil {
			return nil, errors.NewValidationError("pattern", pattern, fmt.Sprintf("invalid regex: %v", err))
		}
		m.compiled = compiled
	default:
		return nil, errors.NewValidationError("pattern", pattern, "unsupported pattern type "+m.patternType.String())
	}
	return m, nil
}

// Match checks if the input matches the pattern.
func (m *Matcher) Match(input string) bool {
	if m.pattern == "" {
		return true
	}
	if m.patternType == Regex {
		return m.compiled.MatchString(strings.TrimPrefix(input, "#"))
	}
	matched, _ := path.Match(m.glob, fold(input))
	return matched
}

// MatchAll returns the matching inputs in their original order.
func (m *Matcher) MatchAll(inputs ...string) []string {
	results := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if m.Match(input) {
			results = append(results, input)
		}
	}
	return results
}

// Pattern returns the original pattern string.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Type returns the pattern type being used.
func (m *Matcher) Type() PatternType {
	return m.patternType
}

// FilterStrings filters items with an auto-detected pattern.
func FilterStrings(pattern string, items ...string) ([]string, error) {
	m, err := New(Auto, pattern)
	if err != nil {
		return nil, err
	}
	return m.MatchAll(items...), nil
}

// detectPatternType treats patterns carrying regex-only syntax as regular
// expressions and everything else as a glob.
func detectPatternType(pattern string) PatternType {
	for _, indicator := range []string{"^", "$", "\\d", "\\w", "\\s", "(?", "{", "}", "+", "|", "(", ")"} {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

func fold(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}
