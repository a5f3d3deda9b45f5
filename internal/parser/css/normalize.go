package css

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun    = regexp.MustCompile(`\s+`)
	aroundPunct      = regexp.MustCompile(`\s*([,()])\s*`)
	aroundColon      = regexp.MustCompile(`\s*:\s*`)
	aroundCombinator = regexp.MustCompile(`\s*([>+~])\s*`)
	importantSuffix  = regexp.MustCompile(`(?i)\s*!\s*important\s*$`)
	importantMarker  = regexp.MustCompile(`(?i)!(\s*)important`)
	featurePattern   = regexp.MustCompile(`\(([a-z-]+):([^()]*)\)`)
	parenGroup       = regexp.MustCompile(`\([^()]*\)`)
)

// NormalizeValue collapses whitespace in a declaration value and removes it
// around commas and parentheses, so `rgba(0, 0, 0)` equals `rgba(0,0,0)`.
func NormalizeValue(v string) string {
	v = whitespaceRun.ReplaceAllString(strings.TrimSpace(v), " ")
	return aroundPunct.ReplaceAllString(v, "$1")
}

// SplitImportant separates a trailing !important marker from a value
func SplitImportant(v string) (string, bool) {
	if loc := importantSuffix.FindStringIndex(v); loc != nil {
		return NormalizeValue(v[:loc[0]]), true
	}
	return NormalizeValue(v), false
}

// canonicalImportant rewrites every `! IMPORTANT` spelling to the lower-case
// `!important` token the grammar knows. The whitespace moves after the
// keyword, so byte offsets and line numbers are unchanged.
func canonicalImportant(src []byte) []byte {
	return importantMarker.ReplaceAll(src, []byte("!important$1"))
}

// NormalizeSelector collapses whitespace in a single selector and removes it
// around combinators.
func NormalizeSelector(s string) string {
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	return aroundCombinator.ReplaceAllString(s, "$1")
}

// splitSelectors splits a selector list on top-level commas
func splitSelectors(list string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range list {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, NormalizeSelector(list[start:i]))
				start = i + 1
			}
		}
	}
	if last := NormalizeSelector(list[start:]); last != "" {
		out = append(out, last)
	}
	return out
}

// NormalizeCondition lower-cases a media query and normalizes its whitespace
func NormalizeCondition(c string) string {
	c = strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(c), " "))
	c = aroundColon.ReplaceAllString(c, ":")
	c = strings.ReplaceAll(c, "( ", "(")
	return strings.ReplaceAll(c, " )", ")")
}

// analyzeCondition extracts media features and media types from a
// normalized condition. negated is set when the query starts with `not`.
func analyzeCondition(condition string) (features []Feature, types []string, negated bool) {
	for _, m := range featurePattern.FindAllStringSubmatch(condition, -1) {
		features = append(features, Feature{
			Name:  m[1],
			Value: strings.ReplaceAll(m[2], " ", ""),
		})
	}

	bare := parenGroup.ReplaceAllString(condition, " ")
	for i, word := range strings.FieldsFunc(bare, func(r rune) bool { return r == ' ' || r == ',' }) {
		switch word {
		case "not":
			if i == 0 {
				negated = true
			}
			continue
		case "and", "or", "only":
			continue
		}
		types = append(types, word)
	}
	return features, types, negated
}
