package css

import "strconv"

// Position represents a zero-based position in a text document
type Position struct {
	Line      uint32
	Character uint32
}

// Range represents a range in a text document
type Range struct {
	Start Position
	End   Position
}

// Declaration is a single `property: value` pair inside a rule block
type Declaration struct {
	// Property is lower-cased
	Property string
	// Value is whitespace-normalized and excludes any !important marker
	Value     string
	Important bool
	Range     Range
}

// RuleSet is a selector list with its declaration block
type RuleSet struct {
	// Selectors holds each comma-separated selector, normalized with NormalizeSelector
	Selectors    []string
	Declarations []*Declaration
	Range        Range
}

// Matches reports whether the rule set's selector list contains selector
func (r *RuleSet) Matches(selector string) bool {
	want := NormalizeSelector(selector)
	for _, s := range r.Selectors {
		if s == want {
			return true
		}
	}
	return false
}

// Feature is a single media feature such as (max-width: 390px)
type Feature struct {
	Name  string
	Value string
}

// MediaBlock is an @media statement with its balanced block
type MediaBlock struct {
	// Condition is the lower-cased, whitespace-normalized query text
	Condition  string
	MediaTypes []string
	// Negated is set for `not <type>` queries
	Negated  bool
	Features []Feature
	// Body is the raw text between the block's braces
	Body  string
	Rules []*RuleSet
	Range Range
}

// Feature returns the value of the named media feature
func (m *MediaBlock) Feature(name string) (string, bool) {
	for _, f := range m.Features {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// MaxWidth returns the pixel threshold of a (max-width: Npx) feature
func (m *MediaBlock) MaxWidth() (int, bool) {
	v, ok := m.Feature("max-width")
	if !ok || len(v) < 3 || v[len(v)-2:] != "px" {
		return 0, false
	}
	n, err := strconv.Atoi(v[:len(v)-2])
	if err != nil {
		return 0, false
	}
	return n, true
}

// HasMediaType reports whether the query applies to the given media type.
// A negated query excludes the types it names.
func (m *MediaBlock) HasMediaType(mediaType string) bool {
	if m.Negated {
		return false
	}
	for _, t := range m.MediaTypes {
		if t == mediaType {
			return true
		}
	}
	return false
}

// Declarations returns, in source order, every declaration of property from
// rule sets in the block whose selector list contains selector.
func (m *MediaBlock) Declarations(selector, property string) []*Declaration {
	return collectDeclarations(m.Rules, selector, property)
}

// ParseResult contains the results of parsing a stylesheet
type ParseResult struct {
	// Rules holds top-level rule sets outside any at-rule
	Rules       []*RuleSet
	MediaBlocks []*MediaBlock
}

func collectDeclarations(rules []*RuleSet, selector, property string) []*Declaration {
	var decls []*Declaration
	for _, r := range rules {
		if !r.Matches(selector) {
			continue
		}
		for _, d := range r.Declarations {
			if d.Property == property {
				decls = append(decls, d)
			}
		}
	}
	return decls
}

// Effective picks the declaration that wins the cascade among decls of the
// same property and selector: the last !important one, else the last one.
func Effective(decls []*Declaration) *Declaration {
	var last, lastImportant *Declaration
	for _, d := range decls {
		last = d
		if d.Important {
			lastImportant = d
		}
	}
	if lastImportant != nil {
		return lastImportant
	}
	return last
}
