package harness

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"bennypowers.dev/sitecheck/internal/log"
	"bennypowers.dev/sitecheck/internal/parser/css"
	"bennypowers.dev/sitecheck/internal/parser/html"
	"github.com/mazznoer/csscolorparser"
)

// Stylesheet is a loaded and parsed style artifact
type Stylesheet struct {
	Source *Source
	Result *css.ParseResult
}

// LoadStylesheet reads a stylesheet. For HTML documents the contents of
// every <style> element are parsed instead.
func LoadStylesheet(fsys fs.FS, name string) (*Stylesheet, error) {
	src, err := LoadSource(fsys, name)
	if err != nil {
		return nil, err
	}

	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)

	if !isHTML(name) {
		result, err := parser.Parse(src.Text)
		if err != nil {
			return nil, NewSetupError(name, "parse failed", err)
		}
		return &Stylesheet{Source: src, Result: result}, nil
	}

	result := &css.ParseResult{Rules: []*css.RuleSet{}, MediaBlocks: []*css.MediaBlock{}}
	for _, region := range embeddedRegions(src.Text, html.StyleTag) {
		parsed, err := parser.Parse(region.Content)
		if err != nil {
			log.Debug("failed to parse <style> at %d:%d in %s: %v", region.StartLine, region.StartCol, name, err)
			continue
		}
		for _, rule := range parsed.Rules {
			offsetRuleSet(rule, region)
		}
		for _, media := range parsed.MediaBlocks {
			media.Range = offsetRange(media.Range, region)
			for _, rule := range media.Rules {
				offsetRuleSet(rule, region)
			}
		}
		result.Rules = append(result.Rules, parsed.Rules...)
		result.MediaBlocks = append(result.MediaBlocks, parsed.MediaBlocks...)
	}
	return &Stylesheet{Source: src, Result: result}, nil
}

func offsetRuleSet(rule *css.RuleSet, region html.Region) {
	rule.Range = offsetRange(rule.Range, region)
	for _, d := range rule.Declarations {
		d.Range = offsetRange(d.Range, region)
	}
}

// MediaQuery selects @media blocks by their max-width threshold. An empty
// MediaType, or "*", matches any media type.
type MediaQuery struct {
	MaxWidth  int
	MediaType string
}

func (q MediaQuery) String() string {
	if q.MediaType == "" || q.MediaType == "*" {
		return fmt.Sprintf("@media (max-width: %dpx)", q.MaxWidth)
	}
	return fmt.Sprintf("@media %s and (max-width: %dpx)", q.MediaType, q.MaxWidth)
}

func (q MediaQuery) matches(block *css.MediaBlock) bool {
	width, ok := block.MaxWidth()
	if !ok || width != q.MaxWidth {
		return false
	}
	if q.MediaType == "" || q.MediaType == "*" {
		return true
	}
	return block.HasMediaType(strings.ToLower(q.MediaType))
}

// MediaBlocks returns every block matching q in source order
func (s *Stylesheet) MediaBlocks(q MediaQuery) []*css.MediaBlock {
	var blocks []*css.MediaBlock
	for _, block := range s.Result.MediaBlocks {
		if q.matches(block) {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// LocateMediaBlock returns the first block matching q
func (s *Stylesheet) LocateMediaBlock(q MediaQuery) (*css.MediaBlock, bool) {
	blocks := s.MediaBlocks(q)
	if len(blocks) == 0 {
		log.Debug("no %s block in %s", q, s.Source.Path)
		return nil, false
	}
	return blocks[0], true
}

// AssertUniqueMediaBlock fails unless exactly one block matches q
func (s *Stylesheet) AssertUniqueMediaBlock(q MediaQuery) error {
	blocks := s.MediaBlocks(q)
	if len(blocks) == 1 {
		return nil
	}
	if len(blocks) == 0 {
		return fail("exactly one "+q.String()+" block", "none")
	}
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		lines = append(lines, strconv.FormatUint(uint64(b.Range.Start.Line+1), 10))
	}
	return fail("exactly one "+q.String()+" block", "%d blocks at lines %s", len(blocks), strings.Join(lines, ", "))
}

// Declaration is an expected property value. Value may end in !important,
// which is equivalent to setting Important.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

func (d Declaration) String() string {
	value, important := css.SplitImportant(d.Value)
	if important || d.Important {
		return fmt.Sprintf("%s: %s !important", strings.ToLower(d.Property), value)
	}
	return fmt.Sprintf("%s: %s", strings.ToLower(d.Property), value)
}

// AssertDeclaration checks that the cascade-winning declaration of
// want.Property for selector inside block has the expected value.
func AssertDeclaration(block *css.MediaBlock, selector string, want Declaration) error {
	expected := fmt.Sprintf("%s { %s }", css.NormalizeSelector(selector), want)
	if block == nil {
		return fail(expected, "no media block")
	}

	hasRule := false
	for _, rule := range block.Rules {
		if rule.Matches(selector) {
			hasRule = true
			break
		}
	}
	if !hasRule {
		return fail(expected, "no rule for %s in @media %s", css.NormalizeSelector(selector), block.Condition)
	}

	property := strings.ToLower(strings.TrimSpace(want.Property))
	actual := css.Effective(block.Declarations(selector, property))
	if actual == nil {
		return fail(expected, "no %s declaration", property)
	}

	value, important := css.SplitImportant(want.Value)
	important = important || want.Important

	if !valuesEqual(actual.Value, value) || (important && !actual.Important) {
		return fail(expected, "%s at line %d", formatDeclaration(actual), actual.Range.Start.Line+1)
	}
	return nil
}

func formatDeclaration(d *css.Declaration) string {
	if d.Important {
		return fmt.Sprintf("%s: %s !important", d.Property, d.Value)
	}
	return fmt.Sprintf("%s: %s", d.Property, d.Value)
}

// valuesEqual compares normalized values, treating two spellings of the
// same color as equal.
func valuesEqual(actual, expected string) bool {
	actual, expected = css.NormalizeValue(actual), css.NormalizeValue(expected)
	if strings.EqualFold(actual, expected) {
		return true
	}
	a, err := csscolorparser.Parse(actual)
	if err != nil {
		return false
	}
	e, err := csscolorparser.Parse(expected)
	if err != nil {
		return false
	}
	return a.HexString() == e.HexString()
}
