package css

import (
	"fmt"
	"strings"
	"sync"

	"bennypowers.dev/sitecheck/internal/log"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser handles parsing CSS with tree-sitter
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

// parserPool is a pool of reusable CSS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(cssLang); err != nil {
			panic(fmt.Sprintf("failed to set CSS language: %v", err))
		}
		return &Parser{parser: parser}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Parse parses a stylesheet and extracts top-level rule sets and @media blocks
func (p *Parser) Parse(source string) (*ParseResult, error) {
	src := canonicalImportant([]byte(source))
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		log.Debug("CSS source contains syntax errors; continuing with the recoverable tree")
	}

	result := &ParseResult{
		Rules:       []*RuleSet{},
		MediaBlocks: []*MediaBlock{},
	}
	p.walkTree(root, src, result, true)

	return result, nil
}

// walkTree collects media statements at any depth and rule sets at the top level
func (p *Parser) walkTree(node *sitter.Node, src []byte, result *ParseResult, top bool) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "media_statement", "at_rule":
		if block := p.handleMedia(node, src, result); block != nil {
			p.walkTree(block, src, result, false)
			return
		}
	case "rule_set":
		if top {
			if rule := parseRuleSet(node, src); rule != nil {
				result.Rules = append(result.Rules, rule)
			}
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		p.walkTree(node.Child(i), src, result, top)
	}
}

// handleMedia records an @media statement and returns its block node.
// Unterminated blocks are returned without being recorded.
// at_rule nodes are only treated as media when their keyword is @media in
// some other letter case.
func (p *Parser) handleMedia(node *sitter.Node, src []byte, result *ParseResult) *sitter.Node {
	block := lastChildOfKind(node, "block")
	if block == nil {
		return nil
	}

	head := string(src[node.StartByte():block.StartByte()])
	if len(head) < len("@media") || !strings.EqualFold(head[:len("@media")], "@media") {
		return nil
	}
	if !isClosed(block) {
		log.Debug("skipping unterminated @media at line %d", node.StartPosition().Row+1)
		return block
	}

	condition := NormalizeCondition(head[len("@media"):])
	features, types, negated := analyzeCondition(condition)

	media := &MediaBlock{
		Condition:  condition,
		MediaTypes: types,
		Negated:    negated,
		Features:   features,
		Body:       string(src[block.StartByte()+1 : block.EndByte()-1]),
		Rules:      []*RuleSet{},
		Range:      nodeRange(node),
	}
	for i := uint(0); i < block.ChildCount(); i++ {
		child := block.Child(i)
		if child.Kind() != "rule_set" {
			continue
		}
		if rule := parseRuleSet(child, src); rule != nil {
			media.Rules = append(media.Rules, rule)
		}
	}

	log.Debug("found @media %q with %d rule sets at line %d", condition, len(media.Rules), media.Range.Start.Line+1)
	result.MediaBlocks = append(result.MediaBlocks, media)
	return block
}

func parseRuleSet(node *sitter.Node, src []byte) *RuleSet {
	selectors := lastChildOfKind(node, "selectors")
	block := lastChildOfKind(node, "block")
	if selectors == nil || block == nil {
		return nil
	}

	rule := &RuleSet{
		Selectors:    splitSelectors(selectors.Utf8Text(src)),
		Declarations: []*Declaration{},
		Range:        nodeRange(node),
	}
	for i := uint(0); i < block.ChildCount(); i++ {
		child := block.Child(i)
		if child.Kind() != "declaration" {
			continue
		}
		if decl := parseDeclaration(child, src); decl != nil {
			rule.Declarations = append(rule.Declarations, decl)
		}
	}
	return rule
}

// parseDeclaration reads the value as the source text between the colon and
// the !important marker or terminating semicolon.
func parseDeclaration(node *sitter.Node, src []byte) *Declaration {
	var property, colon, important, semicolon *sitter.Node

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "property_name":
			property = child
		case ":":
			if colon == nil {
				colon = child
			}
		case "important":
			important = child
		case ";":
			semicolon = child
		}
	}

	if property == nil || colon == nil {
		return nil
	}

	end := node.EndByte()
	switch {
	case important != nil:
		end = important.StartByte()
	case semicolon != nil:
		end = semicolon.StartByte()
	}

	value, marked := SplitImportant(string(src[colon.EndByte():end]))

	return &Declaration{
		Property:  strings.ToLower(strings.TrimSpace(property.Utf8Text(src))),
		Value:     value,
		Important: important != nil || marked,
		Range:     nodeRange(node),
	}
}

// isClosed reports whether a block ends in a real closing brace. Error
// recovery on truncated input inserts a zero-width MISSING one.
func isClosed(block *sitter.Node) bool {
	n := block.ChildCount()
	if n == 0 || block.EndByte()-block.StartByte() < 2 {
		return false
	}
	last := block.Child(n - 1)
	return last.Kind() == "}" && !last.IsMissing()
}

func lastChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	var found *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == kind {
			found = child
		}
	}
	return found
}

func nodeRange(node *sitter.Node) Range {
	return Range{
		Start: Position{
			Line:      uint32(node.StartPosition().Row),    //nolint:gosec // G115: tree-sitter positions are bounded by file size
			Character: uint32(node.StartPosition().Column), //nolint:gosec // G115: tree-sitter positions are bounded by file size
		},
		End: Position{
			Line:      uint32(node.EndPosition().Row),    //nolint:gosec // G115: tree-sitter positions are bounded by file size
			Character: uint32(node.EndPosition().Column), //nolint:gosec // G115: tree-sitter positions are bounded by file size
		},
	}
}
