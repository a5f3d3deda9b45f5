package js

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"bennypowers.dev/sitecheck/internal/log"
	"bennypowers.dev/sitecheck/internal/parser/css"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// Parser handles parsing JavaScript to extract widget construction calls
type Parser struct {
	parser   *sitter.Parser
	newQuery *sitter.Query
}

var jsLang = sitter.NewLanguage(tree_sitter_javascript.Language())

// parserPool is a pool of reusable JS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(jsLang); err != nil {
			panic(fmt.Sprintf("failed to set JS language: %v", err))
		}

		newQuery, qerr := sitter.NewQuery(jsLang, `
			(new_expression
				constructor: (identifier) @constructor
				arguments: (arguments) @arguments) @call
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile new_expression query: %v", qerr))
		}

		return &Parser{
			parser:   parser,
			newQuery: newQuery,
		}
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
	if p.newQuery != nil {
		p.newQuery.Close()
	}
}

// ParseWidgets finds every `new <constructor>(...)` expression in source, in
// source order.
func (p *Parser) ParseWidgets(source, constructor string) ([]*WidgetCall, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse JavaScript")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		log.Debug("JavaScript source contains syntax errors; continuing with the recoverable tree")
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	type found struct {
		start uint
		call  *WidgetCall
	}
	var calls []found

	matches := cursor.Matches(p.newQuery, root, src)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var name string
		var args, expr sitter.Node
		hasArgs, hasExpr := false, false

		for _, capture := range match.Captures {
			switch p.newQuery.CaptureNames()[capture.Index] {
			case "constructor":
				name = capture.Node.Utf8Text(src)
			case "arguments":
				args = capture.Node
				hasArgs = true
			case "call":
				expr = capture.Node
				hasExpr = true
			}
		}

		if name != constructor || !hasArgs || !hasExpr {
			continue
		}

		call := newWidgetCall(name, &expr, &args, src)
		log.Debug("found new %s(%q) at line %d", name, call.Selector, call.Range.Start.Line+1)
		calls = append(calls, found{start: expr.StartByte(), call: call})
	}

	slices.SortStableFunc(calls, func(a, b found) int {
		return cmp.Compare(a.start, b.start)
	})

	result := make([]*WidgetCall, 0, len(calls))
	for _, f := range calls {
		result = append(result, f.call)
	}
	return result, nil
}

func newWidgetCall(constructor string, expr, args *sitter.Node, src []byte) *WidgetCall {
	call := &WidgetCall{
		Constructor: constructor,
		Range:       nodeRange(expr),
	}

	params := namedChildren(args)
	if len(params) > 0 {
		if s, ok := stringContent(params[0], src); ok {
			call.Selector = s
		}
	}
	if len(params) > 1 && params[1].Kind() == "object" {
		obj := params[1]
		call.Body = objectBody(obj, src)
		call.Config = parseObject(obj, src)
	}
	return call
}

// objectBody returns the text between an object's braces. A truncated
// object has no closing brace, only a zero-width MISSING one.
func objectBody(obj *sitter.Node, src []byte) string {
	start, end := obj.StartByte()+1, obj.EndByte()
	if n := obj.ChildCount(); n > 0 {
		if last := obj.Child(n - 1); last.Kind() == "}" && !last.IsMissing() {
			end = last.StartByte()
		}
	}
	if end < start {
		return ""
	}
	return string(src[start:end])
}

func parseObject(node *sitter.Node, src []byte) *Object {
	obj := &Object{Properties: []*Property{}}
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "pair":
			keyNode := child.ChildByFieldName("key")
			valueNode := child.ChildByFieldName("value")
			if keyNode == nil || valueNode == nil {
				continue
			}
			key, ok := propertyKey(keyNode, src)
			if !ok {
				continue
			}
			obj.Properties = append(obj.Properties, &Property{
				Key:   key,
				Value: parseValue(valueNode, src),
			})
		case "shorthand_property_identifier":
			name := child.Utf8Text(src)
			obj.Properties = append(obj.Properties, &Property{
				Key:   name,
				Value: &Value{Kind: OtherValue, Raw: name, Range: nodeRange(child)},
			})
		}
	}
	return obj
}

// propertyKey normalizes numeric keys so that 660, 660.0 and '660' agree
func propertyKey(node *sitter.Node, src []byte) (string, bool) {
	switch node.Kind() {
	case "property_identifier":
		return node.Utf8Text(src), true
	case "string":
		s, ok := stringContent(node, src)
		if !ok {
			return "", false
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return canonicalNumber(n), true
		}
		return s, true
	case "number":
		n, ok := parseNumber(node.Utf8Text(src))
		if !ok {
			return "", false
		}
		return canonicalNumber(n), true
	}
	return "", false
}

func parseValue(node *sitter.Node, src []byte) *Value {
	raw := node.Utf8Text(src)
	v := &Value{Kind: OtherValue, Raw: raw, Range: nodeRange(node)}

	switch node.Kind() {
	case "number", "unary_expression":
		if n, ok := parseNumber(raw); ok {
			v.Kind = NumberValue
			v.Number = n
		}
	case "string", "template_string":
		if s, ok := stringContent(node, src); ok {
			v.Kind = StringValue
			v.Text = s
		}
	case "true", "false":
		v.Kind = BoolValue
		v.Bool = node.Kind() == "true"
	case "object":
		v.Kind = ObjectValue
		v.Object = parseObject(node, src)
	case "array":
		v.Kind = ArrayValue
	}
	return v
}

// stringContent returns the text between the quotes of a string literal, or
// of a template literal without substitutions
func stringContent(node *sitter.Node, src []byte) (string, bool) {
	switch node.Kind() {
	case "string":
	case "template_string":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if node.NamedChild(i).Kind() == "template_substitution" {
				return "", false
			}
		}
	default:
		return "", false
	}
	if node.EndByte()-node.StartByte() < 2 {
		return "", false
	}
	return string(src[node.StartByte()+1 : node.EndByte()-1]), true
}

func parseNumber(text string) (float64, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return n, true
	}
	if n, err := strconv.ParseInt(text, 0, 64); err == nil {
		return float64(n), true
	}
	return 0, false
}

func canonicalNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// namedChildren returns the named children of node, skipping comments
func namedChildren(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func nodeRange(node *sitter.Node) css.Range {
	return css.Range{
		Start: css.Position{
			Line:      uint32(node.StartPosition().Row),    //nolint:gosec // G115: tree-sitter positions are bounded by file size
			Character: uint32(node.StartPosition().Column), //nolint:gosec // G115: tree-sitter positions are bounded by file size
		},
		End: css.Position{
			Line:      uint32(node.EndPosition().Row),    //nolint:gosec // G115: tree-sitter positions are bounded by file size
			Character: uint32(node.EndPosition().Column), //nolint:gosec // G115: tree-sitter positions are bounded by file size
		},
	}
}
