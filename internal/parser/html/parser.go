package html

import (
	"fmt"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// Parser handles parsing HTML to extract inline style and script regions
type Parser struct {
	parser      *sitter.Parser
	regionQuery *sitter.Query
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}

		regionQuery, qerr := sitter.NewQuery(htmlLang, `
			[
				(style_element (raw_text) @style)
				(script_element (raw_text) @script)
			]
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile region query: %v", qerr))
		}

		return &Parser{
			parser:      parser,
			regionQuery: regionQuery,
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
	if p.regionQuery != nil {
		p.regionQuery.Close()
	}
}

// ParseRegions extracts the contents of <style> and <script> elements in document order
func (p *Parser) ParseRegions(source string) []Region {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var regions []Region
	matches := cursor.Matches(p.regionQuery, tree.RootNode(), sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			regionType := UnknownRegion
			switch p.regionQuery.CaptureNames()[capture.Index] {
			case "style":
				regionType = StyleTag
			case "script":
				regionType = ScriptTag
			}
			node := capture.Node
			regions = append(regions, Region{
				Content:   node.Utf8Text(sourceBytes),
				StartLine: node.StartPosition().Row,
				StartCol:  node.StartPosition().Column,
				Type:      regionType,
			})
		}
	}

	return regions
}

// Regions returns the regions of the given type
func Regions(regions []Region, t RegionType) []Region {
	var out []Region
	for _, r := range regions {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}
