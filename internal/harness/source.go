package harness

import (
	"io/fs"
	"path"
	"strings"
	"unicode/utf8"

	"bennypowers.dev/sitecheck/internal/log"
	"bennypowers.dev/sitecheck/internal/parser/css"
	"bennypowers.dev/sitecheck/internal/parser/html"
)

// Source is an artifact loaded as text. It is never modified after loading.
type Source struct {
	Path string
	Text string
}

// LoadSource reads a UTF-8 artifact from fsys
func LoadSource(fsys fs.FS, name string) (*Source, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, NewSetupError(name, "read failed", err)
	}
	if !utf8.Valid(data) {
		return nil, NewSetupError(name, "not valid UTF-8", nil)
	}
	log.Debug("loaded %s (%d bytes)", name, len(data))
	return &Source{Path: name, Text: string(data)}, nil
}

func isHTML(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// embeddedRegions returns the <style> or <script> regions of an HTML document
func embeddedRegions(text string, t html.RegionType) []html.Region {
	parser := html.AcquireParser()
	defer html.ReleaseParser(parser)
	return html.Regions(parser.ParseRegions(text), t)
}

// offsetRange moves a range parsed from a region to document coordinates.
// Only positions on the region's first line are shifted by its column.
func offsetRange(r css.Range, region html.Region) css.Range {
	r.Start = offsetPosition(r.Start, region)
	r.End = offsetPosition(r.End, region)
	return r
}

func offsetPosition(pos css.Position, region html.Region) css.Position {
	if pos.Line == 0 {
		pos.Character += uint32(region.StartCol) //nolint:gosec // G115: region positions from tree-sitter are bounded by file size
	}
	pos.Line += uint32(region.StartLine) //nolint:gosec // G115: region positions from tree-sitter are bounded by file size
	return pos
}
