package html

// RegionType identifies the kind of embedded source found in an HTML document
type RegionType int

const (
	// UnknownRegion is the zero value, indicating an uninitialized region type
	UnknownRegion RegionType = iota
	// StyleTag represents CSS inside a <style> element
	StyleTag
	// ScriptTag represents JavaScript inside a <script> element
	ScriptTag
)

// Region is a block of embedded source with its position in the document
type Region struct {
	Content   string
	StartLine uint
	StartCol  uint
	Type      RegionType
}
