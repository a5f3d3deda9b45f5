package expect

import (
	"cmp"
	"maps"
	"slices"
)

// DefaultConstructor is the widget constructor checked when a suite names none
const DefaultConstructor = "Swiper"

// DefaultMediaType is required of media blocks when a suite names none.
// AnyMediaType disables the media type requirement.
const (
	DefaultMediaType = "screen"
	AnyMediaType     = "*"
)

// Suite is the set of expectations for one stylesheet and one script
type Suite struct {
	Name       string                  `yaml:"name" json:"name"`
	Stylesheet *StylesheetExpectations `yaml:"stylesheet,omitempty" json:"stylesheet,omitempty"`
	Script     *ScriptExpectations     `yaml:"script,omitempty" json:"script,omitempty"`
	// Path is the slash-separated location of the suite file, set by Load
	Path string `yaml:"-" json:"-"`
}

// StylesheetExpectations lists the media blocks a stylesheet must contain
type StylesheetExpectations struct {
	Path  string             `yaml:"path" json:"path"`
	Media []MediaExpectation `yaml:"media" json:"media"`
}

// MediaExpectation describes one `@media <type> and (max-width: Npx)` block
type MediaExpectation struct {
	MaxWidth  int    `yaml:"maxWidth" json:"maxWidth"`
	MediaType string `yaml:"mediaType,omitempty" json:"mediaType,omitempty"`
	// Unique requires exactly one block with this condition instead of taking the first
	Unique bool              `yaml:"unique,omitempty" json:"unique,omitempty"`
	Rules  []RuleExpectation `yaml:"rules" json:"rules"`
}

// RuleExpectation lists declarations required of one selector
type RuleExpectation struct {
	Selector     string                   `yaml:"selector" json:"selector"`
	Declarations []DeclarationExpectation `yaml:"declarations" json:"declarations"`
}

// DeclarationExpectation is a required property value. Value may carry a
// trailing !important in place of setting Important.
type DeclarationExpectation struct {
	Property  string `yaml:"property" json:"property"`
	Value     string `yaml:"value" json:"value"`
	Important bool   `yaml:"important,omitempty" json:"important,omitempty"`
}

// ScriptExpectations lists the widget constructions a script must contain
type ScriptExpectations struct {
	Path    string              `yaml:"path" json:"path"`
	Widgets []WidgetExpectation `yaml:"widgets" json:"widgets"`
}

// WidgetExpectation describes the configuration of `new Constructor('selector', {...})`
type WidgetExpectation struct {
	Constructor string `yaml:"constructor,omitempty" json:"constructor,omitempty"`
	Selector    string `yaml:"selector" json:"selector"`
	// Defaults are top-level numeric options, e.g. slidesPerView: 4
	Defaults map[string]float64 `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	// Breakpoints maps a width threshold to numeric options under `breakpoints`
	Breakpoints map[int]map[string]float64 `yaml:"breakpoints,omitempty" json:"breakpoints,omitempty"`
	// CoOccur requires a single construction to carry every breakpoint at once
	CoOccur bool `yaml:"coOccur,omitempty" json:"coOccur,omitempty"`
}

// Thresholds returns the breakpoint thresholds widest first
func (w WidgetExpectation) Thresholds() []int {
	return slices.SortedFunc(maps.Keys(w.Breakpoints), func(a, b int) int {
		return cmp.Compare(b, a)
	})
}

// SortedKeys returns the keys of an option map in ascending order
func SortedKeys(options map[string]float64) []string {
	return slices.Sorted(maps.Keys(options))
}
