package harness

import (
	"fmt"
	"io/fs"
	"strconv"

	"bennypowers.dev/sitecheck/internal/log"
	"bennypowers.dev/sitecheck/internal/parser/css"
	"bennypowers.dev/sitecheck/internal/parser/html"
	"bennypowers.dev/sitecheck/internal/parser/js"
)

// BreakpointsKey is the configuration option holding per-width overrides
const BreakpointsKey = "breakpoints"

// Script is a loaded script artifact
type Script struct {
	Source *Source
	// regions are the parseable parts of the source: the whole file, or the
	// <script> elements of an HTML document
	regions []html.Region
}

// LoadScript reads a script. For HTML documents the contents of every
// <script> element are searched instead.
func LoadScript(fsys fs.FS, name string) (*Script, error) {
	src, err := LoadSource(fsys, name)
	if err != nil {
		return nil, err
	}
	if isHTML(name) {
		return &Script{Source: src, regions: embeddedRegions(src.Text, html.ScriptTag)}, nil
	}
	return &Script{Source: src, regions: []html.Region{{Content: src.Text, Type: html.ScriptTag}}}, nil
}

// LocateWidgets returns every `new <constructor>('<selector>', ...)` call
// in source order. No match is a valid, empty result.
func (s *Script) LocateWidgets(constructor, selector string) []*js.WidgetCall {
	parser := js.AcquireParser()
	defer js.ReleaseParser(parser)

	var widgets []*js.WidgetCall
	for _, region := range s.regions {
		calls, err := parser.ParseWidgets(region.Content, constructor)
		if err != nil {
			log.Warn("failed to parse script at %d:%d in %s: %v", region.StartLine+1, region.StartCol+1, s.Source.Path, err)
			continue
		}
		for _, call := range calls {
			if call.Selector != selector {
				continue
			}
			call.Range = offsetRange(call.Range, region)
			offsetObject(call.Config, region)
			widgets = append(widgets, call)
		}
	}
	log.Debug("found %d %s construction(s) for %q in %s", len(widgets), constructor, selector, s.Source.Path)
	return widgets
}

func offsetObject(obj *js.Object, region html.Region) {
	if obj == nil {
		return
	}
	for _, p := range obj.Properties {
		p.Value.Range = offsetRange(p.Value.Range, region)
		offsetObject(p.Value.Object, region)
	}
}

// Breakpoint is an expected numeric option under breakpoints[Threshold]
type Breakpoint struct {
	Threshold int
	Property  string
	Want      float64
}

func (b Breakpoint) String() string {
	return fmt.Sprintf("breakpoints[%d].%s = %s", b.Threshold, b.Property, formatNumber(b.Want))
}

// HasBreakpoint reports whether the configuration carries an entry for threshold
func HasBreakpoint(call *js.WidgetCall, threshold int) bool {
	_, ok := breakpointEntry(call, threshold)
	return ok
}

func breakpointEntry(call *js.WidgetCall, threshold int) (*js.Value, bool) {
	if call == nil || call.Config == nil {
		return nil, false
	}
	breakpoints, ok := call.Config.Nested(BreakpointsKey)
	if !ok {
		return nil, false
	}
	return breakpoints.Get(strconv.Itoa(threshold))
}

// AssertBreakpoint checks breakpoints[want.Threshold] is an object whose
// want.Property equals want.Want
func AssertBreakpoint(call *js.WidgetCall, want Breakpoint) error {
	expected := want.String()
	if call == nil || call.Config == nil {
		return fail(expected, "no configuration object")
	}
	if _, ok := call.Config.Nested(BreakpointsKey); !ok {
		return fail(expected, "no %s object in configuration at line %d", BreakpointsKey, line(call.Range))
	}
	entry, ok := breakpointEntry(call, want.Threshold)
	if !ok {
		return fail(expected, "no %d entry in configuration at line %d", want.Threshold, line(call.Range))
	}
	if entry.Kind != js.ObjectValue {
		return fail(expected, "%d: %s at line %d", want.Threshold, entry.Raw, line(entry.Range))
	}
	return assertNumber(entry.Object, want.Property, want.Want, expected, entry.Range)
}

// AssertDefault checks a top-level numeric option of the configuration,
// ignoring values nested under breakpoints
func AssertDefault(call *js.WidgetCall, property string, want float64) error {
	expected := fmt.Sprintf("%s = %s", property, formatNumber(want))
	if call == nil || call.Config == nil {
		return fail(expected, "no configuration object")
	}
	return assertNumber(call.Config, property, want, expected, call.Range)
}

func assertNumber(obj *js.Object, property string, want float64, expected string, at css.Range) error {
	v, ok := obj.Get(property)
	if !ok {
		return fail(expected, "no %s in object at line %d", property, line(at))
	}
	if v.Kind != js.NumberValue {
		return fail(expected, "%s: %s at line %d", property, v.Raw, line(v.Range))
	}
	if v.Number != want {
		return fail(expected, "%s: %s at line %d", property, formatNumber(v.Number), line(v.Range))
	}
	return nil
}

// AssertAnyDefault passes when at least one configuration has the default
func AssertAnyDefault(calls []*js.WidgetCall, property string, want float64) error {
	if len(calls) == 0 {
		return fail(fmt.Sprintf("%s = %s", property, formatNumber(want)), "no configurations")
	}
	var first error
	for _, call := range calls {
		err := AssertDefault(call, property, want)
		if err == nil {
			return nil
		}
		if first == nil {
			first = err
		}
	}
	return first
}

// AssertBreakpointPresent passes when at least one configuration carries threshold
func AssertBreakpointPresent(calls []*js.WidgetCall, threshold int) error {
	for _, call := range calls {
		if HasBreakpoint(call, threshold) {
			return nil
		}
	}
	return fail(fmt.Sprintf("a breakpoints[%d] entry", threshold), "none in %d configuration(s)", len(calls))
}

// AssertEachBreakpoint checks want against every configuration that carries
// the threshold, and requires at least one to carry it
func AssertEachBreakpoint(calls []*js.WidgetCall, want Breakpoint) error {
	carriers := 0
	for _, call := range calls {
		if !HasBreakpoint(call, want.Threshold) {
			continue
		}
		carriers++
		if err := AssertBreakpoint(call, want); err != nil {
			return err
		}
	}
	if carriers == 0 {
		return fail(want.String(), "no configuration with a %d entry", want.Threshold)
	}
	return nil
}

// AssertCoOccurrence passes when one configuration satisfies every check
func AssertCoOccurrence(calls []*js.WidgetCall, checks ...Breakpoint) error {
	for _, call := range calls {
		ok := true
		for _, check := range checks {
			if AssertBreakpoint(call, check) != nil {
				ok = false
				break
			}
		}
		if ok && len(checks) > 0 {
			return nil
		}
	}

	expected := "one configuration with"
	for i, check := range checks {
		if i > 0 {
			expected += " and"
		}
		expected += " " + check.String()
	}
	return fail(expected, "none among %d configuration(s)", len(calls))
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func line(r css.Range) uint32 {
	return r.Start.Line + 1
}
