package harness

import (
	"fmt"
	"io/fs"
	"strings"

	"bennypowers.dev/sitecheck/internal/collections"
	"bennypowers.dev/sitecheck/internal/expect"
	"bennypowers.dev/sitecheck/internal/log"
	"bennypowers.dev/sitecheck/internal/parser/css"
	"bennypowers.dev/sitecheck/internal/parser/js"
)

type check[T any] struct {
	name string
	run  func(T) error
}

// Run executes the suites against the site in fsys: for each suite the
// stylesheet group, then the script group. A suite whose artifact paths
// cannot be resolved fails its groups like an unreadable artifact.
func Run(fsys fs.FS, suites ...*expect.Suite) *Report {
	report := &Report{}
	inspected := collections.NewSet[string]()

	for _, suite := range suites {
		log.Info("running suite %q", suite.Name)
		if suite.Stylesheet != nil {
			name, err := suite.Resolve(suite.Stylesheet.Path)
			checks := stylesheetChecks(suite.Stylesheet)
			if err == nil {
				inspected.Add(name)
				report.Merge(runGroup(suite.Name, "stylesheet "+name, checks, func() (*Stylesheet, error) {
					return LoadStylesheet(fsys, name)
				}))
			} else {
				report.Merge(failGroup(suite.Name, "stylesheet "+suite.Stylesheet.Path, checks, err))
			}
		}
		if suite.Script != nil {
			name, err := suite.Resolve(suite.Script.Path)
			checks := scriptChecks(suite.Script)
			if err == nil {
				inspected.Add(name)
				report.Merge(runGroup(suite.Name, "script "+name, checks, func() (*Script, error) {
					return LoadScript(fsys, name)
				}))
			} else {
				report.Merge(failGroup(suite.Name, "script "+suite.Script.Path, checks, err))
			}
		}
	}

	report.Inspected = collections.Sorted(inspected)
	return report
}

// CheckCoverage records which coverage-selected artifacts no suite inspected
func (r *Report) CheckCoverage(fsys fs.FS, patterns []string) error {
	files, err := expect.Inventory(fsys, patterns)
	if err != nil {
		return err
	}
	inspected := collections.NewSet(r.Inspected...)
	r.Uninspected = nil
	for _, f := range files {
		if !inspected.Has(f) {
			r.Uninspected = append(r.Uninspected, f)
		}
	}
	return nil
}

// runGroup loads the group's artifact once and runs every check on it. A
// setup failure fails every check without running any.
func runGroup[T any](suite, group string, checks []check[T], load func() (T, error)) *Report {
	artifact, err := load()
	if err != nil {
		log.Error("%v", err)
		return failGroup(suite, group, checks, err)
	}

	report := &Report{}
	for _, c := range checks {
		err := c.run(artifact)
		if err != nil {
			log.Debug("%s › %s: %v", group, c.name, err)
		}
		report.Results = append(report.Results, Result{Suite: suite, Group: group, Name: c.name, Err: err})
	}
	return report
}

func failGroup[T any](suite, group string, checks []check[T], err error) *Report {
	report := &Report{}
	for _, c := range checks {
		report.Results = append(report.Results, Result{Suite: suite, Group: group, Name: c.name, Err: err})
	}
	return report
}

func stylesheetChecks(exp *expect.StylesheetExpectations) []check[*Stylesheet] {
	var checks []check[*Stylesheet]

	for _, m := range exp.Media {
		query := MediaQuery{MaxWidth: m.MaxWidth, MediaType: m.MediaType}

		checks = append(checks, check[*Stylesheet]{
			name: fmt.Sprintf("should contain media query for max-width %dpx", m.MaxWidth),
			run: func(s *Stylesheet) error {
				if _, ok := s.LocateMediaBlock(query); !ok {
					return fail("a "+query.String()+" block", "none")
				}
				return nil
			},
		})

		if m.Unique {
			checks = append(checks, check[*Stylesheet]{
				name: fmt.Sprintf("should declare max-width %dpx only once", m.MaxWidth),
				run: func(s *Stylesheet) error {
					return s.AssertUniqueMediaBlock(query)
				},
			})
		}

		for _, rule := range m.Rules {
			for _, d := range rule.Declarations {
				want := Declaration{Property: d.Property, Value: d.Value, Important: d.Important}
				value, _ := css.SplitImportant(d.Value)

				checks = append(checks, check[*Stylesheet]{
					name: fmt.Sprintf("should set %s %s to %s at max-width %dpx", rule.Selector, strings.ToLower(d.Property), value, m.MaxWidth),
					run: func(s *Stylesheet) error {
						block, ok := s.LocateMediaBlock(query)
						if !ok {
							return fail("a "+query.String()+" block", "none")
						}
						return AssertDeclaration(block, rule.Selector, want)
					},
				})
			}
		}
	}

	return checks
}

func scriptChecks(exp *expect.ScriptExpectations) []check[*Script] {
	var checks []check[*Script]

	for _, w := range exp.Widgets {
		locate := func(s *Script) []*js.WidgetCall {
			return s.LocateWidgets(w.Constructor, w.Selector)
		}

		checks = append(checks, check[*Script]{
			name: fmt.Sprintf("should find %s configurations for %s", w.Constructor, w.Selector),
			run: func(s *Script) error {
				if len(locate(s)) == 0 {
					return fail(fmt.Sprintf("new %s('%s', {...})", w.Constructor, w.Selector), "no such construction")
				}
				return nil
			},
		})

		var all []Breakpoint
		for _, threshold := range w.Thresholds() {
			checks = append(checks, check[*Script]{
				name: fmt.Sprintf("should have breakpoint configuration at %dpx", threshold),
				run: func(s *Script) error {
					return AssertBreakpointPresent(locate(s), threshold)
				},
			})

			for _, property := range expect.SortedKeys(w.Breakpoints[threshold]) {
				want := Breakpoint{Threshold: threshold, Property: property, Want: w.Breakpoints[threshold][property]}
				all = append(all, want)

				checks = append(checks, check[*Script]{
					name: fmt.Sprintf("should set %s to %s at breakpoint %dpx", property, formatNumber(want.Want), threshold),
					run: func(s *Script) error {
						return AssertEachBreakpoint(locate(s), want)
					},
				})
			}
		}

		if w.CoOccur {
			checks = append(checks, check[*Script]{
				name: fmt.Sprintf("should verify all breakpoints exist in the same %s instance", w.Constructor),
				run: func(s *Script) error {
					return AssertCoOccurrence(locate(s), all...)
				},
			})
		}

		for _, property := range expect.SortedKeys(w.Defaults) {
			want := w.Defaults[property]
			checks = append(checks, check[*Script]{
				name: fmt.Sprintf("should have default %s of %s", property, formatNumber(want)),
				run: func(s *Script) error {
					return AssertAnyDefault(locate(s), property, want)
				},
			})
		}
	}

	return checks
}
