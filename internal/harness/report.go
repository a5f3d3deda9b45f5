package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Result is the outcome of one check
type Result struct {
	Suite string
	Group string
	Name  string
	// Err is nil when the check passed
	Err error
}

// Passed reports whether the check passed
func (r Result) Passed() bool {
	return r.Err == nil
}

// Report aggregates check results in execution order
type Report struct {
	Results []Result
	// Inspected lists the artifacts loaded by any suite
	Inspected []string
	// Uninspected lists coverage-selected artifacts no suite loaded
	Uninspected []string
}

// Merge appends other's results and inspected artifacts to r
func (r *Report) Merge(other *Report) {
	r.Results = append(r.Results, other.Results...)
	r.Inspected = append(r.Inspected, other.Inspected...)
}

// Failed returns the number of failed checks
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed() {
			n++
		}
	}
	return n
}

// ExitCode is 1 when any check failed and 0 otherwise
func (r *Report) ExitCode() int {
	if r.Failed() > 0 {
		return 1
	}
	return 0
}

// WriteText writes a test-runner style listing
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	group := ""
	for _, res := range r.Results {
		if header := res.Suite + " › " + res.Group; header != group {
			group = header
			fmt.Fprintf(&b, "%s\n", header)
		}
		if res.Passed() {
			fmt.Fprintf(&b, "  ✓ %s\n", res.Name)
			continue
		}
		fmt.Fprintf(&b, "  ✕ %s\n      %v\n", res.Name, res.Err)
	}

	total := len(r.Results)
	failed := r.Failed()
	fmt.Fprintf(&b, "\nChecks: %d failed, %d passed, %d total\n", failed, total-failed, total)
	if len(r.Uninspected) > 0 {
		fmt.Fprintf(&b, "Not inspected by any suite: %s\n", strings.Join(r.Uninspected, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type jsonResult struct {
	Suite  string `json:"suite"`
	Group  string `json:"group"`
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
}

type jsonReport struct {
	Results     []jsonResult `json:"results"`
	Failed      int          `json:"failed"`
	Total       int          `json:"total"`
	Inspected   []string     `json:"inspected"`
	Uninspected []string     `json:"uninspected,omitempty"`
}

// WriteJSON writes the report as a single JSON document
func (r *Report) WriteJSON(w io.Writer) error {
	out := jsonReport{
		Results:     make([]jsonResult, 0, len(r.Results)),
		Failed:      r.Failed(),
		Total:       len(r.Results),
		Inspected:   r.Inspected,
		Uninspected: r.Uninspected,
	}
	for _, res := range r.Results {
		jr := jsonResult{Suite: res.Suite, Group: res.Group, Name: res.Name, Passed: res.Passed()}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		out.Results = append(out.Results, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
