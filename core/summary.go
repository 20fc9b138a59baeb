package core

import "fmt"

// ItemResult is the outcome of one task in a batch.
type ItemResult struct {
	Index  int
	Name   string
	Output string
	Err    error
}

// OK reports whether the task produced its output.
func (r ItemResult) OK() bool {
	return r.Err == nil && r.Output != ""
}

// Summary reports the outcome of a batch run, items in input order.
type Summary struct {
	Stage      string
	Total      int
	Succeeded  int
	Items      []ItemResult
	MergedPath string
	MergeErr   error
}

// Failed returns the items that did not produce output.
func (s Summary) Failed() []ItemResult {
	var failed []ItemResult
	for _, it := range s.Items {
		if !it.OK() {
			failed = append(failed, it)
		}
	}
	return failed
}

// Outputs returns the produced paths in input order.
func (s Summary) Outputs() []string {
	var paths []string
	for _, it := range s.Items {
		if it.OK() {
			paths = append(paths, it.Output)
		}
	}
	return paths
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: %d of %d succeeded", s.Stage, s.Succeeded, s.Total)
}
