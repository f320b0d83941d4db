package loader

import (
	"time"

	"github.com/GriffinCanCode/pageloader/internal/domain/resource"
	"github.com/GriffinCanCode/pageloader/internal/shared/id"
)

// Outcome is the result of loading one resource
type Outcome struct {
	Name     string
	Path     string
	Type     resource.Type
	Scheme   resource.Scheme
	Err      error
	Duration time.Duration
}

// Loaded reports whether the resource reached the document
func (o Outcome) Loaded() bool {
	return o.Err == nil
}

// Report summarizes one Run
type Report struct {
	BatchID  id.BatchID
	Outcomes []Outcome
	Duration time.Duration
}

// Loaded returns the number of resources injected
func (r Report) Loaded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Loaded() {
			n++
		}
	}
	return n
}

// Failed returns the outcomes that did not load
func (r Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Loaded() {
			failed = append(failed, o)
		}
	}
	return failed
}
