package harness

import "github.com/roach88/ebb/internal/trace"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall success.
	// True if every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one sample per tick, in tick order.
	Trace *trace.Trace `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result with an empty trace.
func NewResult(scenario string) *Result {
	return &Result{
		Pass:   true,
		Trace:  trace.New(scenario),
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
