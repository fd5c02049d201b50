package harness

// GranuleSnapshot is the serialisable form of one granule.
type GranuleSnapshot struct {
	Index   int                 `json:"index"`
	Start   string              `json:"start"`
	End     string              `json:"end"`
	Count   int                 `json:"count,omitempty"`
	Members map[string][]string `json:"members"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion holds.
	Pass bool `json:"pass"`

	// SampleID is the fingerprint of the recorded run.
	SampleID string `json:"sample_id"`

	// Granularity is resolved from the datasets, independent of mode.
	Granularity string `json:"granularity,omitempty"`

	// Granules are the sampling output in order.
	Granules []GranuleSnapshot `json:"granules"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Granules: []GranuleSnapshot{},
		Errors:   []string{},
	}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
