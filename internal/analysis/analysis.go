// Package analysis defines the boundary to the screening scorer. The workflow
// only sees the Analyzer interface; which scorer runs behind it is a startup
// decision.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"aasha-server/internal/models"
)

// Input carries what a module collected. Only the fields relevant to the
// module are set: Audio for tb, Image for skin and anemia, Answers for
// maternal and Symptoms for triage.
type Input struct {
	Audio    []byte          `json:"-"`
	Image    []byte          `json:"-"`
	Answers  map[string]bool `json:"answers,omitempty"`
	Symptoms []string        `json:"symptoms,omitempty"`
}

// Result is a scorer's classification.
type Result struct {
	RiskLevel      models.RiskLevel `json:"riskLevel"`
	Confidence     int              `json:"confidence"`
	Recommendation string           `json:"recommendation"`
}

// Validate checks that r is something the workflow may persist.
func (r Result) Validate() error {
	if !r.RiskLevel.Valid() {
		return fmt.Errorf("invalid risk level %q", r.RiskLevel)
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return fmt.Errorf("confidence %d outside 0-100", r.Confidence)
	}
	return nil
}

// Analyzer classifies one module's input.
type Analyzer interface {
	Classify(ctx context.Context, module models.ModuleType, in Input) (Result, error)
}

// Static always returns the same result or error. It is the deterministic
// double used by tests and demos.
type Static struct {
	Result Result
	Err    error
	Calls  atomic.Int64
}

// Classify implements Analyzer.
func (s *Static) Classify(ctx context.Context, _ models.ModuleType, _ Input) (Result, error) {
	s.Calls.Add(1)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if s.Err != nil {
		return Result{}, s.Err
	}
	return s.Result, nil
}

// ErrUnknownAnalyzer is returned by New for an unrecognized name.
var ErrUnknownAnalyzer = errors.New("unknown analyzer")

// New builds the analyzer selected by name.
func New(name string, opts PlaceholderOptions) (Analyzer, error) {
	switch name {
	case "placeholder", "":
		return NewPlaceholder(opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAnalyzer, name)
}
