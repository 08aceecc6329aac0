package sorter

import (
	"strings"

	"mediasorter/internal/organizer"
	"mediasorter/internal/services"
)

// State is the last pipeline step a file completed.
type State string

const (
	StateInitial           State = "initial"
	StateParsed            State = "parsed"
	StateMetadataResolved  State = "metadata_resolved"
	StateMetainfoExtracted State = "metainfo_extracted"
	StateNameBuilt         State = "name_built"
	StateDispatched        State = "dispatched"
)

// Operation is the plan and result for one source file.
type Operation struct {
	Source      string
	Destination string
	// MediaType is what the file was identified as: movie or tv. Until then
	// it is the requested type.
	MediaType string
	Action    organizer.Action
	State     State
	// Outcome stays empty while the operation is planned but not dispatched.
	Outcome   services.Outcome
	ErrorKind services.Kind
	Err       error
	Tags      string
	Checksum  string
	DryRun    bool
}

// Pending reports whether the operation is ready to dispatch.
func (o Operation) Pending() bool {
	return o.Outcome == "" && o.State == StateNameBuilt
}

// Reason is the user-facing explanation for a skip or failure.
func (o Operation) Reason() string {
	if o.Err == nil {
		return ""
	}
	return strings.TrimSpace(o.Err.Error())
}

func (o *Operation) fail(err error) {
	o.Err = err
	o.ErrorKind = services.Classify(err)
	o.Outcome = services.OutcomeFor(err)
}

func (o *Operation) succeed(state State) {
	o.State = state
	o.Outcome = services.OutcomeSuccess
	o.Err = nil
	o.ErrorKind = services.KindNone
}

// Report collects the operations of one run.
type Report struct {
	RunID      string
	DryRun     bool
	Operations []Operation
}

// Counts tallies outcomes.
func (r *Report) Counts() (succeeded, skipped, failed int) {
	for _, op := range r.Operations {
		switch op.Outcome {
		case services.OutcomeSuccess:
			succeeded++
		case services.OutcomeSkipped:
			skipped++
		case services.OutcomeFailed:
			failed++
		}
	}
	return succeeded, skipped, failed
}

// HasFailures reports whether any file failed; skips do not count.
func (r *Report) HasFailures() bool {
	_, _, failed := r.Counts()
	return failed > 0
}
