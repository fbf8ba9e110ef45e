// Package wizard implements the gated multi-step form state machine behind
// the registration and application flows. Forward motion is gated on the
// current step's validator; backward motion never discards entered data. The
// accumulated payload lives only in the wizard instance (and in snapshots
// handed through page navigation): a fresh process intentionally restarts a
// flow at step one.
package wizard

import (
	"context"
	"fmt"
	"maps"

	dErrors "educonnect/pkg/domain-errors"
)

// Payload holds one step's field values.
type Payload map[string]string

// FieldErrors maps field names to human-readable validation messages. An
// empty set means the payload passed.
type FieldErrors map[string]string

// Step describes one page of a flow. Validate must be a pure function of the
// payload: validating the same payload twice yields the same result with no
// side effects.
type Step struct {
	Name     string
	Validate func(Payload) FieldErrors
}

// Flow declares a wizard: an ordered step list and the terminal submit action
// run against the full accumulated payload.
type Flow struct {
	Name   string
	Steps  []Step
	Submit func(ctx context.Context, payload map[string]Payload) error
}

// State is the wizard's lifecycle position.
type State string

const (
	StateActive    State = "active"
	StateSubmitted State = "submitted"
	StateAbandoned State = "abandoned"
)

// Snapshot is the serializable carry-over handed through page navigation
// state between steps. It is never persisted durably.
type Snapshot struct {
	Step    int                `json:"step"`
	Payload map[string]Payload `json:"payload"`
}

// Wizard is a single active instance of a flow. Not safe for concurrent use:
// the UI model runs one wizard at a time on one logical thread.
type Wizard struct {
	flow      Flow
	step      int // 1-based
	payload   map[string]Payload
	fieldErrs FieldErrors
	submitErr error
	state     State
}

// New starts a flow at step one with an empty payload.
func New(flow Flow) (*Wizard, error) {
	if len(flow.Steps) == 0 {
		return nil, fmt.Errorf("flow %q has no steps", flow.Name)
	}
	if flow.Submit == nil {
		return nil, fmt.Errorf("flow %q has no submit action", flow.Name)
	}
	return &Wizard{
		flow:    flow,
		step:    1,
		payload: make(map[string]Payload),
		state:   StateActive,
	}, nil
}

// Resume reconstructs a wizard from a navigation-state snapshot, e.g. when
// the next step renders as a separate page.
func Resume(flow Flow, snap Snapshot) (*Wizard, error) {
	w, err := New(flow)
	if err != nil {
		return nil, err
	}
	if snap.Step < 1 || snap.Step > len(flow.Steps) {
		return nil, fmt.Errorf("snapshot step %d out of range for flow %q", snap.Step, flow.Name)
	}
	w.step = snap.Step
	for name, p := range snap.Payload {
		w.payload[name] = maps.Clone(p)
	}
	return w, nil
}

// Step returns the 1-based index of the current step.
func (w *Wizard) Step() int { return w.step }

// StepName returns the current step's declared name.
func (w *Wizard) StepName() string { return w.flow.Steps[w.step-1].Name }

// StepCount returns the flow's declared step count.
func (w *Wizard) StepCount() int { return len(w.flow.Steps) }

// State returns the lifecycle state.
func (w *Wizard) State() State { return w.state }

// FieldErrors returns the per-field errors from the last failed Advance, or
// nil after a successful one.
func (w *Wizard) FieldErrors() FieldErrors { return w.fieldErrs }

// StepPayload returns a copy of the recorded payload for the named step, so
// a revisited step can pre-fill its fields.
func (w *Wizard) StepPayload(name string) Payload {
	return maps.Clone(w.payload[name])
}

// Snapshot captures the accumulated state for navigation-state carry-over.
func (w *Wizard) Snapshot() Snapshot {
	payload := make(map[string]Payload, len(w.payload))
	for name, p := range w.payload {
		payload[name] = maps.Clone(p)
	}
	return Snapshot{Step: w.step, Payload: payload}
}

// Advance records input for the current step, validates it, and moves
// forward. Validation failure is state, not an exception: the wizard stays
// put and FieldErrors carries the annotations. On the final step a passing
// payload triggers the flow's submit action; a submit failure keeps the
// wizard at the final step with all data intact so the user can correct and
// resubmit.
func (w *Wizard) Advance(ctx context.Context, input Payload) error {
	if w.state != StateActive {
		return dErrors.Newf(dErrors.CodeValidationFailed, "flow %q is %s", w.flow.Name, w.state)
	}

	current := w.flow.Steps[w.step-1]
	merged := w.mergedInput(current.Name, input)

	if errs := current.Validate(merged); len(errs) > 0 {
		w.payload[current.Name] = merged // keep what was typed
		w.fieldErrs = errs
		return dErrors.Newf(dErrors.CodeValidationFailed, "step %q has %d invalid field(s)", current.Name, len(errs))
	}

	w.payload[current.Name] = merged
	w.fieldErrs = nil

	if w.step < len(w.flow.Steps) {
		w.step++
		return nil
	}

	if err := w.flow.Submit(ctx, w.Snapshot().Payload); err != nil {
		w.submitErr = err
		return err
	}
	w.submitErr = nil
	w.state = StateSubmitted
	return nil
}

// mergedInput overlays new input on whatever the step already holds, so a
// revisited step does not lose fields the form did not resend.
func (w *Wizard) mergedInput(stepName string, input Payload) Payload {
	merged := maps.Clone(w.payload[stepName])
	if merged == nil {
		merged = make(Payload, len(input))
	}
	maps.Copy(merged, input)
	return merged
}

// Retreat moves one step back without validating and without discarding that
// step's entered payload. At step one it is a no-op.
func (w *Wizard) Retreat() {
	if w.state != StateActive {
		return
	}
	if w.step > 1 {
		w.step--
		w.fieldErrs = nil
	}
}

// Abandon terminates the flow. The payload is dropped with the instance.
func (w *Wizard) Abandon() {
	if w.state == StateActive {
		w.state = StateAbandoned
	}
}

// SubmitError returns the error from the last failed terminal submission.
func (w *Wizard) SubmitError() error { return w.submitErr }
