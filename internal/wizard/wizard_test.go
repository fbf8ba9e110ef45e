package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "educonnect/pkg/domain-errors"
)

func requireField(name string) func(Payload) FieldErrors {
	return func(p Payload) FieldErrors {
		if p[name] == "" {
			return FieldErrors{name: name + " is required"}
		}
		return nil
	}
}

func threeStepFlow(submit func(ctx context.Context, payload map[string]Payload) error) Flow {
	if submit == nil {
		submit = func(context.Context, map[string]Payload) error { return nil }
	}
	return Flow{
		Name: "application",
		Steps: []Step{
			{Name: "personal", Validate: requireField("firstName")},
			{Name: "education", Validate: requireField("institution")},
			{Name: "review", Validate: func(Payload) FieldErrors { return nil }},
		},
		Submit: submit,
	}
}

type WizardSuite struct {
	suite.Suite
}

func TestWizardSuite(t *testing.T) {
	suite.Run(t, new(WizardSuite))
}

func (s *WizardSuite) TestNew() {
	s.Run("flow without steps is rejected", func() {
		_, err := New(Flow{Name: "empty", Submit: func(context.Context, map[string]Payload) error { return nil }})
		s.Error(err)
	})

	s.Run("flow without submit is rejected", func() {
		_, err := New(Flow{Name: "nosubmit", Steps: []Step{{Name: "a", Validate: requireField("x")}}})
		s.Error(err)
	})

	s.Run("starts at step one with empty payload", func() {
		w, err := New(threeStepFlow(nil))
		s.Require().NoError(err)
		s.Equal(1, w.Step())
		s.Equal("personal", w.StepName())
		s.Equal(StateActive, w.State())
	})
}

func (s *WizardSuite) TestAdvanceGating() {
	s.Run("failing validation keeps the step and surfaces field errors", func() {
		w, _ := New(threeStepFlow(nil))
		s.Require().NoError(w.Advance(context.Background(), Payload{"firstName": "Ana"}))
		s.Equal(2, w.Step())

		err := w.Advance(context.Background(), Payload{"institution": ""})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidationFailed))
		s.Equal(2, w.Step(), "no step change on failed validation")
		s.Equal("institution is required", w.FieldErrors()["institution"])
	})

	s.Run("validation is idempotent", func() {
		w, _ := New(threeStepFlow(nil))
		bad := Payload{"firstName": ""}
		err1 := w.Advance(context.Background(), bad)
		errs1 := w.FieldErrors()
		err2 := w.Advance(context.Background(), bad)
		errs2 := w.FieldErrors()

		s.Error(err1)
		s.Error(err2)
		s.Equal(errs1, errs2)
		s.Equal(1, w.Step())
	})

	s.Run("passing validation merges payload under the step key", func() {
		w, _ := New(threeStepFlow(nil))
		s.Require().NoError(w.Advance(context.Background(), Payload{"firstName": "Ana"}))
		s.Equal(Payload{"firstName": "Ana"}, w.StepPayload("personal"))
	})
}

func (s *WizardSuite) TestRetreatPreservesData() {
	w, _ := New(threeStepFlow(nil))
	s.Require().NoError(w.Advance(context.Background(), Payload{"firstName": "Ana"}))
	s.Equal(2, w.Step())

	w.Retreat()
	s.Equal(1, w.Step())
	s.Equal("Ana", w.StepPayload("personal")["firstName"])

	// Advancing again without re-entering the field still passes.
	s.Require().NoError(w.Advance(context.Background(), Payload{}))
	s.Equal(2, w.Step())
	s.Equal("Ana", w.StepPayload("personal")["firstName"])
}

func (s *WizardSuite) TestRetreatAtStepOne() {
	w, _ := New(threeStepFlow(nil))
	w.Retreat()
	s.Equal(1, w.Step())
	s.Equal(StateActive, w.State())
}

func (s *WizardSuite) TestTerminalSubmission() {
	s.Run("submit failure keeps data and allows resubmit", func() {
		attempts := 0
		w, _ := New(threeStepFlow(func(context.Context, map[string]Payload) error {
			attempts++
			if attempts == 1 {
				return dErrors.New(dErrors.CodeServerRejected, "email already registered")
			}
			return nil
		}))
		s.Require().NoError(w.Advance(context.Background(), Payload{"firstName": "Ana"}))
		s.Require().NoError(w.Advance(context.Background(), Payload{"institution": "MIT"}))

		err := w.Advance(context.Background(), Payload{})
		s.Require().Error(err)
		s.Equal(3, w.Step(), "submission failure stays on the final step")
		s.Equal(StateActive, w.State())
		s.Equal("Ana", w.StepPayload("personal")["firstName"], "failure never discards entered data")
		s.ErrorIs(w.SubmitError(), err)

		s.Require().NoError(w.Advance(context.Background(), Payload{}))
		s.Equal(StateSubmitted, w.State())
		s.Equal(2, attempts)
	})

	s.Run("submit receives the full accumulated payload", func() {
		var got map[string]Payload
		w, _ := New(threeStepFlow(func(_ context.Context, payload map[string]Payload) error {
			got = payload
			return nil
		}))
		s.Require().NoError(w.Advance(context.Background(), Payload{"firstName": "Ana"}))
		s.Require().NoError(w.Advance(context.Background(), Payload{"institution": "MIT"}))
		s.Require().NoError(w.Advance(context.Background(), Payload{}))

		s.Equal("Ana", got["personal"]["firstName"])
		s.Equal("MIT", got["education"]["institution"])
	})

	s.Run("advancing a submitted wizard is rejected", func() {
		w, _ := New(threeStepFlow(nil))
		s.Require().NoError(w.Advance(context.Background(), Payload{"firstName": "Ana"}))
		s.Require().NoError(w.Advance(context.Background(), Payload{"institution": "MIT"}))
		s.Require().NoError(w.Advance(context.Background(), Payload{}))
		s.Equal(StateSubmitted, w.State())

		err := w.Advance(context.Background(), Payload{})
		s.Error(err)
	})
}

func (s *WizardSuite) TestSnapshotResume() {
	w, _ := New(threeStepFlow(nil))
	s.Require().NoError(w.Advance(context.Background(), Payload{"firstName": "Ana"}))
	snap := w.Snapshot()

	resumed, err := Resume(threeStepFlow(nil), snap)
	s.Require().NoError(err)
	s.Equal(2, resumed.Step())
	s.Equal("Ana", resumed.StepPayload("personal")["firstName"])

	s.Run("snapshot is a copy, not an alias", func() {
		snap.Payload["personal"]["firstName"] = "Eve"
		s.Equal("Ana", w.StepPayload("personal")["firstName"])
	})

	s.Run("out-of-range snapshot is rejected", func() {
		_, err := Resume(threeStepFlow(nil), Snapshot{Step: 9})
		s.Error(err)
	})
}

func (s *WizardSuite) TestAbandon() {
	w, _ := New(threeStepFlow(func(context.Context, map[string]Payload) error {
		return errors.New("must not submit")
	}))
	w.Abandon()
	s.Equal(StateAbandoned, w.State())
	s.Error(w.Advance(context.Background(), Payload{"firstName": "Ana"}))
}
