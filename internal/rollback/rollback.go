// Package rollback unwinds partially completed multi-step operations.
//
// Each successful step pushes an undo closure. On failure the closures run
// in reverse order; an undo that fails is logged and the remaining ones
// still run.
package rollback

import (
	"fmt"

	"github.com/sapcc/go-bits/errext"
	"github.com/sapcc/go-bits/logg"
)

type step struct {
	description string
	undo        func() error
}

// Stack is an ordered list of undo steps. The zero value is ready to use.
type Stack struct {
	steps []step
}

// Push records how to undo a step that just succeeded.
func (s *Stack) Push(description string, undo func() error) {
	s.steps = append(s.steps, step{description: description, undo: undo})
}

// Len returns the number of recorded steps.
func (s *Stack) Len() int {
	return len(s.steps)
}

// Run executes all undo steps, most recent first, and empties the stack.
// Failures are logged as warnings and returned together; they never stop
// the remaining steps.
func (s *Stack) Run() errext.ErrorSet {
	var errs errext.ErrorSet
	if len(s.steps) == 0 {
		return errs
	}

	logg.Info("Rolling back %d step(s)...", len(s.steps))
	for i := len(s.steps) - 1; i >= 0; i-- {
		st := s.steps[i]
		logg.Info("Rollback: %s", st.description)
		if err := st.undo(); err != nil {
			logg.Error("Warning: rollback step %q failed: %s", st.description, err.Error())
			errs.Add(fmt.Errorf("%s: %w", st.description, err))
		}
	}
	s.steps = nil
	return errs
}

// Unwind runs the stack if *errp is non-nil. It is meant to be deferred:
//
//	var undo rollback.Stack
//	defer undo.Unwind(&err)
//
// The original error is never replaced by rollback failures.
func (s *Stack) Unwind(errp *error) {
	if *errp == nil {
		return
	}
	s.Run()
}
