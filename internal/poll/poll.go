// Package poll waits for asynchronous backend state transitions.
//
// The backend has no push notifications, so every wait is a bounded loop:
// check, sleep a fixed interval, check again until the target state, a
// failure state, the deadline, or context cancellation.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sapcc/go-bits/logg"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultTimeout  = 300 * time.Second
	DefaultInterval = 5 * time.Second
)

// ErrTimeout is wrapped by the error returned when the deadline passes.
var ErrTimeout = errors.New("timed out")

// FailureError is returned when the polled object enters a failure state.
type FailureError struct {
	Target string
	State  string
}

// Error implements the error interface.
func (e *FailureError) Error() string {
	return fmt.Sprintf("%s entered failure state %s", e.Target, e.State)
}

// Observer is notified once per finished wait. internal/metrics implements it.
type Observer interface {
	ObservePoll(target string, duration time.Duration, err error)
}

// Options bound a wait.
type Options struct {
	Timeout  time.Duration
	Interval time.Duration
	Observer Observer
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// Status is the outcome of a single check.
type Status struct {
	// State is a human-readable rendering, logged when it changes and
	// reported in timeout and failure errors.
	State  string
	Done   bool
	Failed bool
}

// CheckFunc observes the current state once. A returned error aborts the wait.
type CheckFunc func() (Status, error)

// Until runs check until it reports Done or Failed.
//
// target names the polled object in log lines and errors, e.g. "VM 42".
// kind is a short label for metrics, e.g. "vm_running".
func Until(ctx context.Context, kind, target string, opts Options, check CheckFunc) error {
	opts = opts.withDefaults()
	start := time.Now()
	err := until(ctx, target, opts, check)
	if opts.Observer != nil {
		opts.Observer.ObservePoll(kind, time.Since(start), err)
	}
	return err
}

func until(ctx context.Context, target string, opts Options, check CheckFunc) error {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	lastState := ""
	for {
		status, err := check()
		if err != nil {
			return err
		}
		if status.State != lastState {
			logg.Info("%s: %s", target, status.State)
			lastState = status.State
		}
		if status.Failed {
			return &FailureError{Target: target, State: status.State}
		}
		if status.Done {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%s %w after %s, last state %s", target, ErrTimeout, opts.Timeout, lastState)
			}
			return fmt.Errorf("waiting for %s: %w", target, ctx.Err())
		case <-ticker.C:
		}
	}
}
