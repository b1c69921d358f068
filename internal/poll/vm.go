package poll

import (
	"context"
	"fmt"
	"strings"

	"github.com/jbweber/canopy/internal/one"
)

// VMSource fetches the current state of a VM.
type VMSource interface {
	VMInfo(id int) (*one.VM, error)
}

func vmTarget(id int) string {
	return fmt.Sprintf("VM %d", id)
}

// VMRunning waits until the VM is ACTIVE/RUNNING. Any recognized failure
// state ends the wait immediately.
func VMRunning(ctx context.Context, src VMSource, id int, opts Options) error {
	return Until(ctx, "vm_running", vmTarget(id), opts, func() (Status, error) {
		vm, err := src.VMInfo(id)
		if err != nil {
			return Status{}, fmt.Errorf("failed to get state of VM %d: %w", id, err)
		}
		return Status{State: vm.StateString(), Done: vm.IsRunning(), Failed: vm.IsFailed()}, nil
	})
}

// VMState waits until the VM reaches state.
func VMState(ctx context.Context, src VMSource, id int, state one.VMState, opts Options) error {
	return Until(ctx, "vm_"+strings.ToLower(state.String()), vmTarget(id), opts, func() (Status, error) {
		vm, err := src.VMInfo(id)
		if err != nil {
			return Status{}, fmt.Errorf("failed to get state of VM %d: %w", id, err)
		}
		return Status{State: vm.StateString(), Done: vm.State == state, Failed: vm.IsFailed()}, nil
	})
}

// VMGone waits until the VM is DONE or no longer known to the backend.
// Failure states do not end this wait; a failed VM is still being removed.
func VMGone(ctx context.Context, src VMSource, id int, opts Options) error {
	return Until(ctx, "vm_done", vmTarget(id), opts, func() (Status, error) {
		vm, err := src.VMInfo(id)
		if err != nil {
			if one.IsNotFound(err) {
				return Status{State: "GONE", Done: true}, nil
			}
			return Status{}, fmt.Errorf("failed to get state of VM %d: %w", id, err)
		}
		return Status{State: vm.StateString(), Done: vm.State == one.VMStateDone}, nil
	})
}
