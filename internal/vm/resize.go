package vm

import (
	"context"
	"fmt"

	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/poll"
)

// ResizeRequest holds the new capacity of an instance. Zero fields keep
// the current value.
type ResizeRequest struct {
	VCPU     int
	MemoryMB int
	DiskMB   int
}

// Resize changes the capacity of an instance.
//
// This orchestrates the resize:
//  1. Power off a running VM and wait for POWEROFF (a powered-off VM is
//     resized as is; any other state is rejected)
//  2. Resize CPU, VCPU and MEMORY without quota enforcement
//  3. Grow the primary disk if the requested size is larger
//  4. Resume and wait for RUNNING if the VM was powered off in step 1
//
// The primary disk never shrinks: a smaller size is logged and ignored.
// A failed disk grow is logged and does not fail the resize.
func (m *Manager) Resize(ctx context.Context, id int, req ResizeRequest) error {
	vm, err := m.backend.VMInfo(id)
	if err != nil {
		return fmt.Errorf("failed to get VM %d: %w", id, err)
	}

	// Step 1: Power off
	poweredOff := false
	switch vm.State {
	case one.VMStateActive:
		logg.Info("Powering off VM %d...", id)
		if err := m.backend.VMAction(one.ActionPoweroff, id); err != nil {
			return fmt.Errorf("failed to power off VM %d: %w", id, err)
		}
		poweredOff = true
		if err := poll.VMState(ctx, m.backend, id, one.VMStatePoweroff, m.power); err != nil {
			return fmt.Errorf("VM %d did not power off: %w", id, err)
		}
	case one.VMStatePoweroff:
		logg.Info("VM %d is already powered off", id)
	default:
		return fmt.Errorf("%w: cannot resize VM %d in state %s", ErrInvalidState, id, vm.StateString())
	}

	// Step 2: Capacity
	tpl := one.NewTemplate()
	if req.VCPU > 0 {
		tpl.Add("CPU", req.VCPU).Add("VCPU", req.VCPU)
	}
	if req.MemoryMB > 0 {
		tpl.Add("MEMORY", req.MemoryMB)
	}
	if !tpl.IsEmpty() {
		logg.Info("Resizing VM %d (vcpu=%d, memory=%dMB)...", id, req.VCPU, req.MemoryMB)
		logg.Debug("Resize template:\n%s", tpl)
		if err := m.backend.ResizeVM(id, tpl.String(), false); err != nil {
			if poweredOff {
				m.resume(id)
			}
			return fmt.Errorf("failed to resize VM %d: %w", id, err)
		}
	}

	// Step 3: Disk
	if req.DiskMB > 0 {
		m.growDisk(vm, req.DiskMB)
	}

	// Step 4: Resume
	if poweredOff {
		logg.Info("Resuming VM %d...", id)
		if err := m.backend.VMAction(one.ActionResume, id); err != nil {
			return fmt.Errorf("failed to resume VM %d: %w", id, err)
		}
		if err := poll.VMRunning(ctx, m.backend, id, m.running); err != nil {
			return fmt.Errorf("VM %d did not resume: %w", id, err)
		}
	}

	logg.Info("VM %d resized", id)
	return nil
}

// growDisk grows the primary disk when sizeMB is larger than its current
// size. It never fails the resize.
func (m *Manager) growDisk(vm *one.VM, sizeMB int) {
	if len(vm.Disks) == 0 {
		logg.Error("Warning: VM %d has no disk, ignoring disk size %dMB", vm.ID, sizeMB)
		return
	}
	disk := vm.Disks[0]
	switch {
	case sizeMB > disk.SizeMB:
		logg.Info("Growing disk %d of VM %d from %dMB to %dMB...", disk.ID, vm.ID, disk.SizeMB, sizeMB)
		if err := m.backend.ResizeVMDisk(vm.ID, disk.ID, sizeMB); err != nil {
			logg.Error("Warning: failed to grow disk %d of VM %d: %s", disk.ID, vm.ID, err.Error())
		}
	case sizeMB < disk.SizeMB:
		logg.Error("Warning: refusing to shrink disk %d of VM %d from %dMB to %dMB", disk.ID, vm.ID, disk.SizeMB, sizeMB)
	}
}

// resume is best-effort cleanup after a failed resize.
func (m *Manager) resume(id int) {
	logg.Info("Resuming VM %d after failed resize...", id)
	if err := m.backend.VMAction(one.ActionResume, id); err != nil {
		logg.Error("Warning: failed to resume VM %d: %s", id, err.Error())
	}
}
