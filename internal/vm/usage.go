package vm

import (
	"fmt"
	"math"

	"github.com/jbweber/canopy/internal/one"
)

// Allocation is the capacity assigned to an instance. It is read from the
// VM template, not measured on the hypervisor.
type Allocation struct {
	VCPU     int `json:"vcpu" yaml:"vcpu"`
	MemoryMB int `json:"memoryMB" yaml:"memoryMB"`
	DiskMB   int `json:"diskMB" yaml:"diskMB"`
}

// AllocationOf computes the allocation of a VM: VCPU (or CPU rounded up if
// VCPU is unset), MEMORY and the sum of all disk sizes.
func AllocationOf(vm *one.VM) Allocation {
	a := Allocation{VCPU: vm.VCPU, MemoryMB: vm.MemoryMB}
	if a.VCPU == 0 {
		a.VCPU = int(math.Ceil(vm.CPU))
	}
	for _, d := range vm.Disks {
		a.DiskMB += d.SizeMB
	}
	return a
}

// Usage returns the allocation of an instance. A VM that does not exist or
// is DONE yields an error matching one.ErrNotFound, so that callers can tell
// a deleted instance from an idle one.
func (m *Manager) Usage(id int) (Allocation, error) {
	vm, err := m.backend.VMInfo(id)
	if err != nil {
		return Allocation{}, fmt.Errorf("failed to get VM %d: %w", id, err)
	}
	if vm.State == one.VMStateDone {
		return Allocation{}, fmt.Errorf("VM %d is terminated: %w", id, one.ErrNotFound)
	}
	return AllocationOf(vm), nil
}
