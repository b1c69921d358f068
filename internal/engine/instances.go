package engine

import (
	"context"
	"errors"

	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/api/v1alpha1"
	"github.com/jbweber/canopy/internal/metadata"
	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/poll"
	"github.com/jbweber/canopy/internal/status"
	"github.com/jbweber/canopy/internal/vm"
)

// CreateInstance instantiates an instance into its tenant's network and
// returns a copy with the observed status. On failure the VM has been
// terminated and the returned instance is in phase Failed.
func (e *Engine) CreateInstance(ctx context.Context, inst *v1alpha1.Instance) (*v1alpha1.Instance, error) {
	out := inst.DeepCopy()
	out.Normalize()
	if err := status.InstanceCreating(out); err != nil {
		return out, err
	}

	created, err := e.vms.Create(ctx, out)
	if err != nil {
		status.InstanceFailed(out, reasonFor(err), err)
		return out, err
	}

	observe(out, created)
	if err := status.InstanceRunning(out); err != nil {
		return out, err
	}
	return out, nil
}

// DeleteInstance hard-terminates an instance. Deleting an instance that no
// longer exists succeeds.
func (e *Engine) DeleteInstance(id int) error {
	return e.vms.Delete(id)
}

// ResizeInstance changes the capacity of an instance and returns its
// state afterwards. The primary disk only grows.
func (e *Engine) ResizeInstance(ctx context.Context, id int, req vm.ResizeRequest) (*v1alpha1.Instance, error) {
	if err := e.vms.Resize(ctx, id, req); err != nil {
		return nil, err
	}
	return e.GetInstance(id)
}

// GetUsage returns the allocation of an instance. An instance that does
// not exist yields an error matching one.ErrNotFound.
func (e *Engine) GetUsage(id int) (vm.Allocation, error) {
	return e.vms.Usage(id)
}

// GetInstance returns the instance stored on a VM, with its spec updated to
// the current allocation and its status read from the VM.
func (e *Engine) GetInstance(id int) (*v1alpha1.Instance, error) {
	found, err := e.vms.Get(id)
	if err != nil {
		return nil, err
	}
	return instanceFromVM(found)
}

// ListInstances returns the instances of a tenant, or of all tenants when
// tenant is empty.
func (e *Engine) ListInstances(tenant string) ([]*v1alpha1.Instance, error) {
	vms, err := e.vms.List(tenant)
	if err != nil {
		return nil, err
	}
	out := make([]*v1alpha1.Instance, 0, len(vms))
	for i := range vms {
		inst, err := instanceFromVM(&vms[i])
		if err != nil {
			logg.Error("Warning: skipping VM %d: %s", vms[i].ID, err.Error())
			continue
		}
		out = append(out, inst)
	}
	return out, nil
}

// instanceFromVM rebuilds an Instance from the metadata stored on a VM.
// VMs without metadata are described by their backend name and owner label
// alone.
func instanceFromVM(found *one.VM) (*v1alpha1.Instance, error) {
	inst, err := metadata.Load(found)
	switch {
	case errors.Is(err, metadata.ErrNoMetadata):
		inst = v1alpha1.NewInstance(found.Name)
		inst.Spec.Tenant, _ = metadata.Tenant(found)
	case err != nil:
		return nil, err
	}
	if inst.APIVersion == "" {
		inst.TypeMeta = v1alpha1.TypeMeta{APIVersion: v1alpha1.APIVersion, Kind: v1alpha1.InstanceKind}
	}

	alloc := vm.AllocationOf(found)
	inst.Spec.VCPU = alloc.VCPU
	inst.Spec.MemoryMB = alloc.MemoryMB
	if len(found.Disks) > 0 {
		inst.Spec.DiskMB = found.Disks[0].SizeMB
	}

	observe(inst, found)
	inst.Status.Phase = status.InstancePhaseFor(
		found.IsRunning(),
		found.State == one.VMStatePoweroff,
		found.IsFailed(),
		found.State == one.VMStateDone,
	)
	return inst, nil
}

// observe copies the live VM state into the instance status.
func observe(inst *v1alpha1.Instance, found *one.VM) {
	inst.Status.VMID = found.ID
	inst.Status.State = found.StateString()
	inst.Status.IP = found.IP()
}

func reasonFor(err error) string {
	var failure *poll.FailureError
	switch {
	case errors.Is(err, vm.ErrNetworkMissing):
		return "NetworkMissing"
	case errors.Is(err, vm.ErrGroupMissing):
		return "TenantMissing"
	case errors.Is(err, poll.ErrTimeout):
		return "Timeout"
	case errors.As(err, &failure):
		return "BootFailed"
	}
	return "CreateFailed"
}
