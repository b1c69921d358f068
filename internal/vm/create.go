package vm

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/api/v1alpha1"
	"github.com/jbweber/canopy/internal/identity"
	"github.com/jbweber/canopy/internal/metadata"
	"github.com/jbweber/canopy/internal/naming"
	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/poll"
	"github.com/jbweber/canopy/internal/rollback"
	"github.com/jbweber/canopy/internal/vmcontext"
)

// Create instantiates an instance into its tenant's network and waits until
// it runs.
//
// This orchestrates the creation:
//  1. Resolve the tenant group, internal network and default security group
//  2. Build the instantiation template (capacity, NIC, disk, context, placement)
//  3. Instantiate the template
//  4. Hand the VM over to the tenant group
//  5. Label the VM with its tenant and spec
//  6. Wait for ACTIVE/RUNNING
//
// If any step after instantiation fails, the VM is hard-terminated and the
// original error is returned.
func (m *Manager) Create(ctx context.Context, inst *v1alpha1.Instance) (result *one.VM, err error) {
	if err := validate(inst); err != nil {
		return nil, err
	}
	spec := inst.Spec
	names := naming.For(spec.Tenant)

	// Step 1: Tenant objects
	groupID, found, err := identity.ResolveByName(one.KindGroup, names.Group, m.backend.ListGroups)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrGroupMissing, spec.Tenant)
	}

	vnetID, found, err := identity.ResolveByName(one.KindVNet, names.VNet, m.backend.ListVNets)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s does not exist", ErrNetworkMissing, names.VNet)
	}

	sgID, found, err := identity.ResolveByName(one.KindSecurityGroup, names.SecurityGroup, m.backend.ListSecurityGroups)
	if err != nil {
		return nil, err
	}
	if !found {
		logg.Info("Security group %s not found, creating instance without firewall", names.SecurityGroup)
		sgID = -1
	}

	// Step 2: Template
	logg.Info("Building instantiation template for %s...", inst.Name)
	tpl, err := m.instantiationTemplate(spec, vnetID, sgID)
	if err != nil {
		return nil, err
	}
	logg.Debug("Instantiation template:\n%s", tpl)

	// Step 3: Instantiate
	logg.Info("Instantiating template %d as %s...", spec.TemplateID, inst.Name)
	vmID, err := m.backend.InstantiateTemplate(spec.TemplateID, inst.Name, false, tpl.String())
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate template %d: %w", spec.TemplateID, err)
	}

	var undo rollback.Stack
	defer undo.Unwind(&err)
	undo.Push(fmt.Sprintf("terminate VM %d", vmID), func() error {
		err := m.backend.VMAction(one.ActionTerminateHard, vmID)
		if one.IsNotFound(err) {
			return nil
		}
		return err
	})

	// Step 4: Ownership
	logg.Info("Handing VM %d over to group %d...", vmID, groupID)
	if err := m.backend.ChownVM(vmID, -1, groupID); err != nil {
		return nil, fmt.Errorf("failed to change owner of VM %d to group %d: %w", vmID, groupID, err)
	}

	// Step 5: Labels
	if err := metadata.Store(m.backend, vmID, inst); err != nil {
		return nil, err
	}

	// Step 6: Wait
	logg.Info("Waiting for VM %d to be running...", vmID)
	if err := poll.VMRunning(ctx, m.backend, vmID, m.running); err != nil {
		return nil, fmt.Errorf("VM %d did not start: %w", vmID, err)
	}

	vm, err := m.backend.VMInfo(vmID)
	if err != nil {
		return nil, fmt.Errorf("failed to get VM %d: %w", vmID, err)
	}
	logg.Info("Instance %s running as VM %d (%s)", inst.Name, vmID, vm.IP())
	return vm, nil
}

func validate(inst *v1alpha1.Instance) error {
	switch {
	case inst.Name == "":
		return fmt.Errorf("instance name is required")
	case inst.Spec.Tenant == "":
		return fmt.Errorf("instance %q: tenant is required", inst.Name)
	case inst.Spec.TemplateID < 0:
		return fmt.Errorf("instance %q: invalid template ID %d", inst.Name, inst.Spec.TemplateID)
	case inst.Spec.VCPU <= 0:
		return fmt.Errorf("instance %q: vcpu must be positive", inst.Name)
	case inst.Spec.MemoryMB <= 0:
		return fmt.Errorf("instance %q: memoryMB must be positive", inst.Name)
	case inst.Spec.DiskMB < 0:
		return fmt.Errorf("instance %q: diskMB must not be negative", inst.Name)
	}
	return nil
}

// instantiationTemplate builds the overrides applied on top of the source
// template:
//
//	CPU="2"
//	VCPU="2"
//	MEMORY="2048"
//	NIC=[NETWORK_ID="105", SECURITY_GROUPS="107"]
//	DISK=[IMAGE_ID="3", SIZE="10240"]
//	CONTEXT=[NETWORK="YES", SSH_PUBLIC_KEY="..."]
//	SCHED_REQUIREMENTS="CLUSTER_ID = 100"
func (m *Manager) instantiationTemplate(spec v1alpha1.InstanceSpec, vnetID, sgID int) (*one.Template, error) {
	tpl := one.NewTemplate().
		Add("CPU", spec.VCPU).
		Add("VCPU", spec.VCPU).
		Add("MEMORY", spec.MemoryMB)

	nic := []one.Pair{one.P("NETWORK_ID", vnetID)}
	if sgID >= 0 {
		nic = append(nic, one.P("SECURITY_GROUPS", sgID))
	}
	tpl.AddVector("NIC", nic...)

	if spec.DiskMB > 0 {
		source, err := m.backend.TemplateInfo(spec.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("failed to get template %d: %w", spec.TemplateID, err)
		}
		if len(source.Disks) == 0 {
			return nil, fmt.Errorf("template %d has no disk to size", spec.TemplateID)
		}
		disk := source.Disks[0].With("SIZE", strconv.Itoa(spec.DiskMB))
		tpl.AddVector("DISK", disk...)
	}

	err := vmcontext.Apply(tpl, vmcontext.Options{
		SSHKey:           spec.SSHKey,
		FQDN:             spec.FQDN,
		RootPasswordHash: spec.RootPasswordHash,
	})
	if err != nil {
		return nil, err
	}

	sched := spec.SchedRequirements
	if sched == "" {
		sched = one.SchedRequirements(spec.ClusterIDs)
	}
	if sched != "" {
		tpl.Add("SCHED_REQUIREMENTS", sched)
	}
	return tpl, nil
}
