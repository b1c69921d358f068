package status

import (
	"fmt"

	"github.com/jbweber/canopy/api/v1alpha1"
)

// Tenant transitions mirror the provisioning sequence
// Group → VDC → links → network → ready.

// TenantProvisioning moves a tenant to Provisioning. Besides Pending, a
// Failed tenant may be retried and a Ready or Provisioning tenant may be
// submitted again to converge on its existing objects.
func TenantProvisioning(t *v1alpha1.Tenant) error {
	switch t.GetPhase() {
	case "", v1alpha1.TenantPhasePending, v1alpha1.TenantPhaseFailed,
		v1alpha1.TenantPhaseReady, v1alpha1.TenantPhaseProvisioning:
	default:
		return fmt.Errorf("cannot transition tenant to Provisioning from phase %s", t.GetPhase())
	}
	t.SetPhase(v1alpha1.TenantPhaseProvisioning)
	SetCondition(t, v1alpha1.ConditionReady, v1alpha1.ConditionFalse, "Provisioning", "Tenant provisioning in progress")
	return nil
}

// TenantReady marks a provisioned tenant.
func TenantReady(t *v1alpha1.Tenant) error {
	if t.GetPhase() != v1alpha1.TenantPhaseProvisioning {
		return fmt.Errorf("cannot transition tenant to Ready from phase %s", t.GetPhase())
	}
	t.SetPhase(v1alpha1.TenantPhaseReady)
	SetCondition(t, v1alpha1.ConditionReady, v1alpha1.ConditionTrue, "TenantReady", "Group and VDC are linked")
	t.UpdateObservedGeneration()
	return nil
}

// TenantFailed records a failure from any phase.
func TenantFailed(t *v1alpha1.Tenant, reason string, err error) {
	t.SetPhase(v1alpha1.TenantPhaseFailed)
	SetCondition(t, v1alpha1.ConditionReady, v1alpha1.ConditionFalse, reason, err.Error())
}

// MarkNetworkProvisioned sets the NetworkProvisioned condition to True.
func MarkNetworkProvisioned(t *v1alpha1.Tenant) {
	SetCondition(t, v1alpha1.ConditionNetworkProvisioned, v1alpha1.ConditionTrue, "NetworkReady", "Network, router and firewall provisioned")
}

// MarkNetworkFailed sets the NetworkProvisioned condition to False.
func MarkNetworkFailed(t *v1alpha1.Tenant, err error) {
	SetCondition(t, v1alpha1.ConditionNetworkProvisioned, v1alpha1.ConditionFalse, "NetworkFailed", err.Error())
}

// MarkQuotaApplied sets the QuotaApplied condition to True.
func MarkQuotaApplied(t *v1alpha1.Tenant) {
	SetCondition(t, v1alpha1.ConditionQuotaApplied, v1alpha1.ConditionTrue, "QuotaApplied", "Quota template pushed to the group")
}

// Instance transitions follow the backend VM states:
// PENDING → ACTIVE/RUNNING ⇄ POWEROFF → DONE.

// InstanceCreating moves an instance from Pending to Creating.
func InstanceCreating(i *v1alpha1.Instance) error {
	if i.GetPhase() != v1alpha1.InstancePhasePending && i.GetPhase() != "" {
		return fmt.Errorf("cannot transition instance to Creating from phase %s", i.GetPhase())
	}
	i.SetPhase(v1alpha1.InstancePhaseCreating)
	SetCondition(i, v1alpha1.ConditionReady, v1alpha1.ConditionFalse, "Creating", "Instance creation in progress")
	return nil
}

// InstanceRunning marks a running instance after creation.
func InstanceRunning(i *v1alpha1.Instance) error {
	switch i.GetPhase() {
	case v1alpha1.InstancePhaseCreating, v1alpha1.InstancePhasePoweredOff:
	default:
		return fmt.Errorf("cannot transition instance to Running from phase %s", i.GetPhase())
	}
	i.SetPhase(v1alpha1.InstancePhaseRunning)
	SetCondition(i, v1alpha1.ConditionReady, v1alpha1.ConditionTrue, "InstanceReady", "Instance is ACTIVE/RUNNING")
	i.UpdateObservedGeneration()
	return nil
}

// InstanceFailed records a failure from any phase.
func InstanceFailed(i *v1alpha1.Instance, reason string, err error) {
	i.SetPhase(v1alpha1.InstancePhaseFailed)
	SetCondition(i, v1alpha1.ConditionReady, v1alpha1.ConditionFalse, reason, err.Error())
}

// InstancePhaseFor maps a backend state onto an instance phase.
func InstancePhaseFor(running, poweredOff, failed, done bool) v1alpha1.InstancePhase {
	switch {
	case failed:
		return v1alpha1.InstancePhaseFailed
	case done:
		return v1alpha1.InstancePhaseTerminated
	case running:
		return v1alpha1.InstancePhaseRunning
	case poweredOff:
		return v1alpha1.InstancePhasePoweredOff
	}
	return v1alpha1.InstancePhaseCreating
}
