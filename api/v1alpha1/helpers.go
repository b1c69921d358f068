package v1alpha1

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// GroupName is the API group for canopy resources.
	GroupName = "canopy.cofront.xyz"

	// Version is the API version.
	Version = "v1alpha1"

	// APIVersion is GroupName/Version.
	APIVersion = GroupName + "/" + Version

	// TenantKind is the kind string for Tenant resources.
	TenantKind = "Tenant"

	// InstanceKind is the kind string for Instance resources.
	InstanceKind = "Instance"
)

func newObjectMeta(name string) ObjectMeta {
	return ObjectMeta{
		Name:              name,
		UID:               uuid.New().String(),
		CreationTimestamp: Now(),
		Generation:        1,
	}
}

// NewTenant returns a Pending tenant with TypeMeta and ObjectMeta defaults.
func NewTenant(name string) *Tenant {
	return &Tenant{
		TypeMeta:   TypeMeta{APIVersion: APIVersion, Kind: TenantKind},
		ObjectMeta: newObjectMeta(name),
		Status:     TenantStatus{Phase: TenantPhasePending},
	}
}

// NewInstance returns a Pending instance with TypeMeta and ObjectMeta
// defaults.
func NewInstance(name string) *Instance {
	return &Instance{
		TypeMeta:   TypeMeta{APIVersion: APIVersion, Kind: InstanceKind},
		ObjectMeta: newObjectMeta(name),
		Status:     InstanceStatus{Phase: InstancePhasePending, VMID: -1},
	}
}

// EnsureIdentity fills UID, creation timestamp and generation of objects
// read from manifests.
func EnsureIdentity(meta *ObjectMeta) {
	if meta.UID == "" {
		meta.UID = uuid.New().String()
	}
	if meta.CreationTimestamp.IsZero() {
		meta.CreationTimestamp = Now()
	}
	if meta.Generation == 0 {
		meta.Generation = 1
	}
}

// SetPhase sets the tenant phase.
func (t *Tenant) SetPhase(phase TenantPhase) { t.Status.Phase = phase }

// GetPhase returns the tenant phase.
func (t *Tenant) GetPhase() TenantPhase { return t.Status.Phase }

// UpdateObservedGeneration records that the status reflects the current spec.
func (t *Tenant) UpdateObservedGeneration() { t.Status.ObservedGeneration = t.Generation }

// Normalize trims the tenant name. Tenant names are case-sensitive
// because they are matched against existing backend object names.
func (t *Tenant) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	if t.Spec.Network != nil {
		t.Spec.Network.Subnet = strings.TrimSpace(t.Spec.Network.Subnet)
	}
}

// WantsNetwork reports whether a tenant network is requested.
func (t *Tenant) WantsNetwork() bool { return t.Spec.Network != nil }

// SetPhase sets the instance phase.
func (i *Instance) SetPhase(phase InstancePhase) { i.Status.Phase = phase }

// GetPhase returns the instance phase.
func (i *Instance) GetPhase() InstancePhase { return i.Status.Phase }

// UpdateObservedGeneration records that the status reflects the current spec.
func (i *Instance) UpdateObservedGeneration() { i.Status.ObservedGeneration = i.Generation }

// Normalize trims names and lowercases the FQDN.
func (i *Instance) Normalize() {
	i.Name = strings.TrimSpace(i.Name)
	i.Spec.Tenant = strings.TrimSpace(i.Spec.Tenant)
	i.Spec.FQDN = strings.ToLower(strings.TrimSpace(i.Spec.FQDN))
	i.Spec.SSHKey = strings.TrimSpace(i.Spec.SSHKey)
}
