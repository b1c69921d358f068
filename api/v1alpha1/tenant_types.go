package v1alpha1

import (
	"maps"
	"slices"
)

// Tenant is a customer's resource boundary on the control plane: a Group
// and a VDC sharing the tenant name, the clusters the VDC grants, a quota,
// and optionally an isolated network with a router.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Subnet",type=string,JSONPath=`.status.network.subnet`
type Tenant struct {
	TypeMeta   `json:",inline" yaml:",inline"`
	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	Spec   TenantSpec   `json:"spec" yaml:"spec"`
	Status TenantStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// TenantSpec defines the desired state of a Tenant.
type TenantSpec struct {
	// ClusterIDs are the compute clusters the VDC grants access to.
	// +kubebuilder:validation:MinItems=1
	ClusterIDs []int `json:"clusterIDs" yaml:"clusterIDs"`

	// Quota maps components (cpu, ram, storage, floating_ip) to limits in
	// backend units. -1 means unlimited.
	// +optional
	Quota map[string]int `json:"quota,omitempty" yaml:"quota,omitempty"`

	// Network requests an isolated tenant network. Without it only the
	// Group and VDC are created.
	// +optional
	Network *TenantNetworkSpec `json:"network,omitempty" yaml:"network,omitempty"`

	// Admin requests a tenant administrator account.
	// +optional
	Admin bool `json:"admin,omitempty" yaml:"admin,omitempty"`
}

// TenantNetworkSpec overrides the configured network defaults.
type TenantNetworkSpec struct {
	// Subnet pins the tenant subnet (CIDR) instead of allocating the next
	// free one from the pool.
	// +optional
	Subnet string `json:"subnet,omitempty" yaml:"subnet,omitempty"`

	// SchedRequirements replaces the generated router placement expression.
	// +optional
	SchedRequirements string `json:"schedRequirements,omitempty" yaml:"schedRequirements,omitempty"`
}

// TenantStatus is the observed state of a Tenant.
type TenantStatus struct {
	Phase      TenantPhase `json:"phase,omitempty" yaml:"phase,omitempty"`
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	GroupID int `json:"groupID,omitempty" yaml:"groupID,omitempty"`
	VDCID   int `json:"vdcID,omitempty" yaml:"vdcID,omitempty"`

	Network *NetworkStatus `json:"network,omitempty" yaml:"network,omitempty"`

	// AdminUser is the tenant administrator account; its password is only
	// returned by the admin command and never stored.
	AdminUser string `json:"adminUser,omitempty" yaml:"adminUser,omitempty"`

	ObservedGeneration int64 `json:"observedGeneration,omitempty" yaml:"observedGeneration,omitempty"`
}

// NetworkStatus describes a provisioned tenant network.
type NetworkStatus struct {
	VNetID     int    `json:"vnetID" yaml:"vnetID"`
	VNetName   string `json:"vnetName" yaml:"vnetName"`
	Subnet     string `json:"subnet" yaml:"subnet"`
	Gateway    string `json:"gateway" yaml:"gateway"`
	RouterID   int    `json:"routerID" yaml:"routerID"`
	RouterVMID int    `json:"routerVMID" yaml:"routerVMID"`

	// SecurityGroupID is nil when no default rules are configured.
	SecurityGroupID *int `json:"securityGroupID,omitempty" yaml:"securityGroupID,omitempty"`
}

// TenantPhase is a simple, high-level summary of the tenant lifecycle.
type TenantPhase string

// Tenant phases.
const (
	TenantPhasePending      TenantPhase = "Pending"
	TenantPhaseProvisioning TenantPhase = "Provisioning"
	TenantPhaseReady        TenantPhase = "Ready"
	TenantPhaseFailed       TenantPhase = "Failed"
)

// GetObjectMeta implements Object.
func (t *Tenant) GetObjectMeta() *ObjectMeta { return &t.ObjectMeta }

// GetConditions implements Object.
func (t *Tenant) GetConditions() *[]Condition { return &t.Status.Conditions }

// DeepCopy returns a deep copy of the tenant.
func (t *Tenant) DeepCopy() *Tenant {
	if t == nil {
		return nil
	}
	out := *t
	out.ObjectMeta = *t.ObjectMeta.DeepCopy()
	out.Spec.ClusterIDs = slices.Clone(t.Spec.ClusterIDs)
	out.Spec.Quota = maps.Clone(t.Spec.Quota)
	if t.Spec.Network != nil {
		n := *t.Spec.Network
		out.Spec.Network = &n
	}
	out.Status.Conditions = slices.Clone(t.Status.Conditions)
	if t.Status.Network != nil {
		n := *t.Status.Network
		if n.SecurityGroupID != nil {
			id := *n.SecurityGroupID
			n.SecurityGroupID = &id
		}
		out.Status.Network = &n
	}
	return &out
}
