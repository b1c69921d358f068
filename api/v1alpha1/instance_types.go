package v1alpha1

import "slices"

// Instance is a VM instantiated from a template inside a tenant's network
// and attributed to the tenant's quota group.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:shortName=inst
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="IP",type=string,JSONPath=`.status.ip`
type Instance struct {
	TypeMeta   `json:",inline" yaml:",inline"`
	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	Spec   InstanceSpec   `json:"spec" yaml:"spec"`
	Status InstanceStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// InstanceSpec defines the desired state of an Instance.
type InstanceSpec struct {
	// Tenant owns the instance. Its internal network must exist.
	Tenant string `json:"tenant" yaml:"tenant"`

	// TemplateID is the backend VM template to instantiate.
	TemplateID int `json:"templateID" yaml:"templateID"`

	// +kubebuilder:validation:Minimum=1
	VCPU int `json:"vcpu" yaml:"vcpu"`

	// +kubebuilder:validation:Minimum=1
	MemoryMB int `json:"memoryMB" yaml:"memoryMB"`

	// DiskMB sizes the primary disk. 0 keeps the template's size.
	// +optional
	DiskMB int `json:"diskMB,omitempty" yaml:"diskMB,omitempty"`

	// SSHKey holds authorized keys, one per line.
	// +optional
	SSHKey string `json:"sshKey,omitempty" yaml:"sshKey,omitempty"`

	// FQDN sets the guest hostname.
	// +optional
	FQDN string `json:"fqdn,omitempty" yaml:"fqdn,omitempty"`

	// RootPasswordHash is a crypt(3) hash for the root account.
	// +optional
	RootPasswordHash string `json:"rootPasswordHash,omitempty" yaml:"rootPasswordHash,omitempty"`

	// ClusterIDs restrict placement. Empty means the tenant VDC decides.
	// +optional
	ClusterIDs []int `json:"clusterIDs,omitempty" yaml:"clusterIDs,omitempty"`

	// SchedRequirements replaces the generated placement expression.
	// +optional
	SchedRequirements string `json:"schedRequirements,omitempty" yaml:"schedRequirements,omitempty"`
}

// InstanceStatus is the observed state of an Instance.
type InstanceStatus struct {
	Phase      InstancePhase `json:"phase,omitempty" yaml:"phase,omitempty"`
	Conditions []Condition   `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// VMID is the backend ID, assigned on instantiation. -1 before that.
	VMID int `json:"vmID" yaml:"vmID"`

	// State is the backend state, e.g. "ACTIVE/RUNNING".
	State string `json:"state,omitempty" yaml:"state,omitempty"`

	// IP is the address of the first NIC.
	IP string `json:"ip,omitempty" yaml:"ip,omitempty"`

	ObservedGeneration int64 `json:"observedGeneration,omitempty" yaml:"observedGeneration,omitempty"`
}

// InstancePhase is a simple, high-level summary of the instance lifecycle.
type InstancePhase string

// Instance phases.
const (
	InstancePhasePending    InstancePhase = "Pending"
	InstancePhaseCreating   InstancePhase = "Creating"
	InstancePhaseRunning    InstancePhase = "Running"
	InstancePhasePoweredOff InstancePhase = "PoweredOff"
	InstancePhaseTerminated InstancePhase = "Terminated"
	InstancePhaseFailed     InstancePhase = "Failed"
)

// GetObjectMeta implements Object.
func (i *Instance) GetObjectMeta() *ObjectMeta { return &i.ObjectMeta }

// GetConditions implements Object.
func (i *Instance) GetConditions() *[]Condition { return &i.Status.Conditions }

// DeepCopy returns a deep copy of the instance.
func (i *Instance) DeepCopy() *Instance {
	if i == nil {
		return nil
	}
	out := *i
	out.ObjectMeta = *i.ObjectMeta.DeepCopy()
	out.Spec.ClusterIDs = slices.Clone(i.Spec.ClusterIDs)
	out.Status.Conditions = slices.Clone(i.Status.Conditions)
	return &out
}
