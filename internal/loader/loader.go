// Package loader loads Tenant and Instance manifests from YAML files.
package loader

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/canopy/api/v1alpha1"
	"github.com/jbweber/canopy/internal/naming"
	"github.com/jbweber/canopy/internal/quota"
	"github.com/jbweber/canopy/internal/vmcontext"
)

// LoadTenantFromFile loads a Tenant manifest from a YAML file.
func LoadTenantFromFile(path string) (*v1alpha1.Tenant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return LoadTenant(data)
}

// LoadTenant loads a Tenant manifest from YAML bytes.
// The manifest must be in the canopy.cofront.xyz/v1alpha1 format.
func LoadTenant(data []byte) (*v1alpha1.Tenant, error) {
	var t v1alpha1.Tenant
	if err := decode(data, &t, &t.TypeMeta, v1alpha1.TenantKind); err != nil {
		return nil, err
	}

	t.Normalize()
	v1alpha1.EnsureIdentity(&t.ObjectMeta)
	if t.Status.Phase == "" {
		t.Status.Phase = v1alpha1.TenantPhasePending
	}

	if err := validateTenant(&t); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &t, nil
}

// LoadInstanceFromFile loads an Instance manifest from a YAML file.
func LoadInstanceFromFile(path string) (*v1alpha1.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return LoadInstance(data)
}

// LoadInstance loads an Instance manifest from YAML bytes.
// The manifest must be in the canopy.cofront.xyz/v1alpha1 format.
func LoadInstance(data []byte) (*v1alpha1.Instance, error) {
	var i v1alpha1.Instance
	if err := decode(data, &i, &i.TypeMeta, v1alpha1.InstanceKind); err != nil {
		return nil, err
	}

	i.Normalize()
	v1alpha1.EnsureIdentity(&i.ObjectMeta)
	if i.Status.Phase == "" {
		i.Status.Phase = v1alpha1.InstancePhasePending
		i.Status.VMID = -1
	}

	if err := validateInstance(&i); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &i, nil
}

// decode unmarshals data into out and checks the TypeMeta it filled in.
func decode(data []byte, out any, meta *v1alpha1.TypeMeta, kind string) error {
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if meta.APIVersion == "" {
		return fmt.Errorf("missing required field: apiVersion")
	}
	if meta.Kind == "" {
		return fmt.Errorf("missing required field: kind")
	}
	if meta.APIVersion != v1alpha1.APIVersion {
		return fmt.Errorf("unsupported apiVersion: %s (expected: %s)", meta.APIVersion, v1alpha1.APIVersion)
	}
	if meta.Kind != kind {
		return fmt.Errorf("unsupported kind: %s (expected: %s)", meta.Kind, kind)
	}
	return nil
}

func validateTenant(t *v1alpha1.Tenant) error {
	if t.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	if err := naming.ValidateTenantName(t.Name); err != nil {
		return fmt.Errorf("metadata.name: %w", err)
	}

	if len(t.Spec.ClusterIDs) == 0 {
		return fmt.Errorf("spec.clusterIDs must have at least one cluster")
	}
	seen := make(map[int]bool)
	for i, id := range t.Spec.ClusterIDs {
		if id < 0 {
			return fmt.Errorf("spec.clusterIDs[%d] must not be negative", i)
		}
		if seen[id] {
			return fmt.Errorf("spec.clusterIDs[%d]: cluster %d is duplicated", i, id)
		}
		seen[id] = true
	}

	for component, limit := range t.Spec.Quota {
		if !quota.IsKnown(quota.Component(component)) {
			return fmt.Errorf("spec.quota: unknown component %q (known: %v)", component, quota.Components())
		}
		if limit < quota.Unlimited {
			return fmt.Errorf("spec.quota.%s must be %d (unlimited) or greater, got %d", component, quota.Unlimited, limit)
		}
	}

	if t.Spec.Network != nil && t.Spec.Network.Subnet != "" {
		if _, _, err := net.ParseCIDR(t.Spec.Network.Subnet); err != nil {
			return fmt.Errorf("spec.network.subnet %q is not a CIDR", t.Spec.Network.Subnet)
		}
	}
	return nil
}

func validateInstance(i *v1alpha1.Instance) error {
	if i.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	if i.Spec.Tenant == "" {
		return fmt.Errorf("spec.tenant is required")
	}
	if err := naming.ValidateTenantName(i.Spec.Tenant); err != nil {
		return fmt.Errorf("spec.tenant: %w", err)
	}
	if i.Spec.TemplateID < 0 {
		return fmt.Errorf("spec.templateID must not be negative")
	}
	if i.Spec.VCPU <= 0 {
		return fmt.Errorf("spec.vcpu must be greater than 0")
	}
	if i.Spec.MemoryMB <= 0 {
		return fmt.Errorf("spec.memoryMB must be greater than 0")
	}
	if i.Spec.DiskMB < 0 {
		return fmt.Errorf("spec.diskMB must not be negative")
	}
	if i.Spec.SSHKey != "" {
		if err := vmcontext.ValidateSSHKeys(i.Spec.SSHKey); err != nil {
			return fmt.Errorf("spec.sshKey: %w", err)
		}
	}
	for n, id := range i.Spec.ClusterIDs {
		if id < 0 {
			return fmt.Errorf("spec.clusterIDs[%d] must not be negative", n)
		}
	}
	return nil
}
