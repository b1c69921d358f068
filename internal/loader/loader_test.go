package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jbweber/canopy/api/v1alpha1"
)

const testSSHKey = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIIbJKZscbOLzBsgY5y2QupKW4A2kSDjMBQGPb1dChr+S test@example.com"

const tenantYAML = `
apiVersion: canopy.cofront.xyz/v1alpha1
kind: Tenant
metadata:
  name: " acme "
spec:
  clusterIDs: [100, 101]
  quota:
    cpu: 16
    ram: 32768
    storage: -1
  network:
    subnet: 10.0.42.0/24
  admin: true
`

const instanceYAML = `
apiVersion: canopy.cofront.xyz/v1alpha1
kind: Instance
metadata:
  name: web-1
spec:
  tenant: acme
  templateID: 7
  vcpu: 2
  memoryMB: 2048
  diskMB: 10240
  fqdn: Web-1.Example.COM
  sshKey: ` + testSSHKey + `
`

func TestLoadTenant_Valid(t *testing.T) {
	tenant, err := LoadTenant([]byte(tenantYAML))
	if err != nil {
		t.Fatalf("LoadTenant() error = %v", err)
	}

	if tenant.Name != "acme" {
		t.Errorf("Expected name 'acme', got %q", tenant.Name)
	}
	if len(tenant.Spec.ClusterIDs) != 2 || tenant.Spec.ClusterIDs[1] != 101 {
		t.Errorf("Expected clusters [100 101], got %v", tenant.Spec.ClusterIDs)
	}
	if tenant.Spec.Quota["storage"] != -1 {
		t.Errorf("Expected unlimited storage, got %d", tenant.Spec.Quota["storage"])
	}
	if !tenant.WantsNetwork() || tenant.Spec.Network.Subnet != "10.0.42.0/24" {
		t.Errorf("Expected network with subnet 10.0.42.0/24, got %+v", tenant.Spec.Network)
	}
	if !tenant.Spec.Admin {
		t.Error("Expected admin to be requested")
	}

	// Defaults
	if tenant.Status.Phase != v1alpha1.TenantPhasePending {
		t.Errorf("Expected default phase Pending, got %s", tenant.Status.Phase)
	}
	if tenant.UID == "" || tenant.CreationTimestamp.IsZero() || tenant.Generation != 1 {
		t.Errorf("Expected identity defaults, got %+v", tenant.ObjectMeta)
	}
}

func TestLoadInstance_Valid(t *testing.T) {
	inst, err := LoadInstance([]byte(instanceYAML))
	if err != nil {
		t.Fatalf("LoadInstance() error = %v", err)
	}

	if inst.Spec.Tenant != "acme" || inst.Spec.TemplateID != 7 {
		t.Errorf("Unexpected spec %+v", inst.Spec)
	}
	if inst.Spec.FQDN != "web-1.example.com" {
		t.Errorf("Expected lowercased FQDN, got %q", inst.Spec.FQDN)
	}
	if inst.Spec.SSHKey != testSSHKey {
		t.Errorf("Unexpected SSH key %q", inst.Spec.SSHKey)
	}
	if inst.Status.Phase != v1alpha1.InstancePhasePending {
		t.Errorf("Expected default phase Pending, got %s", inst.Status.Phase)
	}
	if inst.Status.VMID != -1 {
		t.Errorf("Expected VMID -1 before creation, got %d", inst.Status.VMID)
	}
}

func TestLoad_TypeMeta(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"missing apiVersion", "kind: Tenant\nmetadata:\n  name: acme\n", "missing required field: apiVersion"},
		{"missing kind", "apiVersion: canopy.cofront.xyz/v1alpha1\nmetadata:\n  name: acme\n", "missing required field: kind"},
		{"wrong apiVersion", "apiVersion: compute.example.com/v1\nkind: Tenant\n", "unsupported apiVersion"},
		{"instance as tenant", "apiVersion: canopy.cofront.xyz/v1alpha1\nkind: Instance\n", "unsupported kind: Instance"},
		{"invalid yaml", "apiVersion: [", "failed to unmarshal YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTenant([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateTenant(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*v1alpha1.Tenant)
		wantErr string
	}{
		{"valid", func(*v1alpha1.Tenant) {}, ""},
		{"no name", func(t *v1alpha1.Tenant) { t.Name = "" }, "metadata.name is required"},
		{"bad name", func(t *v1alpha1.Tenant) { t.Name = "acme corp" }, "metadata.name"},
		{"no clusters", func(t *v1alpha1.Tenant) { t.Spec.ClusterIDs = nil }, "at least one cluster"},
		{"negative cluster", func(t *v1alpha1.Tenant) { t.Spec.ClusterIDs = []int{-1} }, "must not be negative"},
		{"duplicate cluster", func(t *v1alpha1.Tenant) { t.Spec.ClusterIDs = []int{100, 100} }, "duplicated"},
		{"unknown quota", func(t *v1alpha1.Tenant) { t.Spec.Quota = map[string]int{"gpu": 1} }, `unknown component "gpu"`},
		{"quota below unlimited", func(t *v1alpha1.Tenant) { t.Spec.Quota = map[string]int{"cpu": -2} }, "spec.quota.cpu"},
		{"bad subnet", func(t *v1alpha1.Tenant) {
			t.Spec.Network = &v1alpha1.TenantNetworkSpec{Subnet: "10.0.42.0"}
		}, "is not a CIDR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant := v1alpha1.NewTenant("acme")
			tenant.Spec.ClusterIDs = []int{100}
			tt.mutate(tenant)

			err := validateTenant(tenant)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateInstance(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*v1alpha1.Instance)
		wantErr string
	}{
		{"valid", func(*v1alpha1.Instance) {}, ""},
		{"no name", func(i *v1alpha1.Instance) { i.Name = "" }, "metadata.name is required"},
		{"no tenant", func(i *v1alpha1.Instance) { i.Spec.Tenant = "" }, "spec.tenant is required"},
		{"bad tenant", func(i *v1alpha1.Instance) { i.Spec.Tenant = "-acme" }, "spec.tenant"},
		{"negative template", func(i *v1alpha1.Instance) { i.Spec.TemplateID = -1 }, "spec.templateID"},
		{"zero vcpu", func(i *v1alpha1.Instance) { i.Spec.VCPU = 0 }, "spec.vcpu"},
		{"zero memory", func(i *v1alpha1.Instance) { i.Spec.MemoryMB = 0 }, "spec.memoryMB"},
		{"negative disk", func(i *v1alpha1.Instance) { i.Spec.DiskMB = -1 }, "spec.diskMB"},
		{"bad ssh key", func(i *v1alpha1.Instance) { i.Spec.SSHKey = "not a key" }, "spec.sshKey"},
		{"negative cluster", func(i *v1alpha1.Instance) { i.Spec.ClusterIDs = []int{-5} }, "spec.clusterIDs[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := v1alpha1.NewInstance("web-1")
			inst.Spec = v1alpha1.InstanceSpec{Tenant: "acme", VCPU: 1, MemoryMB: 512, SSHKey: testSSHKey}
			tt.mutate(inst)

			err := validateInstance(inst)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	tenantPath := filepath.Join(dir, "tenant.yaml")
	instancePath := filepath.Join(dir, "instance.yaml")
	if err := os.WriteFile(tenantPath, []byte(tenantYAML), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.WriteFile(instancePath, []byte(instanceYAML), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := LoadTenantFromFile(tenantPath); err != nil {
		t.Errorf("LoadTenantFromFile() error = %v", err)
	}
	if _, err := LoadInstanceFromFile(instancePath); err != nil {
		t.Errorf("LoadInstanceFromFile() error = %v", err)
	}
	if _, err := LoadInstanceFromFile(tenantPath); err == nil {
		t.Error("Expected kind mismatch loading a tenant as instance")
	}
	if _, err := LoadTenantFromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for non-existent file")
	}
}
