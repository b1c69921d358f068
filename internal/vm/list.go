package vm

import (
	"fmt"

	"github.com/jbweber/canopy/internal/metadata"
	"github.com/jbweber/canopy/internal/one"
)

// Get returns the current record of an instance.
func (m *Manager) Get(id int) (*one.VM, error) {
	vm, err := m.backend.VMInfo(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get VM %d: %w", id, err)
	}
	return vm, nil
}

// List returns the instances of a tenant, or of all tenants when tenant is
// empty. VMs without a tenant label, such as router appliances, are
// skipped.
func (m *Manager) List(tenant string) ([]one.VM, error) {
	vms, err := m.backend.ListVMs()
	if err != nil {
		if one.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list VMs: %w", err)
	}

	var out []one.VM
	for _, vm := range vms {
		owner, ok := metadata.Tenant(&vm)
		if !ok {
			continue
		}
		if tenant == "" || owner == tenant {
			out = append(out, vm)
		}
	}
	return out, nil
}
