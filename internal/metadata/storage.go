// Package metadata stores Instance ownership and specs in the VM's
// USER_TEMPLATE, so they persist with the VM on the backend and can be
// listed without an external store.
package metadata

import (
	"encoding/base64"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/canopy/api/v1alpha1"
	"github.com/jbweber/canopy/internal/naming"
	"github.com/jbweber/canopy/internal/one"
)

const (
	// TenantKey labels the owning tenant.
	TenantKey = naming.TenantLabel

	// NameKey holds the Instance name.
	NameKey = "CANOPY_NAME"

	// UIDKey holds the Instance UID.
	UIDKey = "CANOPY_UID"

	// SpecKey holds the base64-encoded YAML of the Instance.
	SpecKey = "CANOPY_SPEC"
)

// ErrNoMetadata is returned by Load for VMs not created by canopy.
var ErrNoMetadata = errors.New("no canopy metadata on VM")

// Updater is the backend call Store needs.
type Updater interface {
	UpdateVMUserTemplate(id int, tpl string) error
}

// Encode builds the USER_TEMPLATE fragment for an Instance. Status and the
// root password hash are not stored.
func Encode(inst *v1alpha1.Instance) (*one.Template, error) {
	stored := inst.DeepCopy()
	stored.Status = v1alpha1.InstanceStatus{}
	stored.Spec.RootPasswordHash = ""

	yamlData, err := yaml.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal instance spec to YAML: %w", err)
	}

	tpl := one.NewTemplate().
		Add(TenantKey, inst.Spec.Tenant).
		Add(NameKey, inst.Name).
		Add(UIDKey, inst.UID).
		Add(SpecKey, base64.StdEncoding.EncodeToString(yamlData))
	return tpl, nil
}

// Store merges the Instance metadata into the VM's USER_TEMPLATE.
func Store(u Updater, vmID int, inst *v1alpha1.Instance) error {
	tpl, err := Encode(inst)
	if err != nil {
		return err
	}
	if err := u.UpdateVMUserTemplate(vmID, tpl.String()); err != nil {
		return fmt.Errorf("failed to store metadata on VM %d: %w", vmID, err)
	}
	return nil
}

// Load rebuilds the Instance stored on a VM. The returned Instance has no
// status; callers fill it from the VM's live state.
func Load(vm *one.VM) (*v1alpha1.Instance, error) {
	encoded, ok := vm.UserTemplate[SpecKey]
	if !ok || encoded == "" {
		return nil, ErrNoMetadata
	}

	yamlData, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode metadata of VM %d: %w", vm.ID, err)
	}

	var inst v1alpha1.Instance
	if err := yaml.Unmarshal(yamlData, &inst); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instance spec of VM %d: %w", vm.ID, err)
	}
	return &inst, nil
}

// Tenant returns the owning tenant label of a VM.
func Tenant(vm *one.VM) (string, bool) {
	name, ok := vm.UserTemplate[TenantKey]
	return name, ok && name != ""
}

// Exists reports whether a VM carries canopy metadata.
func Exists(vm *one.VM) bool {
	_, ok := Tenant(vm)
	return ok
}
