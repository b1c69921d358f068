package vm

import "github.com/jbweber/canopy/internal/one"

// backend lists the control plane calls the instance manager makes.
//
// In production, this is satisfied by *one.Client.
// In tests, this is satisfied by *onetest.Backend.
type backend interface {
	// Lookups of the tenant objects an instance is attached to
	ListGroups() ([]one.Group, error)
	ListVNets() ([]one.VNet, error)
	ListSecurityGroups() ([]one.SecurityGroup, error)

	// TemplateInfo fetches the source template, for disk sizing
	TemplateInfo(id int) (*one.VMTemplate, error)

	// InstantiateTemplate creates a VM from a template with overrides
	InstantiateTemplate(templateID int, name string, hold bool, extra string) (int, error)

	// ChownVM hands a VM over to a group
	ChownVM(id, userID, groupID int) error

	// UpdateVMUserTemplate merges attributes into the VM's USER_TEMPLATE
	UpdateVMUserTemplate(id int, tpl string) error

	// VMInfo gets the state and allocation of a VM
	VMInfo(id int) (*one.VM, error)

	// ListVMs lists all VMs that are not DONE
	ListVMs() ([]one.VM, error)

	// VMAction runs poweroff, resume or terminate
	VMAction(action string, id int) error

	// ResizeVM changes CPU, VCPU and MEMORY of a powered-off VM
	ResizeVM(id int, tpl string, enforce bool) error

	// ResizeVMDisk grows a disk
	ResizeVMDisk(id, diskID, sizeMB int) error
}
