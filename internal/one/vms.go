package one

import "strconv"

// VM actions accepted by VMAction.
const (
	ActionPoweroff      = "poweroff"
	ActionPoweroffHard  = "poweroff-hard"
	ActionResume        = "resume"
	ActionTerminate     = "terminate"
	ActionTerminateHard = "terminate-hard"
)

// VMInfo returns a single VM.
func (c *Client) VMInfo(id int) (*VM, error) {
	body, err := c.callXML("one.vm.info", id, false)
	if err != nil {
		return nil, err
	}
	var x xmlVM
	if err := decodeXML(KindVM, body, &x); err != nil {
		return nil, err
	}
	vm, err := x.decode()
	if err != nil {
		return nil, err
	}
	return &vm, nil
}

// ListVMs returns all VMs that are not DONE.
func (c *Client) ListVMs() ([]VM, error) {
	body, err := c.callXML("one.vmpool.info", -2, -1, -1, -1)
	if err != nil {
		return nil, err
	}
	var pool struct {
		VMs []xmlVM `xml:"VM"`
	}
	if err := decodeXML("vm pool", body, &pool); err != nil {
		return nil, err
	}
	vms := make([]VM, 0, len(pool.VMs))
	for _, x := range pool.VMs {
		vm, err := x.decode()
		if err != nil {
			return nil, err
		}
		vms = append(vms, vm)
	}
	return vms, nil
}

// TemplateInfo returns a VM template with its DISK definitions.
func (c *Client) TemplateInfo(id int) (*VMTemplate, error) {
	body, err := c.callXML("one.template.info", id, false, false)
	if err != nil {
		return nil, err
	}
	var x xmlVMTemplate
	if err := decodeXML(KindTemplate, body, &x); err != nil {
		return nil, err
	}
	t, err := x.decode()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InstantiateTemplate creates a VM from templateID, merging extra into the
// template, and returns the new VM ID.
func (c *Client) InstantiateTemplate(templateID int, name string, hold bool, extra string) (int, error) {
	return c.callID("one.template.instantiate", templateID, name, hold, extra, false)
}

// VMAction dispatches an action such as ActionPoweroff to a VM.
func (c *Client) VMAction(action string, id int) error {
	_, err := c.call("one.vm.action", action, id)
	return err
}

// ResizeVM changes CPU, VCPU and MEMORY of a powered-off VM. With enforce
// false the backend does not check the owner's quota.
func (c *Client) ResizeVM(id int, tpl string, enforce bool) error {
	_, err := c.call("one.vm.resize", id, tpl, enforce)
	return err
}

// ResizeVMDisk grows a VM disk to sizeMB.
func (c *Client) ResizeVMDisk(id, diskID, sizeMB int) error {
	_, err := c.call("one.vm.diskresize", id, diskID, strconv.Itoa(sizeMB))
	return err
}

// ChownVM changes VM ownership; -1 keeps the current user or group.
func (c *Client) ChownVM(id, userID, groupID int) error {
	_, err := c.call("one.vm.chown", id, userID, groupID)
	return err
}

// UpdateVMUserTemplate merges tpl into the VM's USER_TEMPLATE.
func (c *Client) UpdateVMUserTemplate(id int, tpl string) error {
	_, err := c.call("one.vm.update", id, tpl, 1)
	return err
}
