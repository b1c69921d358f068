package onetest

import (
	"maps"
	"slices"
	"strconv"

	"github.com/jbweber/canopy/internal/one"
)

// AddTemplate seeds a VM template and returns its ID.
func (b *Backend) AddTemplate(t one.VMTemplate) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	t.ID = b.allocateID()
	b.templates[t.ID] = &t
	return t.ID
}

// AddVM seeds a VM and returns its ID.
func (b *Backend) AddVM(v one.VM) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	v.ID = b.allocateID()
	if v.UserTemplate == nil {
		v.UserTemplate = map[string]string{}
	}
	b.vms[v.ID] = &vm{VM: v}
	return v.ID
}

// ScriptVM makes the VM move through steps on its next VMInfo calls.
func (b *Backend) ScriptVM(id int, steps ...StateStep) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := b.vms[id]; ok {
		m.script = slices.Clone(steps)
	}
}

// VM returns the current record of a VM without advancing its script.
func (b *Backend) VM(id int) (one.VM, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.vms[id]
	if !ok {
		return one.VM{}, false
	}
	return cloneVM(m.VM), true
}

// boot puts a new VM at the start of BootScript. Callers must hold b.mu.
func (b *Backend) boot(m *vm) {
	script := b.BootScript
	if len(script) == 0 {
		script = BootToRunning
	}
	m.State, m.LCMState = script[0].State, script[0].LCMState
	m.script = slices.Clone(script[1:])
}

// terminate starts the shutdown of a VM. Callers must hold b.mu.
func (b *Backend) terminate(m *vm) {
	m.script = nil
	if b.TerminateSteps <= 0 {
		m.State, m.LCMState = one.VMStateDone, one.LCMInit
		return
	}
	m.State, m.LCMState = one.VMStateActive, one.LCMEpilog
	for range b.TerminateSteps - 1 {
		m.script = append(m.script, StateStep{one.VMStateActive, one.LCMEpilog})
	}
	m.script = append(m.script, StateStep{one.VMStateDone, one.LCMInit})
}

// VMInfo implements one.Client. It reports the current state and then
// advances the VM's script by one step.
func (b *Backend) VMInfo(id int) (*one.VM, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vm.info", id); err != nil {
		return nil, err
	}
	m, ok := b.vms[id]
	if !ok {
		return nil, NotFound("one.vm.info", "virtual machine", id)
	}
	out := cloneVM(m.VM)
	if len(m.script) > 0 {
		m.State, m.LCMState = m.script[0].State, m.script[0].LCMState
		m.script = m.script[1:]
	}
	return &out, nil
}

// ListVMs implements one.Client. DONE VMs are not listed.
func (b *Backend) ListVMs() ([]one.VM, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vmpool.info"); err != nil {
		return nil, err
	}
	out := values(b.vms, func(m *vm) one.VM { return cloneVM(m.VM) })
	return slices.DeleteFunc(out, func(v one.VM) bool { return v.State == one.VMStateDone }), nil
}

// TemplateInfo implements one.Client.
func (b *Backend) TemplateInfo(id int) (*one.VMTemplate, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.template.info", id); err != nil {
		return nil, err
	}
	t, ok := b.templates[id]
	if !ok {
		return nil, NotFound("one.template.info", "template", id)
	}
	out := *t
	out.Disks = slices.Clone(t.Disks)
	return &out, nil
}

// InstantiateTemplate implements one.Client. CPU, VCPU, MEMORY, NIC and
// DISK from extra are applied to the new VM.
func (b *Backend) InstantiateTemplate(templateID int, name string, hold bool, extra string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.template.instantiate", templateID, name, hold, extra); err != nil {
		return -1, err
	}
	t, ok := b.templates[templateID]
	if !ok {
		return -1, NotFound("one.template.instantiate", "template", templateID)
	}

	p := parseTemplate(extra)
	m := &vm{VM: one.VM{ID: -1, Name: name, GID: 0, UserTemplate: map[string]string{}}}
	m.CPU, _ = strconv.ParseFloat(p.get("CPU"), 64)
	m.VCPU, _ = strconv.Atoi(p.get("VCPU"))
	m.MemoryMB, _ = strconv.Atoi(p.get("MEMORY"))

	for i, nic := range p.vector("NIC") {
		netID, err := strconv.Atoi(nic["NETWORK_ID"])
		if err != nil {
			return -1, ActionError("one.template.instantiate", "invalid NETWORK_ID in NIC")
		}
		ip, err := b.lease("one.template.instantiate", netID)
		if err != nil {
			return -1, err
		}
		m.NICs = append(m.NICs, one.NIC{ID: i, NetworkID: netID, IP: ip})
	}

	disks := p.vector("DISK")
	if len(disks) == 0 {
		for _, d := range t.Disks {
			disks = append(disks, attrMap(d))
		}
	}
	for i, d := range disks {
		size, _ := strconv.Atoi(d["SIZE"])
		m.Disks = append(m.Disks, one.Disk{ID: i, SizeMB: size})
	}

	m.ID = b.allocateID()
	b.boot(m)
	b.vms[m.ID] = m
	return m.ID, nil
}

// VMAction implements one.Client.
func (b *Backend) VMAction(action string, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vm.action", action, id); err != nil {
		return err
	}
	m, ok := b.vms[id]
	if !ok || m.State == one.VMStateDone {
		return NotFound("one.vm.action", "virtual machine", id)
	}

	switch action {
	case one.ActionPoweroff, one.ActionPoweroffHard:
		if !m.IsRunning() {
			return ActionError("one.vm.action", "Wrong state to perform action "+action)
		}
		m.LCMState = one.LCMShutdownPoweroff
		m.script = []StateStep{{one.VMStatePoweroff, one.LCMInit}}
	case one.ActionResume:
		if m.State != one.VMStatePoweroff {
			return ActionError("one.vm.action", "Wrong state to perform action "+action)
		}
		m.State, m.LCMState = one.VMStateActive, one.LCMBootPoweroff
		m.script = []StateStep{{one.VMStateActive, one.LCMRunning}}
	case one.ActionTerminate, one.ActionTerminateHard:
		b.terminate(m)
	default:
		return ActionError("one.vm.action", "unknown action "+action)
	}
	return nil
}

// ResizeVM implements one.Client. Like the real backend it requires the VM
// to be powered off.
func (b *Backend) ResizeVM(id int, tpl string, enforce bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vm.resize", id, tpl, enforce); err != nil {
		return err
	}
	m, ok := b.vms[id]
	if !ok {
		return NotFound("one.vm.resize", "virtual machine", id)
	}
	if m.State != one.VMStatePoweroff {
		return ActionError("one.vm.resize", "Wrong state to perform action resize")
	}
	p := parseTemplate(tpl)
	if v, err := strconv.ParseFloat(p.get("CPU"), 64); err == nil {
		m.CPU = v
	}
	if v, err := strconv.Atoi(p.get("VCPU")); err == nil {
		m.VCPU = v
	}
	if v, err := strconv.Atoi(p.get("MEMORY")); err == nil {
		m.MemoryMB = v
	}
	return nil
}

// ResizeVMDisk implements one.Client.
func (b *Backend) ResizeVMDisk(id, diskID, sizeMB int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vm.diskresize", id, diskID, sizeMB); err != nil {
		return err
	}
	m, ok := b.vms[id]
	if !ok {
		return NotFound("one.vm.diskresize", "virtual machine", id)
	}
	for i := range m.Disks {
		if m.Disks[i].ID == diskID {
			if sizeMB <= m.Disks[i].SizeMB {
				return ActionError("one.vm.diskresize", "New disk size has to be greater than current one")
			}
			m.Disks[i].SizeMB = sizeMB
			return nil
		}
	}
	return NotFound("one.vm.diskresize", "disk", diskID)
}

// ChownVM implements one.Client.
func (b *Backend) ChownVM(id, userID, groupID int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vm.chown", id, userID, groupID); err != nil {
		return err
	}
	m, ok := b.vms[id]
	if !ok {
		return NotFound("one.vm.chown", "virtual machine", id)
	}
	if groupID >= 0 {
		if _, ok := b.groups[groupID]; !ok {
			return NotFound("one.vm.chown", "group", groupID)
		}
		m.GID = groupID
	}
	return nil
}

// UpdateVMUserTemplate implements one.Client.
func (b *Backend) UpdateVMUserTemplate(id int, tpl string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vm.update", id, tpl); err != nil {
		return err
	}
	m, ok := b.vms[id]
	if !ok {
		return NotFound("one.vm.update", "virtual machine", id)
	}
	maps.Copy(m.UserTemplate, parseTemplate(tpl).attrs)
	return nil
}

func cloneVM(v one.VM) one.VM {
	v.Disks = slices.Clone(v.Disks)
	v.NICs = slices.Clone(v.NICs)
	v.UserTemplate = maps.Clone(v.UserTemplate)
	return v
}

func attrMap(a one.Attributes) map[string]string {
	out := make(map[string]string, len(a))
	for _, p := range a {
		out[p.Key] = p.Value
	}
	return out
}
