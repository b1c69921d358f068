// Package onetest provides an in-memory control plane for tests.
//
// Backend implements the method set of *one.Client against object pools
// held in memory. It enforces the backend rules the provisioning code
// depends on (unique names, "already assigned" attach errors, groups that
// cannot be deleted while they have members, networks that cannot be
// deleted while VMs hold leases) and records every call in order so tests
// can assert on call sequences.
package onetest

import (
	"fmt"
	"net"
	"slices"
	"strconv"
	"sync"

	"github.com/apparentlymart/go-cidr/cidr"

	"github.com/jbweber/canopy/internal/one"
)

// Call is one recorded RPC.
type Call struct {
	Method string
	Args   []any
}

// StateStep is a VM state the fake moves through on successive VMInfo calls.
type StateStep struct {
	State    one.VMState
	LCMState one.LCMState
}

// Common state scripts.
var (
	BootToRunning = []StateStep{
		{one.VMStatePending, one.LCMInit},
		{one.VMStateActive, one.LCMBoot},
		{one.VMStateActive, one.LCMRunning},
	}
	BootFailure = []StateStep{
		{one.VMStatePending, one.LCMInit},
		{one.VMStateActive, one.LCMBootFailure},
	}
)

type vdc struct {
	one.VDC
	clusters []int
	vnets    []int
}

type vnet struct {
	one.VNet
	clusters []int
	leased   int
}

type vm struct {
	one.VM
	script []StateStep
}

// Backend is a scripted fake of the control plane. Use New to create one.
type Backend struct {
	mu     sync.Mutex
	nextID int

	groups    map[int]*one.Group
	vdcs      map[int]*vdc
	vnets     map[int]*vnet
	routers   map[int]*one.VirtualRouter
	routerNIC map[int][]int
	secgroups map[int]*one.SecurityGroup
	users     map[int]*one.User
	passwords map[int]string
	admins    map[int][]int
	templates map[int]*one.VMTemplate
	vms       map[int]*vm
	quotas    map[int][]string

	calls    []Call
	failures map[string]error

	// BootScript is applied to newly instantiated VMs, including router
	// appliances.
	BootScript []StateStep

	// TerminateSteps is how many VMInfo calls a terminating VM stays in
	// ACTIVE/EPILOG before it reaches DONE.
	TerminateSteps int
}

// New returns an empty backend. IDs are assigned from 100 upwards.
func New() *Backend {
	return &Backend{
		nextID:         100,
		groups:         map[int]*one.Group{},
		vdcs:           map[int]*vdc{},
		vnets:          map[int]*vnet{},
		routers:        map[int]*one.VirtualRouter{},
		routerNIC:      map[int][]int{},
		secgroups:      map[int]*one.SecurityGroup{},
		users:          map[int]*one.User{},
		passwords:      map[int]string{},
		admins:         map[int][]int{},
		templates:      map[int]*one.VMTemplate{},
		vms:            map[int]*vm{},
		quotas:         map[int][]string{},
		failures:       map[string]error{},
		BootScript:     BootToRunning,
		TerminateSteps: 1,
	}
}

// Errors in the shape the real backend reports them.

// NotFound returns a "does not exist" error for method.
func NotFound(method, kind string, id int) error {
	return &one.Error{Method: method, Code: one.CodeNoExists, Message: fmt.Sprintf("Error getting %s [%d].", kind, id)}
}

// NameTaken returns a name collision error for method.
func NameTaken(method, name string) error {
	return &one.Error{Method: method, Code: one.CodeAllocate, Message: fmt.Sprintf("[%s] NAME is already taken by object %q.", method, name)}
}

// AlreadyAssigned returns an "already assigned" attach error for method.
func AlreadyAssigned(method string) error {
	return &one.Error{Method: method, Code: one.CodeAction, Message: fmt.Sprintf("[%s] Object is already assigned.", method)}
}

// ActionError returns a generic failed-action error for method.
func ActionError(method, message string) error {
	return &one.Error{Method: method, Code: one.CodeAction, Message: message}
}

// FailOn makes every later call of method fail with err.
func (b *Backend) FailOn(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method] = err
}

// Recover removes a failure installed by FailOn.
func (b *Backend) Recover(method string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, method)
}

// record logs the call and returns the injected failure, if any.
// Callers must hold b.mu.
func (b *Backend) record(method string, args ...any) error {
	b.calls = append(b.calls, Call{Method: method, Args: args})
	return b.failures[method]
}

func (b *Backend) allocateID() int {
	id := b.nextID
	b.nextID++
	return id
}

// Calls returns a copy of the call log.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

// Methods returns the method names of the call log in order.
func (b *Backend) Methods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.calls))
	for _, c := range b.calls {
		out = append(out, c.Method)
	}
	return out
}

// CallsTo returns the recorded calls of one method.
func (b *Backend) CallsTo(method string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how often method was called.
func (b *Backend) Count(method string) int {
	return len(b.CallsTo(method))
}

// ResetCalls clears the call log.
func (b *Backend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// Version implements one.Client.
func (b *Backend) Version() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.system.version"); err != nil {
		return "", err
	}
	return "6.10.0", nil
}

// Ping implements one.Client.
func (b *Backend) Ping() error {
	_, err := b.Version()
	return err
}

// ---- groups ----

// ListGroups implements one.Client.
func (b *Backend) ListGroups() ([]one.Group, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.grouppool.info"); err != nil {
		return nil, err
	}
	return values(b.groups, func(g *one.Group) one.Group { return *g }), nil
}

// GroupInfo implements one.Client.
func (b *Backend) GroupInfo(id int) (*one.Group, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.group.info", id); err != nil {
		return nil, err
	}
	g, ok := b.groups[id]
	if !ok {
		return nil, NotFound("one.group.info", "group", id)
	}
	out := *g
	return &out, nil
}

// CreateGroup implements one.Client.
func (b *Backend) CreateGroup(name string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.group.allocate", name); err != nil {
		return -1, err
	}
	if findName(b.groups, name) >= 0 {
		return -1, NameTaken("one.group.allocate", name)
	}
	id := b.allocateID()
	b.groups[id] = &one.Group{ID: id, Name: name}
	return id, nil
}

// DeleteGroup implements one.Client.
func (b *Backend) DeleteGroup(id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.group.delete", id); err != nil {
		return err
	}
	if _, ok := b.groups[id]; !ok {
		return NotFound("one.group.delete", "group", id)
	}
	for _, u := range b.users {
		if u.GID == id {
			return ActionError("one.group.delete", fmt.Sprintf("Cannot delete group %d, it still has users", id))
		}
	}
	delete(b.groups, id)
	delete(b.quotas, id)
	delete(b.admins, id)
	return nil
}

// SetGroupQuota implements one.Client. The template is stored verbatim;
// see QuotaTemplates.
func (b *Backend) SetGroupQuota(id int, tpl string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.group.quota", id, tpl); err != nil {
		return err
	}
	if _, ok := b.groups[id]; !ok {
		return NotFound("one.group.quota", "group", id)
	}
	b.quotas[id] = append(b.quotas[id], tpl)
	return nil
}

// AddGroupAdmin implements one.Client.
func (b *Backend) AddGroupAdmin(groupID, userID int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.group.addadmin", groupID, userID); err != nil {
		return err
	}
	if _, ok := b.groups[groupID]; !ok {
		return NotFound("one.group.addadmin", "group", groupID)
	}
	if slices.Contains(b.admins[groupID], userID) {
		return AlreadyAssigned("one.group.addadmin")
	}
	b.admins[groupID] = append(b.admins[groupID], userID)
	return nil
}

// ---- VDCs ----

// ListVDCs implements one.Client.
func (b *Backend) ListVDCs() ([]one.VDC, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vdcpool.info"); err != nil {
		return nil, err
	}
	return values(b.vdcs, func(v *vdc) one.VDC { return v.VDC }), nil
}

// CreateVDC implements one.Client.
func (b *Backend) CreateVDC(tpl string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vdc.allocate", tpl); err != nil {
		return -1, err
	}
	name := parseTemplate(tpl).get("NAME")
	if findName(b.vdcs, name) >= 0 {
		return -1, NameTaken("one.vdc.allocate", name)
	}
	id := b.allocateID()
	b.vdcs[id] = &vdc{VDC: one.VDC{ID: id, Name: name}}
	return id, nil
}

// DeleteVDC implements one.Client.
func (b *Backend) DeleteVDC(id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vdc.delete", id); err != nil {
		return err
	}
	if _, ok := b.vdcs[id]; !ok {
		return NotFound("one.vdc.delete", "VDC", id)
	}
	delete(b.vdcs, id)
	return nil
}

// VDCAddGroup implements one.Client.
func (b *Backend) VDCAddGroup(vdcID, groupID int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vdc.addgroup", vdcID, groupID); err != nil {
		return err
	}
	v, ok := b.vdcs[vdcID]
	if !ok {
		return NotFound("one.vdc.addgroup", "VDC", vdcID)
	}
	if slices.Contains(v.GroupIDs, groupID) {
		return AlreadyAssigned("one.vdc.addgroup")
	}
	v.GroupIDs = append(v.GroupIDs, groupID)
	return nil
}

// VDCAddCluster implements one.Client.
func (b *Backend) VDCAddCluster(vdcID, zoneID, clusterID int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vdc.addcluster", vdcID, zoneID, clusterID); err != nil {
		return err
	}
	v, ok := b.vdcs[vdcID]
	if !ok {
		return NotFound("one.vdc.addcluster", "VDC", vdcID)
	}
	if slices.Contains(v.clusters, clusterID) {
		return AlreadyAssigned("one.vdc.addcluster")
	}
	v.clusters = append(v.clusters, clusterID)
	return nil
}

// VDCAddVNet implements one.Client.
func (b *Backend) VDCAddVNet(vdcID, zoneID, vnetID int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vdc.addvnet", vdcID, zoneID, vnetID); err != nil {
		return err
	}
	v, ok := b.vdcs[vdcID]
	if !ok {
		return NotFound("one.vdc.addvnet", "VDC", vdcID)
	}
	if slices.Contains(v.vnets, vnetID) {
		return AlreadyAssigned("one.vdc.addvnet")
	}
	v.vnets = append(v.vnets, vnetID)
	return nil
}

// VDCClusters returns the clusters attached to a VDC.
func (b *Backend) VDCClusters(vdcID int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.vdcs[vdcID]; ok {
		return slices.Clone(v.clusters)
	}
	return nil
}

// ---- virtual networks ----

// AddVNet seeds a network, e.g. the external uplink, and returns its ID.
func (b *Backend) AddVNet(v one.VNet) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	v.ID = b.allocateID()
	b.vnets[v.ID] = &vnet{VNet: v}
	return v.ID
}

// ListVNets implements one.Client.
func (b *Backend) ListVNets() ([]one.VNet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vnpool.info"); err != nil {
		return nil, err
	}
	return values(b.vnets, func(v *vnet) one.VNet { return v.VNet }), nil
}

// VNetInfo implements one.Client.
func (b *Backend) VNetInfo(id int) (*one.VNet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vn.info", id); err != nil {
		return nil, err
	}
	v, ok := b.vnets[id]
	if !ok {
		return nil, NotFound("one.vn.info", "virtual network", id)
	}
	out := v.VNet
	return &out, nil
}

// CreateVNet implements one.Client.
func (b *Backend) CreateVNet(tpl string, clusterID int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vn.allocate", tpl, clusterID); err != nil {
		return -1, err
	}
	p := parseTemplate(tpl)
	name := p.get("NAME")
	if findName(b.vnets, name) >= 0 {
		return -1, NameTaken("one.vn.allocate", name)
	}
	id := b.allocateID()
	v := &vnet{VNet: one.VNet{
		ID:             id,
		Name:           name,
		Gateway:        p.get("GATEWAY"),
		NetworkAddress: p.get("NETWORK_ADDRESS"),
		NetworkMask:    p.get("NETWORK_MASK"),
	}}
	for i, ar := range p.vector("AR") {
		v.AddressRanges = append(v.AddressRanges, one.AddressRange{
			ID: strconv.Itoa(i), Type: ar["TYPE"], IP: ar["IP"], Size: ar["SIZE"],
		})
	}
	if clusterID >= 0 {
		v.clusters = []int{clusterID}
	}
	b.vnets[id] = v
	return id, nil
}

// DeleteVNet implements one.Client. It fails while a live VM holds a lease.
func (b *Backend) DeleteVNet(id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vn.delete", id); err != nil {
		return err
	}
	if _, ok := b.vnets[id]; !ok {
		return NotFound("one.vn.delete", "virtual network", id)
	}
	for _, m := range b.vms {
		if m.State == one.VMStateDone {
			continue
		}
		for _, nic := range m.NICs {
			if nic.NetworkID == id {
				return ActionError("one.vn.delete", fmt.Sprintf("Cannot delete virtual network %d: VM %d still holds a lease", id, m.ID))
			}
		}
	}
	delete(b.vnets, id)
	return nil
}

// ClusterAddVNet implements one.Client.
func (b *Backend) ClusterAddVNet(clusterID, vnetID int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.cluster.addvnet", clusterID, vnetID); err != nil {
		return err
	}
	v, ok := b.vnets[vnetID]
	if !ok {
		return NotFound("one.cluster.addvnet", "virtual network", vnetID)
	}
	if slices.Contains(v.clusters, clusterID) {
		return AlreadyAssigned("one.cluster.addvnet")
	}
	v.clusters = append(v.clusters, clusterID)
	return nil
}

// VNetClusters returns the clusters a network was placed in.
func (b *Backend) VNetClusters(vnetID int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.vnets[vnetID]; ok {
		return slices.Clone(v.clusters)
	}
	return nil
}

// lease hands out the next address of the network's first range.
// Callers must hold b.mu.
func (b *Backend) lease(method string, networkID int) (string, error) {
	v, ok := b.vnets[networkID]
	if !ok {
		return "", NotFound(method, "virtual network", networkID)
	}
	first := net.ParseIP(v.FirstAddress())
	if first == nil {
		return "", nil
	}
	ip := first
	for range v.leased {
		ip = cidr.Inc(ip)
	}
	v.leased++
	return ip.String(), nil
}

// ---- virtual routers ----

// ListVirtualRouters implements one.Client.
func (b *Backend) ListVirtualRouters() ([]one.VirtualRouter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vrouterpool.info"); err != nil {
		return nil, err
	}
	return values(b.routers, func(r *one.VirtualRouter) one.VirtualRouter { return cloneRouter(*r) }), nil
}

// VirtualRouterInfo implements one.Client.
func (b *Backend) VirtualRouterInfo(id int) (*one.VirtualRouter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vrouter.info", id); err != nil {
		return nil, err
	}
	r, ok := b.routers[id]
	if !ok {
		return nil, NotFound("one.vrouter.info", "virtual router", id)
	}
	out := cloneRouter(*r)
	return &out, nil
}

// CreateVirtualRouter implements one.Client.
func (b *Backend) CreateVirtualRouter(tpl string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vrouter.allocate", tpl); err != nil {
		return -1, err
	}
	p := parseTemplate(tpl)
	name := p.get("NAME")
	if findName(b.routers, name) >= 0 {
		return -1, NameTaken("one.vrouter.allocate", name)
	}
	id := b.allocateID()
	b.routers[id] = &one.VirtualRouter{ID: id, Name: name}
	for _, nic := range p.vector("NIC") {
		netID, err := strconv.Atoi(nic["NETWORK_ID"])
		if err != nil {
			return -1, ActionError("one.vrouter.allocate", "invalid NETWORK_ID in NIC")
		}
		b.routerNIC[id] = append(b.routerNIC[id], netID)
	}
	return id, nil
}

// InstantiateVirtualRouter implements one.Client. Like the real backend it
// returns the router ID; the appliance VM IDs appear in VirtualRouterInfo.
func (b *Backend) InstantiateVirtualRouter(id, count, templateID int, name string, hold bool, extra string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vrouter.instantiate", id, count, templateID, name, hold, extra); err != nil {
		return -1, err
	}
	r, ok := b.routers[id]
	if !ok {
		return -1, NotFound("one.vrouter.instantiate", "virtual router", id)
	}
	if _, ok := b.templates[templateID]; !ok {
		return -1, NotFound("one.vrouter.instantiate", "template", templateID)
	}
	for range count {
		m := &vm{VM: one.VM{ID: b.allocateID(), Name: name, GID: 0, UserTemplate: map[string]string{}}}
		for i, netID := range b.routerNIC[id] {
			ip, err := b.lease("one.vrouter.instantiate", netID)
			if err != nil {
				return -1, err
			}
			m.NICs = append(m.NICs, one.NIC{ID: i, NetworkID: netID, IP: ip})
		}
		b.boot(m)
		b.vms[m.ID] = m
		r.VMIDs = append(r.VMIDs, m.ID)
	}
	return id, nil
}

// DeleteVirtualRouter implements one.Client. The appliance VMs start
// terminating and reach DONE after TerminateSteps polls.
func (b *Backend) DeleteVirtualRouter(id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.vrouter.delete", id); err != nil {
		return err
	}
	r, ok := b.routers[id]
	if !ok {
		return NotFound("one.vrouter.delete", "virtual router", id)
	}
	for _, vmID := range r.VMIDs {
		if m, ok := b.vms[vmID]; ok {
			b.terminate(m)
		}
	}
	delete(b.routers, id)
	delete(b.routerNIC, id)
	return nil
}

func cloneRouter(r one.VirtualRouter) one.VirtualRouter {
	r.VMIDs = slices.Clone(r.VMIDs)
	return r
}

// ---- security groups ----

// ListSecurityGroups implements one.Client.
func (b *Backend) ListSecurityGroups() ([]one.SecurityGroup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.secgrouppool.info"); err != nil {
		return nil, err
	}
	return values(b.secgroups, func(s *one.SecurityGroup) one.SecurityGroup { return *s }), nil
}

// CreateSecurityGroup implements one.Client.
func (b *Backend) CreateSecurityGroup(tpl string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.secgroup.allocate", tpl); err != nil {
		return -1, err
	}
	name := parseTemplate(tpl).get("NAME")
	if findName(b.secgroups, name) >= 0 {
		return -1, NameTaken("one.secgroup.allocate", name)
	}
	id := b.allocateID()
	b.secgroups[id] = &one.SecurityGroup{ID: id, Name: name}
	return id, nil
}

// DeleteSecurityGroup implements one.Client.
func (b *Backend) DeleteSecurityGroup(id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.secgroup.delete", id); err != nil {
		return err
	}
	if _, ok := b.secgroups[id]; !ok {
		return NotFound("one.secgroup.delete", "security group", id)
	}
	delete(b.secgroups, id)
	return nil
}

// ---- users ----

// ListUsers implements one.Client.
func (b *Backend) ListUsers() ([]one.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.userpool.info"); err != nil {
		return nil, err
	}
	return values(b.users, func(u *one.User) one.User { return *u }), nil
}

// CreateUser implements one.Client.
func (b *Backend) CreateUser(name, password string, groupIDs []int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.user.allocate", name, password, groupIDs); err != nil {
		return -1, err
	}
	if findName(b.users, name) >= 0 {
		return -1, NameTaken("one.user.allocate", name)
	}
	gid := 1
	if len(groupIDs) > 0 {
		gid = groupIDs[0]
		if _, ok := b.groups[gid]; !ok {
			return -1, NotFound("one.user.allocate", "group", gid)
		}
	}
	id := b.allocateID()
	b.users[id] = &one.User{ID: id, Name: name, GID: gid}
	b.passwords[id] = password
	return id, nil
}

// SetUserPassword implements one.Client.
func (b *Backend) SetUserPassword(id int, password string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.user.passwd", id, password); err != nil {
		return err
	}
	if _, ok := b.users[id]; !ok {
		return NotFound("one.user.passwd", "user", id)
	}
	b.passwords[id] = password
	return nil
}

// DeleteUser implements one.Client.
func (b *Backend) DeleteUser(id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("one.user.delete", id); err != nil {
		return err
	}
	if _, ok := b.users[id]; !ok {
		return NotFound("one.user.delete", "user", id)
	}
	delete(b.users, id)
	delete(b.passwords, id)
	for gid, admins := range b.admins {
		b.admins[gid] = slices.DeleteFunc(admins, func(uid int) bool { return uid == id })
	}
	return nil
}

// Password returns the current password of a user.
func (b *Backend) Password(userID int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.passwords[userID]
}

// GroupAdmins returns the administrators of a group.
func (b *Backend) GroupAdmins(groupID int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.admins[groupID])
}

// ---- lookups for assertions ----

// Lookup returns the ID of the object of kind (one.KindGroup etc.) called
// name, or -1.
func (b *Backend) Lookup(kind, name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch kind {
	case one.KindGroup:
		return findName(b.groups, name)
	case one.KindVDC:
		return findName(b.vdcs, name)
	case one.KindVNet:
		return findName(b.vnets, name)
	case one.KindVirtualRouter:
		return findName(b.routers, name)
	case one.KindSecurityGroup:
		return findName(b.secgroups, name)
	case one.KindUser:
		return findName(b.users, name)
	}
	return -1
}

// QuotaTemplates returns every quota template pushed for a group.
func (b *Backend) QuotaTemplates(groupID int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.quotas[groupID])
}

// SetGroupQuotaSet replaces the quota object GroupInfo reports.
func (b *Backend) SetGroupQuotaSet(groupID int, q one.QuotaSet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g, ok := b.groups[groupID]; ok {
		g.Quota = q
	}
}

// values returns the pool entries sorted by ID.
func values[T any, O any](pool map[int]T, conv func(T) O) []O {
	ids := make([]int, 0, len(pool))
	for id := range pool {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]O, 0, len(ids))
	for _, id := range ids {
		out = append(out, conv(pool[id]))
	}
	return out
}

func findName[T one.Named](pool map[int]T, name string) int {
	for id, obj := range pool {
		if obj.ObjectName() == name {
			return id
		}
	}
	return -1
}
