package one

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Object kinds, used in error messages and by the identity resolver.
const (
	KindGroup         = "group"
	KindVDC           = "vdc"
	KindVNet          = "vnet"
	KindVirtualRouter = "virtual router"
	KindSecurityGroup = "security group"
	KindVM            = "vm"
	KindUser          = "user"
	KindTemplate      = "template"
)

// Named is implemented by every backend object that has an ID and a name.
type Named interface {
	ObjectID() int
	ObjectName() string
}

// Group is the quota- and ownership-bearing principal.
type Group struct {
	ID    int
	Name  string
	Quota QuotaSet
}

// ObjectID implements Named.
func (g Group) ObjectID() int { return g.ID }

// ObjectName implements Named.
func (g Group) ObjectName() string { return g.Name }

// QuotaSet is the quota object attached to a group. Values are kept as the
// raw strings reported by the backend; CPU may be fractional.
type QuotaSet struct {
	VM         *VMQuota         `xml:"VM_QUOTA>VM"`
	Datastores []DatastoreQuota `xml:"DATASTORE_QUOTA>DATASTORE"`
	Networks   []NetworkQuota   `xml:"NETWORK_QUOTA>NETWORK"`
}

// IsEmpty reports whether the backend has no quota object for the group.
func (q QuotaSet) IsEmpty() bool {
	return q.VM == nil && len(q.Datastores) == 0 && len(q.Networks) == 0
}

// VMQuota is the VM section of a quota object.
type VMQuota struct {
	CPU        string `xml:"CPU"`
	CPUUsed    string `xml:"CPU_USED"`
	Memory     string `xml:"MEMORY"`
	MemoryUsed string `xml:"MEMORY_USED"`
	VMs        string `xml:"VMS"`
	VMsUsed    string `xml:"VMS_USED"`
}

// DatastoreQuota is one DATASTORE entry of a quota object.
type DatastoreQuota struct {
	ID         string `xml:"ID"`
	Size       string `xml:"SIZE"`
	SizeUsed   string `xml:"SIZE_USED"`
	Images     string `xml:"IMAGES"`
	ImagesUsed string `xml:"IMAGES_USED"`
}

// NetworkQuota is one NETWORK entry of a quota object.
type NetworkQuota struct {
	ID         string `xml:"ID"`
	Leases     string `xml:"LEASES"`
	LeasesUsed string `xml:"LEASES_USED"`
}

// VDC is a virtual data center.
type VDC struct {
	ID       int
	Name     string
	GroupIDs []int
}

// ObjectID implements Named.
func (v VDC) ObjectID() int { return v.ID }

// ObjectName implements Named.
func (v VDC) ObjectName() string { return v.Name }

// AddressRange is one AR of a virtual network.
type AddressRange struct {
	ID   string `xml:"AR_ID"`
	Type string `xml:"TYPE"`
	IP   string `xml:"IP"`
	Size string `xml:"SIZE"`
}

// VNet is a virtual network.
type VNet struct {
	ID             int
	Name           string
	Gateway        string
	NetworkAddress string
	NetworkMask    string
	AddressRanges  []AddressRange
}

// ObjectID implements Named.
func (v VNet) ObjectID() int { return v.ID }

// ObjectName implements Named.
func (v VNet) ObjectName() string { return v.Name }

// FirstAddress returns the IP of the first address range, or "" if the
// network has none.
func (v VNet) FirstAddress() string {
	if len(v.AddressRanges) == 0 {
		return ""
	}
	return v.AddressRanges[0].IP
}

// VirtualRouter is a router appliance definition and its VM instances.
type VirtualRouter struct {
	ID    int
	Name  string
	VMIDs []int
}

// ObjectID implements Named.
func (r VirtualRouter) ObjectID() int { return r.ID }

// ObjectName implements Named.
func (r VirtualRouter) ObjectName() string { return r.Name }

// SecurityGroup is a named firewall ruleset.
type SecurityGroup struct {
	ID   int
	Name string
}

// ObjectID implements Named.
func (s SecurityGroup) ObjectID() int { return s.ID }

// ObjectName implements Named.
func (s SecurityGroup) ObjectName() string { return s.Name }

// User is a backend user account.
type User struct {
	ID   int
	Name string
	GID  int
}

// ObjectID implements Named.
func (u User) ObjectID() int { return u.ID }

// ObjectName implements Named.
func (u User) ObjectName() string { return u.Name }

// Disk is one DISK of a VM.
type Disk struct {
	ID     int
	SizeMB int
}

// NIC is one network interface of a VM.
type NIC struct {
	ID        int
	NetworkID int
	IP        string
}

// VM is a virtual machine instance.
type VM struct {
	ID       int
	Name     string
	GID      int
	State    VMState
	LCMState LCMState

	// CPU and VCPU are as reported in the VM template; VCPU is 0 when absent.
	CPU      float64
	VCPU     int
	MemoryMB int
	Disks    []Disk
	NICs     []NIC

	UserTemplate map[string]string
}

// ObjectID implements Named.
func (v VM) ObjectID() int { return v.ID }

// ObjectName implements Named.
func (v VM) ObjectName() string { return v.Name }

// IP returns the address of the first NIC, or "" if the VM has no NIC.
func (v VM) IP() string {
	if len(v.NICs) == 0 {
		return ""
	}
	return v.NICs[0].IP
}

// VMTemplate is a template VMs can be instantiated from.
type VMTemplate struct {
	ID    int
	Name  string
	Disks []Attributes
}

// Attributes is an ordered list of attributes of a vector clause.
type Attributes []Pair

// Get returns the value of key and whether it was present.
func (a Attributes) Get(key string) (string, bool) {
	for _, p := range a {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// With returns a copy with key set to value, replacing an existing entry.
func (a Attributes) With(key, value string) Attributes {
	out := make(Attributes, 0, len(a)+1)
	replaced := false
	for _, p := range a {
		if p.Key == key {
			p.Value = value
			replaced = true
		}
		out = append(out, p)
	}
	if !replaced {
		out = append(out, Pair{Key: key, Value: value})
	}
	return out
}

// raw XML shapes, decoded then validated into the public types above

type xmlObject struct {
	ID   string `xml:"ID"`
	Name string `xml:"NAME"`
}

func (o xmlObject) decode(kind string) (int, string, error) {
	if strings.TrimSpace(o.ID) == "" {
		return 0, "", &DecodeError{Kind: kind, Reason: "missing ID"}
	}
	id, err := strconv.Atoi(strings.TrimSpace(o.ID))
	if err != nil {
		return 0, "", &DecodeError{Kind: kind, Reason: fmt.Sprintf("invalid ID %q", o.ID)}
	}
	if o.Name == "" {
		return 0, "", &DecodeError{Kind: kind, Reason: fmt.Sprintf("missing NAME for ID %d", id)}
	}
	return id, o.Name, nil
}

type xmlGroup struct {
	xmlObject
	QuotaSet
}

func (x xmlGroup) decode() (Group, error) {
	id, name, err := x.xmlObject.decode(KindGroup)
	if err != nil {
		return Group{}, err
	}
	return Group{ID: id, Name: name, Quota: x.QuotaSet}, nil
}

type xmlVDC struct {
	xmlObject
	GroupIDs []string `xml:"GROUPS>ID"`
}

func (x xmlVDC) decode() (VDC, error) {
	id, name, err := x.xmlObject.decode(KindVDC)
	if err != nil {
		return VDC{}, err
	}
	gids, err := parseIDList(KindVDC, x.GroupIDs)
	if err != nil {
		return VDC{}, err
	}
	return VDC{ID: id, Name: name, GroupIDs: gids}, nil
}

type xmlVNet struct {
	xmlObject
	Gateway        string         `xml:"TEMPLATE>GATEWAY"`
	NetworkAddress string         `xml:"TEMPLATE>NETWORK_ADDRESS"`
	NetworkMask    string         `xml:"TEMPLATE>NETWORK_MASK"`
	AddressRanges  []AddressRange `xml:"AR_POOL>AR"`
}

func (x xmlVNet) decode() (VNet, error) {
	id, name, err := x.xmlObject.decode(KindVNet)
	if err != nil {
		return VNet{}, err
	}
	return VNet{
		ID:             id,
		Name:           name,
		Gateway:        x.Gateway,
		NetworkAddress: x.NetworkAddress,
		NetworkMask:    x.NetworkMask,
		AddressRanges:  x.AddressRanges,
	}, nil
}

type xmlVirtualRouter struct {
	xmlObject
	VMIDs []string `xml:"VMS>ID"`
}

func (x xmlVirtualRouter) decode() (VirtualRouter, error) {
	id, name, err := x.xmlObject.decode(KindVirtualRouter)
	if err != nil {
		return VirtualRouter{}, err
	}
	vmIDs, err := parseIDList(KindVirtualRouter, x.VMIDs)
	if err != nil {
		return VirtualRouter{}, err
	}
	return VirtualRouter{ID: id, Name: name, VMIDs: vmIDs}, nil
}

type xmlSecurityGroup struct {
	xmlObject
}

func (x xmlSecurityGroup) decode() (SecurityGroup, error) {
	id, name, err := x.xmlObject.decode(KindSecurityGroup)
	if err != nil {
		return SecurityGroup{}, err
	}
	return SecurityGroup{ID: id, Name: name}, nil
}

type xmlUser struct {
	xmlObject
	GID string `xml:"GID"`
}

func (x xmlUser) decode() (User, error) {
	id, name, err := x.xmlObject.decode(KindUser)
	if err != nil {
		return User{}, err
	}
	gid, err := parseInt(KindUser, "GID", x.GID)
	if err != nil {
		return User{}, err
	}
	return User{ID: id, Name: name, GID: gid}, nil
}

type xmlAttribute struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type xmlVector struct {
	Attributes []xmlAttribute `xml:",any"`
}

func (v xmlVector) attributes() Attributes {
	out := make(Attributes, 0, len(v.Attributes))
	for _, a := range v.Attributes {
		out = append(out, Pair{Key: a.XMLName.Local, Value: strings.TrimSpace(a.Value)})
	}
	return out
}

type xmlVM struct {
	xmlObject
	GID      string `xml:"GID"`
	State    string `xml:"STATE"`
	LCMState string `xml:"LCM_STATE"`
	Template struct {
		CPU    string      `xml:"CPU"`
		VCPU   string      `xml:"VCPU"`
		Memory string      `xml:"MEMORY"`
		Disks  []xmlVector `xml:"DISK"`
		NICs   []xmlVector `xml:"NIC"`
	} `xml:"TEMPLATE"`
	UserTemplate xmlVector `xml:"USER_TEMPLATE"`
}

func (x xmlVM) decode() (VM, error) {
	id, name, err := x.xmlObject.decode(KindVM)
	if err != nil {
		return VM{}, err
	}
	vm := VM{ID: id, Name: name, UserTemplate: map[string]string{}}

	if vm.GID, err = parseInt(KindVM, "GID", x.GID); err != nil {
		return VM{}, err
	}
	state, err := parseInt(KindVM, "STATE", x.State)
	if err != nil {
		return VM{}, err
	}
	lcmState, err := parseInt(KindVM, "LCM_STATE", x.LCMState)
	if err != nil {
		return VM{}, err
	}
	vm.State, vm.LCMState = VMState(state), LCMState(lcmState)

	if x.Template.CPU != "" {
		vm.CPU, err = strconv.ParseFloat(strings.TrimSpace(x.Template.CPU), 64)
		if err != nil {
			return VM{}, &DecodeError{Kind: KindVM, Reason: fmt.Sprintf("invalid CPU %q", x.Template.CPU)}
		}
	}
	if x.Template.VCPU != "" {
		if vm.VCPU, err = parseInt(KindVM, "VCPU", x.Template.VCPU); err != nil {
			return VM{}, err
		}
	}
	if x.Template.Memory != "" {
		if vm.MemoryMB, err = parseInt(KindVM, "MEMORY", x.Template.Memory); err != nil {
			return VM{}, err
		}
	}

	for _, d := range x.Template.Disks {
		attrs := d.attributes()
		diskID, _ := attrs.Get("DISK_ID")
		size, _ := attrs.Get("SIZE")
		disk := Disk{}
		if disk.ID, err = parseInt(KindVM, "DISK_ID", diskID); err != nil {
			return VM{}, err
		}
		if size != "" {
			if disk.SizeMB, err = parseInt(KindVM, "DISK SIZE", size); err != nil {
				return VM{}, err
			}
		}
		vm.Disks = append(vm.Disks, disk)
	}

	for _, n := range x.Template.NICs {
		attrs := n.attributes()
		nic := NIC{NetworkID: -1}
		if v, ok := attrs.Get("NIC_ID"); ok {
			if nic.ID, err = parseInt(KindVM, "NIC_ID", v); err != nil {
				return VM{}, err
			}
		}
		if v, ok := attrs.Get("NETWORK_ID"); ok && v != "" {
			if nic.NetworkID, err = parseInt(KindVM, "NETWORK_ID", v); err != nil {
				return VM{}, err
			}
		}
		nic.IP, _ = attrs.Get("IP")
		vm.NICs = append(vm.NICs, nic)
	}

	for _, p := range x.UserTemplate.attributes() {
		vm.UserTemplate[p.Key] = p.Value
	}
	return vm, nil
}

type xmlVMTemplate struct {
	xmlObject
	Disks []xmlVector `xml:"TEMPLATE>DISK"`
}

func (x xmlVMTemplate) decode() (VMTemplate, error) {
	id, name, err := x.xmlObject.decode(KindTemplate)
	if err != nil {
		return VMTemplate{}, err
	}
	t := VMTemplate{ID: id, Name: name}
	for _, d := range x.Disks {
		t.Disks = append(t.Disks, d.attributes())
	}
	return t, nil
}

func parseInt(kind, field, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, &DecodeError{Kind: kind, Reason: "missing " + field}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &DecodeError{Kind: kind, Reason: fmt.Sprintf("invalid %s %q", field, value)}
	}
	return n, nil
}

func parseIDList(kind string, values []string) ([]int, error) {
	ids := make([]int, 0, len(values))
	for _, v := range values {
		id, err := parseInt(kind, "ID", v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// decodeXML unmarshals body into v, wrapping errors as DecodeError.
func decodeXML(kind, body string, v any) error {
	if err := xml.Unmarshal([]byte(body), v); err != nil {
		return &DecodeError{Kind: kind, Reason: err.Error()}
	}
	return nil
}
