package engine

import "github.com/jbweber/canopy/internal/one"

// Backend is every control plane call the engine and its managers make.
//
// In production, this is satisfied by *one.Client.
// In tests, this is satisfied by *onetest.Backend.
type Backend interface {
	// Version probes the endpoint
	Version() (string, error)

	// Groups, VDCs and users
	ListGroups() ([]one.Group, error)
	GroupInfo(id int) (*one.Group, error)
	CreateGroup(name string) (int, error)
	DeleteGroup(id int) error
	SetGroupQuota(id int, tpl string) error
	AddGroupAdmin(groupID, userID int) error
	ListVDCs() ([]one.VDC, error)
	CreateVDC(tpl string) (int, error)
	DeleteVDC(id int) error
	VDCAddGroup(vdcID, groupID int) error
	VDCAddCluster(vdcID, zoneID, clusterID int) error
	VDCAddVNet(vdcID, zoneID, vnetID int) error
	ListUsers() ([]one.User, error)
	CreateUser(name, password string, groupIDs []int) (int, error)
	SetUserPassword(id int, password string) error
	DeleteUser(id int) error

	// Tenant networks
	ListVNets() ([]one.VNet, error)
	VNetInfo(id int) (*one.VNet, error)
	CreateVNet(tpl string, clusterID int) (int, error)
	DeleteVNet(id int) error
	ClusterAddVNet(clusterID, vnetID int) error
	ListVirtualRouters() ([]one.VirtualRouter, error)
	VirtualRouterInfo(id int) (*one.VirtualRouter, error)
	CreateVirtualRouter(tpl string) (int, error)
	InstantiateVirtualRouter(id, count, templateID int, name string, hold bool, extra string) (int, error)
	DeleteVirtualRouter(id int) error
	ListSecurityGroups() ([]one.SecurityGroup, error)
	CreateSecurityGroup(tpl string) (int, error)
	DeleteSecurityGroup(id int) error

	// Instances
	TemplateInfo(id int) (*one.VMTemplate, error)
	InstantiateTemplate(templateID int, name string, hold bool, extra string) (int, error)
	ChownVM(id, userID, groupID int) error
	UpdateVMUserTemplate(id int, tpl string) error
	VMInfo(id int) (*one.VM, error)
	ListVMs() ([]one.VM, error)
	VMAction(action string, id int) error
	ResizeVM(id int, tpl string, enforce bool) error
	ResizeVMDisk(id, diskID, sizeMB int) error
}
