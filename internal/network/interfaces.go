package network

import "github.com/jbweber/canopy/internal/one"

// backend lists the control plane calls the provisioner makes.
//
// In production, this is satisfied by *one.Client.
// In tests, this is satisfied by *onetest.Backend.
type backend interface {
	ListVNets() ([]one.VNet, error)
	VNetInfo(id int) (*one.VNet, error)
	CreateVNet(tpl string, clusterID int) (int, error)
	DeleteVNet(id int) error
	ClusterAddVNet(clusterID, vnetID int) error
	VDCAddVNet(vdcID, zoneID, vnetID int) error

	ListVirtualRouters() ([]one.VirtualRouter, error)
	VirtualRouterInfo(id int) (*one.VirtualRouter, error)
	CreateVirtualRouter(tpl string) (int, error)
	InstantiateVirtualRouter(id, count, templateID int, name string, hold bool, extra string) (int, error)
	DeleteVirtualRouter(id int) error

	ListSecurityGroups() ([]one.SecurityGroup, error)
	CreateSecurityGroup(tpl string) (int, error)
	DeleteSecurityGroup(id int) error

	// VMInfo is used to wait for router appliances.
	VMInfo(id int) (*one.VM, error)
}
