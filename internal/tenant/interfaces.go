package tenant

import (
	"context"

	"github.com/jbweber/canopy/internal/network"
	"github.com/jbweber/canopy/internal/one"
)

// backend lists the control plane calls the tenant manager makes.
//
// In production, this is satisfied by *one.Client.
// In tests, this is satisfied by *onetest.Backend.
type backend interface {
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

	ListUsers() ([]one.User, error)
	CreateUser(name, password string, groupIDs []int) (int, error)
	SetUserPassword(id int, password string) error
	DeleteUser(id int) error
}

// networkProvisioner creates and removes tenant networks.
//
// In production, this is satisfied by *network.Provisioner.
type networkProvisioner interface {
	Provision(ctx context.Context, req network.Request) (*network.TenantNetwork, error)
	Teardown(ctx context.Context, tenant string) error
}
