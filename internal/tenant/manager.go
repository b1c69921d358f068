// Package tenant manages the lifecycle of tenants: a Group and a VDC
// sharing the tenant name, the clusters the VDC grants, the group quota,
// an optional tenant network and an optional tenant administrator.
//
// Creation runs Group → VDC → links → network. Every step is
// create-or-reuse or idempotent, so a call retried after a crash converges
// on the objects of the earlier run. Deletion runs the same steps in
// reverse and treats absent objects as already deleted.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/internal/identity"
	"github.com/jbweber/canopy/internal/naming"
	"github.com/jbweber/canopy/internal/network"
	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/quota"
	"github.com/jbweber/canopy/internal/rollback"
)

// ErrGroupMissing is returned for operations on a tenant whose group does
// not exist.
var ErrGroupMissing = errors.New("tenant group not found")

// Tenant is the backend view of a provisioned tenant.
type Tenant struct {
	Name       string
	GroupID    int
	VDCID      int
	ClusterIDs []int

	// Network is nil for tenants without a network.
	Network *network.TenantNetwork
}

// NetworkOptions requests a tenant network. The zero value uses the
// configured defaults.
type NetworkOptions struct {
	Subnet            string
	SchedRequirements string
}

// Manager creates and deletes tenants.
type Manager struct {
	backend   backend
	network   networkProvisioner
	zoneID    int
	quotaOpts quota.Options
}

// NewManager returns a tenant manager. net may be nil when tenant networks
// are not configured; Create then rejects network requests.
func NewManager(b backend, net networkProvisioner, zoneID int, quotaOpts quota.Options) *Manager {
	return &Manager{backend: b, network: net, zoneID: zoneID, quotaOpts: quotaOpts}
}

// Create creates or reuses the Group and VDC of a tenant, grants the VDC the
// given clusters and, when netOpts is non-nil, provisions the tenant
// network. On failure the objects created by this call are removed again.
func (m *Manager) Create(ctx context.Context, name string, clusterIDs []int, netOpts *NetworkOptions) (result *Tenant, err error) {
	if err := naming.ValidateTenantName(name); err != nil {
		return nil, err
	}
	if netOpts != nil && m.network == nil {
		return nil, fmt.Errorf("tenant %q requests a network but no network provisioner is configured", name)
	}
	names := naming.For(name)

	var undo rollback.Stack
	defer undo.Unwind(&err)

	// Step 1: Group
	logg.Info("Creating group %s...", names.Group)
	groupID, created, err := identity.CreateOrReuse(one.KindGroup, names.Group,
		func() (int, error) { return m.backend.CreateGroup(names.Group) },
		m.backend.ListGroups)
	if err != nil {
		return nil, err
	}
	if created {
		undo.Push("delete group "+names.Group, func() error { return m.backend.DeleteGroup(groupID) })
	}

	// Step 2: VDC
	logg.Info("Creating VDC %s...", names.VDC)
	vdcTpl := one.NewTemplate().Add("NAME", names.VDC).String()
	vdcID, created, err := identity.CreateOrReuse(one.KindVDC, names.VDC,
		func() (int, error) { return m.backend.CreateVDC(vdcTpl) },
		m.backend.ListVDCs)
	if err != nil {
		return nil, err
	}
	if created {
		undo.Push("delete VDC "+names.VDC, func() error { return m.backend.DeleteVDC(vdcID) })
	}

	// Step 3: Links
	logg.Info("Linking group %d to VDC %d...", groupID, vdcID)
	err = identity.AddEdgeIdempotent(fmt.Sprintf("add group %d to VDC %d", groupID, vdcID),
		func() error { return m.backend.VDCAddGroup(vdcID, groupID) })
	if err != nil {
		return nil, err
	}
	for _, clusterID := range clusterIDs {
		logg.Info("Adding cluster %d to VDC %d...", clusterID, vdcID)
		err = identity.AddEdgeIdempotent(fmt.Sprintf("add cluster %d to VDC %d", clusterID, vdcID),
			func() error { return m.backend.VDCAddCluster(vdcID, m.zoneID, clusterID) })
		if err != nil {
			return nil, err
		}
	}

	result = &Tenant{
		Name:       name,
		GroupID:    groupID,
		VDCID:      vdcID,
		ClusterIDs: slices.Clone(clusterIDs),
	}

	// Step 4: Network
	if netOpts != nil {
		result.Network, err = m.network.Provision(ctx, network.Request{
			Tenant:            name,
			VDCID:             vdcID,
			ClusterIDs:        clusterIDs,
			Subnet:            netOpts.Subnet,
			SchedRequirements: netOpts.SchedRequirements,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to provision network of tenant %q: %w", name, err)
		}
	}

	logg.Info("Tenant %q ready (group %d, VDC %d)", name, groupID, vdcID)
	return result, nil
}

// Delete removes the network, admin user, VDC and Group of a tenant.
// Objects already gone are skipped, so a partially deleted tenant can be
// deleted again.
func (m *Manager) Delete(ctx context.Context, name string) error {
	names := naming.For(name)
	logg.Info("Deleting tenant %q...", name)

	if m.network != nil {
		if err := m.network.Teardown(ctx, name); err != nil {
			return fmt.Errorf("failed to tear down network of tenant %q: %w", name, err)
		}
	}

	// The backend refuses to delete a group that still has members.
	if err := deleteByName(one.KindUser, names.AdminUser, m.backend.ListUsers, m.backend.DeleteUser); err != nil {
		return err
	}
	if err := deleteByName(one.KindVDC, names.VDC, m.backend.ListVDCs, m.backend.DeleteVDC); err != nil {
		return err
	}
	if err := deleteByName(one.KindGroup, names.Group, m.backend.ListGroups, m.backend.DeleteGroup); err != nil {
		return err
	}

	logg.Info("Tenant %q deleted", name)
	return nil
}

func deleteByName[T one.Named](kind, name string, list identity.ListFunc[T], del func(int) error) error {
	id, found, err := identity.ResolveByName(kind, name, list)
	if err != nil {
		return err
	}
	if !found {
		logg.Info("%s %s not found, skipping", kind, name)
		return nil
	}
	logg.Info("Deleting %s %s (%d)...", kind, name, id)
	if err := del(id); err != nil && !one.IsNotFound(err) {
		return fmt.Errorf("failed to delete %s %q: %w", kind, name, err)
	}
	return nil
}

// groupID resolves the tenant's group or returns ErrGroupMissing.
func (m *Manager) groupID(name string) (int, error) {
	id, found, err := identity.ResolveByName(one.KindGroup, naming.For(name).Group, m.backend.ListGroups)
	if err != nil {
		return -1, err
	}
	if !found {
		return -1, fmt.Errorf("%w: %q", ErrGroupMissing, name)
	}
	return id, nil
}
