package network

import (
	"context"
	"fmt"

	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/internal/identity"
	"github.com/jbweber/canopy/internal/naming"
	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/poll"
)

// Teardown removes the router, network and security group of a tenant.
// Every object is optional; a tenant without network tears down cleanly.
func (p *Provisioner) Teardown(ctx context.Context, tenant string) error {
	names := naming.For(tenant)
	logg.Info("Tearing down network of tenant %q...", tenant)

	// Step 1: Router and its appliance VMs
	routerID, found, err := identity.ResolveByName(one.KindVirtualRouter, names.Router, p.backend.ListVirtualRouters)
	if err != nil {
		return err
	}
	if found {
		if err := p.deleteRouter(ctx, names.Router, routerID); err != nil {
			return err
		}
	} else {
		logg.Info("Virtual router %s not found, skipping", names.Router)
	}

	// Step 2: Virtual network
	vnetID, found, err := identity.ResolveByName(one.KindVNet, names.VNet, p.backend.ListVNets)
	if err != nil {
		return err
	}
	if found {
		logg.Info("Deleting VNet %s (%d)...", names.VNet, vnetID)
		if err := p.backend.DeleteVNet(vnetID); err != nil && !one.IsNotFound(err) {
			return fmt.Errorf("failed to delete VNet %q: %w", names.VNet, err)
		}
	} else {
		logg.Info("VNet %s not found, skipping", names.VNet)
	}

	// Step 3: Security group
	sgID, found, err := identity.ResolveByName(one.KindSecurityGroup, names.SecurityGroup, p.backend.ListSecurityGroups)
	if err != nil {
		return err
	}
	if found {
		logg.Info("Deleting security group %s (%d)...", names.SecurityGroup, sgID)
		if err := p.backend.DeleteSecurityGroup(sgID); err != nil && !one.IsNotFound(err) {
			return fmt.Errorf("failed to delete security group %q: %w", names.SecurityGroup, err)
		}
	} else {
		logg.Info("Security group %s not found, skipping", names.SecurityGroup)
	}

	logg.Info("Network of tenant %q removed", tenant)
	return nil
}

// deleteRouter deletes a router and waits until its appliance VMs are DONE,
// which releases their leases on the tenant network.
func (p *Provisioner) deleteRouter(ctx context.Context, name string, routerID int) error {
	var vmIDs []int
	router, err := p.backend.VirtualRouterInfo(routerID)
	switch {
	case err == nil:
		vmIDs = router.VMIDs
	case one.IsNotFound(err):
		return nil
	default:
		return fmt.Errorf("failed to get virtual router %q: %w", name, err)
	}

	logg.Info("Deleting virtual router %s (%d)...", name, routerID)
	if err := p.backend.DeleteVirtualRouter(routerID); err != nil && !one.IsNotFound(err) {
		return fmt.Errorf("failed to delete virtual router %q: %w", name, err)
	}

	for _, vmID := range vmIDs {
		logg.Info("Waiting for router VM %d to terminate...", vmID)
		if err := poll.VMGone(ctx, p.backend, vmID, p.wait); err != nil {
			return fmt.Errorf("router VM %d of %q did not terminate: %w", vmID, name, err)
		}
	}
	return nil
}

// Lookup returns the network objects of a tenant without changing them.
// found is false when the tenant has no internal network.
func (p *Provisioner) Lookup(tenant string) (result *TenantNetwork, found bool, err error) {
	names := naming.For(tenant)

	vnetID, found, err := identity.ResolveByName(one.KindVNet, names.VNet, p.backend.ListVNets)
	if err != nil || !found {
		return nil, false, err
	}
	vnet, err := p.backend.VNetInfo(vnetID)
	if err != nil {
		if one.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get VNet %q: %w", names.VNet, err)
	}
	cidr, err := networkCIDR(vnet)
	if err != nil {
		return nil, false, err
	}

	result = &TenantNetwork{
		VNetID:          vnetID,
		VNetName:        names.VNet,
		Subnet:          cidr,
		Gateway:         vnet.Gateway,
		RouterID:        -1,
		RouterVMID:      -1,
		SecurityGroupID: -1,
	}

	routerID, found, err := identity.ResolveByName(one.KindVirtualRouter, names.Router, p.backend.ListVirtualRouters)
	if err != nil {
		return nil, false, err
	}
	if found {
		result.RouterID = routerID
		router, err := p.backend.VirtualRouterInfo(routerID)
		if err != nil && !one.IsNotFound(err) {
			return nil, false, fmt.Errorf("failed to get virtual router %q: %w", names.Router, err)
		}
		if err == nil && len(router.VMIDs) > 0 {
			result.RouterVMID = router.VMIDs[0]
		}
	}

	sgID, found, err := identity.ResolveByName(one.KindSecurityGroup, names.SecurityGroup, p.backend.ListSecurityGroups)
	if err != nil {
		return nil, false, err
	}
	if found {
		result.SecurityGroupID = sgID
	}
	return result, true, nil
}
