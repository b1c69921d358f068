package network

import (
	"context"
	"fmt"
	"net"
	"slices"

	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/api/v1alpha1"
	"github.com/jbweber/canopy/internal/identity"
	"github.com/jbweber/canopy/internal/naming"
	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/poll"
	"github.com/jbweber/canopy/internal/rollback"
	"github.com/jbweber/canopy/internal/subnet"
)

// TenantNetwork describes the network objects of one tenant.
type TenantNetwork struct {
	VNetID   int
	VNetName string
	Subnet   string
	Gateway  string

	RouterID   int
	RouterVMID int

	// SecurityGroupID is -1 when the tenant has no default security group.
	SecurityGroupID int
}

// HasSecurityGroup reports whether a default security group exists.
func (n *TenantNetwork) HasSecurityGroup() bool {
	return n.SecurityGroupID >= 0
}

// Status converts the network into its API representation.
func (n *TenantNetwork) Status() *v1alpha1.NetworkStatus {
	s := &v1alpha1.NetworkStatus{
		VNetID:     n.VNetID,
		VNetName:   n.VNetName,
		Subnet:     n.Subnet,
		Gateway:    n.Gateway,
		RouterID:   n.RouterID,
		RouterVMID: n.RouterVMID,
	}
	if n.HasSecurityGroup() {
		id := n.SecurityGroupID
		s.SecurityGroupID = &id
	}
	return s
}

// Request describes the network of one tenant.
type Request struct {
	Tenant string
	VDCID  int

	// ClusterIDs are the tenant's clusters. The network is added to each
	// and the router is placed on one of them.
	ClusterIDs []int

	// Subnet pins the subnet instead of allocating from the pool.
	Subnet string

	// SchedRequirements overrides the router placement.
	SchedRequirements string
}

// Provisioner creates and removes tenant networks.
type Provisioner struct {
	backend backend
	cfg     Config
	zoneID  int
	wait    poll.Options
}

// NewProvisioner returns a provisioner. zoneID is the zone VDC resources
// are added in; wait bounds the wait for router appliances.
func NewProvisioner(b backend, cfg Config, zoneID int, wait poll.Options) *Provisioner {
	return &Provisioner{backend: b, cfg: cfg, zoneID: zoneID, wait: wait}
}

// Provision creates or reuses the network, router and security group of a
// tenant. On failure every object this call created is removed again,
// most recent first, and the original error is returned.
func (p *Provisioner) Provision(ctx context.Context, req Request) (result *TenantNetwork, err error) {
	names := naming.For(req.Tenant)
	var undo rollback.Stack
	defer undo.Unwind(&err)

	// Step 1: Subnet
	subnetCIDR := req.Subnet
	if subnetCIDR == "" {
		pool, err := p.cfg.AddressPool()
		if err != nil {
			return nil, err
		}
		logg.Info("Allocating subnet for tenant %q from pool %s...", req.Tenant, pool)
		ipnet, err := subnet.Allocate(p.backend, pool)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate subnet for tenant %q: %w", req.Tenant, err)
		}
		subnetCIDR = ipnet.String()
	}
	layout, err := subnet.LayoutFor(subnetCIDR)
	if err != nil {
		return nil, err
	}

	// Step 2: Virtual network
	clusters := p.clusters(req.ClusterIDs)
	placement := -1
	if len(clusters) > 0 {
		placement = clusters[0]
	}

	logg.Info("Creating VNet %s (%s)...", names.VNet, layout.CIDR)
	tpl := p.vnetTemplate(names.VNet, layout)
	logg.Debug("VNet template:\n%s", tpl)
	vnetID, created, err := identity.CreateOrReuse(one.KindVNet, names.VNet,
		func() (int, error) { return p.backend.CreateVNet(tpl.String(), placement) },
		p.backend.ListVNets)
	if err != nil {
		return nil, err
	}
	if created {
		undo.Push("delete VNet "+names.VNet, func() error { return p.backend.DeleteVNet(vnetID) })
	} else {
		// A reused network keeps the subnet of the run that created it.
		layout, err = p.existingLayout(vnetID)
		if err != nil {
			return nil, err
		}
	}

	for _, clusterID := range clusters {
		err := identity.AddEdgeIdempotent(fmt.Sprintf("add VNet %s to cluster %d", names.VNet, clusterID),
			func() error { return p.backend.ClusterAddVNet(clusterID, vnetID) })
		if err != nil {
			return nil, err
		}
	}

	logg.Info("Adding VNet %s to VDC %d...", names.VNet, req.VDCID)
	err = identity.AddEdgeIdempotent(fmt.Sprintf("add VNet %s to VDC %d", names.VNet, req.VDCID),
		func() error { return p.backend.VDCAddVNet(req.VDCID, p.zoneID, vnetID) })
	if err != nil {
		return nil, err
	}

	// Step 3: Virtual router
	logg.Info("Creating virtual router %s...", names.Router)
	routerTpl := one.NewTemplate().
		Add("NAME", names.Router).
		AddVector("NIC", one.P("NETWORK_ID", vnetID), one.P("IP", layout.Gateway)).
		AddVector("NIC", one.P("NETWORK_ID", p.cfg.ExternalNetworkID))
	logg.Debug("Virtual router template:\n%s", routerTpl)
	routerID, created, err := identity.CreateOrReuse(one.KindVirtualRouter, names.Router,
		func() (int, error) { return p.backend.CreateVirtualRouter(routerTpl.String()) },
		p.backend.ListVirtualRouters)
	if err != nil {
		return nil, err
	}
	if !created {
		// An appliance that failed or went away after an earlier run never
		// becomes ready again, so the router is replaced.
		broken, err := p.routerBroken(routerID)
		if err != nil {
			return nil, err
		}
		if broken {
			logg.Info("Virtual router %s has no usable VM, recreating it...", names.Router)
			if err := p.deleteRouter(ctx, names.Router, routerID); err != nil {
				return nil, err
			}
			routerID, err = p.backend.CreateVirtualRouter(routerTpl.String())
			if err != nil {
				return nil, fmt.Errorf("failed to create virtual router %q: %w", names.Router, err)
			}
			created = true
		}
	}
	if created {
		undo.Push("delete virtual router "+names.Router, func() error {
			return p.deleteRouter(ctx, names.Router, routerID)
		})
	}

	routerVMID, err := p.ensureRouterVM(req, routerID)
	if err != nil {
		return nil, err
	}

	logg.Info("Waiting for router VM %d to be running...", routerVMID)
	if err := poll.VMRunning(ctx, p.backend, routerVMID, p.wait); err != nil {
		return nil, fmt.Errorf("router %s did not become ready: %w", names.Router, err)
	}

	// Step 4: Security group
	sgID := -1
	if len(p.cfg.SecurityGroupRules) > 0 {
		logg.Info("Creating security group %s...", names.SecurityGroup)
		sgTpl := one.NewTemplate().Add("NAME", names.SecurityGroup)
		for _, rule := range p.cfg.SecurityGroupRules {
			sgTpl.AddVector("RULE", rule.pairs()...)
		}
		logg.Debug("Security group template:\n%s", sgTpl)
		sgID, created, err = identity.CreateOrReuse(one.KindSecurityGroup, names.SecurityGroup,
			func() (int, error) { return p.backend.CreateSecurityGroup(sgTpl.String()) },
			p.backend.ListSecurityGroups)
		if err != nil {
			return nil, err
		}
		if created {
			undo.Push("delete security group "+names.SecurityGroup, func() error {
				return p.backend.DeleteSecurityGroup(sgID)
			})
		}
	}

	logg.Info("Network for tenant %q ready: %s via %s", req.Tenant, layout.CIDR, layout.Gateway)
	return &TenantNetwork{
		VNetID:          vnetID,
		VNetName:        names.VNet,
		Subnet:          layout.CIDR,
		Gateway:         layout.Gateway,
		RouterID:        routerID,
		RouterVMID:      routerVMID,
		SecurityGroupID: sgID,
	}, nil
}

// clusters merges the tenant's clusters with the configured extra ones.
func (p *Provisioner) clusters(tenantClusters []int) []int {
	out := slices.Clone(tenantClusters)
	for _, id := range p.cfg.ClusterIDs {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func (p *Provisioner) vnetTemplate(name string, layout subnet.Layout) *one.Template {
	tpl := one.NewTemplate().
		Add("NAME", name).
		Add("VN_MAD", "vxlan").
		Add("PHYDEV", p.cfg.PhyDev).
		Add("AUTOMATIC_VLAN_ID", "YES").
		Add("NETWORK_ADDRESS", layout.NetworkAddress).
		Add("NETWORK_MASK", layout.NetworkMask).
		Add("GATEWAY", layout.Gateway)
	if p.cfg.DNS != "" {
		tpl.Add("DNS", p.cfg.DNS)
	}
	return tpl.AddVector("AR",
		one.P("TYPE", "IP4"),
		one.P("IP", layout.FirstIP),
		one.P("SIZE", layout.Size),
	)
}

func (p *Provisioner) existingLayout(vnetID int) (subnet.Layout, error) {
	vnet, err := p.backend.VNetInfo(vnetID)
	if err != nil {
		return subnet.Layout{}, fmt.Errorf("failed to get VNet %d: %w", vnetID, err)
	}
	cidr, err := networkCIDR(vnet)
	if err != nil {
		return subnet.Layout{}, err
	}
	return subnet.LayoutFor(cidr)
}

// networkCIDR derives the subnet of a VNet from its address and mask.
func networkCIDR(vnet *one.VNet) (string, error) {
	ip := net.ParseIP(vnet.NetworkAddress).To4()
	mask := net.ParseIP(vnet.NetworkMask).To4()
	if ip == nil || mask == nil {
		return "", fmt.Errorf("VNet %q has no usable network address/mask (%q/%q)", vnet.Name, vnet.NetworkAddress, vnet.NetworkMask)
	}
	ones, _ := net.IPMask(mask).Size()
	return (&net.IPNet{IP: ip, Mask: net.CIDRMask(ones, 32)}).String(), nil
}

// routerBroken reports whether any appliance VM of a router is failed, DONE
// or unknown to the backend. A router without VMs is not broken.
func (p *Provisioner) routerBroken(routerID int) (bool, error) {
	router, err := p.backend.VirtualRouterInfo(routerID)
	if err != nil {
		return false, fmt.Errorf("failed to get virtual router %d: %w", routerID, err)
	}
	for _, vmID := range router.VMIDs {
		vm, err := p.backend.VMInfo(vmID)
		switch {
		case one.IsNotFound(err):
			logg.Info("Router VM %d is gone", vmID)
			return true, nil
		case err != nil:
			return false, fmt.Errorf("failed to get state of router VM %d: %w", vmID, err)
		case vm.IsFailed() || vm.State == one.VMStateDone:
			logg.Info("Router VM %d is in state %s", vmID, vm.StateString())
			return true, nil
		}
	}
	return false, nil
}

// ensureRouterVM returns the router's appliance VM, instantiating one if
// the router has none yet.
func (p *Provisioner) ensureRouterVM(req Request, routerID int) (int, error) {
	router, err := p.backend.VirtualRouterInfo(routerID)
	if err != nil {
		return -1, fmt.Errorf("failed to get virtual router %d: %w", routerID, err)
	}
	if len(router.VMIDs) > 0 {
		logg.Info("Virtual router %s already has VM %d", router.Name, router.VMIDs[0])
		return router.VMIDs[0], nil
	}

	sched := req.SchedRequirements
	if sched == "" {
		sched = p.cfg.SchedRequirements
	}
	if sched == "" {
		sched = one.SchedRequirements(req.ClusterIDs)
	}
	extra := one.NewTemplate()
	if sched != "" {
		extra.Add("SCHED_REQUIREMENTS", sched)
	}

	vmName := naming.RouterVMName(req.Tenant)
	logg.Info("Instantiating router VM %s from template %d...", vmName, p.cfg.RouterTemplateID)
	if _, err := p.backend.InstantiateVirtualRouter(routerID, 1, p.cfg.RouterTemplateID, vmName, false, extra.String()); err != nil {
		return -1, fmt.Errorf("failed to instantiate virtual router %d: %w", routerID, err)
	}

	router, err = p.backend.VirtualRouterInfo(routerID)
	if err != nil {
		return -1, fmt.Errorf("failed to get virtual router %d: %w", routerID, err)
	}
	if len(router.VMIDs) == 0 {
		return -1, fmt.Errorf("virtual router %d has no VM after instantiation", routerID)
	}
	return router.VMIDs[0], nil
}
