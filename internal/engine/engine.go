// Package engine is the caller-facing entry point of canopy.
//
// An Engine wires the tenant, network and instance managers to one backend
// and translates between their results and the v1alpha1 resources:
//
//	CreateTenant, DeleteTenant, SetQuota, GetQuotaUsage,
//	TenantNetwork, EnsureTenantAdmin,
//	CreateInstance, DeleteInstance, ResizeInstance, GetUsage,
//	GetInstance, ListInstances, Ping
//
// All limit and usage values are backend-native integers. The engine keeps
// no state between calls. Calls for different tenants may run
// concurrently; calls for the same tenant must be serialized by the caller.
package engine

import (
	"errors"

	"github.com/jbweber/canopy/internal/config"
	"github.com/jbweber/canopy/internal/network"
	"github.com/jbweber/canopy/internal/poll"
	"github.com/jbweber/canopy/internal/quota"
	"github.com/jbweber/canopy/internal/tenant"
	"github.com/jbweber/canopy/internal/vm"
)

// ErrNetworkNotConfigured is returned when a tenant network is requested
// but no network section is configured.
var ErrNetworkNotConfigured = errors.New("tenant networks are not configured")

// Options configure an Engine.
type Options struct {
	ZoneID int

	// Network enables tenant networks. Without it tenants are created
	// without a network, while existing networks are still torn down.
	Network *network.Config

	Quota quota.Options

	InstanceWait poll.Options
	RouterWait   poll.Options
	PowerWait    poll.Options
}

// OptionsFromConfig derives engine options from the configuration file.
// Every wait reports to obs, which may be nil.
func OptionsFromConfig(cfg *config.Config, obs poll.Observer) Options {
	return Options{
		ZoneID:       cfg.Backend.ZoneID,
		Network:      cfg.Network,
		Quota:        cfg.Quota.Options(),
		InstanceWait: cfg.Polling.Instance.Options(obs),
		RouterWait:   cfg.Polling.Router.Options(obs),
		PowerWait:    cfg.Polling.Power.Options(obs),
	}
}

// Engine exposes every tenant and instance operation.
type Engine struct {
	backend  Backend
	networks *network.Provisioner
	tenants  *tenant.Manager
	vms      *vm.Manager

	networkConfigured bool
}

// New wires the managers to b.
func New(b Backend, opts Options) *Engine {
	var netCfg network.Config
	if opts.Network != nil {
		netCfg = *opts.Network
	}
	networks := network.NewProvisioner(b, netCfg, opts.ZoneID, opts.RouterWait)

	return &Engine{
		backend:           b,
		networks:          networks,
		tenants:           tenant.NewManager(b, networks, opts.ZoneID, opts.Quota),
		vms:               vm.NewManager(b, opts.InstanceWait, opts.PowerWait),
		networkConfigured: opts.Network != nil,
	}
}

// Ping returns the backend version.
func (e *Engine) Ping() (string, error) {
	return e.backend.Version()
}
