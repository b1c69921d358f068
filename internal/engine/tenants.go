package engine

import (
	"context"
	"fmt"

	"github.com/jbweber/canopy/api/v1alpha1"
	"github.com/jbweber/canopy/internal/network"
	"github.com/jbweber/canopy/internal/quota"
	"github.com/jbweber/canopy/internal/status"
	"github.com/jbweber/canopy/internal/tenant"
)

// CreateTenant provisions a tenant from its manifest and returns a copy
// with the observed status.
//
// This orchestrates the creation:
//  1. Group, VDC and cluster links
//  2. The tenant network, if spec.network is set
//  3. The quota, if spec.quota is set
//
// On failure the returned tenant is in phase Failed with the reason in its
// Ready condition, alongside the error. A failed quota push leaves the
// tenant objects in place; retrying converges on them.
func (e *Engine) CreateTenant(ctx context.Context, t *v1alpha1.Tenant) (*v1alpha1.Tenant, error) {
	out := t.DeepCopy()
	out.Normalize()
	if err := status.TenantProvisioning(out); err != nil {
		return out, err
	}

	var netOpts *tenant.NetworkOptions
	if out.WantsNetwork() {
		if !e.networkConfigured {
			err := fmt.Errorf("tenant %q: %w", out.Name, ErrNetworkNotConfigured)
			status.TenantFailed(out, "NetworkNotConfigured", err)
			return out, err
		}
		netOpts = &tenant.NetworkOptions{
			Subnet:            out.Spec.Network.Subnet,
			SchedRequirements: out.Spec.Network.SchedRequirements,
		}
	}

	created, err := e.tenants.Create(ctx, out.Name, out.Spec.ClusterIDs, netOpts)
	if err != nil {
		if netOpts != nil {
			status.MarkNetworkFailed(out, err)
		}
		status.TenantFailed(out, "ProvisioningFailed", err)
		return out, err
	}
	out.Status.GroupID = created.GroupID
	out.Status.VDCID = created.VDCID
	if created.Network != nil {
		out.Status.Network = created.Network.Status()
		status.MarkNetworkProvisioned(out)
	}

	if len(out.Spec.Quota) > 0 {
		if err := e.tenants.SetQuota(out.Name, limitsOf(out.Spec.Quota)); err != nil {
			status.TenantFailed(out, "QuotaFailed", err)
			return out, err
		}
		status.MarkQuotaApplied(out)
	}

	if err := status.TenantReady(out); err != nil {
		return out, err
	}
	return out, nil
}

// DeleteTenant removes the network, admin user, VDC and group of a tenant.
// Objects already gone are skipped.
func (e *Engine) DeleteTenant(ctx context.Context, name string) error {
	return e.tenants.Delete(ctx, name)
}

// SetQuota pushes limits to the tenant's group. Limits without a known
// component make no backend call.
func (e *Engine) SetQuota(name string, limits quota.Limits) error {
	return e.tenants.SetQuota(name, limits)
}

// GetQuotaUsage reports limits and usage per tenant. Tenants that do not
// exist are left out.
func (e *Engine) GetQuotaUsage(names []string) ([]tenant.QuotaReport, error) {
	return e.tenants.GetQuotaUsage(names)
}

// TenantNetwork looks up the network objects of a tenant by name.
// found is false when the tenant has no network.
func (e *Engine) TenantNetwork(name string) (*network.TenantNetwork, bool, error) {
	return e.networks.Lookup(name)
}

// EnsureTenantAdmin creates or reuses the tenant administrator and sets a
// new password. The password is only part of the returned credential.
func (e *Engine) EnsureTenantAdmin(name string) (*tenant.Credential, error) {
	return e.tenants.EnsureAdmin(name)
}

func limitsOf(m map[string]int) quota.Limits {
	limits := make(quota.Limits, len(m))
	for k, v := range m {
		limits[quota.Component(k)] = v
	}
	return limits
}
