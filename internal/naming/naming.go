// Package naming provides the naming convention that ties backend objects
// to a tenant.
//
// The names double as the reconciliation key for crash recovery: a retried
// operation finds the objects of an earlier, interrupted run by name. Call
// sites must never build these names themselves.
package naming

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	internalSuffix = "_internal"
	routerSuffix   = "_router"
	defaultSuffix  = "_default"
	adminSuffix    = "_admin"

	// TenantLabel is the USER_TEMPLATE attribute recording a VM's tenant.
	TenantLabel = "CANOPY_TENANT"
)

// Scheme holds every backend object name derived from one tenant name.
type Scheme struct {
	Tenant        string
	Group         string
	VDC           string
	VNet          string
	Router        string
	SecurityGroup string
	AdminUser     string
}

// For returns the naming scheme of a tenant.
//
// Example: "acme" → VNet "acme_internal", router "acme_router",
// security group "acme_default", admin user "acme_admin".
func For(tenant string) Scheme {
	return Scheme{
		Tenant:        tenant,
		Group:         tenant,
		VDC:           tenant,
		VNet:          tenant + internalSuffix,
		Router:        tenant + routerSuffix,
		SecurityGroup: tenant + defaultSuffix,
		AdminUser:     tenant + adminSuffix,
	}
}

// RouterVMName returns the name given to the router appliance VM.
// Format: {tenant}_router_vm
func RouterVMName(tenant string) string {
	return For(tenant).Router + "_vm"
}

// IsInternalNetwork reports whether a VNet name follows the tenant internal
// network convention.
func IsInternalNetwork(vnetName string) bool {
	return strings.HasSuffix(vnetName, internalSuffix) && len(vnetName) > len(internalSuffix)
}

var tenantNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateTenantName checks that a tenant name can be used as a prefix for
// backend object names.
func ValidateTenantName(name string) error {
	if name == "" {
		return fmt.Errorf("tenant name is required")
	}
	if len(name) > 110 {
		return fmt.Errorf("tenant name must be at most 110 characters, got %d", len(name))
	}
	if !tenantNamePattern.MatchString(name) {
		return fmt.Errorf("tenant name must start with an alphanumeric character and contain only alphanumerics, '_', '.', or '-', got %q", name)
	}
	return nil
}
