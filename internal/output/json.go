package output

import (
	"encoding/json"
	"fmt"

	"github.com/jbweber/canopy/api/v1alpha1"
	"github.com/jbweber/canopy/internal/tenant"
)

// JSONFormatter formats resources as indented JSON.
type JSONFormatter struct{}

func marshalJSON(v any, what string) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to JSON: %w", what, err)
	}
	return string(data) + "\n", nil
}

// FormatTenant formats a tenant as JSON.
func (f *JSONFormatter) FormatTenant(t *v1alpha1.Tenant) (string, error) {
	setTenantTypeMeta(t)
	return marshalJSON(t, "tenant")
}

// FormatInstance formats a single instance as JSON.
func (f *JSONFormatter) FormatInstance(inst *v1alpha1.Instance) (string, error) {
	setInstanceTypeMeta(inst)
	return marshalJSON(inst, "instance")
}

// FormatInstanceList formats a list of instances as a JSON array.
func (f *JSONFormatter) FormatInstanceList(list []*v1alpha1.Instance) (string, error) {
	if len(list) == 0 {
		return "[]\n", nil
	}
	for _, inst := range list {
		setInstanceTypeMeta(inst)
	}
	return marshalJSON(list, "instances")
}

// FormatUsage formats instance allocations as a JSON array.
func (f *JSONFormatter) FormatUsage(usage []Usage) (string, error) {
	if len(usage) == 0 {
		return "[]\n", nil
	}
	return marshalJSON(usage, "usage")
}

// FormatQuota formats quota reports as a JSON array.
func (f *JSONFormatter) FormatQuota(reports []tenant.QuotaReport) (string, error) {
	if len(reports) == 0 {
		return "[]\n", nil
	}
	return marshalJSON(reports, "quota reports")
}

// FormatNetwork formats a tenant network as JSON.
func (f *JSONFormatter) FormatNetwork(n Network) (string, error) {
	return marshalJSON(n, "network")
}

// FormatCredential formats an admin credential as JSON.
func (f *JSONFormatter) FormatCredential(c *tenant.Credential) (string, error) {
	return marshalJSON(c, "credential")
}
