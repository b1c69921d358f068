package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/canopy/api/v1alpha1"
	"github.com/jbweber/canopy/internal/tenant"
)

// YAMLFormatter formats resources as YAML.
type YAMLFormatter struct{}

func marshalYAML(v any, what string) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to YAML: %w", what, err)
	}
	return string(data), nil
}

// FormatTenant formats a tenant as a YAML manifest.
func (f *YAMLFormatter) FormatTenant(t *v1alpha1.Tenant) (string, error) {
	setTenantTypeMeta(t)
	return marshalYAML(t, "tenant")
}

// FormatInstance formats a single instance as a YAML manifest.
func (f *YAMLFormatter) FormatInstance(inst *v1alpha1.Instance) (string, error) {
	setInstanceTypeMeta(inst)
	return marshalYAML(inst, "instance")
}

// FormatInstanceList formats a list of instances as a YAML stream
// (multiple documents separated by ---).
func (f *YAMLFormatter) FormatInstanceList(list []*v1alpha1.Instance) (string, error) {
	var buf bytes.Buffer
	for i, inst := range list {
		setInstanceTypeMeta(inst)
		data, err := yaml.Marshal(inst)
		if err != nil {
			return "", fmt.Errorf("failed to marshal instance %s to YAML: %w", inst.Name, err)
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}
	return buf.String(), nil
}

// FormatUsage formats instance allocations as a YAML sequence.
func (f *YAMLFormatter) FormatUsage(usage []Usage) (string, error) {
	return marshalYAML(usage, "usage")
}

// FormatQuota formats quota reports as a YAML sequence.
func (f *YAMLFormatter) FormatQuota(reports []tenant.QuotaReport) (string, error) {
	return marshalYAML(reports, "quota reports")
}

// FormatNetwork formats a tenant network as YAML.
func (f *YAMLFormatter) FormatNetwork(n Network) (string, error) {
	return marshalYAML(n, "network")
}

// FormatCredential formats an admin credential as YAML.
func (f *YAMLFormatter) FormatCredential(c *tenant.Credential) (string, error) {
	return marshalYAML(c, "credential")
}
