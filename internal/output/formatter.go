// Package output provides formatters for displaying canopy resources
// in various formats (table, YAML, JSON).
package output

import (
	"fmt"

	"github.com/jbweber/canopy/api/v1alpha1"
	"github.com/jbweber/canopy/internal/tenant"
	"github.com/jbweber/canopy/internal/vm"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is a YAML format for declarative configs.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
)

// Usage is the allocation of one instance.
type Usage struct {
	VMID          int `json:"vmID" yaml:"vmID"`
	vm.Allocation `yaml:",inline"`
}

// Network is the network of one tenant.
type Network struct {
	Tenant                 string `json:"tenant" yaml:"tenant"`
	v1alpha1.NetworkStatus `yaml:",inline"`
}

// Formatter formats canopy resources for output.
type Formatter interface {
	FormatTenant(t *v1alpha1.Tenant) (string, error)

	FormatInstance(inst *v1alpha1.Instance) (string, error)
	FormatInstanceList(list []*v1alpha1.Instance) (string, error)

	FormatUsage(usage []Usage) (string, error)
	FormatQuota(reports []tenant.QuotaReport) (string, error)
	FormatNetwork(n Network) (string, error)

	// FormatCredential includes the password in every format.
	FormatCredential(c *tenant.Credential) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	switch Format(format) {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}

func setTenantTypeMeta(t *v1alpha1.Tenant) {
	if t.APIVersion == "" {
		t.APIVersion = v1alpha1.APIVersion
	}
	if t.Kind == "" {
		t.Kind = v1alpha1.TenantKind
	}
}

func setInstanceTypeMeta(inst *v1alpha1.Instance) {
	if inst.APIVersion == "" {
		inst.APIVersion = v1alpha1.APIVersion
	}
	if inst.Kind == "" {
		inst.Kind = v1alpha1.InstanceKind
	}
}
