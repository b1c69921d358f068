package network

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sapcc/go-bits/errext"

	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/subnet"
)

// Config holds the provisioning defaults for tenant networks.
type Config struct {
	// ExternalNetworkID is the uplink network of every router.
	ExternalNetworkID int `yaml:"external_network_id"`

	// RouterTemplateID is the VM template of the router appliance.
	RouterTemplateID int `yaml:"router_template_id"`

	// PhyDev is the physical device VXLAN traffic is sent through.
	PhyDev string `yaml:"phydev"`

	// DNS is announced to guests through the network context.
	DNS string `yaml:"dns,omitempty"`

	// Pool is the address pool tenant subnets are allocated from.
	Pool string `yaml:"pool"`

	// SubnetPrefixLen is the prefix length of every tenant subnet.
	SubnetPrefixLen int `yaml:"subnet_prefix_len"`

	// ClusterIDs are clusters the network is added to on top of the
	// tenant's own clusters.
	ClusterIDs []int `yaml:"cluster_ids,omitempty"`

	// SecurityGroupRules are the default firewall rules. Without rules no
	// security group is created.
	SecurityGroupRules []Rule `yaml:"security_group_rules,omitempty"`

	// SchedRequirements overrides the generated router placement.
	SchedRequirements string `yaml:"sched_requirements,omitempty"`
}

// Rule is one firewall rule of the default security group.
type Rule struct {
	// Protocol is TCP, UDP, ICMP, ICMPv6, IPSEC or ALL.
	Protocol string `yaml:"protocol"`

	// Type is inbound or outbound.
	Type string `yaml:"type"`

	// Range is a port list such as "22" or "80,443" or "1000:2000".
	Range string `yaml:"range,omitempty"`

	// IP and Size limit the rule to an address range.
	IP   string `yaml:"ip,omitempty"`
	Size int    `yaml:"size,omitempty"`
}

var (
	protocols = []string{"TCP", "UDP", "ICMP", "ICMPV6", "IPSEC", "ALL"}
	ruleTypes = []string{"inbound", "outbound"}
)

func (r Rule) pairs() []one.Pair {
	pairs := []one.Pair{
		one.P("PROTOCOL", strings.ToUpper(r.Protocol)),
		one.P("RULE_TYPE", strings.ToLower(r.Type)),
	}
	if r.Range != "" {
		pairs = append(pairs, one.P("RANGE", r.Range))
	}
	if r.IP != "" {
		pairs = append(pairs, one.P("IP", r.IP))
		if r.Size > 0 {
			pairs = append(pairs, one.P("SIZE", r.Size))
		}
	}
	return pairs
}

// AddressPool parses the configured address pool.
func (c Config) AddressPool() (subnet.Pool, error) {
	return subnet.ParsePool(c.Pool, c.SubnetPrefixLen)
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs errext.ErrorSet

	if c.ExternalNetworkID < 0 {
		errs.Addf("network.external_network_id must be non-negative")
	}
	if c.RouterTemplateID < 0 {
		errs.Addf("network.router_template_id must be non-negative")
	}
	if c.PhyDev == "" {
		errs.Addf("network.phydev is required")
	}
	if c.Pool == "" {
		errs.Addf("network.pool is required")
	} else if _, err := c.AddressPool(); err != nil {
		errs.Addf("network.pool: %w", err)
	}
	for i, r := range c.SecurityGroupRules {
		if !slices.Contains(protocols, strings.ToUpper(r.Protocol)) {
			errs.Addf("network.security_group_rules[%d]: unknown protocol %q", i, r.Protocol)
		}
		if !slices.Contains(ruleTypes, strings.ToLower(r.Type)) {
			errs.Addf("network.security_group_rules[%d]: type must be inbound or outbound, got %q", i, r.Type)
		}
	}

	if errs.IsEmpty() {
		return nil
	}
	return fmt.Errorf("invalid network configuration: %s", errs.Join(", "))
}
