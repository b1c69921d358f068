package tenant

import (
	"fmt"

	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/internal/identity"
	"github.com/jbweber/canopy/internal/naming"
	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/quota"
)

// QuotaReport holds the limits and usage of one tenant in backend units.
type QuotaReport struct {
	Tenant  string       `json:"tenant" yaml:"tenant"`
	GroupID int          `json:"groupID" yaml:"groupID"`
	Limits  quota.Limits `json:"limits" yaml:"limits"`
	Usage   quota.Limits `json:"usage" yaml:"usage"`
}

// SetQuota pushes limits to the tenant's group. Limits without a known
// component make no backend call.
func (m *Manager) SetQuota(name string, limits quota.Limits) error {
	groupID, err := m.groupID(name)
	if err != nil {
		return err
	}

	tpl := quota.Encode(limits, m.quotaOpts)
	if tpl.IsEmpty() {
		logg.Info("No known quota components for tenant %q, nothing to set", name)
		return nil
	}

	logg.Info("Setting quota of tenant %q (group %d)...", name, groupID)
	logg.Debug("Quota template:\n%s", tpl)
	if err := m.backend.SetGroupQuota(groupID, tpl.String()); err != nil {
		return fmt.Errorf("failed to set quota of group %d: %w", groupID, err)
	}
	return nil
}

// GetQuotaUsage reports limits and usage of each named tenant. Tenants
// whose group does not exist are logged and left out of the result.
func (m *Manager) GetQuotaUsage(names []string) ([]QuotaReport, error) {
	groups, err := m.backend.ListGroups()
	if err != nil && !one.IsNotFound(err) {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	list := func() ([]one.Group, error) { return groups, nil }

	reports := make([]QuotaReport, 0, len(names))
	for _, name := range names {
		groupID, found, _ := identity.ResolveByName(one.KindGroup, naming.For(name).Group, list)
		if !found {
			logg.Info("Group of tenant %q not found, skipping", name)
			continue
		}

		group, err := m.backend.GroupInfo(groupID)
		if err != nil {
			if one.IsNotFound(err) {
				logg.Info("Group of tenant %q disappeared, skipping", name)
				continue
			}
			return nil, fmt.Errorf("failed to get group %d: %w", groupID, err)
		}

		reports = append(reports, QuotaReport{
			Tenant:  name,
			GroupID: groupID,
			Limits:  quota.DecodeLimits(group.Quota),
			Usage:   quota.DecodeUsage(group.Quota),
		})
	}
	return reports, nil
}
