package output

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/jbweber/canopy/api/v1alpha1"
	"github.com/jbweber/canopy/internal/quota"
	"github.com/jbweber/canopy/internal/tenant"
)

// TableFormatter formats resources as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

// table runs fn against a tabwriter and returns the flushed output.
func (f *TableFormatter) table(header string, fn func(w *tabwriter.Writer)) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, header)
	}
	fn(w)
	_ = w.Flush()
	return buf.String()
}

// FormatTenant formats a tenant as a table row.
func (f *TableFormatter) FormatTenant(t *v1alpha1.Tenant) (string, error) {
	return f.table("NAME\tPHASE\tGROUP\tVDC\tSUBNET\tAGE", func(w *tabwriter.Writer) {
		subnet := "-"
		if t.Status.Network != nil {
			subnet = t.Status.Network.Subnet
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Name, orDash(string(t.Status.Phase)), id(t.Status.GroupID), id(t.Status.VDCID),
			subnet, age(t.CreationTimestamp))
	}), nil
}

// FormatInstance formats a single instance as a table row.
func (f *TableFormatter) FormatInstance(inst *v1alpha1.Instance) (string, error) {
	return f.FormatInstanceList([]*v1alpha1.Instance{inst})
}

// FormatInstanceList formats a list of instances as a table.
func (f *TableFormatter) FormatInstanceList(list []*v1alpha1.Instance) (string, error) {
	if len(list) == 0 {
		return "No instances found\n", nil
	}
	return f.table("ID\tNAME\tTENANT\tPHASE\tSTATE\tIP\tVCPU\tMEMORY\tDISK\tAGE", func(w *tabwriter.Writer) {
		for _, inst := range list {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				id(inst.Status.VMID), inst.Name, orDash(inst.Spec.Tenant),
				orDash(string(inst.Status.Phase)), orDash(inst.Status.State), orDash(inst.Status.IP),
				inst.Spec.VCPU, formatMB(inst.Spec.MemoryMB), formatMB(inst.Spec.DiskMB),
				age(inst.CreationTimestamp))
		}
	}), nil
}

// FormatUsage formats instance allocations as a table.
func (f *TableFormatter) FormatUsage(usage []Usage) (string, error) {
	if len(usage) == 0 {
		return "No instances found\n", nil
	}
	return f.table("ID\tVCPU\tMEMORY\tDISK", func(w *tabwriter.Writer) {
		for _, u := range usage {
			_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", u.VMID, u.VCPU, formatMB(u.MemoryMB), formatMB(u.DiskMB))
		}
	}), nil
}

// FormatQuota formats one row per tenant and quota component. Components
// without limit and usage are left out.
func (f *TableFormatter) FormatQuota(reports []tenant.QuotaReport) (string, error) {
	if len(reports) == 0 {
		return "No tenants found\n", nil
	}
	return f.table("TENANT\tCOMPONENT\tLIMIT\tUSAGE", func(w *tabwriter.Writer) {
		for _, r := range reports {
			for _, c := range quota.Components() {
				limit, hasLimit := r.Limits[c]
				used, hasUsage := r.Usage[c]
				if !hasLimit && !hasUsage {
					continue
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Tenant, c, formatLimit(limit, hasLimit), formatLimit(used, hasUsage))
			}
		}
	}), nil
}

// FormatNetwork formats the network of a tenant as a table row.
func (f *TableFormatter) FormatNetwork(n Network) (string, error) {
	return f.table("TENANT\tVNET\tSUBNET\tGATEWAY\tROUTER\tROUTER VM\tSECURITY GROUP", func(w *tabwriter.Writer) {
		sg := "-"
		if n.SecurityGroupID != nil {
			sg = strconv.Itoa(*n.SecurityGroupID)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s (%d)\t%s\t%s\t%s\t%s\t%s\n",
			n.Tenant, n.VNetName, n.VNetID, n.Subnet, orDash(n.Gateway),
			id(n.RouterID), id(n.RouterVMID), sg)
	}), nil
}

// FormatCredential formats an admin credential as a table row.
func (f *TableFormatter) FormatCredential(c *tenant.Credential) (string, error) {
	return f.table("TENANT\tUSERNAME\tPASSWORD", func(w *tabwriter.Writer) {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", c.Tenant, c.Username, c.Password)
	}), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// id renders backend IDs; negative IDs mean "none".
func id(v int) string {
	if v < 0 {
		return "-"
	}
	return strconv.Itoa(v)
}

func formatMB(mb int) string {
	if mb <= 0 {
		return "-"
	}
	if mb%1024 == 0 {
		return fmt.Sprintf("%d GiB", mb/1024)
	}
	return fmt.Sprintf("%d MiB", mb)
}

func formatLimit(v int, ok bool) string {
	switch {
	case !ok:
		return "-"
	case v == quota.Unlimited:
		return "unlimited"
	default:
		return strconv.Itoa(v)
	}
}

func age(ts v1alpha1.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return formatAge(time.Since(ts.Time))
}

// formatAge formats a duration as a human-readable age string.
// Examples: "5s", "2m", "3h", "4d", "2w", "1y"
func formatAge(d time.Duration) string {
	if d < 0 {
		return "unknown"
	}

	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd", days)
	}

	// Weeks up to ~2 months
	weeks := days / 7
	if weeks < 8 {
		return fmt.Sprintf("%dw", weeks)
	}

	years := days / 365
	if years > 0 {
		return fmt.Sprintf("%dy", years)
	}
	return fmt.Sprintf("%dd", days)
}
