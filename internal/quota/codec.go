// Package quota translates between abstract component limits and the
// backend's per-section quota templates.
//
// Components map onto backend sections as follows:
//
//	cpu         -> VM/CPU
//	ram         -> VM/MEMORY          (MiB)
//	storage     -> DATASTORE/SIZE     (MiB, summed across datastores)
//	floating_ip -> NETWORK/LEASES     (summed across networks)
//
// A limit of -1 means unlimited. Values are backend-native; unit conversion
// is the caller's job.
package quota

import (
	"math"
	"strconv"
	"strings"

	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/internal/one"
)

// Component is an abstract quota key.
type Component string

// Known components.
const (
	CPU        Component = "cpu"
	RAM        Component = "ram"
	Storage    Component = "storage"
	FloatingIP Component = "floating_ip"
)

// Unlimited is the limit value that disables a quota.
const Unlimited = -1

// Limits maps components to limits or usage values.
type Limits map[Component]int

// Components returns all known components in template order.
func Components() []Component {
	return []Component{CPU, RAM, Storage, FloatingIP}
}

// IsKnown reports whether c is a known component.
func IsKnown(c Component) bool {
	switch c {
	case CPU, RAM, Storage, FloatingIP:
		return true
	}
	return false
}

// Options tune the generated template.
type Options struct {
	// DatastoreID is the ID used in DATASTORE clauses. Defaults to "-1".
	DatastoreID string
	// NetworkID is the ID used in NETWORK clauses. Defaults to "-1".
	NetworkID string
}

func (o Options) datastoreID() string {
	if o.DatastoreID == "" {
		return "-1"
	}
	return o.DatastoreID
}

func (o Options) networkID() string {
	if o.NetworkID == "" {
		return "-1"
	}
	return o.NetworkID
}

// Encode builds a quota template with one clause per backend section.
// Unknown components are skipped with a warning. If no known component is
// present the template is empty and no backend call should be made.
func Encode(limits Limits, opts Options) *one.Template {
	for c := range limits {
		if !IsKnown(c) {
			logg.Info("Warning: ignoring unknown quota component %q", string(c))
		}
	}

	tpl := one.NewTemplate()

	cpu, hasCPU := limits[CPU]
	ram, hasRAM := limits[RAM]
	if hasCPU || hasRAM {
		var pairs []one.Pair
		if hasCPU {
			pairs = append(pairs, one.P("CPU", cpu))
		}
		if hasRAM {
			pairs = append(pairs, one.P("MEMORY", ram))
		}
		pairs = append(pairs, one.P("VMS", Unlimited))
		tpl.AddVector("VM", pairs...)
	}

	if storage, ok := limits[Storage]; ok {
		tpl.AddVector("DATASTORE",
			one.P("ID", opts.datastoreID()),
			one.P("SIZE", storage),
			one.P("IMAGES", Unlimited),
		)
	}

	if fip, ok := limits[FloatingIP]; ok {
		tpl.AddVector("NETWORK",
			one.P("ID", opts.networkID()),
			one.P("LEASES", fip),
		)
	}

	return tpl
}

// DecodeLimits extracts limits from a group's quota object. It returns an
// empty map when the backend reports no quota at all.
func DecodeLimits(q one.QuotaSet) Limits {
	return decode(q, false)
}

// DecodeUsage extracts current usage from a group's quota object.
func DecodeUsage(q one.QuotaSet) Limits {
	return decode(q, true)
}

func decode(q one.QuotaSet, usage bool) Limits {
	result := Limits{}
	if q.IsEmpty() {
		return result
	}

	if q.VM != nil {
		cpu, mem := q.VM.CPU, q.VM.Memory
		if usage {
			cpu, mem = q.VM.CPUUsed, q.VM.MemoryUsed
		}
		if v, ok := parseNumber(cpu); ok {
			result[CPU] = v
		}
		if v, ok := parseNumber(mem); ok {
			result[RAM] = v
		}
	}

	if len(q.Datastores) > 0 {
		values := make([]string, 0, len(q.Datastores))
		for _, ds := range q.Datastores {
			if usage {
				values = append(values, ds.SizeUsed)
			} else {
				values = append(values, ds.Size)
			}
		}
		result[Storage] = sum(values)
	}

	if len(q.Networks) > 0 {
		values := make([]string, 0, len(q.Networks))
		for _, n := range q.Networks {
			if usage {
				values = append(values, n.LeasesUsed)
			} else {
				values = append(values, n.Leases)
			}
		}
		result[FloatingIP] = sum(values)
	}

	return result
}

// sum adds the entries of one section. A negative entry (unlimited or
// default) lifts the bound of the whole section, so the result is Unlimited
// as soon as one entry is negative or when no entry parses.
func sum(values []string) int {
	total, counted := 0, 0
	for _, s := range values {
		v, ok := parseNumber(s)
		if !ok {
			continue
		}
		if v < 0 {
			return Unlimited
		}
		total += v
		counted++
	}
	if counted == 0 {
		return Unlimited
	}
	return total
}

// parseNumber accepts integer or float representations and truncates.
func parseNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		logg.Info("Warning: ignoring non-numeric quota value %q", s)
		return 0, false
	}
	return int(math.Trunc(f)), true
}
