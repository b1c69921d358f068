package quota

import (
	"strings"
	"testing"

	"github.com/sapcc/go-bits/assert"

	"github.com/jbweber/canopy/internal/one"
)

func TestEncode_ComputeAndStorage(t *testing.T) {
	tpl := Encode(Limits{CPU: 50, RAM: 1024, Storage: 5120}, Options{})
	got := tpl.String()

	if !strings.Contains(got, `VM=[CPU="50", MEMORY="1024", VMS="-1"]`) {
		t.Errorf("missing VM clause in:\n%s", got)
	}
	if !strings.Contains(got, `DATASTORE=[ID="-1", SIZE="5120", IMAGES="-1"]`) {
		t.Errorf("missing DATASTORE clause in:\n%s", got)
	}
	if strings.Contains(got, "NETWORK=") {
		t.Errorf("unexpected NETWORK clause in:\n%s", got)
	}
	if n := strings.Count(got, "VM=["); n != 1 {
		t.Errorf("expected exactly one VM clause, got %d", n)
	}
}

func TestEncode_FloatingIP(t *testing.T) {
	tpl := Encode(Limits{FloatingIP: 4}, Options{NetworkID: "0"})
	assert.DeepEqual(t, "template", tpl.String(), `NETWORK=[ID="0", LEASES="4"]`)
}

func TestEncode_OnlyRAM(t *testing.T) {
	tpl := Encode(Limits{RAM: 2048}, Options{})
	assert.DeepEqual(t, "template", tpl.String(), `VM=[MEMORY="2048", VMS="-1"]`)
}

func TestEncode_UnknownOnly(t *testing.T) {
	tpl := Encode(Limits{"gpu": 2, "licenses": 1}, Options{})
	if !tpl.IsEmpty() {
		t.Errorf("expected empty template, got %q", tpl.String())
	}
}

func TestEncode_Empty(t *testing.T) {
	if tpl := Encode(nil, Options{}); !tpl.IsEmpty() {
		t.Errorf("expected empty template, got %q", tpl.String())
	}
}

func TestDecode_NoQuotaObject(t *testing.T) {
	assert.DeepEqual(t, "limits", DecodeLimits(one.QuotaSet{}), Limits{})
	assert.DeepEqual(t, "usage", DecodeUsage(one.QuotaSet{}), Limits{})
}

func TestDecode_SumsSections(t *testing.T) {
	q := one.QuotaSet{
		VM: &one.VMQuota{CPU: "50.00", CPUUsed: "2.75", Memory: "1024", MemoryUsed: "512", VMs: "-1"},
		Datastores: []one.DatastoreQuota{
			{ID: "1", Size: "3072", SizeUsed: "1024"},
			{ID: "100", Size: "2048", SizeUsed: "512"},
		},
		Networks: []one.NetworkQuota{
			{ID: "0", Leases: "4", LeasesUsed: "1"},
			{ID: "7", Leases: "2", LeasesUsed: "2"},
		},
	}

	assert.DeepEqual(t, "limits", DecodeLimits(q), Limits{CPU: 50, RAM: 1024, Storage: 5120, FloatingIP: 6})
	assert.DeepEqual(t, "usage", DecodeUsage(q), Limits{CPU: 2, RAM: 512, Storage: 1536, FloatingIP: 3})
}

func TestDecode_UnlimitedStorage(t *testing.T) {
	q := one.QuotaSet{Datastores: []one.DatastoreQuota{{ID: "1", Size: "-1", SizeUsed: "0"}}}
	assert.DeepEqual(t, "limits", DecodeLimits(q), Limits{Storage: Unlimited})
	assert.DeepEqual(t, "usage", DecodeUsage(q), Limits{Storage: 0})
}

func TestDecode_UnlimitedEntryWins(t *testing.T) {
	q := one.QuotaSet{
		Datastores: []one.DatastoreQuota{
			{ID: "1", Size: "-1", SizeUsed: "40"},
			{ID: "2", Size: "100", SizeUsed: "60"},
		},
		Networks: []one.NetworkQuota{
			{ID: "0", Leases: "4", LeasesUsed: "1"},
			{ID: "5", Leases: "-1", LeasesUsed: "2"},
		},
	}
	assert.DeepEqual(t, "limits", DecodeLimits(q), Limits{Storage: Unlimited, FloatingIP: Unlimited})
	assert.DeepEqual(t, "usage", DecodeUsage(q), Limits{Storage: 100, FloatingIP: 3})
}

// TestRoundTrip decodes the quota object the backend reports after an
// encoded template was applied.
func TestRoundTrip(t *testing.T) {
	tests := []Limits{
		{CPU: 50, RAM: 1024, Storage: 5120},
		{CPU: 8},
		{Storage: 10240, FloatingIP: 3},
		{CPU: Unlimited, RAM: Unlimited},
	}

	for _, limits := range tests {
		tpl := Encode(limits, Options{})
		if tpl.IsEmpty() {
			t.Fatalf("unexpected empty template for %v", limits)
		}
		decoded := DecodeLimits(echo(limits))
		for c, want := range limits {
			if got := decoded[c]; got != want {
				t.Errorf("%v: component %s decoded as %d, want %d", limits, c, got, want)
			}
		}
	}
}

// echo builds the quota object a backend stores for the given limits,
// including its float formatting of CPU.
func echo(limits Limits) one.QuotaSet {
	var q one.QuotaSet
	cpu, hasCPU := limits[CPU]
	ram, hasRAM := limits[RAM]
	if hasCPU || hasRAM {
		q.VM = &one.VMQuota{CPU: "-1", Memory: "-1", VMs: "-1"}
		if hasCPU {
			q.VM.CPU = formatFloat(cpu)
		}
		if hasRAM {
			q.VM.Memory = itoa(ram)
		}
	}
	if v, ok := limits[Storage]; ok {
		q.Datastores = []one.DatastoreQuota{{ID: "-1", Size: itoa(v), Images: "-1"}}
	}
	if v, ok := limits[FloatingIP]; ok {
		q.Networks = []one.NetworkQuota{{ID: "-1", Leases: itoa(v)}}
	}
	return q
}
