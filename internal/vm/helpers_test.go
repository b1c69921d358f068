package vm

import (
	"strconv"
	"testing"
	"time"

	"github.com/jbweber/canopy/api/v1alpha1"
	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/onetest"
	"github.com/jbweber/canopy/internal/poll"
)

const testSSHKey = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIIbJKZscbOLzBsgY5y2QupKW4A2kSDjMBQGPb1dChr+S test@example.com"

type fixture struct {
	backend    *onetest.Backend
	manager    *Manager
	groupID    int
	vnetID     int
	sgID       int
	templateID int
}

// newFixture seeds the objects of a provisioned tenant "acme".
func newFixture(t *testing.T, withSecurityGroup bool) *fixture {
	t.Helper()
	b := onetest.New()
	f := &fixture{backend: b, sgID: -1}

	var err error
	if f.groupID, err = b.CreateGroup("acme"); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	f.vnetID = b.AddVNet(one.VNet{
		Name:          "acme_internal",
		Gateway:       "10.0.1.1",
		AddressRanges: []one.AddressRange{{ID: "0", Type: "IP4", IP: "10.0.1.1", Size: "254"}},
	})
	if withSecurityGroup {
		if f.sgID, err = b.CreateSecurityGroup(`NAME="acme_default"`); err != nil {
			t.Fatalf("CreateSecurityGroup: %v", err)
		}
	}
	f.templateID = b.AddTemplate(one.VMTemplate{
		Name:  "ubuntu-24.04",
		Disks: []one.Attributes{{{Key: "IMAGE_ID", Value: "3"}, {Key: "SIZE", Value: "2048"}}},
	})

	wait := poll.Options{Timeout: 2 * time.Second, Interval: time.Millisecond}
	f.manager = NewManager(b, wait, wait)
	return f
}

func (f *fixture) instance() *v1alpha1.Instance {
	inst := v1alpha1.NewInstance("web-1")
	inst.Spec = v1alpha1.InstanceSpec{
		Tenant:     "acme",
		TemplateID: f.templateID,
		VCPU:       2,
		MemoryMB:   2048,
		DiskMB:     10240,
		SSHKey:     testSSHKey,
		ClusterIDs: []int{100},
	}
	return inst
}

// runningVM seeds a running VM with one disk.
func (f *fixture) runningVM(diskMB int) int {
	return f.backend.AddVM(one.VM{
		Name:     "web-1",
		GID:      f.groupID,
		State:    one.VMStateActive,
		LCMState: one.LCMRunning,
		CPU:      1,
		VCPU:     1,
		MemoryMB: 1024,
		Disks:    []one.Disk{{ID: 0, SizeMB: diskMB}},
	})
}

// squash drops consecutive repetitions, so that a poll loop shows up once
// however many times it checked.
func squash(methods []string) []string {
	var out []string
	for _, m := range methods {
		if len(out) == 0 || out[len(out)-1] != m {
			out = append(out, m)
		}
	}
	return out
}

func actions(b *onetest.Backend) []string {
	var out []string
	for _, c := range b.CallsTo("one.vm.action") {
		out = append(out, c.Args[0].(string))
	}
	return out
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
