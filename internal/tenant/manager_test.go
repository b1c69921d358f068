package tenant

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/sapcc/go-bits/assert"
	"github.com/sapcc/go-bits/must"

	"github.com/jbweber/canopy/internal/network"
	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/onetest"
	"github.com/jbweber/canopy/internal/poll"
	"github.com/jbweber/canopy/internal/quota"
)

func newTestManager(b *onetest.Backend, net networkProvisioner) *Manager {
	return NewManager(b, net, 0, quota.Options{})
}

// newNetworkedManager wires a real network provisioner against the fake
// backend.
func newNetworkedManager(t *testing.T) (*Manager, *onetest.Backend) {
	t.Helper()
	b := onetest.New()
	external := b.AddVNet(one.VNet{
		Name:          "public",
		AddressRanges: []one.AddressRange{{ID: "0", Type: "IP4", IP: "192.0.2.10", Size: "50"}},
	})
	routerTemplate := b.AddTemplate(one.VMTemplate{Name: "vrouter-appliance"})
	cfg := network.Config{
		ExternalNetworkID:  external,
		RouterTemplateID:   routerTemplate,
		PhyDev:             "eth1",
		Pool:               "10.0.0.0/8",
		SubnetPrefixLen:    24,
		SecurityGroupRules: []network.Rule{{Protocol: "TCP", Type: "inbound", Range: "22"}},
	}
	wait := poll.Options{Timeout: 2 * time.Second, Interval: time.Millisecond}
	return newTestManager(b, network.NewProvisioner(b, cfg, 0, wait)), b
}

func TestCreate_NewTenant(t *testing.T) {
	b := onetest.New()
	m := newTestManager(b, nil)

	tn := must.ReturnT(m.Create(context.Background(), "acme", []int{100, 101}, nil))(t)

	assert.DeepEqual(t, "group", tn.GroupID, b.Lookup(one.KindGroup, "acme"))
	assert.DeepEqual(t, "vdc", tn.VDCID, b.Lookup(one.KindVDC, "acme"))
	assert.DeepEqual(t, "vdc clusters", b.VDCClusters(tn.VDCID), []int{100, 101})
	if tn.Network != nil {
		t.Error("no network expected")
	}

	vdcs := must.ReturnT(b.ListVDCs())(t)
	if len(vdcs) != 1 || !slices.Contains(vdcs[0].GroupIDs, tn.GroupID) {
		t.Errorf("group not linked to VDC: %+v", vdcs)
	}
}

func TestCreate_Idempotent(t *testing.T) {
	m, b := newNetworkedManager(t)
	ctx := context.Background()

	first := must.ReturnT(m.Create(ctx, "acme", []int{100}, &NetworkOptions{}))(t)
	second := must.ReturnT(m.Create(ctx, "acme", []int{100}, &NetworkOptions{}))(t)

	assert.DeepEqual(t, "group", second.GroupID, first.GroupID)
	assert.DeepEqual(t, "vdc", second.VDCID, first.VDCID)
	assert.DeepEqual(t, "network", *second.Network, *first.Network)

	groups := must.ReturnT(b.ListGroups())(t)
	vdcs := must.ReturnT(b.ListVDCs())(t)
	assert.DeepEqual(t, "group count", len(groups), 1)
	assert.DeepEqual(t, "vdc count", len(vdcs), 1)
	assert.DeepEqual(t, "router instantiations", b.Count("one.vrouter.instantiate"), 1)
	assert.DeepEqual(t, "vdc clusters", b.VDCClusters(first.VDCID), []int{100})
}

func TestCreate_InvalidName(t *testing.T) {
	b := onetest.New()
	m := newTestManager(b, nil)
	if _, err := m.Create(context.Background(), "bad name", nil, nil); err == nil {
		t.Fatal("expected error")
	}
	if len(b.Calls()) != 0 {
		t.Errorf("no backend calls expected, got %v", b.Methods())
	}
}

func TestCreate_NetworkWithoutProvisioner(t *testing.T) {
	b := onetest.New()
	m := newTestManager(b, nil)
	if _, err := m.Create(context.Background(), "acme", nil, &NetworkOptions{}); err == nil {
		t.Fatal("expected error")
	}
	if b.Lookup(one.KindGroup, "acme") >= 0 {
		t.Error("group must not be created")
	}
}

func TestCreate_Rollback(t *testing.T) {
	tests := []struct {
		name        string
		failMethod  string
		wantDeletes []string
	}{
		{
			name:        "VDC allocation fails",
			failMethod:  "one.vdc.allocate",
			wantDeletes: []string{"one.group.delete"},
		},
		{
			name:        "group link fails",
			failMethod:  "one.vdc.addgroup",
			wantDeletes: []string{"one.vdc.delete", "one.group.delete"},
		},
		{
			name:        "cluster attach fails",
			failMethod:  "one.vdc.addcluster",
			wantDeletes: []string{"one.vdc.delete", "one.group.delete"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := onetest.New()
			b.FailOn(tt.failMethod, onetest.ActionError(tt.failMethod, "backend failure"))
			m := newTestManager(b, nil)

			if _, err := m.Create(context.Background(), "acme", []int{100}, nil); err == nil {
				t.Fatal("expected error")
			}

			var deletes []string
			for _, method := range b.Methods() {
				if method == "one.vdc.delete" || method == "one.group.delete" {
					deletes = append(deletes, method)
				}
			}
			assert.DeepEqual(t, "rollback calls", deletes, tt.wantDeletes)
			if b.Lookup(one.KindGroup, "acme") >= 0 || b.Lookup(one.KindVDC, "acme") >= 0 {
				t.Error("objects left behind")
			}
		})
	}
}

func TestCreate_RollbackKeepsReusedGroup(t *testing.T) {
	b := onetest.New()
	existing := must.ReturnT(b.CreateGroup("acme"))(t)
	b.FailOn("one.vdc.allocate", onetest.ActionError("one.vdc.allocate", "backend failure"))

	m := newTestManager(b, nil)
	if _, err := m.Create(context.Background(), "acme", nil, nil); err == nil {
		t.Fatal("expected error")
	}
	assert.DeepEqual(t, "group", b.Lookup(one.KindGroup, "acme"), existing)
}

func TestCreate_NetworkFailureRollsBack(t *testing.T) {
	b := onetest.New()
	net := newMockNetwork()
	net.provisionFunc = func(context.Context, network.Request) (*network.TenantNetwork, error) {
		return nil, errors.New("router did not boot")
	}
	m := newTestManager(b, net)

	_, err := m.Create(context.Background(), "acme", []int{100}, &NetworkOptions{Subnet: "10.9.0.0/24"})
	if err == nil {
		t.Fatal("expected error")
	}
	assert.DeepEqual(t, "provision calls", len(net.provisionCalls), 1)
	assert.DeepEqual(t, "requested subnet", net.provisionCalls[0].Subnet, "10.9.0.0/24")
	if b.Lookup(one.KindGroup, "acme") >= 0 || b.Lookup(one.KindVDC, "acme") >= 0 {
		t.Error("group and VDC must be removed after network failure")
	}
}

// TestCreate_RollbackCompleteness fails the router instantiation and then
// checks that nothing of the tenant is left and it can still be deleted.
func TestCreate_RollbackCompleteness(t *testing.T) {
	m, b := newNetworkedManager(t)
	ctx := context.Background()
	b.FailOn("one.vrouter.instantiate", onetest.ActionError("one.vrouter.instantiate", "no capacity"))

	if _, err := m.Create(ctx, "acme", []int{100}, &NetworkOptions{}); err == nil {
		t.Fatal("expected error")
	}
	b.Recover("one.vrouter.instantiate")

	must.SucceedT(t, m.Delete(ctx, "acme"))
	for _, kind := range []string{one.KindGroup, one.KindVDC} {
		if b.Lookup(kind, "acme") >= 0 {
			t.Errorf("%s acme left behind", kind)
		}
	}
	for kind, name := range map[string]string{
		one.KindVNet:          "acme_internal",
		one.KindVirtualRouter: "acme_router",
		one.KindSecurityGroup: "acme_default",
	} {
		if b.Lookup(kind, name) >= 0 {
			t.Errorf("%s %s left behind", kind, name)
		}
	}
}

func TestDelete_Order(t *testing.T) {
	m, b := newNetworkedManager(t)
	ctx := context.Background()
	must.ReturnT(m.Create(ctx, "acme", []int{100}, &NetworkOptions{}))(t)
	must.ReturnT(m.EnsureAdmin("acme"))(t)

	b.ResetCalls()
	must.SucceedT(t, m.Delete(ctx, "acme"))

	var deletes []string
	for _, method := range b.Methods() {
		switch method {
		case "one.vrouter.delete", "one.vn.delete", "one.secgroup.delete",
			"one.user.delete", "one.vdc.delete", "one.group.delete":
			deletes = append(deletes, method)
		}
	}
	assert.DeepEqual(t, "delete order", deletes, []string{
		"one.vrouter.delete",
		"one.vn.delete",
		"one.secgroup.delete",
		"one.user.delete",
		"one.vdc.delete",
		"one.group.delete",
	})
	if b.Lookup(one.KindUser, "acme_admin") >= 0 {
		t.Error("admin user left behind")
	}
}

func TestDelete_Partial(t *testing.T) {
	b := onetest.New()
	net := newMockNetwork()
	m := newTestManager(b, net)

	// Only the group survived an earlier interrupted delete.
	must.ReturnT(b.CreateGroup("acme"))(t)
	must.SucceedT(t, m.Delete(context.Background(), "acme"))
	if b.Lookup(one.KindGroup, "acme") >= 0 {
		t.Error("group left behind")
	}
	assert.DeepEqual(t, "teardown calls", net.teardownCalls, []string{"acme"})

	// Nothing left at all.
	must.SucceedT(t, m.Delete(context.Background(), "acme"))
	if b.Count("one.vdc.delete") != 0 {
		t.Error("no VDC delete expected")
	}
}

func TestDelete_TeardownFailureKeepsGroup(t *testing.T) {
	b := onetest.New()
	net := newMockNetwork()
	net.teardownFunc = func(context.Context, string) error { return errors.New("router stuck") }
	m := newTestManager(b, net)
	must.ReturnT(m.Create(context.Background(), "acme", nil, nil))(t)

	if err := m.Delete(context.Background(), "acme"); err == nil {
		t.Fatal("expected error")
	}
	if b.Lookup(one.KindGroup, "acme") < 0 || b.Lookup(one.KindVDC, "acme") < 0 {
		t.Error("group and VDC must survive a failed network teardown")
	}
}
