package network

import (
	"context"
	"testing"

	"github.com/sapcc/go-bits/assert"
	"github.com/sapcc/go-bits/must"

	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/onetest"
)

func TestTeardown_WaitsForRouterVM(t *testing.T) {
	f := newFixture(t)
	f.backend.TerminateSteps = 3
	ctx := context.Background()
	n := must.ReturnT(f.provisioner.Provision(ctx, Request{Tenant: "acme", VDCID: f.vdc(t, "acme")}))(t)

	f.backend.ResetCalls()
	must.SucceedT(t, f.provisioner.Teardown(ctx, "acme"))

	methods := f.backend.Methods()
	routerDelete := indexOf(methods, "one.vrouter.delete")
	vnetDelete := indexOf(methods, "one.vn.delete")
	sgDelete := indexOf(methods, "one.secgroup.delete")
	if routerDelete < 0 || vnetDelete < 0 || sgDelete < 0 {
		t.Fatalf("missing delete calls: %v", methods)
	}
	if !(routerDelete < vnetDelete && vnetDelete < sgDelete) {
		t.Errorf("unexpected teardown order: %v", methods)
	}

	// The VNet delete happens only after the router VM was seen DONE.
	lastInfo := lastIndexOf(methods[:vnetDelete], "one.vm.info")
	if lastInfo < routerDelete {
		t.Fatalf("no VM polling between router and VNet delete: %v", methods)
	}
	polls := 0
	for _, m := range methods[routerDelete:vnetDelete] {
		if m == "one.vm.info" {
			polls++
		}
	}
	if polls < 3 {
		t.Errorf("expected the router VM to be polled until DONE, got %d polls", polls)
	}

	vm, _ := f.backend.VM(n.RouterVMID)
	assert.DeepEqual(t, "router VM state", vm.State, one.VMStateDone)
	remaining := map[string]string{
		one.KindVNet:          "acme_internal",
		one.KindVirtualRouter: "acme_router",
		one.KindSecurityGroup: "acme_default",
	}
	for kind, name := range remaining {
		if id := f.backend.Lookup(kind, name); id >= 0 {
			t.Errorf("%s %s still exists", kind, name)
		}
	}
}

func TestTeardown_Absent(t *testing.T) {
	f := newFixture(t)
	must.SucceedT(t, f.provisioner.Teardown(context.Background(), "ghost"))

	for _, m := range f.backend.Methods() {
		switch m {
		case "one.vrouter.delete", "one.vn.delete", "one.secgroup.delete":
			t.Errorf("unexpected %s for absent tenant", m)
		}
	}
}

func TestTeardown_PartialState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	must.ReturnT(f.provisioner.Provision(ctx, Request{Tenant: "acme", VDCID: f.vdc(t, "acme")}))(t)

	// A previous teardown removed the router and then crashed.
	routerID := f.backend.Lookup(one.KindVirtualRouter, "acme_router")
	must.SucceedT(t, f.provisioner.deleteRouter(ctx, "acme_router", routerID))

	must.SucceedT(t, f.provisioner.Teardown(ctx, "acme"))
	if f.backend.Lookup(one.KindVNet, "acme_internal") >= 0 {
		t.Error("VNet still exists")
	}
}

func TestTeardown_DeleteFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	must.ReturnT(f.provisioner.Provision(ctx, Request{Tenant: "acme", VDCID: f.vdc(t, "acme")}))(t)

	f.backend.FailOn("one.vn.delete", onetest.ActionError("one.vn.delete", "backend busy"))
	if err := f.provisioner.Teardown(ctx, "acme"); err == nil {
		t.Fatal("expected error")
	}
	if f.backend.Count("one.secgroup.delete") != 0 {
		t.Error("security group must not be deleted after a failed VNet delete")
	}

	f.backend.Recover("one.vn.delete")
	must.SucceedT(t, f.provisioner.Teardown(ctx, "acme"))
}

func TestLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, found, err := f.provisioner.Lookup("acme")
	if err != nil || found {
		t.Fatalf("Lookup before provision: found=%v err=%v", found, err)
	}

	n := must.ReturnT(f.provisioner.Provision(ctx, Request{Tenant: "acme", VDCID: f.vdc(t, "acme")}))(t)
	got, found, err := f.provisioner.Lookup("acme")
	if err != nil || !found {
		t.Fatalf("Lookup after provision: found=%v err=%v", found, err)
	}
	assert.DeepEqual(t, "network", *got, *n)

	status := got.Status()
	if status.SecurityGroupID == nil || *status.SecurityGroupID != n.SecurityGroupID {
		t.Errorf("unexpected security group in status: %+v", status)
	}
}
