package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/sapcc/go-bits/assert"
	"github.com/sapcc/go-bits/must"

	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/onetest"
	"github.com/jbweber/canopy/internal/quota"
)

func TestSetQuota(t *testing.T) {
	b := onetest.New()
	m := newTestManager(b, nil)
	tn := must.ReturnT(m.Create(context.Background(), "acme", nil, nil))(t)

	must.SucceedT(t, m.SetQuota("acme", quota.Limits{quota.CPU: 50, quota.RAM: 1024, quota.Storage: 5120}))
	assert.DeepEqual(t, "templates", b.QuotaTemplates(tn.GroupID), []string{
		`VM=[CPU="50", MEMORY="1024", VMS="-1"]` + "\n" + `DATASTORE=[ID="-1", SIZE="5120", IMAGES="-1"]`,
	})
}

func TestSetQuota_UnknownComponentsOnly(t *testing.T) {
	b := onetest.New()
	m := newTestManager(b, nil)
	must.ReturnT(m.Create(context.Background(), "acme", nil, nil))(t)

	must.SucceedT(t, m.SetQuota("acme", quota.Limits{"gpu": 4}))
	if n := b.Count("one.group.quota"); n != 0 {
		t.Errorf("expected no quota call, got %d", n)
	}
}

func TestSetQuota_MissingGroup(t *testing.T) {
	m := newTestManager(onetest.New(), nil)
	err := m.SetQuota("ghost", quota.Limits{quota.CPU: 1})
	if !errors.Is(err, ErrGroupMissing) {
		t.Errorf("expected ErrGroupMissing, got %v", err)
	}
}

func TestGetQuotaUsage(t *testing.T) {
	b := onetest.New()
	m := newTestManager(b, nil)
	acme := must.ReturnT(m.Create(context.Background(), "acme", nil, nil))(t)
	beta := must.ReturnT(m.Create(context.Background(), "beta", nil, nil))(t)

	b.SetGroupQuotaSet(acme.GroupID, one.QuotaSet{
		VM:         &one.VMQuota{CPU: "50.00", CPUUsed: "4.00", Memory: "1024", MemoryUsed: "512", VMs: "-1"},
		Datastores: []one.DatastoreQuota{{ID: "1", Size: "5120", SizeUsed: "2048"}},
	})

	reports := must.ReturnT(m.GetQuotaUsage([]string{"acme", "ghost", "beta"}))(t)
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %+v", reports)
	}

	assert.DeepEqual(t, "acme", reports[0], QuotaReport{
		Tenant:  "acme",
		GroupID: acme.GroupID,
		Limits:  quota.Limits{quota.CPU: 50, quota.RAM: 1024, quota.Storage: 5120},
		Usage:   quota.Limits{quota.CPU: 4, quota.RAM: 512, quota.Storage: 2048},
	})
	// A fresh tenant has no quota object at all.
	assert.DeepEqual(t, "beta", reports[1], QuotaReport{
		Tenant:  "beta",
		GroupID: beta.GroupID,
		Limits:  quota.Limits{},
		Usage:   quota.Limits{},
	})
}

func TestGetQuotaUsage_ListFailure(t *testing.T) {
	b := onetest.New()
	b.FailOn("one.grouppool.info", onetest.ActionError("one.grouppool.info", "backend down"))
	m := newTestManager(b, nil)
	if _, err := m.GetQuotaUsage([]string{"acme"}); err == nil {
		t.Error("expected error")
	}
}
