package network

import (
	"strconv"
	"testing"
	"time"

	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/onetest"
	"github.com/jbweber/canopy/internal/poll"
)

const testZone = 0

type fixture struct {
	backend     *onetest.Backend
	provisioner *Provisioner
	cfg         Config
	externalID  int
}

func testConfig() Config {
	return Config{
		PhyDev:          "eth1",
		DNS:             "1.1.1.1",
		Pool:            "10.0.0.0/8",
		SubnetPrefixLen: 24,
		SecurityGroupRules: []Rule{
			{Protocol: "TCP", Type: "inbound", Range: "22"},
			{Protocol: "ALL", Type: "outbound"},
		},
	}
}

func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()
	backend := onetest.New()
	cfg := testConfig()
	cfg.ExternalNetworkID = backend.AddVNet(one.VNet{
		Name:          "public",
		AddressRanges: []one.AddressRange{{ID: "0", Type: "IP4", IP: "192.0.2.10", Size: "50"}},
	})
	cfg.RouterTemplateID = backend.AddTemplate(one.VMTemplate{Name: "vrouter-appliance"})
	for _, m := range mutate {
		m(&cfg)
	}
	return &fixture{
		backend:     backend,
		provisioner: NewProvisioner(backend, cfg, testZone, poll.Options{Timeout: 2 * time.Second, Interval: time.Millisecond}),
		cfg:         cfg,
		externalID:  cfg.ExternalNetworkID,
	}
}

// vdc creates the tenant's VDC, as the tenant manager would before
// provisioning the network.
func (f *fixture) vdc(t *testing.T, tenant string) int {
	t.Helper()
	id, err := f.backend.CreateVDC(one.NewTemplate().Add("NAME", tenant).String())
	if err != nil {
		t.Fatalf("CreateVDC: %v", err)
	}
	return id
}

func indexOf(methods []string, method string) int {
	for i, m := range methods {
		if m == method {
			return i
		}
	}
	return -1
}

func lastIndexOf(methods []string, method string) int {
	for i := len(methods) - 1; i >= 0; i-- {
		if methods[i] == method {
			return i
		}
	}
	return -1
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
