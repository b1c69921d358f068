package tenant

import (
	"context"
	"sync"

	"github.com/jbweber/canopy/internal/network"
)

// mockNetwork is a mock implementation of the networkProvisioner interface for testing.
type mockNetwork struct {
	mu sync.Mutex

	// Configurable behavior
	provisionFunc func(ctx context.Context, req network.Request) (*network.TenantNetwork, error)
	teardownFunc  func(ctx context.Context, tenant string) error

	// Call tracking
	provisionCalls []network.Request
	teardownCalls  []string
}

// newMockNetwork creates a mock whose calls succeed.
func newMockNetwork() *mockNetwork {
	m := &mockNetwork{}
	m.provisionFunc = func(_ context.Context, req network.Request) (*network.TenantNetwork, error) {
		return &network.TenantNetwork{
			VNetID:          900,
			VNetName:        req.Tenant + "_internal",
			Subnet:          "10.0.1.0/24",
			Gateway:         "10.0.1.1",
			RouterID:        901,
			RouterVMID:      902,
			SecurityGroupID: -1,
		}, nil
	}
	m.teardownFunc = func(context.Context, string) error {
		return nil
	}
	return m
}

func (m *mockNetwork) Provision(ctx context.Context, req network.Request) (*network.TenantNetwork, error) {
	m.mu.Lock()
	m.provisionCalls = append(m.provisionCalls, req)
	m.mu.Unlock()
	return m.provisionFunc(ctx, req)
}

func (m *mockNetwork) Teardown(ctx context.Context, tenant string) error {
	m.mu.Lock()
	m.teardownCalls = append(m.teardownCalls, tenant)
	m.mu.Unlock()
	return m.teardownFunc(ctx, tenant)
}
