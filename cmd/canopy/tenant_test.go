package main

import (
	"strings"
	"testing"
)

func TestTenantDeleteHelp_Order(t *testing.T) {
	// Matches the order of tenant.Manager.Delete and network.Provisioner.Teardown.
	order := []string{"router (", "network,", "security group,", "administrator,", "VDC and group"}

	last := -1
	for _, object := range order {
		idx := strings.Index(tenantDeleteCmd.Long, object)
		if idx < 0 {
			t.Fatalf("help text does not mention %q:\n%s", object, tenantDeleteCmd.Long)
		}
		if idx < last {
			t.Errorf("%q is listed out of order:\n%s", object, tenantDeleteCmd.Long)
		}
		last = idx
	}
}
