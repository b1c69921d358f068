// Package network provisions and tears down a tenant's isolated network.
//
// A tenant network is three named backend objects:
//
//	{tenant}_internal  VXLAN virtual network carved from the address pool
//	{tenant}_router    virtual router bridging it to the external network
//	{tenant}_default   security group with the default firewall rules
//
// Provisioning is create-or-reuse for every object, so a retried call after
// a crash converges on the objects of the earlier run. Objects created by a
// failed call are removed again in reverse order before the error returns.
//
// Teardown waits for the router's appliance VM to be DONE before it deletes
// the virtual network: the backend keeps NIC leases until the VM is gone and
// refuses to delete a network with leases.
package network
