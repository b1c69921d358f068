package subnet

import (
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
)

// Layout describes how a tenant subnet is carved into a virtual network.
type Layout struct {
	CIDR           string
	NetworkAddress string
	NetworkMask    string

	// Gateway is the first usable address; the router takes it.
	Gateway string

	// FirstIP and Size define the address range: every address except the
	// network and broadcast addresses.
	FirstIP string
	Size    int
}

// LayoutFor computes the layout of an IPv4 subnet given in CIDR notation.
//
// Example: "10.0.1.0/24" → gateway 10.0.1.1, range 10.0.1.1 with 254 addresses.
func LayoutFor(subnetCIDR string) (Layout, error) {
	_, ipnet, err := net.ParseCIDR(subnetCIDR)
	if err != nil {
		return Layout{}, fmt.Errorf("invalid subnet %q: %w", subnetCIDR, err)
	}
	if ipnet.IP.To4() == nil {
		return Layout{}, fmt.Errorf("subnet %q is not IPv4", subnetCIDR)
	}
	total := cidr.AddressCount(ipnet)
	if total < 4 {
		return Layout{}, fmt.Errorf("subnet %q is too small for a gateway and hosts", subnetCIDR)
	}

	gateway, err := cidr.Host(ipnet, 1)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to compute gateway of %s: %w", ipnet, err)
	}
	network, _ := cidr.AddressRange(ipnet)

	return Layout{
		CIDR:           ipnet.String(),
		NetworkAddress: network.String(),
		NetworkMask:    net.IP(ipnet.Mask).String(),
		Gateway:        gateway.String(),
		FirstIP:        gateway.String(),
		Size:           int(total) - 2,
	}, nil
}
