// Package subnet allocates per-tenant subnets from an address pool.
//
// Allocation only consults the live tenant networks of the backend; there is
// no reservation ledger. Two concurrent allocations against the same pool can
// return the same subnet, so callers that care must serialize them.
package subnet

import (
	"errors"
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/sapcc/go-bits/logg"

	"github.com/jbweber/canopy/internal/naming"
	"github.com/jbweber/canopy/internal/one"
)

// ErrPoolExhausted is returned when every subnet of the pool is in use.
var ErrPoolExhausted = errors.New("address pool exhausted")

// maxNewBits bounds how many subnets a pool walk may visit.
const maxNewBits = 24

// Pool is an address pool split into equally sized per-tenant subnets.
type Pool struct {
	Base            *net.IPNet
	SubnetPrefixLen int
}

// NewPool validates a pool given as base address and prefix lengths.
func NewPool(base string, prefixLen, subnetPrefixLen int) (Pool, error) {
	ip := net.ParseIP(base)
	if ip == nil || ip.To4() == nil {
		return Pool{}, fmt.Errorf("invalid IPv4 pool base address %q", base)
	}
	if prefixLen < 0 || prefixLen > 32 {
		return Pool{}, fmt.Errorf("invalid pool prefix length %d", prefixLen)
	}
	if subnetPrefixLen <= prefixLen || subnetPrefixLen > 30 {
		return Pool{}, fmt.Errorf("subnet prefix length %d must be longer than pool prefix length %d and at most 30", subnetPrefixLen, prefixLen)
	}
	if subnetPrefixLen-prefixLen > maxNewBits {
		return Pool{}, fmt.Errorf("pool /%d split into /%d subnets has too many subnets", prefixLen, subnetPrefixLen)
	}
	mask := net.CIDRMask(prefixLen, 32)
	return Pool{
		Base:            &net.IPNet{IP: ip.To4().Mask(mask), Mask: mask},
		SubnetPrefixLen: subnetPrefixLen,
	}, nil
}

// ParsePool is NewPool for a pool in CIDR notation, e.g. "10.0.0.0/8".
func ParsePool(poolCIDR string, subnetPrefixLen int) (Pool, error) {
	ip, ipnet, err := net.ParseCIDR(poolCIDR)
	if err != nil {
		return Pool{}, fmt.Errorf("invalid address pool %q: %w", poolCIDR, err)
	}
	prefixLen, _ := ipnet.Mask.Size()
	return NewPool(ip.String(), prefixLen, subnetPrefixLen)
}

// String renders the pool in CIDR notation.
func (p Pool) String() string {
	return p.Base.String()
}

// Next returns the first subnet of the pool that no tenant network in vnets
// occupies. The pool's own base subnet (index 0) is reserved and never
// returned.
func Next(vnets []one.VNet, pool Pool) (*net.IPNet, error) {
	occupied := Occupied(vnets, pool.SubnetPrefixLen)

	prefixLen, _ := pool.Base.Mask.Size()
	newBits := pool.SubnetPrefixLen - prefixLen
	count := 1 << newBits
	for i := 1; i < count; i++ {
		candidate, err := cidr.Subnet(pool.Base, newBits, i)
		if err != nil {
			return nil, fmt.Errorf("failed to compute subnet %d of %s: %w", i, pool, err)
		}
		if !occupied[candidate.String()] {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("no free /%d subnet in %s: %w", pool.SubnetPrefixLen, pool, ErrPoolExhausted)
}

// Occupied returns the set of subnets, in CIDR notation, used by tenant
// internal networks. A network's subnet is derived from the first address of
// its first address range.
func Occupied(vnets []one.VNet, subnetPrefixLen int) map[string]bool {
	mask := net.CIDRMask(subnetPrefixLen, 32)
	occupied := make(map[string]bool)
	for _, vnet := range vnets {
		if !naming.IsInternalNetwork(vnet.Name) {
			continue
		}
		addr := vnet.FirstAddress()
		ip := net.ParseIP(addr).To4()
		if ip == nil {
			logg.Debug("skipping VNet %q without usable IPv4 address range (%q)", vnet.Name, addr)
			continue
		}
		occupied[(&net.IPNet{IP: ip.Mask(mask), Mask: mask}).String()] = true
	}
	return occupied
}

// Lister is the backend call Allocate needs.
type Lister interface {
	ListVNets() ([]one.VNet, error)
}

// Allocate lists the backend's virtual networks and returns the next free
// subnet of pool.
func Allocate(l Lister, pool Pool) (*net.IPNet, error) {
	vnets, err := l.ListVNets()
	if err != nil && !one.IsNotFound(err) {
		return nil, fmt.Errorf("failed to list virtual networks: %w", err)
	}
	return Next(vnets, pool)
}
