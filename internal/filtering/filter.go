package filtering

import "net/netip"

// Filter answers whether a client is permitted to resolve a given
// hostname. The client address is threaded through the interface so a
// future per-client policy has somewhere to live; every implementation in
// this package ignores it today and blocks purely on name.
type Filter interface {
	IsBlocked(addr netip.Addr, name string) (bool, error)
}
