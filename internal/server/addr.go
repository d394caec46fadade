package server

import (
	"net"
	"net/netip"
)

// addrFromUDP extracts a netip.Addr from a net.UDPAddr without the
// allocation a String()/ParseAddr round trip would cost.
func addrFromUDP(addr *net.UDPAddr) (netip.Addr, bool) {
	if addr == nil {
		return netip.Addr{}, false
	}
	ip, ok := netip.AddrFromSlice(addr.IP)
	if !ok {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}
