package hostfuncs

import (
	"fmt"
	"net"
	"syscall"
)

// AddressPolicy decides which peer addresses outbound connections may reach.
type AddressPolicy struct {
	// AllowPrivate permits loopback, RFC 1918, and link-local peers.
	AllowPrivate bool
}

// CheckIP reports why ip is blocked, or nil when it may be dialed.
func (p AddressPolicy) CheckIP(ip net.IP) error {
	switch {
	case ip == nil:
		return fmt.Errorf("unparseable address")
	case ip.IsUnspecified():
		return fmt.Errorf("unspecified address %s blocked", ip)
	case ip.IsMulticast():
		return fmt.Errorf("multicast address %s blocked", ip)
	case p.AllowPrivate:
		return nil
	case ip.IsLoopback():
		return fmt.Errorf("loopback address %s blocked", ip)
	case ip.IsPrivate():
		return fmt.Errorf("private address %s blocked", ip)
	case ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast():
		return fmt.Errorf("link-local address %s blocked", ip)
	}
	return nil
}

// control validates the resolved peer right before connect, so DNS answers
// that change between lookup and dial cannot bypass the policy.
func (p AddressPolicy) control(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if err := p.CheckIP(net.ParseIP(host)); err != nil {
		return fmt.Errorf("SSRF protection: %w", err)
	}
	return nil
}

// Dialer returns a dialer enforcing the policy.
func (p AddressPolicy) Dialer() *net.Dialer {
	return &net.Dialer{Control: p.control}
}
