package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// BlockedAddressError reports a host that resolves to an address the importer may not reach.
type BlockedAddressError struct {
	Host string
	Addr netip.Addr
}

func (e *BlockedAddressError) Error() string {
	if e.Host == "" || e.Host == e.Addr.String() {
		return fmt.Sprintf("address %s is not publicly routable", e.Addr)
	}
	return fmt.Sprintf("host %s resolves to %s, which is not publicly routable", e.Host, e.Addr)
}

// reservedPrefixes are IPv4 ranges netip has no predicate for.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

// PublicAddr reports whether addr is a routable unicast address outside the
// loopback, private, link-local and reserved ranges.
func PublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() || addr.IsUnspecified() || addr.IsLoopback() || addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return false
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

// RequirePublicHost resolves the host of rawURL and fails with an invalid-URL
// Error when any of its addresses is not public.
func RequirePublicHost(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return &Error{URL: rawURL, Message: "invalid URL", Invalid: true, Cause: err}
	}
	host := parsed.Hostname()

	var addrs []netip.Addr
	if addr, err := netip.ParseAddr(host); err == nil {
		addrs = []netip.Addr{addr}
	} else {
		addrs, err = net.DefaultResolver.LookupNetIP(ctx, "ip", host)
		if err != nil {
			return &Error{URL: rawURL, Message: "host could not be resolved", Cause: err}
		}
	}
	for _, addr := range addrs {
		if !PublicAddr(addr) {
			return blockedError(rawURL, &BlockedAddressError{Host: host, Addr: addr.Unmap()})
		}
	}
	return nil
}

func blockedError(rawURL string, cause error) *Error {
	return &Error{URL: rawURL, Message: "URL points to a non-public address", Invalid: true, Cause: cause}
}

// dialControl runs after name resolution, so it also covers redirects and
// hosts whose DNS answer changes between the check and the connection.
func dialControl(_, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("unexpected dial address %q: %w", address, err)
	}
	if !PublicAddr(addrPort.Addr()) {
		return &BlockedAddressError{Addr: addrPort.Addr().Unmap()}
	}
	return nil
}

// newPublicTransport is an http.Transport that refuses to connect to non-public addresses.
// Proxies are disabled since a proxy would dial on the importer's behalf.
func newPublicTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   dialControl,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return transport
}

var publicTransport = newPublicTransport()

// asBlocked turns a transport failure caused by dialControl into an invalid-URL Error.
func asBlocked(rawURL string, err error) (*Error, bool) {
	var blocked *BlockedAddressError
	if errors.As(err, &blocked) {
		return blockedError(rawURL, blocked), true
	}
	return nil, false
}

// browserRequestAllowed decides whether headless Chrome may load rawURL.
// Inline schemes carry no network request and pass.
func browserRequestAllowed(ctx context.Context, rawURL string) error {
	scheme, _, ok := strings.Cut(rawURL, ":")
	if !ok {
		return &Error{URL: rawURL, Message: "invalid URL", Invalid: true}
	}
	switch strings.ToLower(scheme) {
	case "http", "https", "ws", "wss":
		return RequirePublicHost(ctx, rawURL)
	case "data", "blob", "about":
		return nil
	default:
		return &Error{URL: rawURL, Message: fmt.Sprintf("scheme %q is not allowed", scheme), Invalid: true}
	}
}
