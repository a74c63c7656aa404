package extract

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// ErrBlockedHost is returned when a URL resolves to a loopback, private or
// otherwise non-public address
var ErrBlockedHost = errors.New("address not allowed")

// publicOnly is a net.Dialer Control hook. It runs after name resolution,
// so redirects and DNS answers pointing inward are refused too.
func publicOnly(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedHost, address)
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublic(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedHost, host)
	}
	return nil
}

func isPublic(ip net.IP) bool {
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast())
}

// newFetchClient builds the page fetching client. Unless allowPrivate is set,
// connections may only reach public addresses and no proxy is used.
func newFetchClient(allowPrivate bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !allowPrivate {
		dialer := &net.Dialer{
			Timeout:   fetchTimeout,
			KeepAlive: 30 * time.Second,
			Control:   publicOnly,
		}
		transport.Proxy = nil
		transport.DialContext = dialer.DialContext
	}
	return &http.Client{Timeout: fetchTimeout, Transport: transport}
}
