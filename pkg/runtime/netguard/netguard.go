// Package netguard validates outbound connection attempts made by a
// running component against its materialized capability context,
// using go-connections/nat for host:port parsing.
package netguard

import (
	"net"

	"github.com/docker/go-connections/nat"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// Checker reports whether a host is allow-listed; satisfied by
// *policy.CapabilityContext.
type Checker interface {
	AllowsNetwork(host string) bool
}

// Guard validates a component's outbound "host:port" or bare-host
// connection target against its capability context before the
// runtime's network host function proceeds.
type Guard struct {
	caps Checker
}

// New creates a Guard backed by caps.
func New(caps Checker) *Guard {
	return &Guard{caps: caps}
}

// Allow validates target (either "host" or "host:port") and returns
// the bare host on success, or a capability_denied error. A malformed
// port segment is rejected before the allow-list check even runs.
func (g *Guard) Allow(target string) (string, error) {
	host := target
	if h, port, err := net.SplitHostPort(target); err == nil {
		if _, portErr := nat.ParsePort(port); portErr != nil {
			return "", wassetteerr.New(wassetteerr.CodeCapabilityDenied, "malformed port in connection target: "+target)
		}
		host = h
	}

	if !g.caps.AllowsNetwork(host) {
		return "", wassetteerr.CapabilityDenied("network", target)
	}
	return host, nil
}
