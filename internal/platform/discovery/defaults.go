// Package discovery holds the default addresses arena processes use to
// find each other.
package discovery

import (
	"strconv"
	"strings"
)

const (
	// ServiceArena is the battle gRPC service.
	ServiceArena = "arena"
	// ServiceArenaMetrics is the Prometheus scrape endpoint of arenad.
	ServiceArenaMetrics = "arena-metrics"
)

var ports = map[string]int{
	ServiceArena:        8092,
	ServiceArenaMetrics: 9092,
}

// DefaultAddr returns the in-network host:port for service, or "" when
// the service is unknown.
func DefaultAddr(service string) string {
	service = strings.TrimSpace(service)
	port, ok := ports[service]
	if !ok {
		return ""
	}
	return service + ":" + strconv.Itoa(port)
}

// DefaultListenAddr is DefaultAddr bound to every interface.
func DefaultListenAddr(service string) string {
	port, ok := ports[strings.TrimSpace(service)]
	if !ok {
		return ""
	}
	return ":" + strconv.Itoa(port)
}

// OrDefault returns value when set and the service default otherwise.
func OrDefault(value, service string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return DefaultAddr(service)
}
