package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// guessIpAddress takes a base IP address and a partial address string,
// and fills in the missing octets from the base address.
func guessIpAddress(baseAddress net.IP, partialAddr string) (net.IP, error) {
	ip := make(net.IP, len(baseAddress))
	copy(ip, baseAddress)
	octets := strings.Split(partialAddr, ".")
	if len(octets) == 1 && octets[0] == "" {
		return ip, nil
	}
	if len(octets) > len(ip) {
		return net.IP{}, fmt.Errorf("too many octets in %q", partialAddr)
	}
	for i := 0; i < len(octets); i++ {
		var octet byte
		_, err := fmt.Sscanf(octets[i], "%d", &octet)
		if err != nil {
			return net.IP{}, err
		}
		ip[len(ip)-len(octets)+i] = octet
	}
	return ip, nil
}

// splitHostPort splits an address into host and port, using defaultPort if no port is specified.
func splitHostPort(addr string, defaultPort int) (string, string, error) {
	ipaddr, port, err := net.SplitHostPort(addr)
	if err != nil {
		addr = addr + ":" + strconv.Itoa(defaultPort)
		ipaddr, port, err = net.SplitHostPort(addr)
		if err != nil {
			return "", "", err
		}
	}
	return ipaddr, port, nil
}

// resolveAddress completes what the user typed into a dialable address.
// Partial IPv4 addresses ("42", "15.42") take the missing octets from local,
// host names are kept as they are.
func resolveAddress(input string, local net.IP, defaultPort int) (string, error) {
	host, port, err := splitHostPort(strings.TrimSpace(input), defaultPort)
	if err != nil {
		return "", err
	}
	if host == "" {
		host = "localhost"
	} else if isPartialIPv4(host) {
		base := local.To4()
		if base == nil {
			return "", fmt.Errorf("cannot complete %q without a local IPv4 address", host)
		}
		ip, err := guessIpAddress(base, host)
		if err != nil {
			return "", err
		}
		host = ip.String()
	}
	return net.JoinHostPort(host, port), nil
}

func isPartialIPv4(host string) bool {
	for _, r := range host {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}
