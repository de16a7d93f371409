// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import "strings"

func isUnixSocket(address string) bool {
	return strings.HasPrefix(address, "/") || strings.HasPrefix(address, "unix://")
}

func isUdpSocket(address string) bool {
	return strings.HasPrefix(address, "udp://")
}

// parseAddress derives the network from the address scheme. Plain
// host:port addresses and absolute paths work without a scheme.
func parseAddress(address string) (string, string) {
	switch {
	case isUnixSocket(address):
		return "unix", strings.TrimPrefix(address, "unix://")
	case isUdpSocket(address):
		return "udp", strings.TrimPrefix(address, "udp://")
	default:
		return "tcp", strings.TrimPrefix(address, "tcp://")
	}
}
