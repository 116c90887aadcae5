// Package sock implements the non-blocking TCP socket layer.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package sock

import (
	"net"
	"strconv"

	"github.com/skyrod/wirenet/cmn/cos"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const DefaultMTU = 1500

// ConnInfo is the resolved peer identity of a socket. Immutable after
// creation.
type ConnInfo struct {
	Addr unix.Sockaddr
	IP   string
	Port int
	MTU  int
}

func (ci *ConnInfo) String() string { return ci.IP + ":" + strconv.Itoa(ci.Port) }

// FromHost resolves host restricted to the protocol's address family and
// returns the first usable address with the port filled in.
func FromHost(host string, port int, proto Protocol) (*ConnInfo, error) {
	ips, err := net.LookupIP(host)
	if err != nil {
		return nil, cos.NewErrResolution(host, err)
	}
	for _, ip := range ips {
		switch proto {
		case IPv4:
			if v4 := ip.To4(); v4 != nil {
				sa := &unix.SockaddrInet4{Port: port}
				copy(sa.Addr[:], v4)
				return &ConnInfo{Addr: sa, IP: v4.String(), Port: port, MTU: DefaultMTU}, nil
			}
		case IPv6:
			if ip.To4() == nil && ip.To16() != nil {
				sa := &unix.SockaddrInet6{Port: port}
				copy(sa.Addr[:], ip.To16())
				return &ConnInfo{Addr: sa, IP: ip.String(), Port: port, MTU: DefaultMTU}, nil
			}
		}
	}
	return nil, cos.NewErrResolution(host, errors.Errorf("no usable %s address", proto))
}

// FromSockaddr extracts the IP string and port per address family.
func FromSockaddr(sa unix.Sockaddr) (*ConnInfo, error) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &ConnInfo{Addr: a, IP: net.IP(a.Addr[:]).String(), Port: a.Port, MTU: DefaultMTU}, nil
	case *unix.SockaddrInet6:
		return &ConnInfo{Addr: a, IP: net.IP(a.Addr[:]).String(), Port: a.Port, MTU: DefaultMTU}, nil
	case nil:
		return nil, cos.NewErrResolution("sockaddr", errors.New("invalid socket address"))
	}
	return nil, cos.NewErrResolution("sockaddr", errors.New("unsupported address family"))
}
