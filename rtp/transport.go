// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import (
	"net"

	"golang.org/x/net/ipv4"
)

// DefaultMulticastTTL is used when a destination resolves to a multicast
// address and the script/CLI does not override it.
const DefaultMulticastTTL = 16

// TransportOptions configures the two pre-connected UDP sockets a Pacer
// sends through.
type TransportOptions struct {
	// SourcePort, if non-zero, binds the data socket to this local port
	// and the control socket to SourcePort+1 before connecting.
	SourcePort int
	// MulticastTTL is applied to both sockets when the destination address
	// is multicast; zero means DefaultMulticastTTL.
	MulticastTTL int
	// RouterAlert requests the IP router-alert option on both sockets.
	RouterAlert bool
}

// Transport is the C8 UDP egress boundary: two pre-connected sockets, data
// on the destination port and control on the next port up, following RFC
// 3550's even/odd port convention (mirroring GoRTP's TransportUDP, trimmed
// to the send-only, always-connected case this engine needs).
type Transport struct {
	data *net.UDPConn
	ctrl *net.UDPConn
}

// NewUDPTransport dials both sockets toward dest (whose Port is the data
// port; the control port is dest.Port+1).
func NewUDPTransport(dest *net.UDPAddr, opts TransportOptions) (*Transport, error) {
	ttl := opts.MulticastTTL
	if ttl == 0 {
		ttl = DefaultMulticastTTL
	}

	data, err := dialOne(dest, 0, opts)
	if err != nil {
		return nil, err
	}
	ctrl, err := dialOne(dest, 1, opts)
	if err != nil {
		data.Close()
		return nil, err
	}

	if dest.IP.IsMulticast() {
		for _, c := range []*net.UDPConn{data, ctrl} {
			if err := ipv4.NewPacketConn(c).SetMulticastTTL(ttl); err != nil {
				data.Close()
				ctrl.Close()
				return nil, newSetupError("set multicast TTL: %w", err)
			}
		}
	}

	if opts.RouterAlert {
		for _, c := range []*net.UDPConn{data, ctrl} {
			if err := setRouterAlert(c); err != nil {
				data.Close()
				ctrl.Close()
				return nil, newSetupError("set IP router alert option: %w", err)
			}
		}
	}

	return &Transport{data: data, ctrl: ctrl}, nil
}

func dialOne(dest *net.UDPAddr, portOffset int, opts TransportOptions) (*net.UDPConn, error) {
	remote := &net.UDPAddr{IP: dest.IP, Port: dest.Port + portOffset}

	var local *net.UDPAddr
	if opts.SourcePort != 0 {
		local = &net.UDPAddr{Port: opts.SourcePort + portOffset}
	}

	conn, err := net.DialUDP("udp4", local, remote)
	if err != nil {
		return nil, newSetupError("dial %s: %w", remote, err)
	}
	return conn, nil
}

// Send writes buf to the data or control socket per its Type.
func (t *Transport) Send(buf *Buffered) error {
	conn := t.data
	if buf.Type == KindControl {
		conn = t.ctrl
	}
	_, err := conn.Write(buf.Bytes)
	return err
}

// Close releases both sockets.
func (t *Transport) Close() error {
	err := t.data.Close()
	if cerr := t.ctrl.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
