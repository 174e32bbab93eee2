// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// listenPair finds two adjacent free UDP ports (port, port+1) on loopback and
// returns listeners bound to both, retrying a few times since nothing
// reserves the pair atomically.
func listenPair(t *testing.T) (data, ctrl *net.UDPConn) {
	t.Helper()
	for attempt := 0; attempt < 10; attempt++ {
		d, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
		require.NoError(t, err)
		port := d.LocalAddr().(*net.UDPAddr).Port

		c, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port + 1})
		if err != nil {
			d.Close()
			continue
		}
		return d, c
	}
	t.Fatal("could not find a free adjacent UDP port pair")
	return nil, nil
}

func TestTransportSendsDataAndControlToCorrectPorts(t *testing.T) {
	dataLn, ctrlLn := listenPair(t)
	defer dataLn.Close()
	defer ctrlLn.Close()

	dest := dataLn.LocalAddr().(*net.UDPAddr)
	tr, err := NewUDPTransport(dest, TransportOptions{})
	require.NoError(t, err)
	defer tr.Close()

	require.NoError(t, tr.Send(&Buffered{Bytes: []byte("data-packet"), Type: KindData}))
	require.NoError(t, tr.Send(&Buffered{Bytes: []byte("ctrl-packet"), Type: KindControl}))

	dataLn.SetReadDeadline(time.Now().Add(time.Second))
	ctrlLn.SetReadDeadline(time.Now().Add(time.Second))

	buf := make([]byte, 64)
	n, _, err := dataLn.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, "data-packet", string(buf[:n]))

	n, _, err = ctrlLn.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, "ctrl-packet", string(buf[:n]))
}

func TestTransportBindsSourcePort(t *testing.T) {
	dataLn, ctrlLn := listenPair(t)
	defer dataLn.Close()
	defer ctrlLn.Close()
	dest := dataLn.LocalAddr().(*net.UDPAddr)

	srcData, srcCtrl := listenPair(t)
	srcPort := srcData.LocalAddr().(*net.UDPAddr).Port
	srcData.Close()
	srcCtrl.Close()

	tr, err := NewUDPTransport(dest, TransportOptions{SourcePort: srcPort})
	require.NoError(t, err)
	defer tr.Close()

	require.NoError(t, tr.Send(&Buffered{Bytes: []byte("x"), Type: KindData}))

	dataLn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 8)
	_, from, err := dataLn.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, srcPort, from.Port)
}
