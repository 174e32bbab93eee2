//go:build !windows

// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import (
	"net"

	"golang.org/x/sys/unix"
)

// routerAlertOption is the 4-byte IP_OPTIONS router-alert option rtpsend.c
// installs on both sockets under -a: type 148 (copy|class0|20), length 4,
// value 0x0001 (RFC 2113).
var routerAlertOption = []byte{148, 4, 0, 1}

func setRouterAlert(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var setErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		setErr = unix.SetsockoptString(int(fd), unix.IPPROTO_IP, unix.IP_OPTIONS, string(routerAlertOption))
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return setErr
}
