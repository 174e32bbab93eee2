//go:build windows

// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import (
	"fmt"
	"net"
)

func setRouterAlert(conn *net.UDPConn) error {
	return fmt.Errorf("router alert option is not supported on windows")
}
