//go:build !windows

// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import "testing"

func TestRouterAlertOptionBytes(t *testing.T) {
	want := []byte{148, 4, 0, 1}
	if len(routerAlertOption) != len(want) {
		t.Fatalf("routerAlertOption has length %d, want %d", len(routerAlertOption), len(want))
	}
	for i := range want {
		if routerAlertOption[i] != want[i] {
			t.Errorf("routerAlertOption[%d] = %d, want %d", i, routerAlertOption[i], want[i])
		}
	}
}
