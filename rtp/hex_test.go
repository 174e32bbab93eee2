// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeHexBasic(t *testing.T) {
	assert.Equal(t, []byte{0xAA}, DecodeHex("AA"))
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, DecodeHex("deadbeef"))
}

func TestDecodeHexSkipsWhitespace(t *testing.T) {
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, DecodeHex("de ad\tbe\nef"))
}

func TestDecodeHexIgnoresOddTrailingNibble(t *testing.T) {
	assert.Equal(t, []byte{0xAB}, DecodeHex("AB C"))
}

func TestDecodeHexSkipsNonHexSilently(t *testing.T) {
	assert.Equal(t, []byte{0xAB}, DecodeHex("A!B"))
}

func TestHexRoundTripIdentityOnEvenLength(t *testing.T) {
	in := "0011223344556677deadbeef"
	assert.Equal(t, in, EncodeHex(DecodeHex(in)))
}
