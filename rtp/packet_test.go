// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func tokens(line string) []string {
	return strings.Fields(line)
}

func TestParseRTPScenarioOne(t *testing.T) {
	buf := ParseRTP(tokens("v=2 p=0 x=0 cc=0 m=0 pt=96 seq=1 ts=0 ssrc=0x11223344 data=AA"))
	want := []byte{0x80, 0x60, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x11, 0x22, 0x33, 0x44, 0xAA}
	if !bytes.Equal(buf, want) {
		t.Error(fmt.Sprintf("got % x, want % x", buf, want))
	}
	if len(buf) != 13 {
		t.Error(fmt.Sprintf("got length %d, want 13", len(buf)))
	}
}

func TestParseRTPScenarioTwoNoPayload(t *testing.T) {
	buf := ParseRTP(tokens("pt=0 seq=0x1234 ts=0xcafebabe ssrc=0x1"))
	want := []byte{0x80, 0x00, 0x12, 0x34, 0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00, 0x00, 0x01}
	if !bytes.Equal(buf, want) {
		t.Error(fmt.Sprintf("got % x, want % x", buf, want))
	}
}

func TestParseRTPDefaultVersion(t *testing.T) {
	buf := ParseRTP(tokens("pt=0 seq=1 ts=1 ssrc=1"))
	if RTPVersion(buf) != 2 {
		t.Error(fmt.Sprintf("got version %d, want 2", RTPVersion(buf)))
	}
}

func TestParseRTPImplicitCSRCCount(t *testing.T) {
	buf := ParseRTP(tokens("pt=0 seq=1 ts=1 ssrc=1 csrc0=0xaa csrc2=0xbb"))
	if RTPCSRCCount(buf) != 3 {
		t.Error(fmt.Sprintf("got cc %d, want 3 (max index 2 + 1)", RTPCSRCCount(buf)))
	}
	if len(buf) != fixedHeaderLen+4*3 {
		t.Error(fmt.Sprintf("got length %d, want %d", len(buf), fixedHeaderLen+4*3))
	}
}

func TestParseRTPExplicitCCNotOverridden(t *testing.T) {
	buf := ParseRTP(tokens("cc=1 pt=0 seq=1 ts=1 ssrc=1 csrc0=0xaa"))
	if RTPCSRCCount(buf) != 1 {
		t.Error(fmt.Sprintf("got cc %d, want 1 (explicit cc must not be overridden)", RTPCSRCCount(buf)))
	}
}

func TestParseRTPExtensionHeader(t *testing.T) {
	buf := ParseRTP(tokens("cc=0 pt=0 seq=1 ts=1 ssrc=1 x=1 ext_type=0xBEDE ext_len=1 ext_data=01020304"))
	if !RTPExtended(buf) {
		t.Error("expected extension bit set")
	}
	got := buf[fixedHeaderLen : fixedHeaderLen+8]
	want := []byte{0xBE, 0xDE, 0x00, 0x01, 0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(got, want) {
		t.Error(fmt.Sprintf("got % x, want % x", got, want))
	}
}

func TestParseRTPLenOverride(t *testing.T) {
	buf := ParseRTP(tokens("pt=0 seq=1 ts=1 ssrc=1 data=AABBCC len=14"))
	if len(buf) != 14 {
		t.Error(fmt.Sprintf("got length %d, want 14", len(buf)))
	}
}

func TestParseRTPCSRCIndexOutOfRangeTruncated(t *testing.T) {
	buf := ParseRTP(tokens("pt=0 seq=1 ts=1 ssrc=1 csrc16=0xff csrc0=0x1"))
	if RTPCSRCCount(buf) != 1 {
		t.Error(fmt.Sprintf("got cc %d, want 1 (csrc16 must be silently truncated)", RTPCSRCCount(buf)))
	}
}
