// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// RTP header bit layout, RFC 3550 §5.1. Mirrors the mask constants GoRTP
// keeps next to its DataPacket accessors, applied here to a plain byte
// buffer instead of a stateful packet type, since the wire buffer itself is
// what the script grammar addresses.
const (
	fixedHeaderLen = 12

	versionShift = 6
	paddingBit   = 0x20
	extensionBit = 0x10
	ccMask       = 0x0f

	markerBit = 0x80
	ptMask    = 0x7f

	defaultRTPVersion = 2
	maxCSRCIndex      = 15
)

// ParseRTP builds one RTP packet from the whitespace-separated key=value
// tokens following the RTP keyword on a script line. Ordering is free
// except that ext_type/ext_len/ext_data require cc already at its final
// value, and data requires both cc and ext_len already set — tokens write
// directly into the header at an offset computed from whatever cc/ext_len
// currently hold, so getting the order wrong produces a malformed packet
// rather than a diagnostic.
func ParseRTP(tokens []string) []byte {
	buf := make([]byte, fixedHeaderLen, 1500)
	buf[0] = defaultRTPVersion << versionShift

	var cc uint8
	var ccExplicit bool
	var maxCSRCSeen = -1

	var extWords uint16
	var extHeaderGiven bool

	var explicitLen int
	var lenExplicit bool
	var payloadLen int

	ensureLen := func(n int) {
		if len(buf) < n {
			grown := make([]byte, n)
			copy(grown, buf)
			buf = grown
		}
	}

	for _, tok := range tokens {
		key, val, ok := splitToken(tok)
		if !ok {
			continue
		}
		switch {
		case key == "v":
			v := uint8(parseUintLoose(val)) & 0x03
			buf[0] = buf[0]&^(0x03<<versionShift) | v<<versionShift
		case key == "p":
			setBit(buf, 0, paddingBit, parseUintLoose(val) != 0)
		case key == "x":
			setBit(buf, 0, extensionBit, parseUintLoose(val) != 0)
		case key == "cc":
			cc = uint8(parseUintLoose(val)) & ccMask
			ccExplicit = true
			buf[0] = buf[0]&^ccMask | cc
		case key == "m":
			setBit(buf, 1, markerBit, parseUintLoose(val) != 0)
		case key == "pt":
			buf[1] = buf[1]&markerBit | uint8(parseUintLoose(val))&ptMask
		case key == "seq":
			binary.BigEndian.PutUint16(buf[2:4], uint16(parseUintLoose(val)))
		case key == "ts":
			binary.BigEndian.PutUint32(buf[4:8], uint32(parseUintLoose(val)))
		case key == "ssrc":
			binary.BigEndian.PutUint32(buf[8:12], uint32(parseUintLoose(val)))
		case strings.HasPrefix(key, "csrc"):
			idx, err := strconv.Atoi(key[len("csrc"):])
			if err != nil || idx < 0 || idx > maxCSRCIndex {
				continue
			}
			if idx > maxCSRCSeen {
				maxCSRCSeen = idx
			}
			off := fixedHeaderLen + 4*idx
			ensureLen(off + 4)
			binary.BigEndian.PutUint32(buf[off:off+4], uint32(parseUintLoose(val)))
		case key == "ext_type":
			extHeaderGiven = true
			off := fixedHeaderLen + 4*int(cc)
			ensureLen(off + 4)
			binary.BigEndian.PutUint16(buf[off:off+2], uint16(parseUintLoose(val)))
		case key == "ext_len":
			extHeaderGiven = true
			extWords = uint16(parseUintLoose(val))
			off := fixedHeaderLen + 4*int(cc) + 2
			ensureLen(off + 2)
			binary.BigEndian.PutUint16(buf[off:off+2], extWords)
		case key == "ext_data":
			data := DecodeHex(val)
			off := fixedHeaderLen + 4*int(cc) + 4
			ensureLen(off + len(data))
			copy(buf[off:], data)
		case key == "data":
			data := DecodeHex(val)
			extBytes := 0
			if extHeaderGiven {
				extBytes = 4 * (1 + int(extWords))
			}
			off := fixedHeaderLen + 4*int(cc) + extBytes
			ensureLen(off + len(data))
			copy(buf[off:], data)
			payloadLen = len(data)
		case key == "len":
			explicitLen = int(parseUintLoose(val))
			lenExplicit = true
		}
	}

	finalCC := cc
	if !ccExplicit {
		if maxCSRCSeen >= 0 {
			finalCC = uint8(maxCSRCSeen+1) & ccMask
		} else {
			finalCC = 0
		}
		buf[0] = buf[0]&^ccMask | finalCC
	}

	length := explicitLen
	if !lenExplicit {
		extBytes := 0
		if extHeaderGiven {
			extBytes = 4 * (1 + int(extWords))
		}
		length = fixedHeaderLen + 4*int(finalCC) + extBytes + payloadLen
	}
	ensureLen(length)
	return buf[:length]
}

func setBit(buf []byte, byteIdx int, mask byte, set bool) {
	if set {
		buf[byteIdx] |= mask
	} else {
		buf[byteIdx] &^= mask
	}
}

// splitToken divides "key=value" at the first '='. A token with no '=' is
// reported as malformed via ok=false and is skipped by the caller.
func splitToken(tok string) (key, val string, ok bool) {
	i := strings.IndexByte(tok, '=')
	if i < 0 {
		return "", "", false
	}
	return tok[:i], tok[i+1:], true
}

// parseUintLoose parses a decimal, 0x-hex, or 0-octal unsigned literal,
// defaulting to 0 on any malformed input rather than failing the line.
func parseUintLoose(s string) uint64 {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0
	}
	return v
}

// The accessors below read back header fields from a serialized packet;
// used by tests and by anything downstream that wants to confirm what was
// written without re-parsing tokens.

func RTPVersion(buf []byte) uint8  { return buf[0] >> versionShift }
func RTPPadding(buf []byte) bool   { return buf[0]&paddingBit != 0 }
func RTPExtended(buf []byte) bool  { return buf[0]&extensionBit != 0 }
func RTPCSRCCount(buf []byte) int  { return int(buf[0] & ccMask) }
func RTPMarker(buf []byte) bool    { return buf[1]&markerBit != 0 }
func RTPPayloadType(buf []byte) uint8 { return buf[1] & ptMask }
func RTPSequence(buf []byte) uint16   { return binary.BigEndian.Uint16(buf[2:4]) }
func RTPTimestamp(buf []byte) uint32  { return binary.BigEndian.Uint32(buf[4:8]) }
func RTPSSRC(buf []byte) uint32       { return binary.BigEndian.Uint32(buf[8:12]) }
