// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import (
	"encoding/binary"
	"strings"
	"time"
)

// RTCP packet type numbers, RFC 3550 §6.1, mirroring GoRTP's
// RtcpSR/RtcpRR/RtcpSdes/RtcpBye/RtcpApp constants.
const (
	rtcpSR   = 200
	rtcpRR   = 201
	rtcpSDES = 202
	rtcpBYE  = 203
	rtcpAPP  = 204
)

var sdesItemTypes = map[string]byte{
	"end":   0,
	"cname": 1,
	"name":  2,
	"email": 3,
	"phone": 4,
	"loc":   5,
	"tool":  6,
	"note":  7,
	"priv":  8,
}

// SerializeCompound walks the top-level sibling nodes of a parsed RTCP
// description and concatenates one serialized record per group node. Bare
// leaves at the top level (malformed input) are silently skipped.
func SerializeCompound(top []*Node) ([]byte, error) {
	var out []byte
	for _, n := range top {
		if n.leaf() {
			continue
		}
		rec, err := serializeRecord(n.Children)
		if err != nil {
			return nil, err
		}
		out = append(out, rec...)
	}
	return out, nil
}

// serializeRecord dispatches on the first marker leaf (SDES/SR/RR/BYE/APP)
// found among children, passing the full children slice to the handler —
// the handler itself skips the marker while walking the rest.
func serializeRecord(children []*Node) ([]byte, error) {
	for _, c := range children {
		if !c.leaf() {
			continue
		}
		switch c.Type {
		case "SDES":
			return serializeSDES(children)
		case "SR":
			return serializeSR(children)
		case "RR":
			return serializeRR(children)
		case "BYE":
			return serializeBYE(children)
		case "APP":
			return nil, nil
		}
	}
	return nil, newParseError("", "RTCP record has no recognized payload type")
}

type recordOverrides struct {
	padding    bool
	hasPadding bool
	count      uint8
	hasCount   bool
	length     uint16
	hasLength  bool
}

func scanOverrides(children []*Node) recordOverrides {
	var o recordOverrides
	for _, c := range children {
		if !c.leaf() {
			continue
		}
		switch c.Type {
		case "p":
			o.padding = c.Num != 0
			o.hasPadding = true
		case "count":
			o.count = uint8(c.Num)
			o.hasCount = true
		case "len":
			o.length = uint16(c.Num)
			o.hasLength = true
		}
	}
	return o
}

func writeCommonHeader(buf []byte, padding bool, count uint8, pt uint8, length uint16) {
	b0 := uint8(defaultRTPVersion) << 6
	if padding {
		b0 |= 0x20
	}
	b0 |= count & 0x1f
	buf[0] = b0
	buf[1] = pt
	binary.BigEndian.PutUint16(buf[2:4], length)
}

// usec2ntp converts a microsecond count into the fractional 32 bits of an
// NTP timestamp using the factorization 2^32/10^6 ≈ 4096 + 256 − 1825/32
// (max relative error 3e-7), carried over from the original C source
// unchanged.
func usec2ntp(usec uint32) uint32 {
	t := (usec * 1825) >> 5
	return (usec << 12) + (usec << 8) - t
}

func serializeSR(children []*Node) ([]byte, error) {
	ov := scanOverrides(children)

	now := time.Now()
	var ssrc, ts, psent, osent uint32
	ntpSec := uint32(now.Unix()) + 2208988800
	ntpFrac := usec2ntp(uint32(now.Nanosecond() / 1000))

	var blocks [][]byte
	for _, c := range children {
		if !c.leaf() {
			blk, err := serializeReportBlock(c.Children)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, blk)
			continue
		}
		switch c.Type {
		case "SR", "p", "count", "len":
		case "ssrc":
			ssrc = uint32(c.Num)
		case "ntp":
			// Overrides only the high half (seconds); the fractional half
			// stays wall-clock derived. Preserved from the original source.
			ntpSec = uint32(c.Num)
		case "ts":
			ts = uint32(c.Num)
		case "psent":
			psent = uint32(c.Num)
		case "osent":
			osent = uint32(c.Num)
		default:
			return nil, newParseError("", "unrecognized RTCP leaf %q in SR record", c.Type)
		}
	}

	body := make([]byte, 24+24*len(blocks))
	binary.BigEndian.PutUint32(body[0:4], ssrc)
	binary.BigEndian.PutUint32(body[4:8], ntpSec)
	binary.BigEndian.PutUint32(body[8:12], ntpFrac)
	binary.BigEndian.PutUint32(body[12:16], ts)
	binary.BigEndian.PutUint32(body[16:20], psent)
	binary.BigEndian.PutUint32(body[20:24], osent)
	for i, blk := range blocks {
		copy(body[24+24*i:], blk)
	}

	count := uint8(len(blocks)) & 0x1f
	if ov.hasCount {
		count = ov.count & 0x1f
	}
	padding := ov.hasPadding && ov.padding

	total := 4 + len(body)
	length := uint16(total/4 - 1)
	if ov.hasLength {
		length = ov.length
	}

	buf := make([]byte, total)
	writeCommonHeader(buf, padding, count, rtcpSR, length)
	copy(buf[4:], body)
	return buf, nil
}

func serializeRR(children []*Node) ([]byte, error) {
	ov := scanOverrides(children)

	var ssrc uint32
	var blocks [][]byte
	for _, c := range children {
		if !c.leaf() {
			blk, err := serializeReportBlock(c.Children)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, blk)
			continue
		}
		switch c.Type {
		case "RR", "p", "count", "len":
		case "ssrc":
			ssrc = uint32(c.Num)
		default:
			return nil, newParseError("", "unrecognized RTCP leaf %q in RR record", c.Type)
		}
	}

	body := make([]byte, 4+24*len(blocks))
	binary.BigEndian.PutUint32(body[0:4], ssrc)
	for i, blk := range blocks {
		copy(body[4+24*i:], blk)
	}

	count := uint8(len(blocks)) & 0x1f
	if ov.hasCount {
		count = ov.count & 0x1f
	}
	padding := ov.hasPadding && ov.padding

	total := 4 + len(body)
	length := uint16(total/4 - 1)
	if ov.hasLength {
		length = ov.length
	}

	buf := make([]byte, total)
	writeCommonHeader(buf, padding, count, rtcpRR, length)
	copy(buf[4:], body)
	return buf, nil
}

// serializeReportBlock encodes one 24-byte SR/RR report block.
func serializeReportBlock(children []*Node) ([]byte, error) {
	var ssrc, lastSeq, jit, lsr, dlsr uint32
	var fraction byte
	var lost uint32
	for _, c := range children {
		if !c.leaf() {
			return nil, newParseError("", "report block cannot contain a nested group")
		}
		switch c.Type {
		case "ssrc":
			ssrc = uint32(c.Num)
		case "fraction":
			fraction = byte(c.Num)
		case "lost":
			lost = uint32(c.Num) & 0x00ffffff
		case "last_seq":
			lastSeq = uint32(c.Num)
		case "jit":
			jit = uint32(c.Num)
		case "lsr":
			lsr = uint32(c.Num)
		case "dlsr":
			dlsr = uint32(c.Num)
		default:
			return nil, newParseError("", "unrecognized RTCP leaf %q in report block", c.Type)
		}
	}
	buf := make([]byte, 24)
	binary.BigEndian.PutUint32(buf[0:4], ssrc)
	binary.BigEndian.PutUint32(buf[4:8], lost)
	buf[4] = fraction
	binary.BigEndian.PutUint32(buf[8:12], lastSeq)
	binary.BigEndian.PutUint32(buf[12:16], jit)
	binary.BigEndian.PutUint32(buf[16:20], lsr)
	binary.BigEndian.PutUint32(buf[20:24], dlsr)
	return buf, nil
}

func serializeBYE(children []*Node) ([]byte, error) {
	ov := scanOverrides(children)

	var ssrcs []uint32
	for _, c := range children {
		if !c.leaf() {
			v, err := serializeBYESource(c.Children)
			if err != nil {
				return nil, err
			}
			ssrcs = append(ssrcs, v)
			continue
		}
		switch c.Type {
		case "BYE", "p", "count", "len":
		default:
			return nil, newParseError("", "unrecognized RTCP leaf %q in BYE record", c.Type)
		}
	}

	body := make([]byte, 4*len(ssrcs))
	for i, v := range ssrcs {
		binary.BigEndian.PutUint32(body[4*i:4*i+4], v)
	}

	count := uint8(len(ssrcs)) & 0x1f
	if ov.hasCount {
		count = ov.count & 0x1f
	}
	padding := ov.hasPadding && ov.padding

	total := 4 + len(body)
	length := uint16(total/4 - 1)
	if ov.hasLength {
		length = ov.length
	}

	buf := make([]byte, total)
	writeCommonHeader(buf, padding, count, rtcpBYE, length)
	copy(buf[4:], body)
	return buf, nil
}

func serializeBYESource(children []*Node) (uint32, error) {
	var ssrc uint32
	for _, c := range children {
		if !c.leaf() {
			return 0, newParseError("", "BYE source block cannot contain a nested group")
		}
		if c.Type != "ssrc" {
			return 0, newParseError("", "unrecognized RTCP leaf %q in BYE source block", c.Type)
		}
		ssrc = uint32(c.Num)
	}
	return ssrc, nil
}

func serializeSDES(children []*Node) ([]byte, error) {
	ov := scanOverrides(children)

	var chunks [][]byte
	for _, c := range children {
		if !c.leaf() {
			chunk, err := serializeSDESChunk(c.Children)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, chunk)
			continue
		}
		switch c.Type {
		case "SDES", "p", "count", "len":
		default:
			return nil, newParseError("", "unrecognized RTCP leaf %q in SDES record", c.Type)
		}
	}

	var body []byte
	for _, ch := range chunks {
		body = append(body, ch...)
	}

	count := uint8(len(chunks)) & 0x1f
	if ov.hasCount {
		count = ov.count & 0x1f
	}
	padding := ov.hasPadding && ov.padding

	total := 4 + len(body)
	length := uint16(total/4 - 1)
	if ov.hasLength {
		length = ov.length
	}

	buf := make([]byte, total)
	writeCommonHeader(buf, padding, count, rtcpSDES, length)
	copy(buf[4:], body)
	return buf, nil
}

// serializeSDESChunk encodes one SSRC's worth of SDES items. Each item is
// padded to the next 32-bit boundary on its own, and the terminating END
// byte gets a 32-bit-aligned word of its own — the chunk is never left with
// a dangling unaligned tail between elements.
func serializeSDESChunk(children []*Node) ([]byte, error) {
	var ssrc uint32
	var items []byte
	for _, c := range children {
		if !c.leaf() {
			return nil, newParseError("", "SDES chunk cannot contain a nested group")
		}
		if c.Type == "src" {
			ssrc = uint32(c.Num)
			continue
		}
		text := c.Str
		if len(text) > 255 {
			return nil, newParseError("", "SDES item %q text is %d bytes, longer than 255", c.Type, len(text))
		}
		item := make([]byte, 2+len(text))
		item[0] = sdesItemType(c.Type)
		item[1] = byte(len(text))
		copy(item[2:], text)
		items = append(items, padTo4(item)...)
	}
	items = append(items, padTo4([]byte{0})...)

	chunk := make([]byte, 4+len(items))
	binary.BigEndian.PutUint32(chunk[0:4], ssrc)
	copy(chunk[4:], items)
	return chunk, nil
}

func sdesItemType(name string) byte {
	if t, ok := sdesItemTypes[strings.ToLower(name)]; ok {
		return t
	}
	return 0
}

func padTo4(b []byte) []byte {
	if rem := len(b) % 4; rem != 0 {
		b = append(b, make([]byte, 4-rem)...)
	}
	return b
}
