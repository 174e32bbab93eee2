// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

/*
Package rtp implements the packet synthesis and pacing engine behind
rtpsend: a script-driven RTP/RTCP traffic generator.

A script is a sequence of lines, each naming a playout time and either an
RTP packet description or an RTCP description tree:

	0.000000 RTP v=2 p=0 x=0 cc=0 m=0 pt=0 seq=1 ts=0 ssrc=0xdeadbeef
	0.020000 RTP pt=0 seq=2 ts=160 ssrc=0xdeadbeef
	0.100000 RTCP (SDES (src=0xdeadbeef cname="alice@host"))
	5.000000 RTCP (BYE (ssrc=0xdeadbeef))

Reader (script.go) frames one logical line at a time, honoring comments
and whitespace-prefixed continuations. Generate (script.go) classifies
each line and hands RTP lines to ParseRTP (packet.go) and RTCP lines to
ParseTree (rtcptree.go) followed by SerializeCompound (ctrlpacket.go),
producing a Buffered packet tagged with its script time.

Pacer (pacer.go) drives everything: a single-threaded loop of one-shot
timers that sends the previously buffered packet, reads and synthesizes
the next one, and arms the next tick at the script time's wall-clock
equivalent. Transport (transport.go) is the two-socket UDP boundary the
pacer sends through — data on one port, control on the next port up.

There is no receive path; this package builds packets, it does not parse
them off the wire.
*/
package rtp
