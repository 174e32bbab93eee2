// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

/*
Command rtpsend is a scriptable RTP/RTCP traffic generator. It reads a
line-oriented script describing RTP media packets and RTCP control
packets and emits them on two adjacent UDP sockets at the playback times
encoded in the script.

	rtpsend [-alv] [-f file] [-s port] address/port[/ttl]
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/columbia-irt/rtptools/rtp"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		scriptFile  = flag.String("f", "", "read script from file (default stdin)")
		routerAlert = flag.Bool("a", false, "set the IP router-alert option")
		loop        = flag.Bool("l", false, "loop the script file on EOF")
		sourcePort  = flag.Int("s", 0, "bind local source ports to PORT (data) and PORT+1 (control)")
		verbose     = flag.Bool("v", false, "echo each line before sending")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: rtpsend [-alv] [-f file] [-s port] address/port[/ttl]")
	}
	flag.Parse()

	log := logrus.New()
	entry := log.WithField("cmd", "rtpsend")

	if flag.NArg() != 1 {
		flag.Usage()
		return 1
	}

	dest, err := resolveDest(flag.Arg(0))
	if err != nil {
		entry.WithError(err).Error("bad destination")
		return 1
	}

	in, closeIn, err := openInput(*scriptFile)
	if err != nil {
		entry.WithError(err).Error("cannot open script")
		return 1
	}
	defer closeIn()

	if *loop && *scriptFile == "" {
		entry.Warn("-l has no effect reading from stdin, input cannot be rewound")
		*loop = false
	}

	tr, err := rtp.NewUDPTransport(dest.addr, rtp.TransportOptions{
		SourcePort:   *sourcePort,
		MulticastTTL: dest.ttl,
		RouterAlert:  *routerAlert,
	})
	if err != nil {
		entry.WithError(err).Error("cannot set up sockets")
		return 1
	}
	defer tr.Close()

	reader := rtp.NewReader(in)
	reader.Loop = *loop

	pacer := rtp.NewPacer(reader, tr, entry)
	pacer.Verbose = *verbose

	if err := pacer.Run(); err != nil {
		var parseErr *rtp.ParseError
		if errors.As(err, &parseErr) {
			entry.WithError(err).Error("script error")
			return 2
		}
		entry.WithError(err).Error("pacer failed")
		return 1
	}
	return 0
}

type destination struct {
	addr *net.UDPAddr
	ttl  int
}

// resolveDest parses "host/port[/ttl]", resolving host and substituting
// localhost when it resolves to INADDR_ANY — rtpsend.c's gethostbyname
// fallback, carried forward since a destination of 0.0.0.0 is never
// actually useful as a send target.
func resolveDest(spec string) (*destination, error) {
	parts := strings.Split(spec, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("destination must be host/port[/ttl], got %q", spec)
	}

	host := parts[0]
	port, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("bad port %q: %w", parts[1], err)
	}

	ttl := rtp.DefaultMulticastTTL
	if len(parts) == 3 {
		ttl, err = strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("bad ttl %q: %w", parts[2], err)
		}
	}

	ipAddr, err := net.ResolveIPAddr("ip4", host)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", host, err)
	}
	if ipAddr.IP.Equal(net.IPv4zero) {
		ipAddr, err = net.ResolveIPAddr("ip4", "localhost")
		if err != nil {
			return nil, fmt.Errorf("resolve fallback localhost: %w", err)
		}
	}

	return &destination{
		addr: &net.UDPAddr{IP: ipAddr.IP, Port: port},
		ttl:  ttl,
	}, nil
}

func openInput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
