// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Sender is the minimal surface the pacer needs from the egress transport:
// write a buffered packet to whichever socket matches its Type.
type Sender interface {
	Send(buf *Buffered) error
}

// Pacer is the single-threaded cooperative scheduling loop: it owns the
// script reader, the egress sender, and the one pending one-shot timer.
// Ticks run strictly one after another: each tick arms exactly one one-shot
// timer whose callback (run by time.AfterFunc on its own goroutine) is the
// next tick, which does that tick's sending, parsing and serialization.
type Pacer struct {
	Reader  *Reader
	Sender  Sender
	Log     *logrus.Entry
	Verbose bool

	anchor      time.Time
	haveAnchor  bool
	pending     *Buffered
	timer       *time.Timer
	done        chan error
	nowFunc     func() time.Time
	afterFunc   func(time.Duration, func()) *time.Timer
}

// NewPacer builds a Pacer ready to Run.
func NewPacer(r *Reader, s Sender, log *logrus.Entry) *Pacer {
	return &Pacer{
		Reader:    r,
		Sender:    s,
		Log:       log,
		nowFunc:   time.Now,
		afterFunc: time.AfterFunc,
	}
}

// Run drives the pacer to completion: it returns nil on normal EOF
// (loop=false) and a non-nil error if script parsing or the reader fails.
// Send failures on tolerated sockets are logged, not propagated.
func (p *Pacer) Run() error {
	p.done = make(chan error, 1)
	p.tick()
	return <-p.done
}

func (p *Pacer) tick() {
	now := p.nowFunc()

	if p.pending != nil {
		if err := p.Sender.Send(p.pending); err != nil {
			p.Log.WithError(err).Warn("send failed, continuing")
		}
		p.pending = nil
	}

	line, looped, err := p.Reader.Next()
	if err == io.EOF {
		p.done <- nil
		return
	}
	if err != nil {
		p.done <- err
		return
	}
	if looped {
		p.haveAnchor = false
	}

	if p.Verbose {
		fmt.Print(line)
	}

	buf, err := Generate(line)
	if err != nil {
		p.done <- err
		return
	}
	p.pending = buf

	if !p.haveAnchor {
		p.haveAnchor = true
		p.anchor = now.Add(-buf.ScriptTime)
	}

	nextWall := p.anchor.Add(buf.ScriptTime)
	if nextWall.Before(now) {
		p.Log.Warn("non-monotonic script time, sending immediately")
		nextWall = now
	}

	p.timer = p.afterFunc(nextWall.Sub(now), p.tick)
}
