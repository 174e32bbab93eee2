// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// Kind distinguishes the two UDP endpoints a Buffered packet travels on.
type Kind int

const (
	KindData Kind = iota
	KindControl
)

// Buffered is a fully-serialized packet waiting to be handed to a socket,
// tagged with the script time that governs when it should go out.
type Buffered struct {
	Bytes      []byte
	Type       Kind
	ScriptTime time.Duration
}

// Reader reassembles logical script lines from an input stream: it
// discards comment lines (leading '#'), folds whitespace-prefixed
// continuation lines into the line above, and — when Loop is set —
// transparently rewinds on EOF instead of signaling end of input.
type Reader struct {
	br   *bufio.Reader
	src  io.ReadSeeker
	Loop bool

	held string
}

// NewReader wraps r. Seek is called only when Loop is set, so a source
// that cannot actually seek (such as stdin, which the CLI passes) works as
// long as Loop stays false.
func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{br: bufio.NewReader(r), src: r}
}

// Next returns one logical line, including its trailing newlines, plus
// whether returning it required rewinding the input (Loop). A caller that
// paces playback against wall-clock time must treat a rewound line as the
// start of a fresh pass and re-anchor against it, since its script time
// goes back to the file's start rather than continuing to advance. Next
// returns io.EOF only when input is exhausted and Loop is false.
func (rd *Reader) Next() (line string, looped bool, err error) {
	for {
		line, err = rd.nextOnce()
		if err == io.EOF && rd.Loop {
			if _, seekErr := rd.src.Seek(0, io.SeekStart); seekErr != nil {
				return "", false, seekErr
			}
			rd.br.Reset(rd.src)
			rd.held = ""
			looped = true
			continue
		}
		return line, looped, err
	}
}

func (rd *Reader) nextOnce() (string, error) {
	var b strings.Builder
	if rd.held != "" {
		b.WriteString(rd.held)
		rd.held = ""
	}
	for {
		raw, err := rd.br.ReadString('\n')
		switch {
		case len(raw) > 0 && raw[0] == '#':
			// comment line, discard
		case len(raw) > 0 && b.Len() > 0 && !isHexSpace(raw[0]):
			rd.held = raw
			return b.String(), nil
		case len(raw) > 0:
			b.WriteString(raw)
		}
		if err != nil {
			if b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
	}
}

// Generate classifies one logical line as RTP or RTCP, builds its wire
// bytes, and tags the result with the script time parsed from the line's
// leading "sec.usec" field. Anything else in the type position is a fatal
// parse error.
//
// Only the time and type fields are tokenized here; the remainder of the
// line is handed to the RTCP tree parser exactly as written, so a quoted
// SDES value's internal whitespace survives untouched. RTP tokens have no
// such literal-whitespace requirement and are split on stdlib
// strings.Fields.
func Generate(line string) (*Buffered, error) {
	timeField, rest, ok := cutField(line)
	if !ok {
		return nil, newParseError(line, "line has no type field")
	}
	typeField, remainder, _ := cutField(rest)
	if typeField == "" {
		return nil, newParseError(line, "line has no type field")
	}

	scriptTime, err := parseScriptTime(timeField)
	if err != nil {
		return nil, newParseError(line, "invalid time field %q: %v", timeField, err)
	}

	switch typeField {
	case "RTP":
		return &Buffered{
			Bytes:      ParseRTP(strings.Fields(remainder)),
			Type:       KindData,
			ScriptTime: scriptTime,
		}, nil
	case "RTCP":
		tree := ParseTree(remainder)
		bytes, err := SerializeCompound(tree)
		if err != nil {
			return nil, err
		}
		return &Buffered{
			Bytes:      bytes,
			Type:       KindControl,
			ScriptTime: scriptTime,
		}, nil
	default:
		return nil, newParseError(line, "unrecognized packet type %q", typeField)
	}
}

// cutField splits the first whitespace-delimited field off s, returning
// the remainder with its original internal whitespace intact — only the
// one whitespace byte right after the field is consumed; any further
// separator whitespace stays at the start of the remainder.
func cutField(s string) (field, rest string, ok bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" {
		return "", "", false
	}
	i := strings.IndexAny(s, " \t\r\n")
	if i < 0 {
		return s, "", true
	}
	return s[:i], s[i+1:], true
}

func parseScriptTime(field string) (time.Duration, error) {
	dot := strings.IndexByte(field, '.')
	if dot < 0 {
		sec, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return 0, err
		}
		return time.Duration(sec) * time.Second, nil
	}
	sec, err := strconv.ParseInt(field[:dot], 10, 64)
	if err != nil {
		return 0, err
	}
	usec, err := strconv.ParseInt(field[dot+1:], 10, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(sec)*time.Second + time.Duration(usec)*time.Microsecond, nil
}
