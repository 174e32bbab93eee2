// Copyright (c) 2026 Columbia University.
// Use of this source code is governed by a BSD-style license.

package rtp

import (
	"strconv"
	"strings"
)

// Node is one element of an RTCP description tree. A node is either a leaf
// (Type plus at most one of Num/Str; a bare marker such as "SDES" has
// neither) or a group (Children set, Type empty)
// — never both. Groups and their children are owned by a slice rather than
// a linked list; a whole tree is discarded once its compound packet has
// been serialized.
type Node struct {
	Type     string
	Num      uint64
	Str      string
	IsString bool
	Children []*Node
}

// ParseTree parses a sequence of sibling nodes out of text: leaves
// (name=value, whitespace-terminated) and parenthesized groups. Opening
// parens at nesting depth zero start a group; at depth one or deeper they
// are literal characters copied into the group's own text before it is
// parsed recursively. Double quotes toggle a string mode in which parens
// and whitespace are copied literally. Malformed input — unbalanced
// parens, a leaf with no '=' — degrades silently rather than failing; the
// caller discovers the damage only when it tries to serialize the result.
func ParseTree(text string) []*Node {
	var nodes []*Node
	var tmp []byte
	level := 0
	inString := false

	flush := func() {
		if len(tmp) == 0 {
			return
		}
		nodes = append(nodes, leafFromToken(string(tmp)))
		tmp = tmp[:0]
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inString:
			tmp = append(tmp, c)
			if c == '"' {
				inString = false
			}
		case c == '(':
			if level > 0 {
				tmp = append(tmp, c)
			} else {
				tmp = tmp[:0]
			}
			level++
		case c == ')':
			level--
			if level < 0 {
				level = 0
				continue
			}
			if level == 0 {
				nodes = append(nodes, &Node{Children: ParseTree(string(tmp))})
				tmp = tmp[:0]
			} else {
				tmp = append(tmp, c)
			}
		case c == '"':
			tmp = append(tmp, c)
			inString = true
		case level >= 1:
			tmp = append(tmp, c)
		case isHexSpace(c):
			flush()
		default:
			tmp = append(tmp, c)
		}
	}
	if level == 0 {
		flush()
	}
	return nodes
}

// leafFromToken splits "name=value" into a leaf node. A value is numeric
// when its first character is a digit; otherwise it is treated as a
// double-quoted string with the surrounding quotes stripped. A token with
// no '=' becomes a bare type marker (no Num, no Str) — this is how record
// and chunk markers like "SDES" or "BYE" are represented.
func leafFromToken(tok string) *Node {
	i := strings.IndexByte(tok, '=')
	if i < 0 {
		return &Node{Type: tok}
	}
	name := tok[:i]
	val := tok[i+1:]
	if val == "" {
		return &Node{Type: name}
	}
	if val[0] >= '0' && val[0] <= '9' {
		n, _ := strconv.ParseUint(val, 0, 64)
		return &Node{Type: name, Num: n}
	}
	str := val
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		str = val[1 : len(val)-1]
	}
	return &Node{Type: name, Str: str, IsString: true}
}

// leaf reports whether n carries a leaf payload (vs. being a group).
func (n *Node) leaf() bool { return n.Children == nil }
