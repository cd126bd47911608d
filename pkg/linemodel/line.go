// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package linemodel

import (
	"strings"
)

// Kind classifies a physical line. It is computed once at parse time.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindBlank
	KindComment
	KindKeyValue
)

const (
	CommentPrefix = "#"
	KeyValueDelim = "="
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	case KindKeyValue:
		return "keyvalue"
	default:
		return "unrecognized"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Line is one physical line of a config file. Only the value of a KeyValue
// line can change after parsing.
type Line struct {
	lineNum int
	raw     string
	kind    Kind
	key     string
	value   string
}

// Classify determines the kind of a raw line. The order of the checks is
// fixed: a line starting with "#" is a comment even when it contains "=".
func Classify(raw string) Kind {
	stripped := strings.TrimSpace(raw)
	if stripped == "" {
		return KindBlank
	}
	if strings.HasPrefix(stripped, CommentPrefix) {
		return KindComment
	}
	if before, _, found := strings.Cut(stripped, KeyValueDelim); found {
		if strings.TrimSpace(before) != "" {
			return KindKeyValue
		}
	}
	return KindUnrecognized
}

// ParseKeyValue splits a line on the first "=" and trims both halves.
// Values may contain "=".
func ParseKeyValue(raw string) (string, string) {
	before, after, _ := strings.Cut(raw, KeyValueDelim)
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

func makeLine(raw string, lineNum int) *Line {
	line := &Line{
		lineNum: lineNum,
		raw:     raw,
		kind:    Classify(raw),
	}
	if line.kind == KindKeyValue {
		line.key, line.value = ParseKeyValue(raw)
	}
	return line
}

// LineNum is the 0-based position of the line in its document
func (l *Line) LineNum() int {
	return l.lineNum
}

// Raw returns the original bytes of the line, including its newline.
func (l *Line) Raw() string {
	return l.raw
}

func (l *Line) Kind() Kind {
	return l.kind
}

// Key is empty unless the line is KindKeyValue.
func (l *Line) Key() string {
	return l.key
}

// Value returns the current (possibly edited) value of a KeyValue line.
func (l *Line) Value() string {
	return l.value
}

// CommentText is the trimmed text of a comment line, as displayed.
func (l *Line) CommentText() string {
	if l.kind != KindComment {
		return ""
	}
	return strings.TrimSpace(l.raw)
}

// newline returns the terminator the line was read with. A final line
// without one reports "\n" so that rewritten entries always end a line.
func (l *Line) newline() string {
	if strings.HasSuffix(l.raw, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// String renders the line the way it is written back to disk. KeyValue lines
// are normalized to "key = value", everything else is passed through as-is.
func (l *Line) String() string {
	if l.kind != KindKeyValue {
		return l.raw
	}
	return l.key + " " + KeyValueDelim + " " + l.value + l.newline()
}
