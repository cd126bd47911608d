// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package linemodel

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/outrigdev/iniedit/pkg/utilfn"
	"golang.org/x/text/encoding/unicode"
)

var ErrNoPath = errors.New("no file path specified for save")
var ErrMultilineValue = errors.New("value must not contain line breaks")

// ValidateValue rejects values that would serialize as more than one line
func ValidateValue(value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return ErrMultilineValue
	}
	return nil
}

// IOError is returned when a document cannot be read from or written to disk.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Document is the ordered line sequence of one config file. The line count
// and kinds never change after parsing, only KeyValue values do.
//
// A Document is not safe for concurrent use.
type Document struct {
	path  string
	lines []*Line
	index map[string]*Line // first occurrence wins
}

// Load reads and parses the file at path. Invalid UTF-8 is replaced rather
// than rejected.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "load", Path: path, Err: err}
	}
	return Parse(path, data), nil
}

// Parse builds a document from an in-memory buffer. It never fails.
func Parse(path string, data []byte) *Document {
	text := DecodeLossy(data)
	doc := &Document{
		path:  path,
		index: make(map[string]*Line),
	}
	for lineNum, raw := range splitLines(text) {
		line := makeLine(raw, lineNum)
		doc.lines = append(doc.lines, line)
		if line.kind != KindKeyValue {
			continue
		}
		if _, exists := doc.index[line.key]; !exists {
			doc.index[line.key] = line
		}
	}
	return doc
}

// DecodeLossy decodes data as UTF-8, replacing invalid sequences with U+FFFD
func DecodeLossy(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	return string(decoded)
}

// splitLines splits after every "\n", keeping the terminators. A trailing
// fragment without a newline is its own line.
func splitLines(text string) []string {
	var lines []string
	for len(text) > 0 {
		idx := strings.IndexByte(text, '\n')
		if idx == -1 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:idx+1])
		text = text[idx+1:]
	}
	return lines
}

func (d *Document) Path() string {
	return d.path
}

// Lines returns the document lines in file order. The slice is a copy, the
// lines are not.
func (d *Document) Lines() []*Line {
	rtn := make([]*Line, len(d.lines))
	copy(rtn, d.lines)
	return rtn
}

func (d *Document) Len() int {
	return len(d.lines)
}

// Keys returns the addressable keys in the order they first appear.
func (d *Document) Keys() []string {
	var keys []string
	for _, line := range d.lines {
		if line.kind == KindKeyValue && d.index[line.key] == line {
			keys = append(keys, line.key)
		}
	}
	return keys
}

// Lookup returns the line that owns key
func (d *Document) Lookup(key string) (*Line, bool) {
	line, ok := d.index[key]
	return line, ok
}

func (d *Document) GetValue(key string) (string, bool) {
	line, ok := d.index[key]
	if !ok {
		return "", false
	}
	return line.value, true
}

// UpdateValue sets the value of the first line that defines key. Unknown
// keys and values containing line breaks are a no-op and return false. Later
// duplicates are never touched.
func (d *Document) UpdateValue(key string, newValue string) bool {
	line, ok := d.index[key]
	if !ok || ValidateValue(newValue) != nil {
		return false
	}
	line.value = newValue
	return true
}

// Serialize renders the document. Non-KeyValue lines are byte-identical to
// the input; KeyValue lines are written as "key = value".
func (d *Document) Serialize() []byte {
	var buf bytes.Buffer
	for _, line := range d.lines {
		buf.WriteString(line.String())
	}
	return buf.Bytes()
}

// Save writes the document to path, or to its source path when path is
// empty. The file is replaced atomically; on error the original file and the
// in-memory document are left untouched.
func (d *Document) Save(path string) error {
	target := path
	if target == "" {
		target = d.path
	}
	if target == "" {
		return ErrNoPath
	}
	if err := utilfn.WriteFileAtomic(target, d.Serialize(), 0644); err != nil {
		return &IOError{Op: "save", Path: target, Err: err}
	}
	return nil
}
