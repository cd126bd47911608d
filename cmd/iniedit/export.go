// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/outrigdev/iniedit/pkg/linemodel"
	"github.com/pelletier/go-toml/v2"
)

const (
	ExportFormatJson = "json"
	ExportFormatToml = "toml"
)

// orderedEntries marshals as a JSON object with keys in file order
type orderedEntries struct {
	keys   []string
	values map[string]string
}

func makeOrderedEntries(doc *linemodel.Document) orderedEntries {
	rtn := orderedEntries{values: make(map[string]string)}
	for _, key := range doc.Keys() {
		val, _ := doc.GetValue(key)
		rtn.keys = append(rtn.keys, key)
		rtn.values[key] = val
	}
	return rtn
}

func (o orderedEntries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeToml emits one "key = value" pair per entry in file order. Maps are
// encoded with sorted keys, so each pair is encoded on its own.
func (o orderedEntries) writeToml(w io.Writer) error {
	for _, key := range o.keys {
		barr, err := toml.Marshal(map[string]string{key: o.values[key]})
		if err != nil {
			return err
		}
		if _, err := w.Write(barr); err != nil {
			return err
		}
	}
	return nil
}

// exportDocument writes the addressable entries of doc in the given format
func exportDocument(w io.Writer, doc *linemodel.Document, format string) error {
	entries := makeOrderedEntries(doc)
	switch format {
	case "", ExportFormatJson:
		barr, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", barr)
		return err
	case ExportFormatToml:
		return entries.writeToml(w)
	default:
		return fmt.Errorf("unknown export format %q (want %q or %q)", format, ExportFormatJson, ExportFormatToml)
	}
}
