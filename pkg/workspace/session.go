// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/outrigdev/iniedit/pkg/docsearch"
	"github.com/outrigdev/iniedit/pkg/gensearch"
	"github.com/outrigdev/iniedit/pkg/linemodel"
)

// Entry is one editable row: a key, its current value and its line
type Entry struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	LineNum int    `json:"linenum"`
}

// Session is one open document. All access goes through the session lock.
type Session struct {
	lock  sync.Mutex
	id    string
	path  string
	doc   *linemodel.Document
	dirty bool
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Path() string {
	return s.path
}

func (s *Session) Name() string {
	return filepath.Base(s.path)
}

func (s *Session) Dirty() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.dirty
}

// Values returns the addressable entries in file order
func (s *Session) Values() []Entry {
	s.lock.Lock()
	defer s.lock.Unlock()
	var rtn []Entry
	for _, key := range s.doc.Keys() {
		line, _ := s.doc.Lookup(key)
		rtn = append(rtn, Entry{Key: key, Value: line.Value(), LineNum: line.LineNum()})
	}
	return rtn
}

// Elements returns the rendered elements of the document, none matched
func (s *Session) Elements() []docsearch.Element {
	s.lock.Lock()
	defer s.lock.Unlock()
	return docsearch.Elements(s.doc)
}

// ApplyEdits updates every key whose value differs from the document and
// returns the changed keys in file order. Unknown keys are ignored. When any
// new value contains a line break nothing is applied.
func (s *Session) ApplyEdits(values map[string]string) ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	keys := s.doc.Keys()
	for _, key := range keys {
		if newValue, ok := values[key]; ok {
			if err := linemodel.ValidateValue(newValue); err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
		}
	}
	var changed []string
	for _, key := range keys {
		newValue, ok := values[key]
		if !ok {
			continue
		}
		if cur, _ := s.doc.GetValue(key); cur == newValue {
			continue
		}
		s.doc.UpdateValue(key, newValue)
		changed = append(changed, key)
	}
	if len(changed) > 0 {
		s.dirty = true
	}
	return changed, nil
}

// Save writes the document when edits were applied since the last save.
// On failure the edits stay in memory and the session stays dirty.
func (s *Session) Save() (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.dirty {
		return false, nil
	}
	if err := s.doc.Save(""); err != nil {
		return false, err
	}
	s.dirty = false
	log.WithField("path", s.path).Info("saved document")
	return true, nil
}

// Serialize renders the document as it would be saved
func (s *Session) Serialize() []byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.doc.Serialize()
}

func (s *Session) Highlight(query string, syntax gensearch.Syntax) docsearch.MatchSet {
	s.lock.Lock()
	defer s.lock.Unlock()
	return docsearch.HighlightWithSyntax(s.doc, query, syntax)
}
