// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package settings persists the small amount of state iniedit keeps between
// runs (last folder, recent files, preferred query syntax).
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/alexflint/go-filemutex"
	"github.com/outrigdev/iniedit/pkg/gensearch"
	"github.com/outrigdev/iniedit/pkg/logutil"
	"github.com/outrigdev/iniedit/pkg/utilfn"
)

const SettingsFileName = "settings.json"
const MaxRecentFiles = 10

var log = logutil.Component("settings")

type Settings struct {
	LastFolder  string           `json:"last_folder,omitempty"`
	RecentFiles []string         `json:"recent_files,omitempty"`
	QuerySyntax gensearch.Syntax `json:"query_syntax,omitempty"`
}

func (s Settings) copy() Settings {
	s.RecentFiles = utilfn.CopyStrArr(s.RecentFiles)
	return s
}

// Store owns the settings record and its file. Writes are serialized within
// the process by a mutex and across processes by a lock file next to the
// settings file.
type Store struct {
	lock     sync.Mutex
	path     string
	settings Settings
}

// NewStore creates a store backed by path. Nothing is read until Load.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the settings file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) withFileLock(exclusive bool, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	fm, err := filemutex.New(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("cannot open settings lock: %w", err)
	}
	defer fm.Close()
	if exclusive {
		if err := fm.Lock(); err != nil {
			return err
		}
		defer fm.Unlock()
	} else {
		if err := fm.RLock(); err != nil {
			return err
		}
		defer fm.RUnlock()
	}
	return fn()
}

// Load reads the settings file. A missing or unreadable file leaves the
// defaults in place, the error is only logged.
func (s *Store) Load() Settings {
	s.lock.Lock()
	defer s.lock.Unlock()
	var loaded Settings
	err := s.withFileLock(false, func() error {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &loaded)
	})
	switch {
	case err == nil:
		s.settings = loaded
	case errors.Is(err, fs.ErrNotExist):
		s.settings = Settings{}
	default:
		log.WithField("path", s.path).WithError(err).Warn("ignoring unreadable settings")
		s.settings = Settings{}
	}
	if _, err := gensearch.ParseSyntax(string(s.settings.QuerySyntax)); err != nil {
		s.settings.QuerySyntax = ""
	}
	return s.settings.copy()
}

// Get returns a copy of the current settings
func (s *Store) Get() Settings {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.settings.copy()
}

func (s *Store) saveLocked() error {
	barr, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return err
	}
	return s.withFileLock(true, func() error {
		return utilfn.WriteFileAtomic(s.path, barr, 0644)
	})
}

// Update applies fn and saves when anything changed
func (s *Store) Update(fn func(*Settings)) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	before, _ := json.Marshal(s.settings)
	next := s.settings.copy()
	fn(&next)
	after, _ := json.Marshal(next)
	if string(before) == string(after) {
		return nil
	}
	s.settings = next
	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("cannot save settings to %s: %w", s.path, err)
	}
	return nil
}

// SetLastFolder records dir, "" clears it
func (s *Store) SetLastFolder(dir string) error {
	return s.Update(func(st *Settings) {
		st.LastFolder = dir
	})
}

// AddRecentFile moves path to the front of the recent list
func (s *Store) AddRecentFile(path string) error {
	return s.Update(func(st *Settings) {
		recent := []string{path}
		for _, p := range st.RecentFiles {
			if p != path && len(recent) < MaxRecentFiles {
				recent = append(recent, p)
			}
		}
		st.RecentFiles = recent
	})
}

// SetQuerySyntax stores the preferred syntax for searches
func (s *Store) SetQuerySyntax(syntax gensearch.Syntax) error {
	return s.Update(func(st *Settings) {
		st.QuerySyntax = syntax
	})
}

// ClearMissingFolder forgets the last folder if it no longer exists on disk.
// It returns the folder that remains, possibly "".
func (s *Store) ClearMissingFolder() (string, error) {
	dir := s.Get().LastFolder
	if dir == "" {
		return "", nil
	}
	if finfo, err := os.Stat(dir); err == nil && finfo.IsDir() {
		return dir, nil
	}
	log.WithField("folder", dir).Info("last folder is gone, clearing it")
	return "", s.SetLastFolder("")
}
