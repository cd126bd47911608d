// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package workspace is the application object behind the CLI and the web
// server: the current folder, its candidate files and the open documents.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/outrigdev/iniedit/pkg/filesearch"
	"github.com/outrigdev/iniedit/pkg/gensearch"
	"github.com/outrigdev/iniedit/pkg/linemodel"
	"github.com/outrigdev/iniedit/pkg/logutil"
	"github.com/outrigdev/iniedit/pkg/settings"
	"github.com/outrigdev/iniedit/pkg/utilfn"
)

var log = logutil.Component("workspace")

var ErrNotOpen = errors.New("document is not open")
var ErrOutsideRoot = errors.New("path is outside the workspace folder")
var ErrNoRoot = errors.New("no folder selected")

// FileEntry is one candidate file in the current folder
type FileEntry struct {
	Path    string `json:"path"`
	RelPath string `json:"relpath"`
	Name    string `json:"name"`
}

type Workspace struct {
	lock         sync.Mutex
	root         string
	store        *settings.Store // may be nil
	sessions     map[string]*Session
	sessionsPath map[string]string // abs path -> session id

	FilterWorkers int // 0 means GOMAXPROCS
}

// New creates a workspace rooted at root ("" for none). store may be nil, in
// which case nothing is persisted.
func New(root string, store *settings.Store) *Workspace {
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return &Workspace{
		root:         root,
		store:        store,
		sessions:     make(map[string]*Session),
		sessionsPath: make(map[string]string),
	}
}

func (w *Workspace) Root() string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.root
}

// SetRoot switches folders and records the choice in settings. Open
// documents stay open.
func (w *Workspace) SetRoot(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("invalid folder %q: %w", dir, err)
	}
	if _, err := filesearch.ListCandidateFiles(abs, filesearch.DefaultExt); err != nil {
		return err
	}
	w.lock.Lock()
	w.root = abs
	w.lock.Unlock()
	if w.store != nil {
		if err := w.store.SetLastFolder(abs); err != nil {
			log.WithError(err).Warn("cannot persist last folder")
		}
	}
	return nil
}

// ListFiles lists the candidate files under the root with display names
// relative to it
func (w *Workspace) ListFiles() ([]FileEntry, error) {
	root := w.Root()
	if root == "" {
		return nil, ErrNoRoot
	}
	paths, err := filesearch.ListCandidateFiles(root, filesearch.DefaultExt)
	if err != nil {
		return nil, err
	}
	return makeFileEntries(root, paths), nil
}

func makeFileEntries(root string, paths []string) []FileEntry {
	entries := make([]FileEntry, 0, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		entries = append(entries, FileEntry{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
			Name:    filepath.Base(path),
		})
	}
	return entries
}

// Filter lists the candidate files whose content matches query. An empty
// query lists everything.
func (w *Workspace) Filter(ctx context.Context, query string, syntax gensearch.Syntax) ([]FileEntry, error) {
	root := w.Root()
	if root == "" {
		return nil, ErrNoRoot
	}
	paths, err := filesearch.ListCandidateFiles(root, filesearch.DefaultExt)
	if err != nil {
		return nil, err
	}
	f := &filesearch.Filter{Workers: w.FilterWorkers, Syntax: syntax}
	matched, err := f.Run(ctx, paths, query)
	if err != nil {
		return nil, err
	}
	return makeFileEntries(root, matched), nil
}

// resolvePath makes path absolute, relative paths are taken from the root.
// Containment is checked on the symlink-resolved paths so a link inside the
// root cannot point outside it.
func (w *Workspace) resolvePath(path string) (string, error) {
	root := w.Root()
	if !filepath.IsAbs(path) && root != "" {
		path = filepath.Join(root, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if root == "" {
		return abs, nil
	}
	realRoot, err := utilfn.ResolvePath(root)
	if err != nil {
		return "", err
	}
	realPath, err := utilfn.ResolvePath(abs)
	if err != nil {
		return "", err
	}
	if !utilfn.IsSubPath(realRoot, realPath) {
		return "", ErrOutsideRoot
	}
	return abs, nil
}

// Open loads the document at path, or returns the session that already has
// it open. Paths must be inside the root when one is set.
func (w *Workspace) Open(path string) (*Session, error) {
	abs, err := w.resolvePath(path)
	if err != nil {
		return nil, err
	}
	w.lock.Lock()
	if id, ok := w.sessionsPath[abs]; ok {
		sess := w.sessions[id]
		w.lock.Unlock()
		return sess, nil
	}
	w.lock.Unlock()

	doc, err := linemodel.Load(abs)
	if err != nil {
		return nil, err
	}

	w.lock.Lock()
	if id, ok := w.sessionsPath[abs]; ok {
		// lost a race with another Open of the same file
		sess := w.sessions[id]
		w.lock.Unlock()
		return sess, nil
	}
	sess := &Session{
		id:   uuid.New().String(),
		path: abs,
		doc:  doc,
	}
	w.sessions[sess.id] = sess
	w.sessionsPath[abs] = sess.id
	w.lock.Unlock()

	log.WithField("path", abs).WithField("session", sess.id).Debug("opened document")
	if w.store != nil {
		if err := w.store.AddRecentFile(abs); err != nil {
			log.WithError(err).Warn("cannot record recent file")
		}
	}
	return sess, nil
}

func (w *Workspace) Get(id string) (*Session, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	sess, ok := w.sessions[id]
	if !ok {
		return nil, ErrNotOpen
	}
	return sess, nil
}

// Close forgets the session. Unsaved edits are discarded.
func (w *Workspace) Close(id string) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	sess, ok := w.sessions[id]
	if !ok {
		return ErrNotOpen
	}
	delete(w.sessions, id)
	delete(w.sessionsPath, sess.path)
	return nil
}

// Sessions returns the open sessions ordered by path
func (w *Workspace) Sessions() []*Session {
	w.lock.Lock()
	defer w.lock.Unlock()
	rtn := make([]*Session, 0, len(w.sessions))
	for _, sess := range w.sessions {
		rtn = append(rtn, sess)
	}
	sort.Slice(rtn, func(i, j int) bool {
		return rtn[i].path < rtn[j].path
	})
	return rtn
}
