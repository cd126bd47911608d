// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/outrigdev/iniedit/pkg/gensearch"
	"github.com/outrigdev/iniedit/pkg/linemodel"
	"github.com/outrigdev/iniedit/pkg/settings"
)

func setupWorkspace(t *testing.T) (*Workspace, *settings.Store, string) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"player.ini":       "### PLAYER ###\nHealth = 100\nMana=50\n",
		"enemies/orc.ini":  "# orc\nHealth = 30\n",
		"enemies/list.txt": "not a candidate\n",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	store := settings.NewStore(filepath.Join(t.TempDir(), settings.SettingsFileName))
	store.Load()
	return New(root, store), store, root
}

func TestListFiles(t *testing.T) {
	ws, _, root := setupWorkspace(t)
	entries, err := ws.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	want := []FileEntry{
		{Path: filepath.Join(root, "enemies", "orc.ini"), RelPath: "enemies/orc.ini", Name: "orc.ini"},
		{Path: filepath.Join(root, "player.ini"), RelPath: "player.ini", Name: "player.ini"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("ListFiles()\n got: %+v\nwant: %+v", entries, want)
	}

	if _, err := New("", nil).ListFiles(); !errors.Is(err, ErrNoRoot) {
		t.Errorf("ListFiles() without root error = %v, want ErrNoRoot", err)
	}
}

func TestFilter(t *testing.T) {
	ws, _, _ := setupWorkspace(t)
	entries, err := ws.Filter(context.Background(), "mana", gensearch.SyntaxPlain)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].RelPath != "player.ini" {
		t.Errorf("Filter(mana) = %+v", entries)
	}
	entries, err = ws.Filter(context.Background(), "", gensearch.SyntaxPlain)
	if err != nil || len(entries) != 2 {
		t.Errorf("Filter(\"\") = %+v, %v; want all files", entries, err)
	}
}

func TestSetRoot(t *testing.T) {
	ws, store, root := setupWorkspace(t)
	sub := filepath.Join(root, "enemies")
	if err := ws.SetRoot(sub); err != nil {
		t.Fatalf("SetRoot() error = %v", err)
	}
	if ws.Root() != sub || store.Get().LastFolder != sub {
		t.Errorf("root = %q, last folder = %q", ws.Root(), store.Get().LastFolder)
	}
	if err := ws.SetRoot(filepath.Join(root, "missing")); err == nil {
		t.Errorf("expected error for missing folder")
	}
	if ws.Root() != sub {
		t.Errorf("failed SetRoot changed the root")
	}
}

func TestOpenDedupesAndRecords(t *testing.T) {
	ws, store, root := setupWorkspace(t)
	s1, err := ws.Open("player.ini")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s2, err := ws.Open(filepath.Join(root, "enemies", "..", "player.ini"))
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Errorf("same file opened twice as distinct sessions")
	}
	if got, err := ws.Get(s1.Id()); err != nil || got != s1 {
		t.Errorf("Get() = %v, %v", got, err)
	}
	if recent := store.Get().RecentFiles; len(recent) != 1 || recent[0] != s1.Path() {
		t.Errorf("recent files = %v", recent)
	}
	if s1.Name() != "player.ini" {
		t.Errorf("Name() = %q", s1.Name())
	}
}

func TestOpenConcurrent(t *testing.T) {
	ws, _, _ := setupWorkspace(t)
	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := ws.Open("player.ini")
			if err != nil {
				t.Error(err)
				return
			}
			ids[i] = sess.Id()
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		if id != ids[0] {
			t.Errorf("concurrent opens produced different sessions: %v", ids)
			break
		}
	}
	if n := len(ws.Sessions()); n != 1 {
		t.Errorf("Sessions() has %d entries, want 1", n)
	}
}

func TestOpenRejectsOutsideRoot(t *testing.T) {
	ws, _, _ := setupWorkspace(t)
	outside := filepath.Join(t.TempDir(), "x.ini")
	if err := os.WriteFile(outside, []byte("a = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ws.Open(outside); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Open(outside) error = %v, want ErrOutsideRoot", err)
	}
	if _, err := ws.Open("../x.ini"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("Open(../x.ini) error = %v, want ErrOutsideRoot", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	ws, _, _ := setupWorkspace(t)
	_, err := ws.Open("nope.ini")
	var ioErr *linemodel.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("Open(nope.ini) error = %v, want IOError", err)
	}
}

func TestEditAndSave(t *testing.T) {
	ws, _, root := setupWorkspace(t)
	sess, err := ws.Open("player.ini")
	if err != nil {
		t.Fatal(err)
	}
	wantValues := []Entry{{Key: "Health", Value: "100", LineNum: 1}, {Key: "Mana", Value: "50", LineNum: 2}}
	if got := sess.Values(); !reflect.DeepEqual(got, wantValues) {
		t.Errorf("Values() = %+v", got)
	}

	saved, err := sess.Save()
	if err != nil || saved {
		t.Errorf("Save() without edits = %v, %v; want false, nil", saved, err)
	}

	changed, err := sess.ApplyEdits(map[string]string{"Health": "100", "Mana": "75", "Bogus": "1"})
	if err != nil || !reflect.DeepEqual(changed, []string{"Mana"}) {
		t.Errorf("ApplyEdits() = %v, %v; want [Mana], nil", changed, err)
	}
	if !sess.Dirty() {
		t.Errorf("session should be dirty after an edit")
	}
	saved, err = sess.Save()
	if err != nil || !saved {
		t.Fatalf("Save() = %v, %v", saved, err)
	}
	data, _ := os.ReadFile(filepath.Join(root, "player.ini"))
	if string(data) != "### PLAYER ###\nHealth = 100\nMana = 75\n" {
		t.Errorf("saved content = %q", data)
	}
	if sess.Dirty() {
		t.Errorf("session should be clean after save")
	}

	ms := sess.Highlight("75", gensearch.SyntaxPlain)
	if first, ok := ms.FirstMatch(); !ok || first.Key != "Mana" {
		t.Errorf("Highlight(75) first = %+v, %v", first, ok)
	}
}

func TestSaveFailureKeepsEdits(t *testing.T) {
	ws, _, root := setupWorkspace(t)
	sess, err := ws.Open("player.ini")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.ApplyEdits(map[string]string{"Health": "1"}); err != nil {
		t.Fatal(err)
	}
	// replace the file with a directory so the rename fails
	path := filepath.Join(root, "player.ini")
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Save(); err == nil {
		t.Fatalf("expected save error")
	}
	if !sess.Dirty() || sess.Values()[0].Value != "1" {
		t.Errorf("edits lost after failed save")
	}
}

func TestClose(t *testing.T) {
	ws, _, _ := setupWorkspace(t)
	sess, err := ws.Open("player.ini")
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.Close(sess.Id()); err != nil {
		t.Fatal(err)
	}
	if _, err := ws.Get(sess.Id()); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Get() after close error = %v", err)
	}
	if err := ws.Close(sess.Id()); !errors.Is(err, ErrNotOpen) {
		t.Errorf("second Close() error = %v", err)
	}
	again, err := ws.Open("player.ini")
	if err != nil || again.Id() == sess.Id() {
		t.Errorf("reopen should create a new session")
	}
}

func TestApplyEditsRejectsLineBreaks(t *testing.T) {
	ws, _, root := setupWorkspace(t)
	sess, err := ws.Open("player.ini")
	if err != nil {
		t.Fatal(err)
	}
	edits := map[string]string{"Health": "1", "Mana": "75\nAdmin = true\n# x"}
	changed, err := sess.ApplyEdits(edits)
	if !errors.Is(err, linemodel.ErrMultilineValue) {
		t.Fatalf("ApplyEdits() error = %v, want ErrMultilineValue", err)
	}
	if changed != nil || sess.Dirty() {
		t.Errorf("ApplyEdits() applied %v, dirty = %v; want nothing applied", changed, sess.Dirty())
	}
	if _, err := sess.ApplyEdits(map[string]string{"Mana": "75\r"}); err == nil {
		t.Errorf("ApplyEdits() with CR error = nil, want error")
	}
	if saved, err := sess.Save(); err != nil || saved {
		t.Errorf("Save() = %v, %v; want nothing to save", saved, err)
	}
	data, _ := os.ReadFile(filepath.Join(root, "player.ini"))
	if string(data) != "### PLAYER ###\nHealth = 100\nMana=50\n" {
		t.Errorf("file changed: %q", data)
	}
}

func TestOpenRejectsSymlinkEscape(t *testing.T) {
	ws, _, root := setupWorkspace(t)
	outsideDir := t.TempDir()
	outside := filepath.Join(outsideDir, "secret.ini")
	if err := os.WriteFile(outside, []byte("Token = abc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "escape.ini")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(outsideDir, filepath.Join(root, "escapedir")); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{"escape.ini", "escapedir/secret.ini"} {
		if _, err := ws.Open(path); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Open(%s) error = %v, want ErrOutsideRoot", path, err)
		}
	}

	// a link that stays inside the root is fine
	if err := os.Symlink(filepath.Join(root, "player.ini"), filepath.Join(root, "alias.ini")); err != nil {
		t.Fatal(err)
	}
	if _, err := ws.Open("alias.ini"); err != nil {
		t.Errorf("Open(alias.ini) error = %v", err)
	}
}
