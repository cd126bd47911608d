// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/outrigdev/iniedit/pkg/gensearch"
)

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "home", SettingsFileName))
	got := store.Load()
	if !reflect.DeepEqual(got, Settings{}) {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(path)
	if got := store.Load(); !reflect.DeepEqual(got, Settings{}) {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SettingsFileName)
	store := NewStore(path)
	store.Load()
	if err := store.SetLastFolder(dir); err != nil {
		t.Fatalf("SetLastFolder() error = %v", err)
	}
	if err := store.SetQuerySyntax(gensearch.SyntaxQuery); err != nil {
		t.Fatalf("SetQuerySyntax() error = %v", err)
	}

	other := NewStore(path)
	got := other.Load()
	want := Settings{LastFolder: dir, QuerySyntax: gensearch.SyntaxQuery}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestUpdateWithoutChangeDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	store := NewStore(path)
	store.Load()
	if err := store.SetLastFolder(""); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no settings file after a no-op update, stat err = %v", err)
	}
}

func TestAddRecentFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), SettingsFileName))
	store.Load()
	for i := 0; i < MaxRecentFiles+2; i++ {
		if err := store.AddRecentFile("f" + strconv.Itoa(i) + ".ini"); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.AddRecentFile("f5.ini"); err != nil {
		t.Fatal(err)
	}
	recent := store.Get().RecentFiles
	if len(recent) != MaxRecentFiles {
		t.Fatalf("len(recent) = %d, want %d", len(recent), MaxRecentFiles)
	}
	if recent[0] != "f5.ini" || recent[1] != "f11.ini" {
		t.Errorf("recent = %v", recent)
	}
	seen := make(map[string]bool)
	for _, p := range recent {
		if seen[p] {
			t.Errorf("duplicate %q in recent list", p)
		}
		seen[p] = true
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), SettingsFileName))
	store.Load()
	if err := store.AddRecentFile("a.ini"); err != nil {
		t.Fatal(err)
	}
	got := store.Get()
	got.RecentFiles[0] = "changed"
	if store.Get().RecentFiles[0] != "a.ini" {
		t.Errorf("Get() leaked internal slice")
	}
}

func TestClearMissingFolder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SettingsFileName)
	store := NewStore(path)
	store.Load()

	gone := filepath.Join(dir, "gone")
	if err := store.SetLastFolder(gone); err != nil {
		t.Fatal(err)
	}
	folder, err := store.ClearMissingFolder()
	if err != nil || folder != "" {
		t.Errorf("ClearMissingFolder() = %q, %v; want cleared", folder, err)
	}
	if NewStore(path).Load().LastFolder != "" {
		t.Errorf("cleared folder was not persisted")
	}

	if err := store.SetLastFolder(dir); err != nil {
		t.Fatal(err)
	}
	if folder, _ := store.ClearMissingFolder(); folder != dir {
		t.Errorf("ClearMissingFolder() = %q, want %q", folder, dir)
	}
}

func TestLoadDropsUnknownSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	if err := os.WriteFile(path, []byte(`{"last_folder":"/x","query_syntax":"bogus"}`), 0644); err != nil {
		t.Fatal(err)
	}
	got := NewStore(path).Load()
	if got.LastFolder != "/x" || got.QuerySyntax != "" {
		t.Errorf("Load() = %+v", got)
	}
}
