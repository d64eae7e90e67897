// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"os"
	"path/filepath"
	"testing"
)

// makeTestTree builds:
//
//	root/
//	  docs/
//	    guide.md
//	  src/
//	    main.go
//	  readme.md
func makeTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"docs", "src"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	files := map[string]string{
		"docs/guide.md": "guide",
		"src/main.go":   "package main",
		"readme.md":     "hi",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func entryNames(tree *Tree) []string {
	var names []string
	for _, entry := range tree.entries {
		names = append(names, entry.name)
	}
	return names
}

func TestNewTreeOrdering(t *testing.T) {
	tree := NewTree(makeTestTree(t))

	// Directories first, then files, both name-sorted.
	want := []string{"docs", "src", "readme.md"}
	got := entryNames(&tree)
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExpandAndCollapse(t *testing.T) {
	tree := NewTree(makeTestTree(t))

	// Cursor starts on "docs"; expanding reveals its child.
	tree.Expand()
	got := entryNames(&tree)
	want := []string{"docs", "guide.md", "src", "readme.md"}
	if len(got) != len(want) {
		t.Fatalf("after expand entries = %v, want %v", got, want)
	}

	entry, ok := tree.Current()
	if !ok || entry.name != "docs" {
		t.Fatalf("cursor after expand on %q, want docs", entry.name)
	}

	tree.Collapse()
	if len(tree.entries) != 3 {
		t.Errorf("after collapse %d entries, want 3", len(tree.entries))
	}
}

func TestCollapseOnFileJumpsToParent(t *testing.T) {
	tree := NewTree(makeTestTree(t))

	tree.Expand() // docs expanded
	tree.MoveDown()
	entry, _ := tree.Current()
	if entry.name != "guide.md" {
		t.Fatalf("cursor on %q, want guide.md", entry.name)
	}

	tree.Collapse()
	entry, _ = tree.Current()
	if entry.name != "docs" {
		t.Errorf("cursor on %q after collapse-on-file, want parent docs", entry.name)
	}
}

func TestReloadPreservesExpansionAndCursor(t *testing.T) {
	root := makeTestTree(t)
	tree := NewTree(root)

	tree.Expand() // docs
	tree.MoveDown()
	before, _ := tree.Current()

	// A new file appears between reloads.
	if err := os.WriteFile(filepath.Join(root, "changelog.md"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tree.Reload()

	after, ok := tree.Current()
	if !ok || after.path != before.path {
		t.Errorf("cursor moved across reload: %q -> %q", before.path, after.path)
	}

	// docs is still expanded.
	names := entryNames(&tree)
	found := false
	for _, name := range names {
		if name == "guide.md" {
			found = true
		}
	}
	if !found {
		t.Errorf("expansion lost across reload: %v", names)
	}
}

func TestReloadAfterDeletionClampsCursor(t *testing.T) {
	root := makeTestTree(t)
	tree := NewTree(root)
	tree.MoveBottom()

	if err := os.Remove(filepath.Join(root, "readme.md")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	tree.Reload()

	if _, ok := tree.Current(); !ok {
		t.Error("no current entry after deletion reload")
	}
	if tree.cursor >= len(tree.entries) {
		t.Errorf("cursor %d out of range (%d entries)", tree.cursor, len(tree.entries))
	}
}

func TestMoveBounds(t *testing.T) {
	tree := NewTree(makeTestTree(t))

	tree.MoveUp() // already at top
	if tree.cursor != 0 {
		t.Errorf("cursor = %d after MoveUp at top, want 0", tree.cursor)
	}

	tree.MoveBottom()
	tree.MoveDown() // already at bottom
	if tree.cursor != len(tree.entries)-1 {
		t.Errorf("cursor = %d after MoveDown at bottom, want %d",
			tree.cursor, len(tree.entries)-1)
	}
}

func TestToggleReturnsEntry(t *testing.T) {
	tree := NewTree(makeTestTree(t))

	entry, ok := tree.Toggle()
	if !ok || entry.name != "docs" || !entry.isDir {
		t.Fatalf("Toggle = %+v, %v", entry, ok)
	}
	// docs is now expanded.
	if len(tree.entries) != 4 {
		t.Errorf("%d entries after toggle, want 4", len(tree.entries))
	}

	entry, ok = tree.Toggle()
	if !ok || entry.name != "docs" {
		t.Fatalf("second Toggle = %+v, %v", entry, ok)
	}
	if len(tree.entries) != 3 {
		t.Errorf("%d entries after re-toggle, want 3", len(tree.entries))
	}
}

func TestUnreadableDirectorySkipped(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks are bypassed as root")
	}
	root := makeTestTree(t)
	locked := filepath.Join(root, "locked")
	if err := os.Mkdir(locked, 0o000); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	tree := NewTree(root)
	// The locked directory lists as an entry; expanding it yields no
	// children and no error.
	for i, entry := range tree.entries {
		if entry.name == "locked" {
			tree.cursor = i
		}
	}
	tree.Expand()
	for _, entry := range tree.entries {
		if entry.depth > 0 && entry.name != "guide.md" && entry.name != "main.go" {
			t.Errorf("unexpected child entry %+v", entry)
		}
	}
}
