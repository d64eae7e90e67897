// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// treeEntry is one visible row of the directory tree.
type treeEntry struct {
	path     string
	name     string
	depth    int
	isDir    bool
	expanded bool
}

// Tree is the flattened directory tree view: the root's descendants
// in display order, limited to expanded directories. The expansion
// set and cursor survive reloads, so the periodic refresh doesn't
// yank the view out from under the user.
type Tree struct {
	root     string
	expanded map[string]bool
	entries  []treeEntry
	cursor   int
	offset   int
	height   int
}

// NewTree creates a tree rooted at the given directory with the root
// level expanded.
func NewTree(root string) Tree {
	tree := Tree{
		root:     root,
		expanded: map[string]bool{root: true},
		height:   10,
	}
	tree.Reload()
	return tree
}

// Reload re-reads the filesystem, preserving expansion state and
// re-finding the cursor entry by path. Directories that vanished
// simply drop out; a vanished cursor target clamps to the nearest
// remaining row.
func (t *Tree) Reload() {
	var cursorPath string
	if t.cursor >= 0 && t.cursor < len(t.entries) {
		cursorPath = t.entries[t.cursor].path
	}

	t.entries = t.entries[:0]
	t.appendDir(t.root, 0)

	if cursorPath != "" {
		for i, entry := range t.entries {
			if entry.path == cursorPath {
				t.cursor = i
				break
			}
		}
	}
	t.clamp()
}

// appendDir lists one directory and recurses into expanded
// subdirectories. Unreadable directories contribute no rows — the
// tree shows what it can see.
func (t *Tree) appendDir(dir string, depth int) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	sort.Slice(dirEntries, func(i, j int) bool {
		iDir, jDir := dirEntries[i].IsDir(), dirEntries[j].IsDir()
		if iDir != jDir {
			return iDir
		}
		return strings.ToLower(dirEntries[i].Name()) < strings.ToLower(dirEntries[j].Name())
	})

	for _, dirEntry := range dirEntries {
		path := filepath.Join(dir, dirEntry.Name())
		isDir := dirEntry.IsDir()
		entry := treeEntry{
			path:     path,
			name:     dirEntry.Name(),
			depth:    depth,
			isDir:    isDir,
			expanded: isDir && t.expanded[path],
		}
		t.entries = append(t.entries, entry)
		if entry.expanded {
			t.appendDir(path, depth+1)
		}
	}
}

// Current returns the entry under the cursor.
func (t *Tree) Current() (treeEntry, bool) {
	if t.cursor < 0 || t.cursor >= len(t.entries) {
		return treeEntry{}, false
	}
	return t.entries[t.cursor], true
}

func (t *Tree) MoveUp() {
	t.cursor--
	t.clamp()
}

func (t *Tree) MoveDown() {
	t.cursor++
	t.clamp()
}

func (t *Tree) MoveTop() {
	t.cursor = 0
	t.clamp()
}

func (t *Tree) MoveBottom() {
	t.cursor = len(t.entries) - 1
	t.clamp()
}

// Expand opens the directory under the cursor.
func (t *Tree) Expand() {
	entry, ok := t.Current()
	if !ok || !entry.isDir || entry.expanded {
		return
	}
	t.expanded[entry.path] = true
	t.Reload()
}

// Collapse closes the directory under the cursor, or moves to the
// parent directory when the cursor is on a file or a closed
// directory.
func (t *Tree) Collapse() {
	entry, ok := t.Current()
	if !ok {
		return
	}
	if entry.isDir && entry.expanded {
		delete(t.expanded, entry.path)
		t.Reload()
		return
	}
	parent := filepath.Dir(entry.path)
	for i, candidate := range t.entries {
		if candidate.path == parent {
			t.cursor = i
			t.clamp()
			return
		}
	}
}

// Toggle flips the expansion of the directory under the cursor.
// Returns the entry so the caller can emit the selection event.
func (t *Tree) Toggle() (treeEntry, bool) {
	entry, ok := t.Current()
	if !ok {
		return treeEntry{}, false
	}
	if entry.isDir {
		if entry.expanded {
			delete(t.expanded, entry.path)
		} else {
			t.expanded[entry.path] = true
		}
		t.Reload()
	}
	return entry, true
}

// SetHeight sets the number of visible rows for scrolling.
func (t *Tree) SetHeight(height int) {
	if height < 1 {
		height = 1
	}
	t.height = height
	t.clamp()
}

// clamp bounds the cursor and keeps it inside the visible window.
func (t *Tree) clamp() {
	if len(t.entries) == 0 {
		t.cursor = 0
		t.offset = 0
		return
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.cursor >= len(t.entries) {
		t.cursor = len(t.entries) - 1
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.height {
		t.offset = t.cursor - t.height + 1
	}
}

// visible returns the rows inside the scroll window.
func (t *Tree) visible() []treeEntry {
	if len(t.entries) == 0 {
		return nil
	}
	end := t.offset + t.height
	if end > len(t.entries) {
		end = len(t.entries)
	}
	return t.entries[t.offset:end]
}
