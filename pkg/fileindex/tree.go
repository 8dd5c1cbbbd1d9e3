// SPDX-License-Identifier: GPL-2.0-or-later

package fileindex

import (
	"path"
	"strings"

	"gcast/pkg/front"
)

// Tree is a cursor into a CacheIndex for browsing it directory by
// directory. The empty path means "at the list of roots".
type Tree struct {
	idx  *CacheIndex
	path []Ref // always Dir refs
}

// NewTree returns a Tree positioned at the root listing.
func NewTree(idx *CacheIndex) *Tree {
	return &Tree{idx: idx}
}

// currentChildren returns the Children of the directory the cursor is in,
// or the per-root pointers when at the root listing.
func (t *Tree) currentChildren() []Ref {
	if len(t.path) == 0 {
		return t.idx.RootDirPointers
	}
	return t.idx.Dirs[t.path[len(t.path)-1].Index].Children
}

// Cd descends into the i-th directory child of the current listing. It is
// a no-op if i is out of range or does not name a directory.
func (t *Tree) Cd(i int) {
	children := t.currentChildren()
	if i < 0 || i >= len(children) {
		return
	}
	if children[i].Kind != RefDir {
		return
	}
	t.path = append(t.path, children[i])
}

// CdUp pops one level, returning to the root listing when already
// shallow.
func (t *Tree) CdUp() {
	if len(t.path) == 0 {
		return
	}
	t.path = t.path[:len(t.path)-1]
}

// Breadcrumbs returns the path from a root to the current directory: the
// root's absolute path, then each subsequent directory's basename.
func (t *Tree) Breadcrumbs() []string {
	if len(t.path) == 0 {
		return nil
	}
	root := t.idx.Dirs[t.path[0].Index]
	crumbs := []string{t.idx.Roots[root.RootIndex]}
	for _, ref := range t.path[1:] {
		d := t.idx.Dirs[ref.Index]
		crumbs = append(crumbs, path.Base(d.PathRelativeRoot))
	}
	return crumbs
}

// View renders the current listing as an FsView.
func (t *Tree) View() front.FsView {
	children := t.currentChildren()
	entries := make([]front.TreeEntry, len(children))

	for i, ref := range children {
		switch ref.Kind {
		case RefFile:
			f := t.idx.Files[ref.Index]
			entries[i] = front.TreeEntry{
				Kind: front.EntryFile,
				Root: f.RootIndex,
				Path: f.PathRelativeRoot,
				Name: basename(f.PathRelativeRoot),
			}
		case RefDir:
			d := t.idx.Dirs[ref.Index]
			name := t.idx.Roots[d.RootIndex]
			if !d.IsRoot() {
				name = path.Base(d.PathRelativeRoot)
			}
			entries[i] = front.TreeEntry{
				Kind: front.EntryDir,
				Name: name,
				ID:   ref.Index,
			}
		}
	}

	return front.FsView{
		Kind:        front.FsTree,
		Breadcrumbs: t.Breadcrumbs(),
		Entries:     entries,
	}
}

func basename(relPath string) string {
	idx := strings.LastIndex(relPath, "/")
	return relPath[idx+1:]
}
