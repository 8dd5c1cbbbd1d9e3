// SPDX-License-Identifier: GPL-2.0-or-later

package fileindex

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"gcast/pkg/front"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestRefreshScenario4(t *testing.T) {
	r1 := t.TempDir()
	r2 := t.TempDir()

	writeFile(t, filepath.Join(r1, "a.mp4"))
	writeFile(t, filepath.Join(r1, "dir", "b.mkv"))
	writeFile(t, filepath.Join(r2, "c.txt"))

	var lastView front.FsView
	idx, err := Refresh([]string{r1, r2}, func(v front.FsView) { lastView = v })
	require.NoError(t, err)

	require.True(t, lastView.IsDone)

	require.Len(t, idx.Files, 2)
	paths := []string{idx.Files[0].PathRelativeRoot, idx.Files[1].PathRelativeRoot}
	sort.Strings(paths)
	require.Equal(t, []string{"/a.mp4", "/dir/b.mkv"}, paths)

	require.True(t, sort.SliceIsSorted(idx.Files, func(i, j int) bool {
		return idx.Files[i].PathRelativeRoot < idx.Files[j].PathRelativeRoot
	}))
	require.True(t, sort.SliceIsSorted(idx.Dirs, func(i, j int) bool {
		return idx.Dirs[i].PathRelativeRoot < idx.Dirs[j].PathRelativeRoot
	}))

	require.Len(t, idx.RootDirPointers, 2)
	r2RootDir := idx.Dirs[idx.RootDirPointers[1].Index]
	require.Equal(t, 1, r2RootDir.RootIndex)
	require.True(t, r2RootDir.IsRoot())

	foundSubdir := false
	for _, d := range idx.Dirs {
		if d.PathRelativeRoot == "/dir" {
			foundSubdir = true
		}
	}
	require.True(t, foundSubdir)

	for _, f := range idx.Files {
		parentFound := false
		for _, d := range idx.Dirs {
			if d.RootIndex == f.RootIndex && d.PathRelativeRoot == dirname(f.PathRelativeRoot) {
				parentFound = true
			}
		}
		require.True(t, parentFound, "file %+v has no parent dir", f)
	}

	for _, d := range idx.Dirs {
		if d.IsRoot() {
			continue
		}
		parentFound := false
		for _, pd := range idx.Dirs {
			if pd.RootIndex == d.RootIndex && pd.PathRelativeRoot == dirname(d.PathRelativeRoot) {
				parentFound = true
			}
		}
		require.True(t, parentFound, "dir %+v has no parent dir", d)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	r1 := t.TempDir()
	writeFile(t, filepath.Join(r1, "a.mkv"))

	idx, err := Refresh([]string{r1}, func(front.FsView) {})
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := OpenStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(idx))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	if diff := cmp.Diff(idx, loaded); diff != "" {
		t.Fatalf("round-tripped index differs (-want +got):\n%s", diff)
	}
}

func TestStoreLoadEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := OpenStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	idx, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, idx)
}

func TestSearchFiltersAndRanks(t *testing.T) {
	idx := &CacheIndex{
		Files: []FileEntry{
			{RootIndex: 0, PathRelativeRoot: "/movies/inception.mkv"},
			{RootIndex: 0, PathRelativeRoot: "/movies/interstellar.mkv"},
		},
	}

	view := Search(idx, "incep")
	require.True(t, view.QueryValid)
	require.Len(t, view.Results, 1)
	require.Equal(t, "/movies/inception.mkv", view.Results[0].PathRelativeRoot)
}

func TestSearchInvalidQueryIsNotAnError(t *testing.T) {
	idx := &CacheIndex{Files: []FileEntry{{PathRelativeRoot: "/a.mkv"}}}
	view := Search(idx, " leading space")
	require.False(t, view.QueryValid)
	require.Empty(t, view.Results)
}

func TestTreeNavigation(t *testing.T) {
	idx := &CacheIndex{
		Roots: []string{"/r1"},
		Dirs: []DirEntry{
			{RootIndex: 0, PathRelativeRoot: "", Children: []Ref{{Kind: RefDir, Index: 1}}},
			{RootIndex: 0, PathRelativeRoot: "/sub", Children: []Ref{{Kind: RefFile, Index: 0}}},
		},
		Files:           []FileEntry{{RootIndex: 0, PathRelativeRoot: "/sub/movie.mkv"}},
		RootDirPointers: []Ref{{Kind: RefDir, Index: 0}},
	}

	tree := NewTree(idx)
	require.Empty(t, tree.Breadcrumbs())

	tree.Cd(0) // descend into the root dir
	tree.Cd(0) // descend into /sub
	require.Equal(t, []string{"/r1", "sub"}, tree.Breadcrumbs())

	view := tree.View()
	require.Len(t, view.Entries, 1)
	require.Equal(t, front.EntryFile, view.Entries[0].Kind)
	require.Equal(t, "movie.mkv", view.Entries[0].Name)

	tree.CdUp()
	require.Equal(t, []string{"/r1"}, tree.Breadcrumbs())
}
