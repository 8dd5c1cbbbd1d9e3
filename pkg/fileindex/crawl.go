// SPDX-License-Identifier: GPL-2.0-or-later

package fileindex

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"gcast/pkg/front"
)

// ProgressFunc receives a Refreshing view after each step of Refresh.
type ProgressFunc func(front.FsView)

// dirEntry pairs a discovered filesystem entry with the root it came from.
type dirEntry struct {
	root int
	path string // absolute path
}

// Refresh crawls roots (absolute paths) into a CacheIndex, reporting
// progress through report after every phase.
func Refresh(roots []string, report ProgressFunc) (*CacheIndex, error) {
	status := make([]front.RootStatus, len(roots))
	for i := range status {
		status[i] = front.RootPending
	}

	probe(roots, status, report)

	shallowFiles, shallowDirs := shallowScan(roots, status, report)

	numErrors := 0
	deepFiles, deepDirs := deepScan(shallowDirs, roots, status, report, &numErrors)

	allFiles := append(shallowFiles, deepFiles...)
	allDirs := append(shallowDirs, deepDirs...)

	idx := linkAndFinalize(roots, allFiles, allDirs)
	idx.UpdatedAt = time.Now()

	report(makeRefreshingView(roots, status, len(shallowDirs)+len(deepDirs), len(shallowDirs)+len(deepDirs), numErrors, true))

	return idx, nil
}

func probe(roots []string, status []front.RootStatus, report ProgressFunc) {
	for i := range status {
		status[i] = front.RootLoading
	}
	report(makeRefreshingView(roots, status, 0, 0, 0, false))

	var g errgroup.Group
	results := make([]front.RootStatus, len(roots))
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			f, err := os.Open(filepath.Join(root, "."))
			if err != nil {
				results[i] = front.RootError
			} else {
				f.Close()
				results[i] = front.RootPending
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, s := range results {
		status[i] = s
		report(makeRefreshingView(roots, status, 0, 0, 0, false))
	}
}

// shallowScan lists direct children of each reachable root, one level
// deep, sequentially.
func shallowScan(roots []string, status []front.RootStatus, report ProgressFunc) ([]FileEntry, []dirEntry) {
	var files []FileEntry
	var dirs []dirEntry

	for i, root := range roots {
		if status[i] == front.RootError {
			continue
		}
		status[i] = front.RootLoading
		report(makeRefreshingView(roots, status, 0, len(dirs), 0, false))

		entries, err := os.ReadDir(root)
		if err != nil {
			status[i] = front.RootError
			continue
		}

		for _, e := range entries {
			abs := filepath.Join(root, e.Name())
			if e.IsDir() {
				dirs = append(dirs, dirEntry{root: i, path: abs})
			} else if e.Type().IsRegular() && hasWhitelistedExt(abs) {
				files = append(files, FileEntry{RootIndex: i, PathRelativeRoot: stripRoot(roots[i], abs)})
			}
		}
		status[i] = front.RootDone
	}
	report(makeRefreshingView(roots, status, 0, len(dirs), 0, false))

	return files, dirs
}

// deepScan recursively walks every shallow subdirectory, collecting every
// descendant file and directory.
func deepScan(shallowDirs []dirEntry, roots []string, status []front.RootStatus, report ProgressFunc, numErrors *int) ([]FileEntry, []dirEntry) {
	var files []FileEntry
	var dirs []dirEntry

	total := len(shallowDirs)
	for i, sd := range shallowDirs {
		report(makeRefreshingView(roots, status, i, total, *numErrors, false))

		err := filepath.WalkDir(sd.path, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				*numErrors++
				return nil
			}
			if path == sd.path {
				return nil // the shallow dir itself was already recorded
			}
			if d.IsDir() {
				dirs = append(dirs, dirEntry{root: sd.root, path: path})
			} else if d.Type().IsRegular() && hasWhitelistedExt(path) {
				files = append(files, FileEntry{RootIndex: sd.root, PathRelativeRoot: stripRoot(roots[sd.root], path)})
			}
			return nil
		})
		if err != nil {
			*numErrors++
		}
	}

	return files, dirs
}

func stripRoot(root, abs string) string {
	rel := abs[len(root):]
	if rel == "" {
		return "/"
	}
	return rel
}

// linkAndFinalize sorts files and dirs by PathRelativeRoot, links each
// entry to its parent directory's Children, and builds RootDirPointers.
// Orphaned entries (whose parent isn't found, which should not happen for
// well-formed scan output) are dropped.
func linkAndFinalize(roots []string, files []FileEntry, discoveredDirs []dirEntry) *CacheIndex {
	dirs := make([]DirEntry, 0, len(discoveredDirs)+len(roots))
	for i, root := range roots {
		dirs = append(dirs, DirEntry{RootIndex: i, PathRelativeRoot: ""})
		for _, d := range discoveredDirs {
			if d.root == i {
				dirs = append(dirs, DirEntry{RootIndex: i, PathRelativeRoot: stripRoot(root, d.path)})
			}
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].PathRelativeRoot < files[j].PathRelativeRoot
	})
	sort.Slice(dirs, func(i, j int) bool {
		return dirs[i].PathRelativeRoot < dirs[j].PathRelativeRoot
	})

	type dirKey struct {
		root int
		path string
	}
	dirIndexByKey := make(map[dirKey]int, len(dirs))
	for i, d := range dirs {
		dirIndexByKey[dirKey{d.RootIndex, d.PathRelativeRoot}] = i
	}

	rootDirPointers := make([]Ref, len(roots))
	for i := range roots {
		idx := dirIndexByKey[dirKey{i, ""}]
		rootDirPointers[i] = Ref{Kind: RefDir, Index: idx}
	}

	for i, f := range files {
		parentKey := dirKey{f.RootIndex, dirname(f.PathRelativeRoot)}
		parentIdx, ok := dirIndexByKey[parentKey]
		if !ok {
			continue // orphan: parent not indexed, drop silently
		}
		dirs[parentIdx].Children = append(dirs[parentIdx].Children, Ref{Kind: RefFile, Index: i})
	}

	for i, d := range dirs {
		if d.IsRoot() {
			continue
		}
		parentKey := dirKey{d.RootIndex, dirname(d.PathRelativeRoot)}
		parentIdx, ok := dirIndexByKey[parentKey]
		if !ok {
			continue
		}
		dirs[parentIdx].Children = append(dirs[parentIdx].Children, Ref{Kind: RefDir, Index: i})
	}

	return &CacheIndex{
		Files:           files,
		Dirs:            dirs,
		Roots:           append([]string(nil), roots...),
		RootDirPointers: rootDirPointers,
	}
}

func makeRefreshingView(roots []string, status []front.RootStatus, doneDirs, totalDirs, numErrors int, isDone bool) front.FsView {
	infos := make([]front.RootInfo, len(roots))
	for i, root := range roots {
		infos[i] = front.RootInfo{Path: root, Status: status[i]}
	}
	return front.FsView{
		Kind:      front.FsRefreshing,
		Roots:     infos,
		TotalDirs: totalDirs,
		DoneDirs:  doneDirs,
		NumErrors: numErrors,
		IsDone:    isDone,
	}
}
