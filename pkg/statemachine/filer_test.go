// SPDX-License-Identifier: GPL-2.0-or-later

package statemachine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gcast/config"
	"gcast/pkg/fileindex"
	"gcast/pkg/front"
	"gcast/pkg/gatekeeper"
	"gcast/pkg/protocol"
)

func newTestStore(t *testing.T) *fileindex.Store {
	t.Helper()
	store, err := fileindex.OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestFilerReadCacheStateReturnsNilBeforeFirstRefresh(t *testing.T) {
	from := make(chan protocol.Message, 1)
	to := make(chan protocol.Message, 1)
	ctrl := gatekeeper.New(from, to, nil)
	deps := &Deps{Store: newTestStore(t)}

	idx, err := filerReadCacheState(context.Background(), ctrl, deps)
	require.NoError(t, err)
	require.Nil(t, idx)

	first := <-to
	require.Equal(t, front.FsInit, first.ToClient.FileSearch.Kind)
}

func TestFilerRefreshCacheStatePersistsAndWaitsForBackToBeginning(t *testing.T) {
	root := t.TempDir()
	from := make(chan protocol.Message, 1)
	to := make(chan protocol.Message, 8)
	ctrl := gatekeeper.New(from, to, nil)
	deps := &Deps{Config: &config.Config{RootDirs: []string{root}}, Store: newTestStore(t)}

	from <- protocol.ToServerMessage(0, protocol.ToServer{Kind: protocol.TSFsControl, FsControl: protocol.FsControl{Kind: protocol.FsCtrlBackToTheBeginning}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	idx, err := filerRefreshCacheState(ctx, ctrl, deps)
	require.NoError(t, err)
	require.NotNil(t, idx)

	saved, err := deps.Store.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Equal(t, []string{root}, saved.Roots)
}

func TestFilerSearchStateJumpsToMpvOnFileStart(t *testing.T) {
	idx := &fileindex.CacheIndex{
		Roots:           []string{"/movies"},
		Files:           []fileindex.FileEntry{{RootIndex: 0, PathRelativeRoot: "/a.mp4"}},
		Dirs:            []fileindex.DirEntry{{RootIndex: 0, PathRelativeRoot: ""}},
		RootDirPointers: []fileindex.Ref{{Kind: fileindex.RefDir, Index: 0}},
	}

	from := make(chan protocol.Message, 1)
	to := make(chan protocol.Message, 2)
	ctrl := gatekeeper.New(from, to, nil)
	deps := &Deps{}

	from <- protocol.ToServerMessage(0, protocol.ToServer{
		Kind:     protocol.TSMpvStart,
		MpvStart: protocol.MpvStart{Kind: protocol.MpvStartFile, Root: 0, Path: "/a.mp4"},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := filerSearchState(ctx, ctrl, deps, idx)

	var j *jump
	require.True(t, errors.As(err, &j))
	require.Equal(t, jumpKindMpv, j.kind)
	require.Equal(t, "/a.mp4", j.mpvStart.Path)

	first := <-to
	require.Equal(t, front.FsResults, first.ToClient.FileSearch.Kind)
}

func TestFilerSearchStateBackToTheBeginningReturns(t *testing.T) {
	idx := &fileindex.CacheIndex{Roots: []string{"/movies"}}

	from := make(chan protocol.Message, 1)
	to := make(chan protocol.Message, 1)
	ctrl := gatekeeper.New(from, to, nil)

	from <- protocol.ToServerMessage(0, protocol.ToServer{Kind: protocol.TSFsControl, FsControl: protocol.FsControl{Kind: protocol.FsCtrlBackToTheBeginning}})

	err := filerSearchState(context.Background(), ctrl, &Deps{}, idx)
	require.NoError(t, err)
}

func TestFilerStateStopEndsTheLoop(t *testing.T) {
	from := make(chan protocol.Message, 1)
	to := make(chan protocol.Message, 2)
	ctrl := gatekeeper.New(from, to, nil)
	deps := &Deps{Store: newTestStore(t)}

	from <- protocol.ToServerMessage(0, protocol.ToServer{Kind: protocol.TSFsStart, FsStart: protocol.FsStartStop})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := filerState(ctx, ctrl, deps)
	require.NoError(t, err)
}
