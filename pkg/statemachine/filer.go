// SPDX-License-Identifier: GPL-2.0-or-later

package statemachine

import (
	"context"

	"gcast/pkg/fileindex"
	"gcast/pkg/front"
	"gcast/pkg/gatekeeper"
	"gcast/pkg/protocol"
)

const (
	nameFiler          = "Filer"
	nameFilerReadCache = "FilerReadCache"
	nameFilerRefresh   = "FilerRefreshCache"
	nameFilerSearch    = "FilerSearch"
)

// filerState reads the persisted cache, then loops showing the Init screen
// of the Filer UI: Stop leaves, RefreshCache re-crawls, Search enters the
// search substate. Tree browsing is not wired into a substate; FsStart::Tree
// is logged and ignored.
func filerState(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps) error {
	logger := newStateLogger(nameFiler, deps.Log)
	logger.entered()
	defer logger.exited()

	idx, err := filerReadCacheState(ctx, ctrl, deps)
	if err != nil {
		return err
	}

	for {
		ts, ok := ctrl.SendRecvLazy(ctx, func() front.State {
			view := front.FsView{Kind: front.FsInit}
			if idx != nil {
				view.HasLastCacheDate = true
				view.LastCacheDate = idx.UpdatedAt
			}
			return front.FileSearch(view)
		})
		if !ok {
			return nil
		}

		switch {
		case ts.Kind == protocol.TSFsStart && ts.FsStart == protocol.FsStartStop:
			return nil

		case ts.Kind == protocol.TSFsStart && ts.FsStart == protocol.FsStartRefreshCache:
			newIdx, err := filerRefreshCacheState(ctx, ctrl, deps)
			if err != nil {
				return err
			}
			idx = newIdx

		case ts.Kind == protocol.TSFsStart && ts.FsStart == protocol.FsStartSearch:
			if idx == nil {
				logger.invalid(ts)
				continue
			}
			if err := filerSearchState(ctx, ctrl, deps, idx); err != nil {
				return err
			}

		case ts.Kind == protocol.TSFsStart && ts.FsStart == protocol.FsStartTree:
			logger.invalid(ts)

		default:
			logger.invalid(ts)
		}
	}
}

// filerReadCacheState loads the persisted index, showing the Init screen
// while it does. An unreadable cache surfaces as an error screen.
func filerReadCacheState(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps) (*fileindex.CacheIndex, error) {
	logger := newStateLogger(nameFilerReadCache, deps.Log)
	logger.entered()
	defer logger.exited()

	ctrl.Send(ctx, front.FileSearch(front.FsView{Kind: front.FsInit}))

	idx, err := deps.Store.Load()
	if err != nil {
		return nil, jumpUserError("Could not read the file cache", err)
	}
	return idx, nil
}

// filerRefreshCacheState crawls deps.Config.RootDirs, streaming Refreshing
// progress views, persists the result, then waits for BackToTheBeginning
// before returning to the Filer menu.
func filerRefreshCacheState(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps) (*fileindex.CacheIndex, error) {
	logger := newStateLogger(nameFilerRefresh, deps.Log)
	logger.entered()
	defer logger.exited()

	idx, err := fileindex.Refresh(deps.Config.RootDirs, func(v front.FsView) {
		ctrl.Send(ctx, front.FileSearch(v))
	})
	if err != nil {
		return nil, jumpUserError("Refreshing the file cache failed", err)
	}

	if err := deps.Store.Save(idx); err != nil && deps.Log != nil {
		deps.Log.Warn().Src("statemachine").Msgf("failed to persist the refreshed file cache: %v", err)
	}

	for {
		ts, ok := ctrl.Recv(ctx)
		if !ok {
			return idx, nil
		}
		if ts.Kind == protocol.TSFsControl && ts.FsControl.Kind == protocol.FsCtrlBackToTheBeginning {
			return idx, nil
		}
		logger.invalid(ts)
	}
}

// filerSearchState shows ranked results for the empty query, then re-runs
// the search on every FsControl::Search, returns to the Filer menu on
// BackToTheBeginning, and jumps to Mpv on MpvStart::File.
func filerSearchState(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps, idx *fileindex.CacheIndex) error {
	logger := newStateLogger(nameFilerSearch, deps.Log)
	logger.entered()
	defer logger.exited()

	ctrl.Send(ctx, front.FileSearch(fileindex.Search(idx, "")))

	for {
		ts, ok := ctrl.Recv(ctx)
		if !ok {
			return nil
		}

		switch {
		case ts.Kind == protocol.TSFsControl && ts.FsControl.Kind == protocol.FsCtrlBackToTheBeginning:
			return nil
		case ts.Kind == protocol.TSFsControl && ts.FsControl.Kind == protocol.FsCtrlSearch:
			ctrl.Send(ctx, front.FileSearch(fileindex.Search(idx, ts.FsControl.Query)))
		case ts.Kind == protocol.TSMpvStart && ts.MpvStart.Kind == protocol.MpvStartFile:
			return jumpMpvStart(ts.MpvStart)
		default:
			logger.invalid(ts)
		}
	}
}
