// SPDX-License-Identifier: GPL-2.0-or-later

package statemachine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"gcast/pkg/front"
	"gcast/pkg/gatekeeper"
	"gcast/pkg/mpv"
	"gcast/pkg/protocol"
)

const nameMpv = "Mpv"

// mpvPollInterval bounds how long each handle.Next call blocks before the
// loop checks for a pending remote command. nativeHandle forbids concurrent
// calls, so Command is only ever issued from the same goroutine that drives
// Next, between one Next call and the next rather than alongside it.
const mpvPollInterval = 50 * time.Millisecond

// mpvURLState enters Mpv playing a remote URL.
func mpvURLState(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps, start protocol.MpvStart) error {
	logger := newStateLogger("MpvUrl", deps.Log)
	logger.entered()
	defer logger.exited()
	logger.info(fmt.Sprintf("playing url=%q paused=%v", start.URL, start.Paused))

	return mpvState(ctx, ctrl, deps, start.URL, start.Paused)
}

// mpvFileState enters Mpv playing a file named relative to one of the
// configured root directories.
func mpvFileState(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps, start protocol.MpvStart) error {
	logger := newStateLogger("MpvFile", deps.Log)
	logger.entered()
	defer logger.exited()
	logger.info(fmt.Sprintf("playing root=%d path=%q", start.Root, start.Path))

	if start.Root < 0 || start.Root >= len(deps.Config.RootDirs) {
		return jumpUserError("Could not find the file to play",
			fmt.Errorf("root %d is out of range of 0..%d", start.Root, len(deps.Config.RootDirs)))
	}

	path := filepath.Join(deps.Config.RootDirs[start.Root], start.Path)
	return mpvState(ctx, ctrl, deps, path, false)
}

// mpvEvent is one item off the Control.Recv side of mpvState's event loop.
type mpvEvent struct {
	ts protocol.ToServer
	ok bool
}

// mpvState loads path with a PlayerHandle and drives it until the remote
// stops playback, the connection drops, or the player itself ends or
// errors. Recv runs on its own goroutine, since it never touches the
// native handle; Next and Command are both only ever called from this
// goroutine, one at a time, so the native single-caller contract holds
// even though remote commands can arrive at any moment.
func mpvState(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps, path string, paused bool) error {
	logger := newStateLogger(nameMpv, deps.Log)
	logger.entered()
	defer logger.exited()

	ctrl.Send(ctx, front.Mpv(front.Load))

	handle, err := mpv.New(deps.NewNative, path, paused, deps.MpvConfigDir, deps.PreferredSub, deps.PreferredAudio, deps.Log)
	if err != nil {
		return jumpUserError("Could not start playback", err)
	}

	stateCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	recvEvents := make(chan mpvEvent)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			ts, ok := ctrl.Recv(stateCtx)
			select {
			case recvEvents <- mpvEvent{ts: ts, ok: ok}:
			case <-stateCtx.Done():
				return
			}
			if !ok {
				return
			}
		}
	}()

	var retErr error
	selfEnded := false

loop:
	for {
		if ctx.Err() != nil {
			break loop
		}

		pollCtx, pollCancel := context.WithTimeout(stateCtx, mpvPollInterval)
		view, nextErr := handle.Next(pollCtx)
		pollCancel()

		if nextErr != nil {
			retErr = jumpUserError("Mpv playback failed", nextErr)
			break loop
		}
		if view != nil {
			ctrl.Send(ctx, front.Mpv(*view))
			continue loop
		}
		if handle.Ended() {
			selfEnded = true
			break loop
		}

		select {
		case ev := <-recvEvents:
			if !ev.ok {
				break loop
			}
			switch {
			case ev.ts.Kind == protocol.TSMpvStart && ev.ts.MpvStart.Kind == protocol.MpvStartStop:
				break loop
			case ev.ts.Kind == protocol.TSMpvCtrl:
				if err := handle.Command(ev.ts.MpvCtrl, ev.ts.MpvCtrlTrackID); err != nil {
					retErr = jumpUserError("Mpv command failed", err)
					break loop
				}
			default:
				logger.invalid(ev.ts)
			}
		default:
		}
	}

	cancel()
	wg.Wait()

	if !selfEnded {
		if err := handle.Quit(); err != nil {
			logger.warn(fmt.Sprintf("quit: %v", err))
		}
	}
	reason := handle.WaitUntilClosed()
	logger.debug(fmt.Sprintf("exit reason: %v", reason))

	return retErr
}
