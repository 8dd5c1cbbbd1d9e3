// SPDX-License-Identifier: GPL-2.0-or-later

package statemachine

import (
	"context"
	"errors"

	"gcast/pkg/front"
	"gcast/pkg/gatekeeper"
	"gcast/pkg/protocol"
)

const nameInit = "Init"

// initState is the root of the screen tree. It re-enters its receive loop
// after every child state returns, re-dispatching a jumped MpvStart or
// showing an ErrorMsg screen as directed.
func initState(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps) error {
	logger := newStateLogger(nameInit, deps.Log)
	logger.entered()
	defer logger.exited()

	queue := newInjectableQueue[protocol.ToServer]()

	for {
		ts, ok := queue.popOr(func() (protocol.ToServer, bool) {
			return ctrl.SendRecv(ctx, front.None)
		})
		if !ok {
			return errConnClosed
		}

		err := dispatchInit(ctx, ctrl, deps, ts, logger)
		if err == nil {
			continue
		}

		var j *jump
		if errors.As(err, &j) {
			switch j.kind {
			case jumpKindMpv:
				queue.inject(protocol.ToServer{Kind: protocol.TSMpvStart, MpvStart: j.mpvStart})
			case jumpKindUserError:
				if err := errorMsgState(ctx, ctrl, deps, j.header, j.body); err != nil {
					return wrapState(nameInit, err)
				}
			}
			continue
		}

		return wrapState(nameInit, err)
	}
}

func dispatchInit(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps, ts protocol.ToServer, logger *stateLogger) error {
	switch ts.Kind {
	case protocol.TSPowerCtrl:
		return handlePoweroff(deps)

	case protocol.TSMpvStart:
		switch ts.MpvStart.Kind {
		case protocol.MpvStartFile:
			return mpvFileState(ctx, ctrl, deps, ts.MpvStart)
		case protocol.MpvStartURL:
			return mpvURLState(ctx, ctrl, deps, ts.MpvStart)
		default:
			logger.invalid(ts)
			return nil
		}

	case protocol.TSSpotifyStart:
		if ts.SpotifyStart == protocol.SpotifyStartStart {
			return spotifyState(ctx, ctrl, deps)
		}
		logger.invalid(ts)
		return nil

	case protocol.TSFsStart:
		if ts.FsStart == protocol.FsStartStart {
			return filerState(ctx, ctrl, deps)
		}
		logger.invalid(ts)
		return nil

	case protocol.TSPlayUrlStart:
		if ts.PlayUrlStart == protocol.PlayUrlStartStart {
			return playURLState(ctx, ctrl, deps)
		}
		logger.invalid(ts)
		return nil

	default:
		logger.invalid(ts)
		return nil
	}
}

// handlePoweroff spawns the configured poweroff helper and waits for it to
// exit. A spawn failure or non-zero exit surfaces as an error screen.
func handlePoweroff(deps *Deps) error {
	proc, err := deps.NewProcess(deps.Config.PoweroffExe)
	if err != nil {
		return jumpUserError("Could not spawn the poweroff helper", err)
	}
	if deps.Log != nil {
		proc.SetLogger(deps.Log)
	}
	if err := proc.Start(); err != nil {
		return jumpUserError("The poweroff helper failed", err)
	}
	return nil
}
