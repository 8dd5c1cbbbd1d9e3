// SPDX-License-Identifier: GPL-2.0-or-later

package statemachine

import (
	"context"

	"gcast/pkg/front"
	"gcast/pkg/gatekeeper"
	"gcast/pkg/protocol"
)

const namePlayURL = "PlayUrl"

// playURLState waits for a URL to play. An MpvStart::Url jumps to Mpv;
// PlayUrlStart::Stop or channel closure returns cleanly.
func playURLState(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps) error {
	logger := newStateLogger(namePlayURL, deps.Log)
	logger.entered()
	defer logger.exited()

	for {
		ts, ok := ctrl.SendRecv(ctx, front.PlayUrl)
		if !ok {
			return nil
		}

		switch {
		case ts.Kind == protocol.TSMpvStart && ts.MpvStart.Kind == protocol.MpvStartURL:
			return jumpMpvStart(ts.MpvStart)
		case ts.Kind == protocol.TSPlayUrlStart && ts.PlayUrlStart == protocol.PlayUrlStartStop:
			return nil
		default:
			logger.invalid(ts)
		}
	}
}
