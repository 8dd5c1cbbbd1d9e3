// SPDX-License-Identifier: GPL-2.0-or-later

package statemachine

import (
	"context"

	"gcast/pkg/front"
	"gcast/pkg/gatekeeper"
	"gcast/pkg/protocol"
)

const nameErrorMsg = "UserError"

// errorMsgState shows header/body until the remote closes it or the
// connection drops.
func errorMsgState(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps, header, body string) error {
	logger := newStateLogger(nameErrorMsg, deps.Log)
	logger.entered()
	defer logger.exited()

	screen := front.ErrorMsg(header, body)

	for {
		ts, ok := ctrl.SendRecv(ctx, screen)
		if !ok {
			return nil
		}

		if ts.Kind == protocol.TSErrorMsgCtrl && ts.ErrorMsgCtrl == protocol.ErrorMsgCtrlClose {
			return nil
		}
		logger.invalid(ts)
	}
}
