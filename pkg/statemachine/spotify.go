// SPDX-License-Identifier: GPL-2.0-or-later

package statemachine

import (
	"context"
	"fmt"

	"gcast/pkg/front"
	"gcast/pkg/gatekeeper"
	"gcast/pkg/protocol"
)

const nameSpotify = "Spotify"

// spotifyState spawns the configured spotify client and keeps it running
// while concurrently serving control messages. SpotifyStart::Stop or
// channel closure terminates the process and returns cleanly. A non-zero
// exit before a stop was requested is treated as a crash and surfaces as an
// error screen; an exit after Stop was requested, or a clean exit on its
// own, is merely logged.
func spotifyState(ctx context.Context, ctrl *gatekeeper.Control, deps *Deps) error {
	logger := newStateLogger(nameSpotify, deps.Log)
	logger.entered()
	defer logger.exited()

	ctrl.Send(ctx, front.Spotify)

	proc, err := deps.NewProcess(deps.Config.Spotify.Executable)
	if err != nil {
		return jumpUserError("Failed to spawn spotify", err)
	}
	if deps.Log != nil {
		proc.SetLogger(deps.Log)
	}

	stateCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	startErr := make(chan error, 1)
	go func() { startErr <- proc.Start() }()

	recv := recvChan(stateCtx, ctrl)
	stopRequested := false

	for {
		select {
		case err := <-startErr:
			if stopRequested {
				if err != nil {
					logger.warn(fmt.Sprintf("exited after being stopped: %v", err))
				}
				return nil
			}
			if err != nil {
				return jumpUserError("Spotify exited unexpectedly", err)
			}
			logger.warn("process exited on its own")
			return nil

		case r := <-recv:
			if !r.ok {
				stopRequested = true
				proc.Stop()
				continue
			}

			switch {
			case r.ts.Kind == protocol.TSSpotifyStart && r.ts.SpotifyStart == protocol.SpotifyStartStop:
				logger.info("stopping spotify")
				stopRequested = true
				proc.Stop()

			case r.ts.Kind == protocol.TSSpotifyCtrl && r.ts.SpotifyCtrl == protocol.SpotifyCtrlFullscreen:
				if err := runOneShot(deps, deps.Config.Spotify.FullscreenExe); err != nil {
					stopRequested = true
					proc.Stop()
					<-startErr
					return jumpUserError("Failed to run the spotify fullscreen helper", err)
				}

			default:
				logger.invalid(r.ts)
			}
		}
	}
}

// runOneShot spawns bin and blocks until it exits.
func runOneShot(deps *Deps, bin string) error {
	proc, err := deps.NewProcess(bin)
	if err != nil {
		return err
	}
	if deps.Log != nil {
		proc.SetLogger(deps.Log)
	}
	return proc.Start()
}
