// SPDX-License-Identifier: GPL-2.0-or-later

// Package statemachine implements the server's per-connection screen tree:
// Init at the root, with Mpv, Filer, PlayUrl, Spotify and ErrorMsg as its
// children. Every state owns the same Control for its whole lifetime and
// runs its own receive loop; two non-local carriers, jumpMpvStart and
// jumpUserError, travel up as ordinary errors so that an inner state can
// ask Init to re-dispatch a message or show an error screen.
package statemachine

import (
	"context"
	"errors"
	"fmt"

	"gcast/config"
	"gcast/pkg/fileindex"
	"gcast/pkg/front"
	"gcast/pkg/gatekeeper"
	"gcast/pkg/log"
	"gcast/pkg/mpv"
	"gcast/pkg/process"
	"gcast/pkg/protocol"
)

// errConnClosed is returned by initState once the remote end has closed its
// side of the connection and the machine has unwound back to Init; Start
// turns it into a nil return.
var errConnClosed = errors.New("statemachine: connection closed")

type jumpKind int

const (
	jumpKindMpv jumpKind = iota
	jumpKindUserError
)

// jump is the error type carrying the two non-local transfers a state may
// request of Init: re-dispatching an MpvStart, or showing an error screen.
// Every state other than Init must let a *jump propagate unchanged.
type jump struct {
	kind jumpKind

	mpvStart protocol.MpvStart

	header string
	body   string
}

func (j *jump) Error() string {
	switch j.kind {
	case jumpKindMpv:
		return "jump: mpv"
	default:
		return "jump: user error: " + j.header
	}
}

// jumpMpvStart requests that Init re-dispatch start as if the remote had
// just sent it.
func jumpMpvStart(start protocol.MpvStart) error {
	return &jump{kind: jumpKindMpv, mpvStart: start}
}

// jumpUserError requests that Init show header/err as an ErrorMsg screen.
func jumpUserError(header string, err error) error {
	return &jump{kind: jumpKindUserError, header: header, body: fmt.Sprintf("%v", err)}
}

// wrapState adds name as context to an ordinary error, passing errConnClosed
// and *jump through unchanged so they keep reaching their catch point.
func wrapState(name string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errConnClosed) {
		return err
	}
	var j *jump
	if errors.As(err, &j) {
		return err
	}
	return fmt.Errorf("in state %q: %w", name, err)
}

// Deps are the collaborators every state needs to do its job: the static
// configuration, the shared logger, the seams for spawning the native
// player and child processes, and the persisted file index.
type Deps struct {
	Config *config.Config
	Log    *log.Logger

	NewNative    mpv.NewNativeFunc
	MpvConfigDir string

	PreferredSub   mpv.HumanLang
	PreferredAudio mpv.HumanLang

	NewProcess process.NewFunc

	Store *fileindex.Store
}

// Start runs one connection's state machine to completion, starting at
// Init. Returns nil once the connection closes or ctx is done, or the
// reason the machine gave up otherwise.
func Start(ctx context.Context, from gatekeeper.Receiver, to gatekeeper.Sender, deps *Deps) error {
	ctrl := gatekeeper.New(from, to, deps.Log)

	err := initState(ctx, ctrl, deps)
	if errors.Is(err, errConnClosed) {
		return nil
	}
	return err
}

// stateLogger is the small per-state logging helper every state function
// constructs on entry, matching the entered/exited/invalid-message texture
// every state shares.
type stateLogger struct {
	name string
	log  *log.Logger
}

func newStateLogger(name string, l *log.Logger) *stateLogger {
	return &stateLogger{name: name, log: l}
}

func (s *stateLogger) entered() {
	if s.log != nil {
		s.log.Info().Src("statemachine").Msgf("entered state %q", s.name)
	}
}

func (s *stateLogger) exited() {
	if s.log != nil {
		s.log.Info().Src("statemachine").Msgf("state %q exited", s.name)
	}
}

func (s *stateLogger) invalid(ts protocol.ToServer) {
	if s.log != nil {
		s.log.Warn().Src("statemachine").Msgf("state %q received an unexpected message (kind %d)", s.name, ts.Kind)
	}
}

func (s *stateLogger) info(msg string) {
	if s.log != nil {
		s.log.Info().Src("statemachine").Msgf("%s: %s", s.name, msg)
	}
}

func (s *stateLogger) debug(msg string) {
	if s.log != nil {
		s.log.Debug().Src("statemachine").Msgf("%s: %s", s.name, msg)
	}
}

func (s *stateLogger) warn(msg string) {
	if s.log != nil {
		s.log.Warn().Src("statemachine").Msgf("%s: %s", s.name, msg)
	}
}

// recvResult is one message pulled off Control.Recv, tagged with whether
// the connection is still alive.
type recvResult struct {
	ts protocol.ToServer
	ok bool
}

// recvChan turns a state's Control.Recv loop into a channel, so it can be
// raced against another asynchronous source (a process's exit, the native
// player's event pump). The feeding goroutine exits as soon as ctx is done
// or the connection closes.
func recvChan(ctx context.Context, ctrl *gatekeeper.Control) <-chan recvResult {
	ch := make(chan recvResult)
	go func() {
		for {
			ts, ok := ctrl.Recv(ctx)
			select {
			case ch <- recvResult{ts: ts, ok: ok}:
			case <-ctx.Done():
				return
			}
			if !ok {
				return
			}
		}
	}()
	return ch
}
