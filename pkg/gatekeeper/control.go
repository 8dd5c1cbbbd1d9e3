// SPDX-License-Identifier: GPL-2.0-or-later

package gatekeeper

import (
	"context"

	"gcast/pkg/front"
	"gcast/pkg/log"
	"gcast/pkg/protocol"
)

// Receiver is the inbound side of one connection's message stream.
type Receiver = <-chan protocol.Message

// Sender is the outbound side of one connection's message stream.
type Sender = chan<- protocol.Message

// Control is the single entry point every state uses to talk to the
// remote: send a screen, receive the next command, or both. Every state
// in the machine holds one and only one Control for its whole lifetime.
type Control struct {
	fromConn Receiver
	toConn   Sender

	keeper    *Gatekeeper
	nextOutID uint64

	log *log.Logger
}

// New wraps the given channel pair as a fresh Control for one connection.
func New(from Receiver, to Sender, logger *log.Logger) *Control {
	return &Control{fromConn: from, toConn: to, keeper: NewGatekeeper(), log: logger}
}

// Send wraps f in a Message, advances the Gatekeeper's last-sent record,
// and enqueues it on the outbound channel. Returns early if ctx is done
// before the channel accepts the message.
func (c *Control) Send(ctx context.Context, f front.State) {
	c.keeper.SetLastSent(f)
	msg := protocol.ToClientMessage(c.nextOutID, f)
	c.nextOutID++

	select {
	case c.toConn <- msg:
	case <-ctx.Done():
		if c.log != nil {
			c.log.Warn().Src("control").Msg("dropped outbound message: shutting down")
		}
	}
}

// Recv pulls the next accepted command from the remote, transparently
// discarding stale messages and re-sending the last screen on
// SendStatus. Returns false on channel closure or context cancellation.
func (c *Control) Recv(ctx context.Context) (protocol.ToServer, bool) {
	for {
		select {
		case msg, ok := <-c.fromConn:
			if !ok {
				if c.log != nil {
					c.log.Info().Src("control").Msg("connection closed its end, exiting")
				}
				return protocol.ToServer{}, false
			}
			if !c.keeper.ShouldAccept(msg.ID) {
				if c.log != nil {
					c.log.Debug().Src("control").Msg("throwing away an out of date message")
				}
				continue
			}

			ts := msg.ToServer
			if ts.Kind == protocol.TSSendStatus {
				c.Send(ctx, c.keeper.LastSent())
				continue
			}
			return ts, true

		case <-ctx.Done():
			return protocol.ToServer{}, false
		}
	}
}

// SendRecv sends f then waits for the next command.
func (c *Control) SendRecv(ctx context.Context, f front.State) (protocol.ToServer, bool) {
	c.Send(ctx, f)
	return c.Recv(ctx)
}

// SendRecvLazy is SendRecv, but the screen is only computed if actually
// about to be sent.
func (c *Control) SendRecvLazy(ctx context.Context, f func() front.State) (protocol.ToServer, bool) {
	return c.SendRecv(ctx, f())
}
