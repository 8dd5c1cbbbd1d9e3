// SPDX-License-Identifier: GPL-2.0-or-later

package transport

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"gcast/pkg/protocol"
)

// outboundPeriod is the target spacing between outbound frames, ~60Hz.
const outboundPeriod = 16700 * time.Microsecond

// mailbox holds at most one not-yet-delivered message. Put replaces
// whatever was pending; it never blocks and never queues.
type mailbox struct {
	mu      sync.Mutex
	pending protocol.Message
	have    bool
	signal  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (b *mailbox) put(m protocol.Message) {
	b.mu.Lock()
	b.pending, b.have = m, true
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

func (b *mailbox) take() (protocol.Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.have {
		return protocol.Message{}, false
	}
	m := b.pending
	b.have = false
	return m, true
}

// Limiter forwards whatever was most recently handed to Send to a sink at
// roughly one message per outboundPeriod, dropping any update superseded
// by a newer one before its turn comes up. This is not a throttle in the
// usual sense: a burst of updates never queues, only the latest survives.
type Limiter struct {
	box *mailbox
	rl  *rate.Limiter
}

// NewLimiter returns a Limiter paced at outboundPeriod.
func NewLimiter() *Limiter {
	return &Limiter{
		box: newMailbox(),
		rl:  rate.NewLimiter(rate.Every(outboundPeriod), 1),
	}
}

// Send makes m the next value Run will deliver, superseding any value
// still waiting to be sent.
func (l *Limiter) Send(m protocol.Message) {
	l.box.put(m)
}

// Run delivers mailbox contents to sink, paced by the limiter, until ctx
// is done or sink returns an error.
func (l *Limiter) Run(ctx context.Context, sink func(protocol.Message) error) error {
	for {
		select {
		case <-l.box.signal:
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := l.rl.Wait(ctx); err != nil {
			return err
		}

		m, ok := l.box.take()
		if !ok {
			continue
		}
		if err := sink(m); err != nil {
			return err
		}
	}
}
