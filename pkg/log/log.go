// SPDX-License-Identifier: GPL-2.0-or-later

// Package log implements a small pub-sub logger.
//
// API inspired by zerolog https://github.com/rs/zerolog
package log

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Level defines log level.
type Level uint8

// Logging levels. Native player log events are mapped onto these by
// pkg/mpv's forwardLog.
const (
	LevelTrace Level = 8
	LevelError Level = 16
	LevelWarn  Level = 24
	LevelInfo  Level = 32
	LevelDebug Level = 48
)

// UnixMillisecond is a timestamp.
type UnixMillisecond int64

// Event is a log event under construction. Must end with Msg or Msgf.
type Event struct {
	level Level
	time  UnixMillisecond
	src   string

	logger *Logger
}

// Log is a log entry delivered to subscribers.
type Log struct {
	Level Level
	Time  UnixMillisecond
	Msg   string
	Src   string
}

// Src sets the event's source component.
func (e *Event) Src(source string) *Event {
	e.src = source
	return e
}

// Msg sends the event with msg as the message field.
func (e *Event) Msg(msg string) {
	e.logger.feed <- Log{
		Time:  e.time,
		Level: e.level,
		Msg:   msg,
		Src:   e.src,
	}
}

// Msgf sends the event with a formatted message.
func (e *Event) Msgf(format string, v ...interface{}) {
	e.Msg(fmt.Sprintf(format, v...))
}

// Feed is a read-only feed of log entries.
type Feed <-chan Log
type logFeed chan Log

// Logger fans logged events out to any number of subscribers.
type Logger struct {
	feed  logFeed
	sub   chan logFeed
	unsub chan logFeed
}

// NewLogger returns a Logger. Call Start to begin fanning out events.
func NewLogger() *Logger {
	return &Logger{
		feed:  make(logFeed),
		sub:   make(chan logFeed),
		unsub: make(chan logFeed),
	}
}

// Start runs the fan-out loop until ctx is done.
func (l *Logger) Start(ctx context.Context) {
	subs := map[logFeed]struct{}{}
	for {
		select {
		case <-ctx.Done():
			for ch := range subs {
				close(ch)
			}
			return

		case ch := <-l.sub:
			subs[ch] = struct{}{}

		case ch := <-l.unsub:
			if _, ok := subs[ch]; ok {
				close(ch)
				delete(subs, ch)
			}

		case msg := <-l.feed:
			for ch := range subs {
				ch <- msg
			}
		}
	}
}

// CancelFunc cancels a log feed subscription.
type CancelFunc func()

// Subscribe returns a new feed of future log entries and a CancelFunc.
func (l *Logger) Subscribe() (<-chan Log, CancelFunc) {
	feed := make(logFeed)
	l.sub <- feed

	cancel := func() {
		l.unSubscribe(feed)
	}
	return feed, cancel
}

func (l *Logger) unSubscribe(feed logFeed) {
	// Drain feed until the unsub request is accepted, otherwise Start's
	// fan-out loop could block forever sending to an abandoned feed.
	for {
		select {
		case l.unsub <- feed:
			return
		case <-feed:
		}
	}
}

// LogToStdout prints every log entry to stdout until ctx is done.
func (l *Logger) LogToStdout(ctx context.Context) {
	feed, cancel := l.Subscribe()
	defer cancel()
	for {
		select {
		case entry, ok := <-feed:
			if !ok {
				return
			}
			printLog(entry)
		case <-ctx.Done():
			return
		}
	}
}

func printLog(entry Log) {
	var b strings.Builder

	switch entry.Level {
	case LevelError:
		b.WriteString("[ERROR] ")
	case LevelWarn:
		b.WriteString("[WARN] ")
	case LevelInfo:
		b.WriteString("[INFO] ")
	case LevelDebug:
		b.WriteString("[DEBUG] ")
	case LevelTrace:
		b.WriteString("[TRACE] ")
	}

	if entry.Src != "" {
		b.WriteString(entry.Src)
		b.WriteString(": ")
	}
	b.WriteString(entry.Msg)

	fmt.Fprintln(os.Stdout, b.String())
}

func now() UnixMillisecond {
	return UnixMillisecond(time.Now().UnixNano() / int64(time.Millisecond))
}

// Error starts a new error-level event. Call Msg/Msgf to send it.
func (l *Logger) Error() *Event {
	return &Event{level: LevelError, time: now(), logger: l}
}

// Warn starts a new warn-level event. Call Msg/Msgf to send it.
func (l *Logger) Warn() *Event {
	return &Event{level: LevelWarn, time: now(), logger: l}
}

// Info starts a new info-level event. Call Msg/Msgf to send it.
func (l *Logger) Info() *Event {
	return &Event{level: LevelInfo, time: now(), logger: l}
}

// Debug starts a new debug-level event. Call Msg/Msgf to send it.
func (l *Logger) Debug() *Event {
	return &Event{level: LevelDebug, time: now(), logger: l}
}

// Trace starts a new trace-level event. Call Msg/Msgf to send it.
func (l *Logger) Trace() *Event {
	return &Event{level: LevelTrace, time: now(), logger: l}
}
