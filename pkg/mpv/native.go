// SPDX-License-Identifier: GPL-2.0-or-later

// Package mpv is a safe, asynchronous façade over a native media player
// library's thread-unsafe, callback-based C API (mpv's libmpv). No Go
// binding for that API is vendored here: nativeHandle is the seam a real
// cgo binding implements, the same role the teacher's own pkg/ffmpeg plays
// for the ffmpeg binary rather than importing a third-party wrapper.
package mpv

import "time"

// LogLevel mirrors the native player's log severities.
type LogLevel int

// Log levels, in the order the native API reports them.
const (
	LogNone LogLevel = iota
	LogFatal
	LogError
	LogWarn
	LogInfo
	LogVerbose
	LogDebug
	LogTrace
	LogUnknown
)

// EndReason is why playback of the loaded file ended.
type EndReason int

// End reasons.
const (
	EndQuit EndReason = iota
	EndEOF
	EndStop
	EndError
)

// TrackType discriminates a native track between audio, video and sub.
type TrackType int

// Track types.
const (
	TrackAudio TrackType = iota
	TrackVideo
	TrackSub
)

// NativeTrack is one track entry as reported by the native track-list
// property.
type NativeTrack struct {
	ID       int64
	Type     TrackType
	Title    string // empty if unset
	Lang     string // empty if unset
	Selected bool
}

// PropertyValue is one observed property's new value, as delivered by a
// PropertyChange event.
type PropertyValue struct {
	Pause         *bool
	MediaTitle    *string
	PlaybackTime  *float64
	Duration      *float64
	Volume        *float64
	Chapters      *int64
	Chapter       *int64
	TrackList     []NativeTrack
	IsTrackList   bool
}

// Event is one native event as translated into Go types.
type Event struct {
	Kind EventKind

	LogPrefix string
	LogLevel  LogLevel
	LogText   string

	Property PropertyValue

	EndReason EndReason
	EndError  error

	// CallError is set on {Get,Set,Command}PropertyError-shaped events.
	CallError error
}

// EventKind discriminates an Event's variant.
type EventKind int

// Event kinds, one per native event this façade translates.
const (
	EventNone EventKind = iota
	EventShutdown
	EventLog
	EventQueueOverflow
	EventPropertyChange
	EventPropertyChangeError
	EventStartFile
	EventFileLoaded
	EventEndFile
	EventGetProperty
	EventGetPropertyError
	EventSetProperty
	EventCommand
	EventUnsupported
)

// Control is a remote command issued against a loaded player.
type Control int

// Control values, one per MpvCtrl wire variant.
const (
	CtrlTogglePause Control = iota
	CtrlSeekBack
	CtrlSeekForward
	CtrlSeekBackLong
	CtrlSeekForwardLong
	CtrlVolumeUp
	CtrlVolumeDown
	CtrlToggleMute
	CtrlNextChapter
	CtrlPrevChapter
	CtrlSetAudio
	CtrlSetSub
	CtrlSubDelayEarlier
	CtrlSubDelayLater
	CtrlSubLarger
	CtrlSubSmaller
	CtrlSubMoveUp
	CtrlSubMoveDown
)

// Fixed command parameters, per spec.
const (
	ShortSeek   = 5 * time.Second
	LongSeek    = 30 * time.Second
	VolumeStep  = 2.0
	SubDelayStep = 100 * time.Millisecond
	SubScaleStep = 0.1
	SubPosStep   = 1.0
)

// nativeHandle is the seam a real libmpv cgo binding implements. All
// methods but PollEvent are synchronous native calls that
// may block briefly on the native library's internal lock; callers must
// not call them concurrently, matching the native API's own constraint.
type nativeHandle interface {
	// SetLogLevel requests the native library begin emitting Log events
	// at or above level.
	SetLogLevel(level LogLevel) error
	// SetConfigDir points the native library at a config directory.
	SetConfigDir(dir string) error
	// ReadConfigFile tells the native library to read its config file.
	ReadConfigFile() error
	// Init finishes initialization after the above are set.
	Init() error

	// RegisterWakeup arranges for wake to be called (from an arbitrary
	// native thread) whenever a new event may be ready. Implementations
	// must guarantee wake is never called after UnregisterWakeup returns.
	RegisterWakeup(wake func())
	UnregisterWakeup()

	// PollEvent returns the next already-queued event without blocking,
	// or EventNone if none is queued.
	PollEvent() Event

	ObserveProperty(name string) error

	SetPaused(paused bool) error
	LoadFile(path string) error
	SetIdle(idle bool) error

	SetAudio(id int64) error
	SetSub(id int64) error
	TogglePause() error
	ToggleMute() error
	AddVolume(delta float64) error
	AddSubDelay(delta time.Duration) error
	AddSubScale(delta float64) error
	AddSubPos(delta float64) error
	AddChapter(delta int) error
	SeekRelative(d time.Duration) error

	Quit() error
	// Destroy releases all native resources. Must be called on a
	// dedicated worker goroutine: it blocks and must never run on a
	// latency-sensitive scheduler.
	Destroy()
}
