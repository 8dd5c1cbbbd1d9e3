// SPDX-License-Identifier: GPL-2.0-or-later

package mpv

import (
	"context"
	"fmt"
	"math"
	"time"

	"gcast/pkg/front"
	"gcast/pkg/log"
)

// ApiError wraps a native-library call or event failure.
type ApiError struct {
	Op  string
	Err error
}

func (e *ApiError) Error() string { return fmt.Sprintf("mpv: %s: %v", e.Op, e.Err) }
func (e *ApiError) Unwrap() error { return e.Err }

type handleKind int

const (
	kindLoad handleKind = iota
	kindPlay
	kindEnd
)

type playState struct {
	title        string
	pause        bool
	playbackTime float64
	duration     float64
	volume       float64
	chapters     int64
	chapter      int64
	tracks       []NativeTrack
}

func defaultPlayState() playState {
	return playState{pause: true}
}

// NewNativeFunc constructs the native seam. Production wiring supplies a
// real libmpv-backed implementation; tests supply a fake.
type NewNativeFunc func() (nativeHandle, error)

// Handle is a safe, asynchronous façade over one native player instance
// bound to one loaded (or loading) piece of media.
type Handle struct {
	native nativeHandle
	wake   chan struct{}

	kind      handleKind
	play      playState
	endReason EndReason

	auto *autoLang
	log  *log.Logger
}

// properties observed right after FileLoaded, matching the native
// player's property names.
var observedProperties = []string{
	"pause", "media-title", "playback-time", "duration",
	"volume", "chapter", "chapters", "track-list",
}

// New constructs a Handle for path, initially paused iff paused is true.
// preferredSub/preferredAudio configure automatic track selection.
func New(
	newNative NewNativeFunc,
	path string,
	paused bool,
	configDir string,
	preferredSub, preferredAudio HumanLang,
	logger *log.Logger,
) (*Handle, error) {
	native, err := newNative()
	if err != nil {
		return nil, &ApiError{Op: "creating handle", Err: err}
	}

	if err := native.SetLogLevel(LogInfo); err != nil {
		return nil, &ApiError{Op: "setting log level", Err: err}
	}
	if err := native.SetConfigDir(configDir); err != nil {
		return nil, &ApiError{Op: "setting conf dir", Err: err}
	}
	if err := native.ReadConfigFile(); err != nil {
		return nil, &ApiError{Op: "reading config file", Err: err}
	}
	if err := native.Init(); err != nil {
		return nil, &ApiError{Op: "initializing", Err: err}
	}

	h := &Handle{
		native: native,
		wake:   make(chan struct{}, 1),
		kind:   kindLoad,
		auto:   newAutoLang(preferredSub, preferredAudio),
		log:    logger,
	}
	native.RegisterWakeup(h.onWake)

	if err := native.SetPaused(paused); err != nil {
		return nil, &ApiError{Op: "setting paused", Err: err}
	}
	if err := native.LoadFile(path); err != nil {
		return nil, &ApiError{Op: "loading the file", Err: err}
	}
	if err := native.SetIdle(false); err != nil {
		return nil, &ApiError{Op: "setting idle", Err: err}
	}

	return h, nil
}

// Ended reports whether the player has reached a terminal state: Next will
// never again return a non-nil view or error.
func (h *Handle) Ended() bool { return h.kind == kindEnd }

func (h *Handle) onWake() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Next is a cancel-safe call that drives the event loop and returns the
// next MpvView to show, or (nil, nil) once the player has reached a
// terminal state and has nothing further to report.
func (h *Handle) Next(ctx context.Context) (*front.MpvView, error) {
	if h.kind == kindEnd {
		return nil, nil
	}

	for {
		ev := h.native.PollEvent()
		if ev.Kind == EventNone {
			select {
			case <-h.wake:
				continue
			case <-ctx.Done():
				return nil, nil
			}
		}

		view, err, terminal := h.handleEvent(ev)
		if terminal {
			h.kind = kindEnd
		}
		if view != nil || err != nil || terminal {
			return view, err
		}
	}
}

func (h *Handle) handleEvent(ev Event) (view *front.MpvView, err error, terminal bool) {
	switch ev.Kind {
	case EventShutdown:
		h.endReason = EndQuit
		return nil, nil, true

	case EventLog:
		h.forwardLog(ev)
		return nil, nil, false

	case EventQueueOverflow:
		if h.log != nil {
			h.log.Error().Src("mpv").Msg("event queue overflow")
		}
		return nil, nil, false

	case EventPropertyChange:
		return h.onPropertyChange(ev.Property)

	case EventPropertyChangeError:
		if h.log != nil {
			h.log.Warn().Src("mpv").Msg("property change error")
		}
		return nil, nil, false

	case EventStartFile:
		return nil, nil, false

	case EventFileLoaded:
		if err := h.observeAll(); err != nil {
			return nil, &ApiError{Op: "observing properties", Err: err}, true
		}
		h.kind = kindPlay
		h.play = defaultPlayState()
		v := h.toClientView()
		return &v, nil, false

	case EventEndFile:
		h.endReason = ev.EndReason
		if ev.EndError != nil {
			return nil, &ApiError{Op: "mpv exited with an error", Err: ev.EndError}, true
		}
		return nil, nil, true

	case EventGetProperty:
		return nil, nil, false
	case EventGetPropertyError:
		return nil, &ApiError{Op: "get property", Err: ev.CallError}, true
	case EventSetProperty:
		if ev.CallError != nil {
			return nil, &ApiError{Op: "set property", Err: ev.CallError}, true
		}
		return nil, nil, false
	case EventCommand:
		if ev.CallError != nil {
			return nil, &ApiError{Op: "command", Err: ev.CallError}, true
		}
		return nil, nil, false
	case EventUnsupported:
		return nil, nil, false
	default:
		return nil, nil, false
	}
}

func (h *Handle) observeAll() error {
	for _, name := range observedProperties {
		if err := h.native.ObserveProperty(name); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handle) forwardLog(ev Event) {
	if h.log == nil {
		return
	}
	msg := fmt.Sprintf("[%s] %s", ev.LogPrefix, ev.LogText)
	switch ev.LogLevel {
	case LogFatal, LogError:
		h.log.Error().Src("mpv").Msg(msg)
	case LogWarn:
		h.log.Warn().Src("mpv").Msg(msg)
	case LogInfo:
		h.log.Info().Src("mpv").Msg(msg)
	case LogVerbose, LogDebug:
		h.log.Debug().Src("mpv").Msg(msg)
	case LogTrace:
		h.log.Trace().Src("mpv").Msg(msg)
	case LogNone, LogUnknown:
		// dropped
	}
}

// onPropertyChange applies one property update to the play state,
// performs automatic track selection the first time a track list is
// known, and reports whether a new view should be emitted.
func (h *Handle) onPropertyChange(pv PropertyValue) (*front.MpvView, error, bool) {
	if h.kind != kindPlay {
		return nil, nil, false
	}

	changed := h.play.update(pv)

	if pv.IsTrackList && h.auto.hasNotChosen() {
		c := h.auto.autoChoose(pv.TrackList)
		if c.hasSub {
			if err := h.native.SetSub(c.subID); err != nil {
				return nil, &ApiError{Op: "auto setting the sub", Err: err}, true
			}
		}
		if c.hasAudio {
			if err := h.native.SetAudio(c.audioID); err != nil {
				return nil, &ApiError{Op: "auto setting the audio", Err: err}, true
			}
		}
	}

	if !changed {
		return nil, nil, false
	}
	v := h.toClientView()
	return &v, nil, false
}

// update applies pv's non-nil field to the play state, using whole-second
// coarse equality for playback_time and duration, reporting whether
// anything actually changed.
func (p *playState) update(pv PropertyValue) bool {
	changed := false
	if pv.Pause != nil && *pv.Pause != p.pause {
		p.pause = *pv.Pause
		changed = true
	}
	if pv.MediaTitle != nil && *pv.MediaTitle != p.title {
		p.title = *pv.MediaTitle
		changed = true
	}
	if pv.PlaybackTime != nil {
		if math.Trunc(*pv.PlaybackTime) != math.Trunc(p.playbackTime) {
			changed = true
		}
		p.playbackTime = *pv.PlaybackTime
	}
	if pv.Duration != nil {
		if math.Trunc(*pv.Duration) != math.Trunc(p.duration) {
			changed = true
		}
		p.duration = *pv.Duration
	}
	if pv.Volume != nil && *pv.Volume != p.volume {
		p.volume = *pv.Volume
		changed = true
	}
	if pv.Chapters != nil && *pv.Chapters != p.chapters {
		p.chapters = *pv.Chapters
		changed = true
	}
	if pv.Chapter != nil && *pv.Chapter != p.chapter {
		p.chapter = *pv.Chapter
		changed = true
	}
	if pv.IsTrackList {
		p.tracks = pv.TrackList
		changed = true
	}
	return changed
}

func (h *Handle) toClientView() front.MpvView {
	p := h.play
	v := front.MpvView{
		Kind:           front.MpvPlay,
		Title:          p.title,
		Paused:         p.pause,
		Progress:       secondsToDuration(p.playbackTime),
		Length:         secondsToDuration(p.duration),
		Volume:         p.volume,
		SubtitleTracks: toClientTracks(p.tracks, TrackSub),
		AudioTracks:    toClientTracks(p.tracks, TrackAudio),
	}
	if p.chapters > 0 {
		v.HasChapter = true
		v.Chapter = front.Chapter{Current: int(p.chapter) + 1, Total: int(p.chapters)}
	}
	return v
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func toClientTracks(tracks []NativeTrack, ttype TrackType) []front.Track {
	out := make([]front.Track, 0, len(tracks)+1)
	anySelected := false
	for _, t := range tracks {
		if t.Type != ttype {
			continue
		}
		out = append(out, front.Track{ID: int(t.ID), Title: langTitle(t), Selected: t.Selected})
		if t.Selected {
			anySelected = true
		}
	}
	none := front.Track{ID: 0, Title: "None", Selected: !anySelected}
	return append([]front.Track{none}, out...)
}

func langTitle(t NativeTrack) string {
	switch {
	case t.Lang != "" && t.Title != "":
		return t.Lang + " '" + t.Title + "'"
	case t.Lang != "":
		return t.Lang
	case t.Title != "":
		return "'" + t.Title + "'"
	default:
		return "??"
	}
}

// Command issues one remote command against the loaded player.
func (h *Handle) Command(c Control, trackID int64) error {
	var err error
	switch c {
	case CtrlTogglePause:
		err = h.native.TogglePause()
	case CtrlSeekBack:
		err = h.native.SeekRelative(-ShortSeek)
	case CtrlSeekForward:
		err = h.native.SeekRelative(ShortSeek)
	case CtrlSeekBackLong:
		err = h.native.SeekRelative(-LongSeek)
	case CtrlSeekForwardLong:
		err = h.native.SeekRelative(LongSeek)
	case CtrlVolumeUp:
		err = h.native.AddVolume(VolumeStep)
	case CtrlVolumeDown:
		err = h.native.AddVolume(-VolumeStep)
	case CtrlToggleMute:
		err = h.native.ToggleMute()
	case CtrlNextChapter:
		err = h.native.AddChapter(1)
	case CtrlPrevChapter:
		err = h.native.AddChapter(-1)
	case CtrlSetAudio:
		err = h.native.SetAudio(trackID)
	case CtrlSetSub:
		err = h.native.SetSub(trackID)
	case CtrlSubDelayEarlier:
		err = h.native.AddSubDelay(-SubDelayStep)
	case CtrlSubDelayLater:
		err = h.native.AddSubDelay(SubDelayStep)
	case CtrlSubLarger:
		err = h.native.AddSubScale(SubScaleStep)
	case CtrlSubSmaller:
		err = h.native.AddSubScale(-SubScaleStep)
	case CtrlSubMoveUp:
		err = h.native.AddSubPos(-SubPosStep)
	case CtrlSubMoveDown:
		err = h.native.AddSubPos(SubPosStep)
	}
	if err != nil {
		return &ApiError{Op: "command", Err: err}
	}
	return nil
}

// Quit requests the native player terminate.
func (h *Handle) Quit() error {
	if err := h.native.Quit(); err != nil {
		return &ApiError{Op: "quit", Err: err}
	}
	return nil
}

// WaitUntilClosed drains the event loop until a terminal event, then
// destroys the native handle on a dedicated blocking goroutine, returning
// why playback ended.
func (h *Handle) WaitUntilClosed() EndReason {
	for h.kind != kindEnd {
		if _, err := h.Next(context.Background()); err != nil {
			if h.log != nil {
				h.log.Warn().Src("mpv").Msgf("error while closing: %v", err)
			}
		}
	}

	h.native.UnregisterWakeup()

	done := make(chan struct{})
	go func() {
		h.native.Destroy()
		close(done)
	}()
	<-done

	return h.endReason
}
