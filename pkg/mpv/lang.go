// SPDX-License-Identifier: GPL-2.0-or-later

package mpv

import "strings"

// HumanLang is a configured preferred language for automatic track
// selection.
type HumanLang int

// Supported preferred languages.
const (
	LangEnglish HumanLang = iota
	LangJapanese
)

type priority uint8

func (h HumanLang) score(title, lang string) priority {
	switch h {
	case LangEnglish:
		return scoreEnglish(title, lang)
	case LangJapanese:
		return scoreJapanese(lang)
	default:
		return 0
	}
}

func scoreEnglish(title, lang string) priority {
	if !strings.EqualFold(lang, "eng") {
		return 0
	}
	if strings.EqualFold(title, "signs") {
		return 1
	}
	return 2
}

func scoreJapanese(lang string) priority {
	if strings.EqualFold(lang, "jpn") {
		return 1
	}
	return 0
}

// autoLang tracks whether automatic track selection has run for the
// currently loaded file.
type autoLang struct {
	hasChosen      bool
	preferredSub   HumanLang
	preferredAudio HumanLang
}

func newAutoLang(sub, audio HumanLang) *autoLang {
	return &autoLang{preferredSub: sub, preferredAudio: audio}
}

func (a *autoLang) hasNotChosen() bool {
	return !a.hasChosen
}

// chosen is the pair of track ids autoChoose decided on; hasSub/hasAudio
// are false when no track of that kind attained positive priority.
type chosen struct {
	subID   int64
	hasSub  bool
	audioID int64
	hasAudio bool
}

// autoChoose picks one subtitle and one audio track from tracks, scored
// against the configured preferred languages. Marks selection as having
// run regardless of whether any track scored positively.
func (a *autoLang) autoChoose(tracks []NativeTrack) chosen {
	a.hasChosen = true

	var c chosen
	if id, ok := chooseTrack(tracks, TrackSub, a.preferredSub); ok {
		c.subID, c.hasSub = id, true
	}
	if id, ok := chooseTrack(tracks, TrackAudio, a.preferredAudio); ok {
		c.audioID, c.hasAudio = id, true
	}
	return c
}

// chooseTrack picks the first track of the given type that attains the
// maximum non-zero priority for preferred. First wins on ties.
func chooseTrack(tracks []NativeTrack, ttype TrackType, preferred HumanLang) (int64, bool) {
	var bestID int64
	var bestPrio priority
	found := false

	for _, t := range tracks {
		if t.Type != ttype {
			continue
		}
		prio := preferred.score(t.Title, t.Lang)
		if prio == 0 {
			continue
		}
		if !found || prio > bestPrio {
			bestID, bestPrio, found = t.ID, prio, true
		}
	}

	return bestID, found
}
