// SPDX-License-Identifier: GPL-2.0-or-later

package mpv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChooseTrackSignsLosesToPlainEnglish(t *testing.T) {
	tracks := []NativeTrack{
		{ID: 10, Type: TrackSub, Title: "Signs", Lang: "eng"},
		{ID: 20, Type: TrackSub, Title: "Dialogue", Lang: "eng"},
	}
	id, ok := chooseTrack(tracks, TrackSub, LangEnglish)
	require.True(t, ok)
	require.Equal(t, int64(20), id)
}

func TestChooseTrackFirstWinsOnTie(t *testing.T) {
	tracks := []NativeTrack{
		{ID: 1, Type: TrackSub, Lang: "eng"},
		{ID: 2, Type: TrackSub, Lang: "eng"},
	}
	id, ok := chooseTrack(tracks, TrackSub, LangEnglish)
	require.True(t, ok)
	require.Equal(t, int64(1), id)
}

func TestChooseTrackNoneWhenNoPositivePriority(t *testing.T) {
	tracks := []NativeTrack{
		{ID: 1, Type: TrackSub, Lang: "ger"},
	}
	_, ok := chooseTrack(tracks, TrackSub, LangEnglish)
	require.False(t, ok)
}

func TestAutoChooseScenario5(t *testing.T) {
	subs := []NativeTrack{
		{ID: 1, Type: TrackSub, Lang: "eng", Title: "Signs"},
		{ID: 2, Type: TrackSub, Lang: "eng"},
		{ID: 3, Type: TrackSub, Lang: "ger"},
	}
	al := newAutoLang(LangEnglish, LangJapanese)
	c := al.autoChoose(subs)
	require.True(t, c.hasSub)
	require.Equal(t, int64(2), c.subID)

	audios := []NativeTrack{
		{ID: 100, Type: TrackAudio, Lang: "jpn"},
		{ID: 101, Type: TrackAudio, Lang: "eng"},
	}
	al2 := newAutoLang(LangEnglish, LangJapanese)
	c2 := al2.autoChoose(audios)
	require.True(t, c2.hasAudio)
	require.Equal(t, int64(100), c2.audioID)
}

func TestAutoChooseMarksChosenEvenWhenNothingScored(t *testing.T) {
	al := newAutoLang(LangEnglish, LangJapanese)
	require.True(t, al.hasNotChosen())
	al.autoChoose(nil)
	require.False(t, al.hasNotChosen())
}
