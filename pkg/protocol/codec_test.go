// SPDX-License-Identifier: GPL-2.0-or-later

package protocol

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gcast/pkg/front"
	"gcast/pkg/mpv"
)

func roundTrip(t *testing.T, m Message) Message {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))
	got, err := Decode(&buf)
	require.NoError(t, err)
	return got
}

func TestRoundTripSendStatus(t *testing.T) {
	m := ToServerMessage(5, SendStatus())
	got := roundTrip(t, m)
	require.Equal(t, m, got)
}

func TestRoundTripMpvStartFile(t *testing.T) {
	m := ToServerMessage(1, ToServer{
		Kind:     TSMpvStart,
		MpvStart: MpvStart{Kind: MpvStartFile, Root: 2, Path: "/a/b.mkv"},
	})
	got := roundTrip(t, m)
	require.Equal(t, m, got)
}

func TestRoundTripMpvStartURL(t *testing.T) {
	m := ToServerMessage(1, ToServer{
		Kind:     TSMpvStart,
		MpvStart: MpvStart{Kind: MpvStartURL, URL: "http://x", Paused: true},
	})
	got := roundTrip(t, m)
	require.Equal(t, m, got)
}

func TestRoundTripMpvCtrlSetSub(t *testing.T) {
	m := ToServerMessage(7, ToServer{
		Kind:           TSMpvCtrl,
		MpvCtrl:        mpv.CtrlSetSub,
		MpvCtrlTrackID: 42,
	})
	got := roundTrip(t, m)
	require.Equal(t, m, got)
}

func TestRoundTripFsControlSearch(t *testing.T) {
	m := ToServerMessage(3, ToServer{
		Kind:      TSFsControl,
		FsControl: FsControl{Kind: FsCtrlSearch, Query: "inception"},
	})
	got := roundTrip(t, m)
	require.Equal(t, m, got)
}

func TestRoundTripFsControlCd(t *testing.T) {
	m := ToServerMessage(3, ToServer{
		Kind:      TSFsControl,
		FsControl: FsControl{Kind: FsCtrlCd, DirID: 9},
	})
	got := roundTrip(t, m)
	require.Equal(t, m, got)
}

func TestRoundTripToClientNone(t *testing.T) {
	m := ToClientMessage(0, front.None)
	got := roundTrip(t, m)
	require.Equal(t, m, got)
}

func TestRoundTripToClientMpvPlay(t *testing.T) {
	view := front.MpvView{
		Kind:     front.MpvPlay,
		Title:    "Movie",
		Paused:   true,
		Progress: 90 * time.Second,
		Length:   7200 * time.Second,
		Volume:   75,
		HasChapter: true,
		Chapter:    front.Chapter{Current: 2, Total: 10},
		SubtitleTracks: []front.Track{
			{ID: 0, Title: "None", Selected: false},
			{ID: 1, Title: "eng 'Dialogue'", Selected: true},
		},
		AudioTracks: []front.Track{
			{ID: 0, Title: "None", Selected: true},
		},
	}
	m := ToClientMessage(12, front.Mpv(view))
	got := roundTrip(t, m)
	require.Equal(t, m, got)
}

func TestRoundTripToClientErrorMsg(t *testing.T) {
	m := ToClientMessage(4, front.ErrorMsg("Playback failed", "mpv exited with status 1"))
	got := roundTrip(t, m)
	require.Equal(t, m, got)
}

func TestRoundTripToClientFsTree(t *testing.T) {
	view := front.FsView{
		Kind:        front.FsTree,
		Breadcrumbs: []string{"/movies", "sub"},
		Entries: []front.TreeEntry{
			{Kind: front.EntryDir, Name: "sub2", ID: 3},
			{Kind: front.EntryFile, Root: 0, Path: "/movies/sub/a.mkv"},
		},
	}
	m := ToClientMessage(1, front.FileSearch(view))
	got := roundTrip(t, m)
	require.Equal(t, m, got)
}

func TestRoundTripToClientFsResults(t *testing.T) {
	view := front.FsView{
		Kind:       front.FsResults,
		Query:      "ab",
		QueryValid: true,
		Results: []front.SearchResult{
			{RootIndex: 0, PathRelativeRoot: "/a/ab.mkv", BasenameCharOffset: 2, MatchIndices: []int{2, 3}},
		},
	}
	m := ToClientMessage(1, front.FileSearch(view))
	got := roundTrip(t, m)
	require.Equal(t, m, got)
}
