// SPDX-License-Identifier: GPL-2.0-or-later

// Package front holds the view descriptors the remote renders verbatim:
// FrontState and the substates of its Mpv and FileSearch variants.
package front

import "time"

// Kind discriminates a FrontState's variant.
type Kind int

// FrontState variants.
const (
	KindNone Kind = iota
	KindSpotify
	KindPlayUrl
	KindMpv
	KindFileSearch
	KindErrorMsg
)

// State is the tagged union of screen descriptors the remote can render.
// Only the field matching Kind is meaningful.
type State struct {
	Kind Kind

	Mpv        MpvView
	FileSearch FsView

	ErrorHeader string
	ErrorBody   string
}

// None is the screen shown before any activity has started.
var None = State{Kind: KindNone}

// Spotify is the screen shown while the spotify client runs.
var Spotify = State{Kind: KindSpotify}

// PlayUrl is the screen shown while waiting for a URL to play.
var PlayUrl = State{Kind: KindPlayUrl}

// Mpv wraps an MpvView as a FrontState.
func Mpv(v MpvView) State { return State{Kind: KindMpv, Mpv: v} }

// FileSearch wraps an FsView as a FrontState.
func FileSearch(v FsView) State { return State{Kind: KindFileSearch, FileSearch: v} }

// ErrorMsg is the modal error screen.
func ErrorMsg(header, body string) State {
	return State{Kind: KindErrorMsg, ErrorHeader: header, ErrorBody: body}
}

// MpvKind discriminates an MpvView's variant.
type MpvKind int

// MpvView variants.
const (
	MpvLoad MpvKind = iota
	MpvPlay
)

// Track is a selectable subtitle or audio track as rendered to the remote.
type Track struct {
	ID       int
	Title    string
	Selected bool
}

// Chapter is the current/total chapter pair, when the media has chapters.
type Chapter struct {
	Current int
	Total   int
}

// MpvView is the Mpv screen's descriptor.
type MpvView struct {
	Kind MpvKind

	Title    string
	Paused   bool
	Progress time.Duration
	Length   time.Duration
	// Volume is a percentage, 0 or positive.
	Volume float64

	HasChapter bool
	Chapter    Chapter

	SubtitleTracks []Track
	AudioTracks    []Track
}

// Load is the MpvView shown while a file is loading.
var Load = MpvView{Kind: MpvLoad}

// RootStatus is a crawl root's probing/scanning status.
type RootStatus int

// RootStatus values.
const (
	RootPending RootStatus = iota
	RootLoading
	RootError
	RootDone
)

// RootInfo is one root's path and current status, for the Refreshing view.
type RootInfo struct {
	Path   string
	Status RootStatus
}

// FsKind discriminates an FsView's variant.
type FsKind int

// FsView variants.
const (
	FsInit FsKind = iota
	FsRefreshing
	FsResults
	FsTree
)

// SearchResult is one ranked match in the Results view.
type SearchResult struct {
	RootIndex          int
	PathRelativeRoot   string
	BasenameCharOffset int
	MatchIndices       []int
}

// EntryKind discriminates a Tree entry between a file and a subdirectory.
type EntryKind int

// Entry kinds.
const (
	EntryFile EntryKind = iota
	EntryDir
)

// TreeEntry is one listed file or directory in the Tree view.
type TreeEntry struct {
	Kind EntryKind

	// File fields.
	Root int
	Path string

	// Dir fields (and the shared Name).
	Name string
	ID   int
}

// FsView is the Filer screen's descriptor.
type FsView struct {
	Kind FsKind

	// Init
	HasLastCacheDate bool
	LastCacheDate    time.Time

	// Refreshing
	Roots     []RootInfo
	TotalDirs int
	DoneDirs  int
	NumErrors int
	IsDone    bool

	// Results
	Query      string
	QueryValid bool
	Results    []SearchResult

	// Tree
	Breadcrumbs []string
	Entries     []TreeEntry
}
