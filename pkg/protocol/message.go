// SPDX-License-Identifier: GPL-2.0-or-later

// Package protocol defines the wire-level Message envelope exchanged
// between the server and its single remote: the ToServer/ToClient tagged
// unions and their binary encoding on top of pkg/wire's framing.
package protocol

import (
	"gcast/pkg/front"
	"gcast/pkg/mpv"
)

// Kind discriminates a Message's direction.
type Kind uint8

// Message kinds.
const (
	KindToServer Kind = iota
	KindToClient
)

// Message is the envelope carried by one wire frame.
type Message struct {
	ID   uint64
	Kind Kind

	ToServer ToServer  // valid iff Kind == KindToServer
	ToClient front.State // valid iff Kind == KindToClient
}

// ToServerMessage wraps ts as a server-bound message.
func ToServerMessage(id uint64, ts ToServer) Message {
	return Message{ID: id, Kind: KindToServer, ToServer: ts}
}

// ToClientMessage wraps f as a client-bound message.
func ToClientMessage(id uint64, f front.State) Message {
	return Message{ID: id, Kind: KindToClient, ToClient: f}
}

// ToServerKind discriminates a ToServer payload's variant.
type ToServerKind uint8

// ToServer variants.
const (
	TSSendStatus ToServerKind = iota
	TSPowerCtrl
	TSMpvStart
	TSMpvCtrl
	TSSpotifyStart
	TSSpotifyCtrl
	TSFsStart
	TSFsControl
	TSPlayUrlStart
	TSErrorMsgCtrl
)

// PowerCtrlKind discriminates a PowerCtrl payload.
type PowerCtrlKind uint8

// PowerCtrl variants.
const (
	PowerCtrlPoweroff PowerCtrlKind = iota
)

// MpvStartKind discriminates an MpvStart payload's variant.
type MpvStartKind uint8

// MpvStart variants.
const (
	MpvStartStop MpvStartKind = iota
	MpvStartFile
	MpvStartURL
)

// MpvStart requests the Mpv screen be entered (or left) in a given mode.
type MpvStart struct {
	Kind MpvStartKind

	Root int
	Path string

	URL    string
	Paused bool
}

// SpotifyStartKind discriminates a SpotifyStart payload's variant.
type SpotifyStartKind uint8

// SpotifyStart variants.
const (
	SpotifyStartStart SpotifyStartKind = iota
	SpotifyStartStop
)

// SpotifyCtrlKind discriminates a SpotifyCtrl payload's variant.
type SpotifyCtrlKind uint8

// SpotifyCtrl variants.
const (
	SpotifyCtrlFullscreen SpotifyCtrlKind = iota
)

// FsStartKind discriminates an FsStart payload's variant.
type FsStartKind uint8

// FsStart variants.
const (
	FsStartStart FsStartKind = iota
	FsStartStop
	FsStartRefreshCache
	FsStartSearch
	FsStartTree
)

// FsControlKind discriminates an FsControl payload's variant.
type FsControlKind uint8

// FsControl variants.
const (
	FsCtrlSearch FsControlKind = iota
	FsCtrlRefreshCache
	FsCtrlBackToTheBeginning
	FsCtrlCd
	FsCtrlCdDotDot
)

// FsControl is a command issued while the Filer screen is active.
type FsControl struct {
	Kind FsControlKind

	Query string
	DirID int
}

// PlayUrlStartKind discriminates a PlayUrlStart payload's variant.
type PlayUrlStartKind uint8

// PlayUrlStart variants.
const (
	PlayUrlStartStart PlayUrlStartKind = iota
	PlayUrlStartStop
)

// ErrorMsgCtrlKind discriminates an ErrorMsgCtrl payload's variant.
type ErrorMsgCtrlKind uint8

// ErrorMsgCtrl variants.
const (
	ErrorMsgCtrlClose ErrorMsgCtrlKind = iota
)

// ToServer is the tagged union of every command the remote may send.
type ToServer struct {
	Kind ToServerKind

	PowerCtrl PowerCtrlKind

	MpvStart MpvStart

	// MpvCtrl reuses pkg/mpv's own Control enum: the wire variant set and
	// the façade's command set are the same thing by construction.
	MpvCtrl        mpv.Control
	MpvCtrlTrackID int64

	SpotifyStart SpotifyStartKind
	SpotifyCtrl  SpotifyCtrlKind

	FsStart   FsStartKind
	FsControl FsControl

	PlayUrlStart PlayUrlStartKind

	ErrorMsgCtrl ErrorMsgCtrlKind
}

// SendStatus is the sentinel ToServer asking the Gatekeeper to re-emit the
// last-sent front state.
func SendStatus() ToServer { return ToServer{Kind: TSSendStatus} }
