// SPDX-License-Identifier: GPL-2.0-or-later

package protocol

import (
	"bytes"
	"fmt"
	"io"

	"gcast/pkg/front"
	"gcast/pkg/mpv"
	"gcast/pkg/wire"
)

// Encode writes m as one length-delimited wire frame.
func Encode(w io.Writer, m Message) error {
	var buf bytes.Buffer
	fw := wire.NewWriter(&buf)

	if err := fw.WriteUint64(m.ID); err != nil {
		return err
	}
	if err := fw.WriteUint8(uint8(m.Kind)); err != nil {
		return err
	}

	switch m.Kind {
	case KindToServer:
		if err := encodeToServer(fw, m.ToServer); err != nil {
			return err
		}
	case KindToClient:
		if err := encodeFrontState(fw, m.ToClient); err != nil {
			return err
		}
	default:
		return fmt.Errorf("protocol: unknown message kind %d", m.Kind)
	}

	if err := fw.Close(); err != nil {
		return err
	}
	return wire.WriteFrame(w, buf.Bytes())
}

// Decode reads one length-delimited wire frame and parses it as a Message.
func Decode(r io.Reader) (Message, error) {
	payload, err := wire.ReadFrame(r)
	if err != nil {
		return Message{}, err
	}
	fr := wire.NewReader(bytes.NewReader(payload))

	id, err := fr.ReadUint64()
	if err != nil {
		return Message{}, err
	}
	kindByte, err := fr.ReadUint8()
	if err != nil {
		return Message{}, err
	}

	m := Message{ID: id, Kind: Kind(kindByte)}
	switch m.Kind {
	case KindToServer:
		ts, err := decodeToServer(fr)
		if err != nil {
			return Message{}, err
		}
		m.ToServer = ts
	case KindToClient:
		f, err := decodeFrontState(fr)
		if err != nil {
			return Message{}, err
		}
		m.ToClient = f
	default:
		return Message{}, fmt.Errorf("protocol: unknown message kind %d", kindByte)
	}
	return m, nil
}

func encodeToServer(w *wire.Writer, ts ToServer) error {
	if err := w.WriteUint8(uint8(ts.Kind)); err != nil {
		return err
	}
	switch ts.Kind {
	case TSSendStatus:
		return nil
	case TSPowerCtrl:
		return w.WriteUint8(uint8(ts.PowerCtrl))
	case TSMpvStart:
		return encodeMpvStart(w, ts.MpvStart)
	case TSMpvCtrl:
		if err := w.WriteUint8(uint8(ts.MpvCtrl)); err != nil {
			return err
		}
		return w.WriteInt64(ts.MpvCtrlTrackID)
	case TSSpotifyStart:
		return w.WriteUint8(uint8(ts.SpotifyStart))
	case TSSpotifyCtrl:
		return w.WriteUint8(uint8(ts.SpotifyCtrl))
	case TSFsStart:
		return w.WriteUint8(uint8(ts.FsStart))
	case TSFsControl:
		return encodeFsControl(w, ts.FsControl)
	case TSPlayUrlStart:
		return w.WriteUint8(uint8(ts.PlayUrlStart))
	case TSErrorMsgCtrl:
		return w.WriteUint8(uint8(ts.ErrorMsgCtrl))
	default:
		return fmt.Errorf("protocol: unknown ToServer kind %d", ts.Kind)
	}
}

func decodeToServer(r *wire.Reader) (ToServer, error) {
	kindByte, err := r.ReadUint8()
	if err != nil {
		return ToServer{}, err
	}
	ts := ToServer{Kind: ToServerKind(kindByte)}

	switch ts.Kind {
	case TSSendStatus:
		return ts, nil
	case TSPowerCtrl:
		v, err := r.ReadUint8()
		ts.PowerCtrl = PowerCtrlKind(v)
		return ts, err
	case TSMpvStart:
		ms, err := decodeMpvStart(r)
		ts.MpvStart = ms
		return ts, err
	case TSMpvCtrl:
		v, err := r.ReadUint8()
		if err != nil {
			return ts, err
		}
		ts.MpvCtrl = mpv.Control(v)
		id, err := r.ReadInt64()
		ts.MpvCtrlTrackID = id
		return ts, err
	case TSSpotifyStart:
		v, err := r.ReadUint8()
		ts.SpotifyStart = SpotifyStartKind(v)
		return ts, err
	case TSSpotifyCtrl:
		v, err := r.ReadUint8()
		ts.SpotifyCtrl = SpotifyCtrlKind(v)
		return ts, err
	case TSFsStart:
		v, err := r.ReadUint8()
		ts.FsStart = FsStartKind(v)
		return ts, err
	case TSFsControl:
		fc, err := decodeFsControl(r)
		ts.FsControl = fc
		return ts, err
	case TSPlayUrlStart:
		v, err := r.ReadUint8()
		ts.PlayUrlStart = PlayUrlStartKind(v)
		return ts, err
	case TSErrorMsgCtrl:
		v, err := r.ReadUint8()
		ts.ErrorMsgCtrl = ErrorMsgCtrlKind(v)
		return ts, err
	default:
		return ToServer{}, fmt.Errorf("protocol: unknown ToServer kind %d", kindByte)
	}
}

func encodeMpvStart(w *wire.Writer, ms MpvStart) error {
	if err := w.WriteUint8(uint8(ms.Kind)); err != nil {
		return err
	}
	switch ms.Kind {
	case MpvStartStop:
		return nil
	case MpvStartFile:
		if err := w.WriteInt(ms.Root); err != nil {
			return err
		}
		return w.WriteString(ms.Path)
	case MpvStartURL:
		if err := w.WriteString(ms.URL); err != nil {
			return err
		}
		return w.WriteBool(ms.Paused)
	default:
		return fmt.Errorf("protocol: unknown MpvStart kind %d", ms.Kind)
	}
}

func decodeMpvStart(r *wire.Reader) (MpvStart, error) {
	kindByte, err := r.ReadUint8()
	if err != nil {
		return MpvStart{}, err
	}
	ms := MpvStart{Kind: MpvStartKind(kindByte)}

	switch ms.Kind {
	case MpvStartStop:
		return ms, nil
	case MpvStartFile:
		root, err := r.ReadInt()
		if err != nil {
			return ms, err
		}
		path, err := r.ReadString()
		ms.Root, ms.Path = root, path
		return ms, err
	case MpvStartURL:
		url, err := r.ReadString()
		if err != nil {
			return ms, err
		}
		paused, err := r.ReadBool()
		ms.URL, ms.Paused = url, paused
		return ms, err
	default:
		return MpvStart{}, fmt.Errorf("protocol: unknown MpvStart kind %d", kindByte)
	}
}

func encodeFsControl(w *wire.Writer, fc FsControl) error {
	if err := w.WriteUint8(uint8(fc.Kind)); err != nil {
		return err
	}
	switch fc.Kind {
	case FsCtrlSearch:
		return w.WriteString(fc.Query)
	case FsCtrlRefreshCache, FsCtrlBackToTheBeginning, FsCtrlCdDotDot:
		return nil
	case FsCtrlCd:
		return w.WriteInt(fc.DirID)
	default:
		return fmt.Errorf("protocol: unknown FsControl kind %d", fc.Kind)
	}
}

func decodeFsControl(r *wire.Reader) (FsControl, error) {
	kindByte, err := r.ReadUint8()
	if err != nil {
		return FsControl{}, err
	}
	fc := FsControl{Kind: FsControlKind(kindByte)}

	switch fc.Kind {
	case FsCtrlSearch:
		q, err := r.ReadString()
		fc.Query = q
		return fc, err
	case FsCtrlRefreshCache, FsCtrlBackToTheBeginning, FsCtrlCdDotDot:
		return fc, nil
	case FsCtrlCd:
		id, err := r.ReadInt()
		fc.DirID = id
		return fc, err
	default:
		return FsControl{}, fmt.Errorf("protocol: unknown FsControl kind %d", kindByte)
	}
}
