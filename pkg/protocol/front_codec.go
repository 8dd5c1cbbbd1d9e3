// SPDX-License-Identifier: GPL-2.0-or-later

package protocol

import (
	"fmt"
	"time"

	"gcast/pkg/front"
	"gcast/pkg/wire"
)

func encodeFrontState(w *wire.Writer, s front.State) error {
	if err := w.WriteUint8(uint8(s.Kind)); err != nil {
		return err
	}
	switch s.Kind {
	case front.KindNone, front.KindSpotify, front.KindPlayUrl:
		return nil
	case front.KindMpv:
		return encodeMpvView(w, s.Mpv)
	case front.KindFileSearch:
		return encodeFsView(w, s.FileSearch)
	case front.KindErrorMsg:
		if err := w.WriteString(s.ErrorHeader); err != nil {
			return err
		}
		return w.WriteString(s.ErrorBody)
	default:
		return fmt.Errorf("protocol: unknown front kind %d", s.Kind)
	}
}

func decodeFrontState(r *wire.Reader) (front.State, error) {
	kindByte, err := r.ReadUint8()
	if err != nil {
		return front.State{}, err
	}
	s := front.State{Kind: front.Kind(kindByte)}

	switch s.Kind {
	case front.KindNone, front.KindSpotify, front.KindPlayUrl:
		return s, nil
	case front.KindMpv:
		v, err := decodeMpvView(r)
		s.Mpv = v
		return s, err
	case front.KindFileSearch:
		v, err := decodeFsView(r)
		s.FileSearch = v
		return s, err
	case front.KindErrorMsg:
		header, err := r.ReadString()
		if err != nil {
			return s, err
		}
		body, err := r.ReadString()
		s.ErrorHeader, s.ErrorBody = header, body
		return s, err
	default:
		return front.State{}, fmt.Errorf("protocol: unknown front kind %d", kindByte)
	}
}

func encodeMpvView(w *wire.Writer, v front.MpvView) error {
	if err := w.WriteUint8(uint8(v.Kind)); err != nil {
		return err
	}
	if v.Kind == front.MpvLoad {
		return nil
	}

	if err := w.WriteString(v.Title); err != nil {
		return err
	}
	if err := w.WriteBool(v.Paused); err != nil {
		return err
	}
	if err := w.WriteFloat64(v.Progress.Seconds()); err != nil {
		return err
	}
	if err := w.WriteFloat64(v.Length.Seconds()); err != nil {
		return err
	}
	if err := w.WriteFloat64(v.Volume); err != nil {
		return err
	}
	if err := w.WriteBool(v.HasChapter); err != nil {
		return err
	}
	if v.HasChapter {
		if err := w.WriteInt(v.Chapter.Current); err != nil {
			return err
		}
		if err := w.WriteInt(v.Chapter.Total); err != nil {
			return err
		}
	}
	if err := encodeTracks(w, v.SubtitleTracks); err != nil {
		return err
	}
	return encodeTracks(w, v.AudioTracks)
}

func decodeMpvView(r *wire.Reader) (front.MpvView, error) {
	kindByte, err := r.ReadUint8()
	if err != nil {
		return front.MpvView{}, err
	}
	v := front.MpvView{Kind: front.MpvKind(kindByte)}
	if v.Kind == front.MpvLoad {
		return v, nil
	}

	if v.Title, err = r.ReadString(); err != nil {
		return v, err
	}
	if v.Paused, err = r.ReadBool(); err != nil {
		return v, err
	}
	progress, err := r.ReadFloat64()
	if err != nil {
		return v, err
	}
	v.Progress = time.Duration(progress * float64(time.Second))
	length, err := r.ReadFloat64()
	if err != nil {
		return v, err
	}
	v.Length = time.Duration(length * float64(time.Second))
	if v.Volume, err = r.ReadFloat64(); err != nil {
		return v, err
	}
	if v.HasChapter, err = r.ReadBool(); err != nil {
		return v, err
	}
	if v.HasChapter {
		if v.Chapter.Current, err = r.ReadInt(); err != nil {
			return v, err
		}
		if v.Chapter.Total, err = r.ReadInt(); err != nil {
			return v, err
		}
	}
	if v.SubtitleTracks, err = decodeTracks(r); err != nil {
		return v, err
	}
	if v.AudioTracks, err = decodeTracks(r); err != nil {
		return v, err
	}
	return v, nil
}

func encodeTracks(w *wire.Writer, tracks []front.Track) error {
	if err := w.WriteUint32(uint32(len(tracks))); err != nil {
		return err
	}
	for _, t := range tracks {
		if err := w.WriteInt(t.ID); err != nil {
			return err
		}
		if err := w.WriteString(t.Title); err != nil {
			return err
		}
		if err := w.WriteBool(t.Selected); err != nil {
			return err
		}
	}
	return nil
}

func decodeTracks(r *wire.Reader) ([]front.Track, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	tracks := make([]front.Track, n)
	for i := range tracks {
		if tracks[i].ID, err = r.ReadInt(); err != nil {
			return nil, err
		}
		if tracks[i].Title, err = r.ReadString(); err != nil {
			return nil, err
		}
		if tracks[i].Selected, err = r.ReadBool(); err != nil {
			return nil, err
		}
	}
	return tracks, nil
}

func encodeFsView(w *wire.Writer, v front.FsView) error {
	if err := w.WriteUint8(uint8(v.Kind)); err != nil {
		return err
	}
	switch v.Kind {
	case front.FsInit:
		if err := w.WriteBool(v.HasLastCacheDate); err != nil {
			return err
		}
		if v.HasLastCacheDate {
			return w.WriteInt64(v.LastCacheDate.UnixNano())
		}
		return nil
	case front.FsRefreshing:
		if err := w.WriteUint32(uint32(len(v.Roots))); err != nil {
			return err
		}
		for _, root := range v.Roots {
			if err := w.WriteString(root.Path); err != nil {
				return err
			}
			if err := w.WriteUint8(uint8(root.Status)); err != nil {
				return err
			}
		}
		if err := w.WriteInt(v.TotalDirs); err != nil {
			return err
		}
		if err := w.WriteInt(v.DoneDirs); err != nil {
			return err
		}
		if err := w.WriteInt(v.NumErrors); err != nil {
			return err
		}
		return w.WriteBool(v.IsDone)
	case front.FsResults:
		if err := w.WriteString(v.Query); err != nil {
			return err
		}
		if err := w.WriteBool(v.QueryValid); err != nil {
			return err
		}
		if err := w.WriteUint32(uint32(len(v.Results))); err != nil {
			return err
		}
		for _, res := range v.Results {
			if err := w.WriteInt(res.RootIndex); err != nil {
				return err
			}
			if err := w.WriteString(res.PathRelativeRoot); err != nil {
				return err
			}
			if err := w.WriteInt(res.BasenameCharOffset); err != nil {
				return err
			}
			if err := writeIntSlice(w, res.MatchIndices); err != nil {
				return err
			}
		}
		return nil
	case front.FsTree:
		if err := w.WriteUint32(uint32(len(v.Breadcrumbs))); err != nil {
			return err
		}
		for _, b := range v.Breadcrumbs {
			if err := w.WriteString(b); err != nil {
				return err
			}
		}
		if err := w.WriteUint32(uint32(len(v.Entries))); err != nil {
			return err
		}
		for _, e := range v.Entries {
			if err := w.WriteUint8(uint8(e.Kind)); err != nil {
				return err
			}
			if err := w.WriteInt(e.Root); err != nil {
				return err
			}
			if err := w.WriteString(e.Path); err != nil {
				return err
			}
			if err := w.WriteString(e.Name); err != nil {
				return err
			}
			if err := w.WriteInt(e.ID); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("protocol: unknown FsView kind %d", v.Kind)
	}
}

func decodeFsView(r *wire.Reader) (front.FsView, error) {
	kindByte, err := r.ReadUint8()
	if err != nil {
		return front.FsView{}, err
	}
	v := front.FsView{Kind: front.FsKind(kindByte)}

	switch v.Kind {
	case front.FsInit:
		if v.HasLastCacheDate, err = r.ReadBool(); err != nil {
			return v, err
		}
		if v.HasLastCacheDate {
			nanos, err := r.ReadInt64()
			if err != nil {
				return v, err
			}
			v.LastCacheDate = time.Unix(0, nanos)
		}
		return v, nil
	case front.FsRefreshing:
		n, err := r.ReadUint32()
		if err != nil {
			return v, err
		}
		v.Roots = make([]front.RootInfo, n)
		for i := range v.Roots {
			if v.Roots[i].Path, err = r.ReadString(); err != nil {
				return v, err
			}
			status, err := r.ReadUint8()
			if err != nil {
				return v, err
			}
			v.Roots[i].Status = front.RootStatus(status)
		}
		if v.TotalDirs, err = r.ReadInt(); err != nil {
			return v, err
		}
		if v.DoneDirs, err = r.ReadInt(); err != nil {
			return v, err
		}
		if v.NumErrors, err = r.ReadInt(); err != nil {
			return v, err
		}
		if v.IsDone, err = r.ReadBool(); err != nil {
			return v, err
		}
		return v, nil
	case front.FsResults:
		if v.Query, err = r.ReadString(); err != nil {
			return v, err
		}
		if v.QueryValid, err = r.ReadBool(); err != nil {
			return v, err
		}
		n, err := r.ReadUint32()
		if err != nil {
			return v, err
		}
		v.Results = make([]front.SearchResult, n)
		for i := range v.Results {
			if v.Results[i].RootIndex, err = r.ReadInt(); err != nil {
				return v, err
			}
			if v.Results[i].PathRelativeRoot, err = r.ReadString(); err != nil {
				return v, err
			}
			if v.Results[i].BasenameCharOffset, err = r.ReadInt(); err != nil {
				return v, err
			}
			if v.Results[i].MatchIndices, err = readIntSlice(r); err != nil {
				return v, err
			}
		}
		return v, nil
	case front.FsTree:
		n, err := r.ReadUint32()
		if err != nil {
			return v, err
		}
		v.Breadcrumbs = make([]string, n)
		for i := range v.Breadcrumbs {
			if v.Breadcrumbs[i], err = r.ReadString(); err != nil {
				return v, err
			}
		}
		m, err := r.ReadUint32()
		if err != nil {
			return v, err
		}
		v.Entries = make([]front.TreeEntry, m)
		for i := range v.Entries {
			kindByte, err := r.ReadUint8()
			if err != nil {
				return v, err
			}
			v.Entries[i].Kind = front.EntryKind(kindByte)
			if v.Entries[i].Root, err = r.ReadInt(); err != nil {
				return v, err
			}
			if v.Entries[i].Path, err = r.ReadString(); err != nil {
				return v, err
			}
			if v.Entries[i].Name, err = r.ReadString(); err != nil {
				return v, err
			}
			if v.Entries[i].ID, err = r.ReadInt(); err != nil {
				return v, err
			}
		}
		return v, nil
	default:
		return front.FsView{}, fmt.Errorf("protocol: unknown FsView kind %d", kindByte)
	}
}

func writeIntSlice(w *wire.Writer, xs []int) error {
	if err := w.WriteUint32(uint32(len(xs))); err != nil {
		return err
	}
	for _, x := range xs {
		if err := w.WriteInt(x); err != nil {
			return err
		}
	}
	return nil
}

func readIntSlice(r *wire.Reader) ([]int, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	xs := make([]int, n)
	for i := range xs {
		if xs[i], err = r.ReadInt(); err != nil {
			return nil, err
		}
	}
	return xs, nil
}
