// SPDX-License-Identifier: GPL-2.0-or-later

package fileindex

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"gcast/pkg/wire"
)

var bucketName = []byte("cache_index")

const indexKey = "index"

// Store persists exactly one CacheIndex to a single bbolt file, the one
// on-disk artifact the system is permitted to keep.
type Store struct {
	db *bbolt.DB
}

// OpenStore opens (creating if necessary) the cache database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("fileindex: create cache dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("fileindex: open cache db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("fileindex: init cache bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the persisted CacheIndex, or (nil, nil) if none has been
// written yet.
func (s *Store) Load() (*CacheIndex, error) {
	var blob []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(indexKey))
		if v != nil {
			blob = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fileindex: read cache: %w", err)
	}
	if blob == nil {
		return nil, nil
	}

	idx, err := decodeCacheIndex(blob)
	if err != nil {
		return nil, fmt.Errorf("fileindex: decode cache: %w", err)
	}
	return idx, nil
}

// Save persists idx, replacing any previously stored index.
func (s *Store) Save(idx *CacheIndex) error {
	blob, err := encodeCacheIndex(idx)
	if err != nil {
		return fmt.Errorf("fileindex: encode cache: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(indexKey), blob)
	})
}

func encodeCacheIndex(idx *CacheIndex) ([]byte, error) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)

	if err := w.WriteUint32(uint32(len(idx.Roots))); err != nil {
		return nil, err
	}
	for _, root := range idx.Roots {
		if err := w.WriteString(root); err != nil {
			return nil, err
		}
	}

	if err := w.WriteUint32(uint32(len(idx.Files))); err != nil {
		return nil, err
	}
	for _, f := range idx.Files {
		if err := w.WriteInt(f.RootIndex); err != nil {
			return nil, err
		}
		if err := w.WriteString(f.PathRelativeRoot); err != nil {
			return nil, err
		}
	}

	if err := w.WriteUint32(uint32(len(idx.Dirs))); err != nil {
		return nil, err
	}
	for _, d := range idx.Dirs {
		if err := w.WriteInt(d.RootIndex); err != nil {
			return nil, err
		}
		if err := w.WriteString(d.PathRelativeRoot); err != nil {
			return nil, err
		}
		if err := w.WriteUint32(uint32(len(d.Children))); err != nil {
			return nil, err
		}
		for _, c := range d.Children {
			if err := w.WriteUint8(uint8(c.Kind)); err != nil {
				return nil, err
			}
			if err := w.WriteInt(c.Index); err != nil {
				return nil, err
			}
		}
	}

	if err := w.WriteUint32(uint32(len(idx.RootDirPointers))); err != nil {
		return nil, err
	}
	for _, r := range idx.RootDirPointers {
		if err := w.WriteUint8(uint8(r.Kind)); err != nil {
			return nil, err
		}
		if err := w.WriteInt(r.Index); err != nil {
			return nil, err
		}
	}

	if err := w.WriteInt64(idx.UpdatedAt.UnixNano()); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeCacheIndex(blob []byte) (*CacheIndex, error) {
	r := wire.NewReader(bytes.NewReader(blob))
	idx := &CacheIndex{}

	numRoots, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	idx.Roots = make([]string, numRoots)
	for i := range idx.Roots {
		if idx.Roots[i], err = r.ReadString(); err != nil {
			return nil, err
		}
	}

	numFiles, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	idx.Files = make([]FileEntry, numFiles)
	for i := range idx.Files {
		if idx.Files[i].RootIndex, err = r.ReadInt(); err != nil {
			return nil, err
		}
		if idx.Files[i].PathRelativeRoot, err = r.ReadString(); err != nil {
			return nil, err
		}
	}

	numDirs, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	idx.Dirs = make([]DirEntry, numDirs)
	for i := range idx.Dirs {
		if idx.Dirs[i].RootIndex, err = r.ReadInt(); err != nil {
			return nil, err
		}
		if idx.Dirs[i].PathRelativeRoot, err = r.ReadString(); err != nil {
			return nil, err
		}
		numChildren, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		idx.Dirs[i].Children = make([]Ref, numChildren)
		for j := range idx.Dirs[i].Children {
			kind, err := r.ReadUint8()
			if err != nil {
				return nil, err
			}
			index, err := r.ReadInt()
			if err != nil {
				return nil, err
			}
			idx.Dirs[i].Children[j] = Ref{Kind: RefKind(kind), Index: index}
		}
	}

	numPointers, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	idx.RootDirPointers = make([]Ref, numPointers)
	for i := range idx.RootDirPointers {
		kind, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		index, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		idx.RootDirPointers[i] = Ref{Kind: RefKind(kind), Index: index}
	}

	nanos, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	idx.UpdatedAt = time.Unix(0, nanos)

	return idx, nil
}
