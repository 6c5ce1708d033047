package index

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// fileStore keeps the collection in memory and snapshots it to a gob
// file after every mutation, so it survives process restarts.
type fileStore struct {
	path  string
	items []IndexedChunk
}

// NewFileStore opens (or creates) a file-backed collection under dir.
func NewFileStore(dir, collection string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create collection dir: %w", err)
	}
	s := &fileStore{path: filepath.Join(dir, collection+".gob")}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open collection: %w", err)
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&s.items); err != nil {
		return fmt.Errorf("decode collection: %w", err)
	}
	return nil
}

func (s *fileStore) flush() error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(s.items); err != nil {
		f.Close()
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *fileStore) Append(_ context.Context, items []IndexedChunk) error {
	s.items = append(s.items, items...)
	return s.flush()
}

func (s *fileStore) Items(_ context.Context) ([]IndexedChunk, error) {
	out := make([]IndexedChunk, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *fileStore) Reset(_ context.Context) error {
	s.items = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reset collection: %w", err)
	}
	return nil
}
