package storage

import (
	"context"

	"github.com/juju/errors"

	"torrent-vault/model"
)

// ErrNotFound is returned by Load when no record has the given info hash.
const ErrNotFound = errors.ConstError("torrent not found")

type TorrentStorage interface {
	// Store inserts or replaces the record keyed by its info hash.
	Store(ctx context.Context, t *model.Torrent) error
	Load(ctx context.Context, infoHash string) (*model.Torrent, error)
}

// Exists reports whether s holds a record for infoHash.
func Exists(ctx context.Context, s TorrentStorage, infoHash string) (bool, error) {
	_, err := s.Load(ctx, infoHash)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Trace(err)
	}
	return true, nil
}
