package storage

import (
	"context"

	"github.com/juju/errors"
	"gorm.io/gorm"

	"torrent-vault/model"
)

var _ TorrentStorage = (*MySQLTorrentStorage)(nil)

type MySQLTorrentStorage struct {
	db *gorm.DB
}

// NewMySQLTorrentStorage migrates the torrents table on db; see dao.InitDB.
func NewMySQLTorrentStorage(db *gorm.DB) (*MySQLTorrentStorage, error) {
	err := db.AutoMigrate(&model.Torrent{})
	if err != nil {
		return nil, errors.Annotate(err, "migrate torrents table")
	}
	return &MySQLTorrentStorage{db: db}, nil
}

func (s *MySQLTorrentStorage) Store(ctx context.Context, t *model.Torrent) error {
	err := s.db.WithContext(ctx).Save(t).Error
	if err != nil {
		return errors.Trace(err)
	}
	return nil
}

func (s *MySQLTorrentStorage) Load(ctx context.Context, infoHash string) (*model.Torrent, error) {
	t := &model.Torrent{}
	err := s.db.WithContext(ctx).First(t, "info_hash = ?", infoHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Trace(ErrNotFound)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return t, nil
}
