package storage

import (
	"context"

	"github.com/juju/errors"
	"github.com/kamva/mgm/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"torrent-vault/model"
)

var _ TorrentStorage = (*MongoTorrentStorage)(nil)

// MongoTorrentStorage uses the mgm default connection; see dao.InitMongo.
type MongoTorrentStorage struct{}

func (m MongoTorrentStorage) Store(ctx context.Context, t *model.Torrent) error {
	col := mgm.Coll(t)
	opts := &options.UpdateOptions{}
	opts.SetUpsert(true)
	err := col.UpdateWithCtx(ctx, t, opts)
	if err != nil {
		logrus.Errorf("Failed to save torrent %s %s %v", t.InfoHash, t.Name, err)
		return errors.Trace(err)
	}
	logrus.Debugf("Saved torrent %s %s", t.InfoHash, t.Name)
	return nil
}

func (m MongoTorrentStorage) Load(ctx context.Context, infoHash string) (*model.Torrent, error) {
	t := &model.Torrent{}
	err := mgm.Coll(t).FindByIDWithCtx(ctx, infoHash, t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Trace(ErrNotFound)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return t, nil
}
