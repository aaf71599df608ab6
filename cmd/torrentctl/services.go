package main

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v2/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"

	"torrent-vault/config"
	"torrent-vault/dao"
	"torrent-vault/storage"
)

type services struct {
	primary storage.TorrentStorage
	extra   []storage.TorrentStorage
	closers []func() error
}

// openStorages connects the configured primary store and, when configured,
// the search index.
func openStorages(cfg *config.Config) (*services, error) {
	svc := &services{}
	switch cfg.Storage.Driver {
	case config.StorageSQLite:
		s, err := storage.NewSQLiteTorrentStorage(cfg.Storage.SQLite)
		if err != nil {
			return nil, errors.Annotatef(err, "open sqlite %s", cfg.Storage.SQLite)
		}
		svc.primary = s
		svc.closers = append(svc.closers, s.Close)
	case config.StorageMongo:
		if err := dao.InitMongo(cfg.Storage.MongoDB, cfg.Storage.Mongo); err != nil {
			return nil, errors.Annotate(err, "init mongo")
		}
		svc.primary = storage.MongoTorrentStorage{}
	case config.StorageMySQL:
		db, err := dao.InitDB(cfg.Storage.MySQL)
		if err != nil {
			return nil, errors.Annotate(err, "init mysql")
		}
		s, err := storage.NewMySQLTorrentStorage(db)
		if err != nil {
			return nil, errors.Trace(err)
		}
		svc.primary = s
	default:
		return nil, errors.NotValidf("storage driver %q", cfg.Storage.Driver)
	}
	if cfg.Storage.ES != "" {
		es, err := storage.NewESTorrentStorage(cfg.Storage.ES)
		if err != nil {
			svc.close()
			return nil, errors.Annotatef(err, "connect elasticsearch %s", cfg.Storage.ES)
		}
		svc.extra = append(svc.extra, es)
	}
	return svc, nil
}

func (s *services) close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			logrus.Warnf("Failed to close storage: %v", err)
		}
	}
}

func newPublisher(uri string) (message.Publisher, error) {
	amqpConfig := amqp.NewDurablePubSubConfig(uri, nil)
	publisher, err := amqp.NewPublisher(amqpConfig, watermill.NewStdLogger(false, false))
	if err != nil {
		return nil, errors.Trace(err)
	}
	return publisher, nil
}
