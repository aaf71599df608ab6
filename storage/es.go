package storage

import (
	"context"
	"encoding/json"

	"github.com/juju/errors"
	"github.com/olivere/elastic/v7"
	"github.com/sirupsen/logrus"

	"torrent-vault/model"
)

const esIndex = "torrents"

var _ TorrentStorage = (*ESTorrentStorage)(nil)

// ESTorrentStorage indexes records for search. Raw bytes and pieces are not
// indexed, so records loaded from it cannot be exported.
type ESTorrentStorage struct {
	client *elastic.Client
}

func NewESTorrentStorage(host string) (*ESTorrentStorage, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(host),
		elastic.SetSniff(false),
	)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &ESTorrentStorage{client: client}, nil
}

func (h *ESTorrentStorage) Store(ctx context.Context, t *model.Torrent) error {
	_, err := h.client.Update().
		Index(esIndex).
		Id(t.InfoHash).
		Doc(t).
		DocAsUpsert(true).
		Do(ctx)
	if err != nil {
		logrus.Errorf("Failed to index torrent %s %s %v", t.InfoHash, t.Name, err)
		return errors.Trace(err)
	}
	return nil
}

func (h *ESTorrentStorage) Load(ctx context.Context, infoHash string) (*model.Torrent, error) {
	res, err := h.client.Get().Index(esIndex).Id(infoHash).Do(ctx)
	if elastic.IsNotFound(err) {
		return nil, errors.Trace(ErrNotFound)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !res.Found {
		return nil, errors.Trace(ErrNotFound)
	}
	t := &model.Torrent{}
	err = json.Unmarshal(res.Source, t)
	if err != nil {
		return nil, errors.Annotatef(err, "decode indexed torrent %s", infoHash)
	}
	t.InfoHash = infoHash
	return t, nil
}
