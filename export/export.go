package export

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"github.com/zeromicro/go-zero/core/metric"

	"torrent-vault/common/util"
	"torrent-vault/metainfo"
	"torrent-vault/storage"
)

// ErrCorruptRecord is returned for a stored record that cannot be re-encoded.
const ErrCorruptRecord = errors.ConstError("corrupt torrent record")

var metricExportEvent = metric.NewCounterVec(&metric.CounterVecOpts{
	Namespace: "torrent_vault",
	Subsystem: "export",
	Name:      "event",
	Labels:    []string{"type"},
})

// Exporter re-emits stored torrents as canonical .torrent bytes.
type Exporter struct {
	storage storage.TorrentStorage
	cache   *util.LRWCache[string, []byte]
}

func NewExporter(s storage.TorrentStorage, cacheTTL time.Duration, cacheSize int) *Exporter {
	return &Exporter{
		storage: s,
		cache:   util.NewLRWCache[string, []byte](cacheTTL, cacheSize),
	}
}

// Export returns the canonical encoding of the record stored under infoHash.
// Keys the record does not model are not carried over, so the info hash of the
// output can differ from the stored one; that case is logged.
func (e *Exporter) Export(ctx context.Context, infoHash string) ([]byte, error) {
	if raw, ok := e.cache.Get(infoHash); ok {
		metricExportEvent.Inc("cache_hit")
		return raw, nil
	}
	t, err := e.storage.Load(ctx, infoHash)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !t.Valid() || t.Corrupted() {
		metricExportEvent.Inc("corrupt_record")
		return nil, errors.Annotatef(ErrCorruptRecord, "%s", infoHash)
	}
	m, err := t.Metainfo()
	if err != nil {
		metricExportEvent.Inc("corrupt_record")
		return nil, errors.Trace(err)
	}
	v, err := metainfo.ToValue(m)
	if err != nil {
		return nil, errors.Trace(err)
	}
	h, err := metainfo.InfoHash(v)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if h.String() != t.InfoHash {
		metricExportEvent.Inc("info_hash_changed")
		logrus.Warnf("Exported torrent %s %s has info hash %s after re-encoding", t.InfoHash, t.Name, h)
	}
	raw, err := metainfo.Marshal(m)
	if err != nil {
		return nil, errors.Trace(err)
	}
	e.cache.Set(infoHash, raw)
	metricExportEvent.Inc("exported")
	return raw, nil
}
