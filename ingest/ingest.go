package ingest

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"github.com/zeromicro/go-zero/core/metric"

	"torrent-vault/bencode"
	"torrent-vault/common/executor"
	eventmodel "torrent-vault/common/model"
	"torrent-vault/common/util"
	"torrent-vault/metainfo"
	"torrent-vault/model"
	"torrent-vault/storage"
)

const (
	metricNamespace = "torrent_vault"
	metricSubsystem = "ingest"
)

// ErrDuplicate is returned when the info hash is already stored.
const ErrDuplicate = errors.ConstError("torrent already stored")

var metricIngestEvent = metric.NewCounterVec(&metric.CounterVecOpts{
	Namespace: metricNamespace,
	Subsystem: metricSubsystem,
	Name:      "event",
	Labels:    []string{"type"},
})

type Options struct {
	Decoder   bencode.DecoderOptions
	Workers   int
	QueueSize int
}

// Ingester turns uploaded bytes into stored records. The first storage is the
// one consulted for duplicates.
type Ingester struct {
	opts        Options
	decoder     *bencode.Decoder
	storages    []storage.TorrentStorage
	bloomFilter *util.BloomFilter
	publisher   message.Publisher
	mu          sync.Mutex
}

func NewIngester(opts Options, bloomFilter *util.BloomFilter) *Ingester {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = opts.Workers
	}
	return &Ingester{
		opts:        opts,
		decoder:     bencode.NewDecoder(opts.Decoder),
		bloomFilter: bloomFilter,
	}
}

func (i *Ingester) AddStorage(s storage.TorrentStorage) {
	i.storages = append(i.storages, s)
}

// SetPublisher enables TorrentIngested events.
func (i *Ingester) SetPublisher(p message.Publisher) {
	i.publisher = p
}

// Ingest decodes raw, validates it as metainfo and stores the record in every
// storage. Malformed input yields a *bencode.FormatError or
// *metainfo.SchemaError in the error chain.
func (i *Ingester) Ingest(ctx context.Context, raw []byte) (*model.Torrent, error) {
	v, err := i.decoder.Decode(raw)
	if err != nil {
		metricIngestEvent.Inc("format_error")
		return nil, errors.Trace(err)
	}
	m, err := metainfo.FromValue(v)
	if err != nil {
		metricIngestEvent.Inc("schema_error")
		return nil, errors.Trace(err)
	}
	infoHash, err := metainfo.InfoHash(v)
	if err != nil {
		return nil, errors.Trace(err)
	}
	t := model.NewTorrentFromMetainfo(m, infoHash, raw)

	// The duplicate check and the stores happen under one lock.
	i.mu.Lock()
	defer i.mu.Unlock()
	exists, err := i.exists(ctx, infoHash)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if exists {
		metricIngestEvent.Inc("duplicate")
		return nil, errors.Annotatef(ErrDuplicate, "%s %s", t.InfoHash, t.Name)
	}
	for _, s := range i.storages {
		err = s.Store(ctx, t)
		if err != nil {
			metricIngestEvent.Inc("store_error")
			return nil, errors.Annotatef(err, "store torrent %s", t.InfoHash)
		}
	}
	i.bloomFilter.Add(infoHash[:])
	metricIngestEvent.Inc("ingested")
	logrus.Infof("Ingested torrent %s %s (%d bytes, %d pieces)", t.InfoHash, t.Name, t.TotalLength, len(m.PieceHashes))
	i.publish(t)
	return t, nil
}

func (i *Ingester) exists(ctx context.Context, infoHash metainfo.Hash) (bool, error) {
	if len(i.storages) == 0 || !i.bloomFilter.Exists(infoHash[:]) {
		return false, nil
	}
	metricIngestEvent.Inc("exist_check")
	return storage.Exists(ctx, i.storages[0], infoHash.String())
}

func (i *Ingester) publish(t *model.Torrent) {
	if i.publisher == nil {
		return
	}
	event := eventmodel.TorrentIngested{
		InfoHash:    t.InfoHash,
		Name:        t.Name,
		TotalLength: t.TotalLength,
		Files:       len(t.Files),
		Private:     t.Private,
	}
	if t.IsSingleFile() {
		event.Files = 1
	}
	raw, err := json.Marshal(event)
	if err != nil {
		logrus.Errorf("Failed to marshal ingest event: %+v", err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), raw)
	err = i.publisher.Publish(eventmodel.TopicTorrentIngested, msg)
	if err != nil {
		logrus.Errorf("Failed to publish ingested torrent %s %s message: %+v", t.InfoHash, t.Name, err)
	}
}

type Result struct {
	Path    string
	Torrent *model.Torrent
	Err     error
}

// IngestFiles reads and ingests each path on a worker pool. Results are in
// the order of paths.
func (i *Ingester) IngestFiles(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	wg := sync.WaitGroup{}
	// Workers outlive ctx so every queued path reports a result.
	exec := executor.NewExecutor[int](context.Background(), i.opts.Workers, i.opts.QueueSize, func(idx int) {
		defer wg.Done()
		results[idx] = i.ingestFile(ctx, paths[idx])
	})
	exec.Start()
	defer exec.Stop()
	for idx := range paths {
		wg.Add(1)
		if !exec.Commit(idx) {
			wg.Done()
			results[idx] = Result{Path: paths[idx], Err: errors.New("executor stopped")}
		}
	}
	wg.Wait()
	return results
}

func (i *Ingester) ingestFile(ctx context.Context, path string) Result {
	ret := Result{Path: path}
	if err := ctx.Err(); err != nil {
		ret.Err = errors.Trace(err)
		return ret
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		ret.Err = errors.Trace(err)
		return ret
	}
	ret.Torrent, ret.Err = i.Ingest(ctx, raw)
	if ret.Err != nil {
		logrus.WithField("path", path).Warnf("Failed to ingest torrent: %v", ret.Err)
	}
	return ret
}

// SaveBloomFilter writes the filter to path through a temporary file.
func (i *Ingester) SaveBloomFilter(path string) error {
	tmpFilePath := path + ".tmp"
	logrus.Debugf("Writing bloom filter to tmp file: %s", tmpFilePath)
	bloomFile, err := os.Create(tmpFilePath)
	if err != nil {
		return errors.Trace(err)
	}
	err = i.bloomFilter.Save(bloomFile)
	if err != nil {
		_ = bloomFile.Close()
		return errors.Trace(err)
	}
	err = bloomFile.Close()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.Rename(tmpFilePath, path))
}

// LoadOrCreateBloomFilter reads the filter at path, or returns an empty one of
// the given size when path does not exist.
func LoadOrCreateBloomFilter(path string, bits uint64) (*util.BloomFilter, error) {
	if path == "" {
		return util.NewBloomFilter(bits), nil
	}
	bloomFile, err := os.Open(path)
	if os.IsNotExist(err) {
		return util.NewBloomFilter(bits), nil
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer bloomFile.Close()
	filter, err := util.LoadBloomFilter(bloomFile)
	if err != nil {
		return nil, errors.Annotatef(err, "load bloom filter %s", path)
	}
	return filter, nil
}
