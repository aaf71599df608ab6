package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/juju/errors"
	_ "modernc.org/sqlite"

	"torrent-vault/model"
)

var _ TorrentStorage = (*SQLiteTorrentStorage)(nil)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS torrents (
    info_hash    TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    total_length INTEGER NOT NULL,
    record_json  TEXT NOT NULL,
    pieces       TEXT NOT NULL,
    raw          BLOB,
    updated_at   TEXT NOT NULL
)`

// SQLiteTorrentStorage keeps records in a local database file. The record is
// stored as JSON next to the columns the JSON form leaves out.
type SQLiteTorrentStorage struct {
	db *sql.DB
}

func NewSQLiteTorrentStorage(path string) (*SQLiteTorrentStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Annotatef(err, "open sqlite db %s", path)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range append(pragmas, sqliteSchema) {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Annotatef(err, "apply %q", pragma)
		}
	}
	return &SQLiteTorrentStorage{db: db}, nil
}

func (s *SQLiteTorrentStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteTorrentStorage) Store(ctx context.Context, t *model.Torrent) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO torrents (info_hash, name, total_length, record_json, pieces, raw, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(info_hash) DO UPDATE SET
            name = excluded.name,
            total_length = excluded.total_length,
            record_json = excluded.record_json,
            pieces = excluded.pieces,
            raw = excluded.raw,
            updated_at = excluded.updated_at`,
		t.InfoHash,
		t.Name,
		t.TotalLength,
		string(doc),
		t.Pieces,
		t.Raw,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Annotatef(err, "upsert torrent %s", t.InfoHash)
	}
	return nil
}

func (s *SQLiteTorrentStorage) Load(ctx context.Context, infoHash string) (*model.Torrent, error) {
	var doc, pieces string
	var raw []byte
	err := s.db.QueryRowContext(
		ctx,
		`SELECT record_json, pieces, raw FROM torrents WHERE info_hash = ?`,
		infoHash,
	).Scan(&doc, &pieces, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Trace(ErrNotFound)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "query torrent %s", infoHash)
	}
	t := &model.Torrent{}
	if err := json.Unmarshal([]byte(doc), t); err != nil {
		return nil, errors.Annotatef(err, "decode torrent %s", infoHash)
	}
	t.Pieces = pieces
	t.Raw = raw
	return t, nil
}
