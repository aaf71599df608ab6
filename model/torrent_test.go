package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torrent-vault/metainfo"
)

func sampleMetainfo() *metainfo.TorrentMetainfo {
	comment := "rip log included"
	date := int64(1600000000)
	pieceLength := int64(65536)
	return &metainfo.TorrentMetainfo{
		Announce:     "http://tracker.example/announce",
		AnnounceList: [][]string{{"http://tracker.example/announce"}},
		CreationDate: &date,
		Comment:      &comment,
		PieceLength:  &pieceLength,
		PieceHashes:  []metainfo.Hash{{1, 2, 3}, {4, 5, 6}},
		Private:      true,
		Name:         "album",
		Layout: metainfo.MultiFile{Files: []metainfo.FileEntry{
			{Path: []string{"01.flac"}, Length: 300},
			{Path: []string{"scans", "front.jpg"}, Length: 20},
		}},
	}
}

func TestTorrent_MetainfoRoundTrip(t *testing.T) {
	m := sampleMetainfo()
	h, err := m.InfoHash()
	require.NoError(t, err)
	record := NewTorrentFromMetainfo(m, h, []byte("raw"))
	assert.Equal(t, h.String(), record.InfoHash)
	assert.Equal(t, int64(320), record.TotalLength)
	assert.Len(t, record.Pieces, 80)
	assert.False(t, record.IsSingleFile())
	assert.True(t, record.Valid())
	assert.False(t, record.Corrupted())

	back, err := record.Metainfo()
	if assert.NoError(t, err) {
		assert.Equal(t, m, back)
	}
}

func TestTorrent_SingleFile(t *testing.T) {
	md5 := "d41d8cd98f00b204e9800998ecf8427e"
	m := &metainfo.TorrentMetainfo{
		Announce: "http://t",
		Name:     "a.iso",
		Layout:   metainfo.SingleFile{Length: 42, MD5Sum: &md5},
	}
	record := NewTorrentFromMetainfo(m, metainfo.Hash{}, nil)
	if assert.NotNil(t, record.Length) {
		assert.Equal(t, int64(42), *record.Length)
	}
	assert.Equal(t, &md5, record.MD5Sum)
	assert.Nil(t, record.Files)
	back, err := record.Metainfo()
	if assert.NoError(t, err) {
		assert.Equal(t, m, back)
	}
}

func TestTorrent_MetainfoRejectsBrokenRecords(t *testing.T) {
	length := int64(1)
	_, err := (&Torrent{InfoHash: "x", Pieces: "zz", Length: &length}).Metainfo()
	assert.Error(t, err)
	_, err = (&Torrent{InfoHash: "x", Pieces: "abcd", Length: &length}).Metainfo()
	assert.Error(t, err)
	_, err = (&Torrent{InfoHash: "x"}).Metainfo()
	assert.Error(t, err)
	_, err = (&Torrent{InfoHash: "x", Length: &length, Files: []*File{{Length: 1, Paths: []string{"a"}}}}).Metainfo()
	assert.Error(t, err)
}

func TestTorrent_Corrupted(t *testing.T) {
	assert.True(t, (&Torrent{Files: []*File{{Length: 1}}}).Corrupted())
	assert.True(t, (&Torrent{Pieces: "abc"}).Corrupted())
	assert.False(t, (&Torrent{}).Corrupted())
	assert.False(t, (&Torrent{Name: "n"}).Valid())
}

func TestTorrent_JSONOmitsRawAndPieces(t *testing.T) {
	record := NewTorrentFromMetainfo(sampleMetainfo(), metainfo.Hash{}, []byte("raw"))
	data, err := json.Marshal(record)
	require.NoError(t, err)
	doc := map[string]any{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc, "raw")
	assert.NotContains(t, doc, "pieces")
	assert.Equal(t, "album", doc["name"])
}
