package model

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kamva/mgm/v3"

	"torrent-vault/metainfo"
)

var _ mgm.Model = (*Torrent)(nil)

// Torrent is the stored form of a metainfo file. Pieces are kept hex-encoded.
// Length and MD5Sum are set for single-file torrents, Files for multi-file ones.
type Torrent struct {
	InfoHash     string     `bson:"_id" json:"info_hash" gorm:"primaryKey;size:40"`
	Name         string     `bson:"name" json:"name"`
	Announce     string     `bson:"announce" json:"announce"`
	AnnounceList [][]string `bson:"announce_list,omitempty" json:"announce_list,omitempty" gorm:"serializer:json"`
	CreationDate *int64     `bson:"creation_date,omitempty" json:"creation_date,omitempty"`
	Comment      *string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedBy    *string    `bson:"created_by,omitempty" json:"created_by,omitempty"`
	Encoding     *string    `bson:"encoding,omitempty" json:"encoding,omitempty"`
	PieceLength  *int64     `bson:"piece_length,omitempty" json:"piece_length,omitempty"`
	Pieces       string     `bson:"pieces" json:"-" gorm:"type:longtext"`
	Private      bool       `bson:"private" json:"private"`
	Length       *int64     `bson:"length,omitempty" json:"length,omitempty"`
	MD5Sum       *string    `bson:"md5sum,omitempty" json:"md5sum,omitempty"`
	Files        []*File    `bson:"files,omitempty" json:"files,omitempty" gorm:"serializer:json"`
	TotalLength  int64      `bson:"total_length" json:"total_length"`
	Raw          []byte     `bson:"raw,omitempty" json:"-" gorm:"type:longblob"`
	CreatedAt    *time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `bson:"updated_at" json:"updated_at"`
}

func (t *Torrent) PrepareID(id interface{}) (interface{}, error) {
	return id, nil
}

func (t *Torrent) GetID() interface{} {
	return t.InfoHash
}

func (t *Torrent) SetID(id interface{}) {
	t.InfoHash = id.(string)
}

func NewTorrentFromMetainfo(m *metainfo.TorrentMetainfo, infoHash metainfo.Hash, raw []byte) *Torrent {
	now := time.Now()
	ret := &Torrent{
		InfoHash:     infoHash.String(),
		Name:         m.Name,
		Announce:     m.Announce,
		AnnounceList: m.AnnounceList,
		CreationDate: m.CreationDate,
		Comment:      m.Comment,
		CreatedBy:    m.CreatedBy,
		Encoding:     m.Encoding,
		PieceLength:  m.PieceLength,
		Pieces:       hex.EncodeToString(joinHashes(m.PieceHashes)),
		Private:      m.Private,
		TotalLength:  m.TotalLength(),
		Raw:          raw,
		CreatedAt:    &now,
		UpdatedAt:    &now,
	}
	switch layout := m.Layout.(type) {
	case metainfo.SingleFile:
		length := layout.Length
		ret.Length = &length
		ret.MD5Sum = layout.MD5Sum
	case metainfo.MultiFile:
		ret.Files = make([]*File, 0, len(layout.Files))
		for _, f := range layout.Files {
			ret.Files = append(ret.Files, NewFileFromEntry(f))
		}
	}
	return ret
}

// Metainfo rebuilds the typed record from the stored fields.
func (t *Torrent) Metainfo() (*metainfo.TorrentMetainfo, error) {
	pieces, err := hex.DecodeString(t.Pieces)
	if err != nil {
		return nil, fmt.Errorf("torrent %s: decode pieces: %w", t.InfoHash, err)
	}
	if len(pieces)%metainfo.HashSize != 0 {
		return nil, fmt.Errorf("torrent %s: pieces length %d is not a multiple of %d", t.InfoHash, len(pieces), metainfo.HashSize)
	}
	m := &metainfo.TorrentMetainfo{
		Announce:     t.Announce,
		AnnounceList: t.AnnounceList,
		CreationDate: t.CreationDate,
		Comment:      t.Comment,
		CreatedBy:    t.CreatedBy,
		Encoding:     t.Encoding,
		PieceLength:  t.PieceLength,
		Private:      t.Private,
		Name:         t.Name,
	}
	for i := 0; i < len(pieces); i += metainfo.HashSize {
		var h metainfo.Hash
		copy(h[:], pieces[i:i+metainfo.HashSize])
		m.PieceHashes = append(m.PieceHashes, h)
	}
	switch {
	case t.Length != nil && len(t.Files) > 0:
		return nil, fmt.Errorf("torrent %s: both length and files stored", t.InfoHash)
	case t.Length != nil:
		m.Layout = metainfo.SingleFile{Length: *t.Length, MD5Sum: t.MD5Sum}
	case len(t.Files) > 0:
		files := make([]metainfo.FileEntry, 0, len(t.Files))
		for _, f := range t.Files {
			files = append(files, f.Entry())
		}
		m.Layout = metainfo.MultiFile{Files: files}
	default:
		return nil, fmt.Errorf("torrent %s: no file layout stored", t.InfoHash)
	}
	return m, nil
}

func (t *Torrent) IsSingleFile() bool {
	return t.Length != nil
}

func (t *Torrent) Valid() bool {
	if len(t.InfoHash) == 0 {
		return false
	}
	if len(t.Name) == 0 {
		return false
	}
	return true
}

func (t *Torrent) Corrupted() bool {
	for _, f := range t.Files {
		if len(f.Paths) == 0 {
			return true
		}
	}
	return len(t.Pieces)%(2*metainfo.HashSize) != 0
}

func joinHashes(hashes []metainfo.Hash) []byte {
	ret := make([]byte, 0, len(hashes)*metainfo.HashSize)
	for _, h := range hashes {
		ret = append(ret, h[:]...)
	}
	return ret
}
