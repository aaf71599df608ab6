// Package metainfo maps between decoded bencode values and typed torrent
// metainfo records.
package metainfo

import (
	"torrent-vault/bencode"
)

const (
	keyAnnounce     = "announce"
	keyAnnounceList = "announce-list"
	keyCreationDate = "creation date"
	keyComment      = "comment"
	keyCreatedBy    = "created by"
	keyEncoding     = "encoding"
	keyInfo         = "info"
	keyName         = "name"
	keyPieceLength  = "piece length"
	keyPieces       = "pieces"
	keyPrivate      = "private"
	keyLength       = "length"
	keyMD5Sum       = "md5sum"
	keyFiles        = "files"
	keyPath         = "path"
)

// TorrentMetainfo is the typed form of a .torrent file. Optional scalars are
// pointers; nil means the key was absent.
type TorrentMetainfo struct {
	Announce     string
	AnnounceList [][]string
	CreationDate *int64
	Comment      *string
	CreatedBy    *string
	Encoding     *string
	PieceLength  *int64
	PieceHashes  []Hash
	Private      bool
	Name         string
	Layout       Layout
}

// Layout is either SingleFile or MultiFile.
type Layout interface {
	TotalLength() int64
	isLayout()
}

type SingleFile struct {
	Length int64
	MD5Sum *string
}

type MultiFile struct {
	Files []FileEntry
}

type FileEntry struct {
	Path   []string
	Length int64
	MD5Sum *string
}

func (SingleFile) isLayout() {}
func (MultiFile) isLayout()  {}

func (s SingleFile) TotalLength() int64 {
	return s.Length
}

func (m MultiFile) TotalLength() int64 {
	var total int64
	for _, f := range m.Files {
		total += f.Length
	}
	return total
}

func (m *TorrentMetainfo) IsSingleFile() bool {
	_, ok := m.Layout.(SingleFile)
	return ok
}

func (m *TorrentMetainfo) TotalLength() int64 {
	if m.Layout == nil {
		return 0
	}
	return m.Layout.TotalLength()
}

// InfoHash hashes the info dict as ToValue would emit it.
func (m *TorrentMetainfo) InfoHash() (Hash, error) {
	v, err := ToValue(m)
	if err != nil {
		return Hash{}, err
	}
	return InfoHash(v)
}

// Parse decodes raw and maps it to a TorrentMetainfo. At most one set of
// decoder options is used.
func Parse(raw []byte, opts ...bencode.DecoderOptions) (*TorrentMetainfo, error) {
	decoder := bencode.NewDecoder(bencode.DecoderOptions{})
	if len(opts) > 0 {
		decoder = bencode.NewDecoder(opts[0])
	}
	v, err := decoder.Decode(raw)
	if err != nil {
		return nil, err
	}
	return FromValue(v)
}

// Marshal returns the canonical bytes of m.
func Marshal(m *TorrentMetainfo) ([]byte, error) {
	v, err := ToValue(m)
	if err != nil {
		return nil, err
	}
	return bencode.Encode(v), nil
}

func kindOf(v bencode.Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}
