package metainfo

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"torrent-vault/bencode"
)

const HashSize = sha1.Size

// Hash is a SHA-1 digest, used both for piece hashes and info hashes.
type Hash [HashSize]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("metainfo: invalid hash %q: %w", s, err)
	}
	if len(raw) != HashSize {
		return h, fmt.Errorf("metainfo: hash %q has %d bytes, want %d", s, len(raw), HashSize)
	}
	copy(h[:], raw)
	return h, nil
}

// InfoHash returns the SHA-1 of the info dict of a decoded torrent. A dict
// decoded with unsorted keys allowed is hashed from the bytes it was read from;
// otherwise its canonical encoding is hashed, which for strictly decoded input
// is the same thing.
func InfoHash(v bencode.Value) (Hash, error) {
	top, ok := v.(*bencode.Dict)
	if !ok {
		return Hash{}, schemaErrorf("", "top-level value is a %s, want dict", kindOf(v))
	}
	info, ok := top.Get(keyInfo)
	if !ok {
		return Hash{}, schemaErrorf(keyInfo, "missing")
	}
	infoDict, ok := info.(*bencode.Dict)
	if !ok {
		return Hash{}, schemaErrorf(keyInfo, "is a %s, want dict", kindOf(info))
	}
	if raw := infoDict.Raw(); raw != nil {
		return sha1.Sum(raw), nil
	}
	return sha1.Sum(bencode.Encode(infoDict)), nil
}

func splitPieces(pieces []byte) ([]Hash, error) {
	if len(pieces)%HashSize != 0 {
		return nil, schemaErrorf("info.pieces", "length %d is not a multiple of %d", len(pieces), HashSize)
	}
	if len(pieces) == 0 {
		return nil, nil
	}
	ret := make([]Hash, len(pieces)/HashSize)
	for i := range ret {
		copy(ret[i][:], pieces[i*HashSize:(i+1)*HashSize])
	}
	return ret, nil
}

func joinPieces(hashes []Hash) []byte {
	ret := make([]byte, 0, len(hashes)*HashSize)
	for _, h := range hashes {
		ret = append(ret, h[:]...)
	}
	return ret
}
