package util

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/spaolacci/murmur3"
)

const (
	bitsPerByte  = 8
	defaultK     = 7
	bloomHeaderN = 8 + 8 + 1
)

// BloomFilter remembers info hashes already seen, with false positives but no
// false negatives.
type BloomFilter struct {
	lock sync.RWMutex

	m    uint64
	n    uint64
	k    uint8
	keys []byte
}

// http://pages.cs.wisc.edu/~cao/papers/summary-cache/node8.html
func NewBloomFilter(bits uint64) *BloomFilter {
	if bits == 0 {
		bits = bitsPerByte
	}
	filter := &BloomFilter{}
	filter.m = bits
	filter.k = defaultK
	filter.keys = make([]byte, (bits+bitsPerByte-1)/bitsPerByte)
	return filter
}

func LoadBloomFilter(reader io.Reader) (*BloomFilter, error) {
	header := make([]byte, bloomHeaderN)
	_, err := io.ReadFull(reader, header)
	if err != nil {
		return nil, err
	}
	keys, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	filter := &BloomFilter{
		m:    binary.BigEndian.Uint64(header[0:8]),
		n:    binary.BigEndian.Uint64(header[8:16]),
		k:    header[16],
		keys: keys,
	}
	if filter.m == 0 || uint64(len(keys)) != (filter.m+bitsPerByte-1)/bitsPerByte {
		return nil, fmt.Errorf("bloom filter of %d bits has %d key bytes", filter.m, len(keys))
	}
	if filter.k == 0 {
		return nil, fmt.Errorf("bloom filter of %d bits has no hash functions", filter.m)
	}
	return filter, nil
}

func (f *BloomFilter) Add(data []byte) {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, loc := range f.getLocations(data) {
		f.keys[loc/bitsPerByte] |= 1 << (loc % bitsPerByte)
	}

	f.n++
}

func (f *BloomFilter) Exists(data []byte) bool {
	f.lock.RLock()
	defer f.lock.RUnlock()

	for _, loc := range f.getLocations(data) {
		if f.keys[loc/bitsPerByte]&(1<<(loc%bitsPerByte)) == 0 {
			return false
		}
	}

	return true
}

// Count is the number of Add calls, duplicates included.
func (f *BloomFilter) Count() uint64 {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.n
}

func (f *BloomFilter) Save(writer io.Writer) error {
	f.lock.RLock()
	defer f.lock.RUnlock()

	header := make([]byte, 0, bloomHeaderN)
	header = binary.BigEndian.AppendUint64(header, f.m)
	header = binary.BigEndian.AppendUint64(header, f.n)
	header = append(header, f.k)
	_, err := writer.Write(header)
	if err != nil {
		return err
	}
	_, err = writer.Write(f.keys)
	if err != nil {
		return err
	}
	return nil
}

func (f *BloomFilter) getLocations(data []byte) []uint64 {
	locations := make([]uint64, f.k)
	buf := make([]byte, len(data)+1)
	copy(buf, data)
	for i := uint8(0); i < f.k; i++ {
		buf[len(data)] = i
		locations[i] = baseHash(buf) % f.m
	}
	return locations
}

func baseHash(data []byte) uint64 {
	hasher := murmur3.New64()
	hasher.Write(data)
	return hasher.Sum64()
}
