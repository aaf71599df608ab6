package util

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBloom(t *testing.T) {
	filter := NewBloomFilter(1024 * 1024)
	filter.Add([]byte{123})
	path := filepath.Join(t.TempDir(), "bloom.test")
	file, err := os.Create(path)
	require.NoError(t, err)
	err = filter.Save(file)
	assert.NoError(t, err)
	file.Close()
	file, err = os.Open(path)
	require.NoError(t, err)
	filter, err = LoadBloomFilter(file)
	require.NoError(t, err)
	file.Close()
	r := filter.Exists([]byte{123})
	assert.True(t, r)
	r = filter.Exists([]byte{99})
	assert.False(t, r)
	assert.Equal(t, uint64(1), filter.Count())
}

func TestBloom_DoesNotMutateInput(t *testing.T) {
	filter := NewBloomFilter(4096)
	data := make([]byte, 2, 8)
	data[0], data[1] = 1, 2
	filter.Add(data)
	assert.Equal(t, []byte{1, 2, 0}, data[:3])
	assert.True(t, filter.Exists([]byte{1, 2}))
}

func TestLoadBloomFilter_ZeroHashes(t *testing.T) {
	var saved bytes.Buffer
	require.NoError(t, NewBloomFilter(64).Save(&saved))
	data := saved.Bytes()
	data[16] = 0
	_, err := LoadBloomFilter(bytes.NewReader(data))
	assert.Error(t, err)
}

func TestLoadBloomFilter_Truncated(t *testing.T) {
	_, err := LoadBloomFilter(bytes.NewReader([]byte{0, 1}))
	assert.Error(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, NewBloomFilter(64).Save(buf))
	raw := buf.Bytes()
	_, err = LoadBloomFilter(bytes.NewReader(raw[:len(raw)-1]))
	assert.Error(t, err)
}
