package bencode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPath(t *testing.T) {
	m, err := FromNative(map[string]any{
		"foo": "bar",
		"bar": map[string]any{
			"baz": "foobar",
		},
		"files": []any{
			map[string]any{"length": 3},
		},
	})
	require.NoError(t, err)
	assert.True(t, CheckPath(m, "foo"))
	assert.False(t, CheckPath(m, "baz"))
	assert.True(t, CheckPath(m, "bar"))
	assert.True(t, CheckPath(m, "bar.baz"))
	assert.False(t, CheckPath(m, "bar.foo"))
	assert.False(t, CheckPath(m, "foo.bar"))
	assert.True(t, CheckPath(m, "files.0.length"))
	assert.False(t, CheckPath(m, "files.1"))

	s, ok := GetString(m, "bar.baz")
	assert.True(t, ok)
	assert.Equal(t, "foobar", s)
	i, ok := GetInt(m, "files.0.length")
	assert.True(t, ok)
	assert.Equal(t, int64(3), i)
	_, ok = GetInt(m, "foo")
	assert.False(t, ok)
	l, ok := GetList(m, "files")
	assert.True(t, ok)
	assert.Len(t, l, 1)
	_, ok = GetDict(m, "bar")
	assert.True(t, ok)
}
