package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torrent-vault/bencode"
	"torrent-vault/metainfo"
)

var sampleTorrent = "d8:announce13:http://t/anno4:infod5:extra4:keep6:lengthi5e4:name3:abc12:piece lengthi16384e6:pieces20:" +
	strings.Repeat("a", 20) + "ee"

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInspect(t *testing.T) {
	path := writeTemp(t, "a.torrent", sampleTorrent)
	out, err := runCommand(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "http://t/anno")
	assert.Contains(t, out, "single file")
	assert.Contains(t, out, "16384")
}

func TestGet(t *testing.T) {
	path := writeTemp(t, "a.torrent", sampleTorrent)
	out, err := runCommand(t, "get", path, "info.length")
	require.NoError(t, err)
	assert.Equal(t, "5", strings.TrimSpace(out))

	_, err = runCommand(t, "get", path, "info.files.0")
	assert.Error(t, err)
}

func TestGet_ContainerAsJSON(t *testing.T) {
	path := writeTemp(t, "a.torrent", sampleTorrent)
	out, err := runCommand(t, "get", path, "info")
	require.NoError(t, err)
	doc := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "abc", doc["name"])
	assert.Equal(t, float64(16384), doc["piece length"])
	assert.Equal(t, strings.Repeat("a", 20), doc["pieces"])
}

func TestCanonDropsUnmodeledKeys(t *testing.T) {
	in := writeTemp(t, "a.torrent", sampleTorrent)
	out := filepath.Join(t.TempDir(), "b.torrent")
	_, err := runCommand(t, "canon", in, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "extra")
	m, err := metainfo.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "abc", m.Name)
}

func TestCanonRawKeepsKeys(t *testing.T) {
	in := writeTemp(t, "a.torrent", sampleTorrent)
	out := filepath.Join(t.TempDir(), "b.torrent")
	_, err := runCommand(t, "canon", "--raw", in, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	v, err := bencode.Decode(data)
	require.NoError(t, err)
	assert.True(t, bencode.CheckPath(v, "info.extra"))
}

func TestLenientFlag(t *testing.T) {
	path := writeTemp(t, "a.torrent", "d4:infod6:lengthi1e4:name1:ae8:announce1:xe")
	_, err := runCommand(t, "get", path, "announce")
	var fe *bencode.FormatError
	assert.ErrorAs(t, err, &fe)

	out, err := runCommand(t, "--lenient", "get", path, "announce")
	require.NoError(t, err)
	assert.Equal(t, "x", strings.TrimSpace(out))
}
