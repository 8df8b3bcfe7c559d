package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "real_time_data.json")
	writer := NewWriter(path)

	require.NoError(t, writer.Write(sampleDocument()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	expected, err := Encode(sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriter_OverwritesPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "real_time_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"REAL_DATA":{"Old":[]},"extra":true}`), 0o644))

	writer := NewWriter(path)
	doc := sampleDocument()
	doc.RealData = doc.RealData[:1]
	require.NoError(t, writer.Write(doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)
	assert.NotContains(t, string(decoded["REAL_DATA"]), "Old")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

func TestWriter_MissingDirectory(t *testing.T) {
	writer := NewWriter(filepath.Join(t.TempDir(), "missing", "real_time_data.json"))

	err := writer.Write(sampleDocument())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create temp file")
}
