package jsonl

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabriel-samfira/appservices-logs/logging"
)

func readLines(t *testing.T, path string) []logging.Record {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var ret []logging.Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec logging.Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		ret = append(ret, rec)
	}
	require.NoError(t, scanner.Err())
	return ret
}

func TestJSONLWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "logs.jsonl")
	wr, err := NewJSONLWriter(path)
	require.NoError(t, err)

	require.NoError(t, wr.Write(logging.Record{"_id": "1", "messages": []interface{}{"a", "b"}}))
	require.NoError(t, wr.Write(logging.Record{"_id": "2"}))
	assert.Equal(t, 2, wr.Written())
	require.NoError(t, wr.Close())

	records := readLines(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID())
	assert.Equal(t, []interface{}{"a", "b"}, records[0]["messages"])
	assert.Equal(t, "2", records[1].ID())
}

func TestJSONLWriterTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"_id\": \"old\"}\n"), 0o644))

	wr, err := NewJSONLWriter(path)
	require.NoError(t, err)
	require.NoError(t, wr.Close())
	assert.Empty(t, readLines(t, path))
}

func TestJSONLWriterWriteAfterClose(t *testing.T) {
	wr, err := NewJSONLWriter(filepath.Join(t.TempDir(), "logs.jsonl"))
	require.NoError(t, err)
	require.NoError(t, wr.Close())
	assert.Error(t, wr.Write(logging.Record{"_id": "1"}))
}
