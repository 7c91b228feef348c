package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/juju/loggo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	records []Record
	err     error
}

func (r *recordingWriter) Write(rec Record) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func TestAggregateWriter(t *testing.T) {
	first := &recordingWriter{}
	second := &recordingWriter{}
	wr := NewAggregateWriter(first, second)

	rec := Record{"_id": "abc", "type": "FUNCTION"}
	require.NoError(t, wr.Write(rec))
	assert.Equal(t, []Record{rec}, first.records)
	assert.Equal(t, []Record{rec}, second.records)
	assert.Equal(t, "abc", rec.ID())
}

func TestAggregateWriterStopsOnError(t *testing.T) {
	failing := &recordingWriter{err: fmt.Errorf("disk full")}
	after := &recordingWriter{}
	wr := NewAggregateWriter(failing, after)

	err := wr.Write(Record{"_id": "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, after.records)
}

func TestLogFileName(t *testing.T) {
	tm := time.Date(2024, 10, 5, 14, 3, 9, 0, time.UTC)
	assert.Equal(t, "app_20241005_140309.log", LogFileName(tm))
}

func TestFormatEntry(t *testing.T) {
	entry := loggo.Entry{
		Level:     loggo.INFO,
		Timestamp: time.Date(2024, 10, 5, 14, 3, 9, 120000000, time.UTC),
		Message:   "fetched 50 records",
	}
	assert.Equal(t, "2024-10-05 14:03:09.120 - INFO - fetched 50 records", FormatEntry(entry))
}

func TestRunLogWritesConsoleAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	started := time.Date(2024, 10, 5, 14, 3, 9, 0, time.UTC)
	console := &bytes.Buffer{}

	runLog, err := NewRunLog(dir, false, started, console)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "app_20241005_140309.log"), runLog.Path())

	log := runLog.GetLogger("appservices.test")
	log.Infof("hello %s", "world")
	log.Debugf("not shown")
	log.Errorf("something broke")
	require.NoError(t, runLog.Close())

	contents, err := os.ReadFile(runLog.Path())
	require.NoError(t, err)
	fileLines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Len(t, fileLines, 2)
	assert.True(t, strings.HasSuffix(fileLines[0], " - INFO - hello world"), fileLines[0])
	assert.True(t, strings.HasSuffix(fileLines[1], " - ERROR - something broke"), fileLines[1])

	assert.Equal(t, string(contents), console.String())
}

func TestRunLogVerbose(t *testing.T) {
	console := &bytes.Buffer{}
	runLog, err := NewRunLog(t.TempDir(), true, time.Now(), console)
	require.NoError(t, err)

	runLog.GetLogger("appservices.test").Debugf("page details")
	require.NoError(t, runLog.Close())
	assert.Contains(t, console.String(), " - DEBUG - page details")
}

func TestRunLogCloseDetachesWriters(t *testing.T) {
	console := &bytes.Buffer{}
	runLog, err := NewRunLog(t.TempDir(), false, time.Now(), console)
	require.NoError(t, err)
	log := runLog.GetLogger("appservices.test")
	require.NoError(t, runLog.Close())

	log.Infof("after close")
	assert.Empty(t, console.String())
}

func TestRunLogFileErrorIsSticky(t *testing.T) {
	runLog, err := NewRunLog(t.TempDir(), false, time.Now(), &bytes.Buffer{})
	require.NoError(t, err)
	defer runLog.Close()

	require.NoError(t, runLog.Err())
	// Closing the file underneath the writer makes every further write fail.
	require.NoError(t, runLog.file.Close())

	runLog.GetLogger("appservices.test").Infof("lost")
	assert.Error(t, runLog.Err())
}

func TestNewRunLogBadDir(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := NewRunLog(filepath.Join(blocker, "logs"), false, time.Now(), &bytes.Buffer{})
	assert.Error(t, err)
}
