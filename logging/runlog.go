// Copyright 2024 Cloudbase Solutions SRL
//
//    Licensed under the Apache License, Version 2.0 (the "License"); you may
//    not use this file except in compliance with the License. You may obtain
//    a copy of the License at
//
//         http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
//    WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
//    License for the specific language governing permissions and limitations
//    under the License.

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/juju/loggo"
	"github.com/pkg/errors"
)

const (
	consoleWriterName = "console"
	fileWriterName    = "file"

	logFileTimeFormat = "20060102_150405"
	entryTimeFormat   = "2006-01-02 15:04:05.000"
)

// LogFileName returns the name of the log file for a run started at tm.
func LogFileName(tm time.Time) string {
	return fmt.Sprintf("app_%s.log", tm.Format(logFileTimeFormat))
}

// FormatEntry renders a log entry as "<time> - <LEVEL> - <message>".
func FormatEntry(entry loggo.Entry) string {
	return fmt.Sprintf("%s - %s - %s",
		entry.Timestamp.Format(entryTimeFormat), entry.Level, entry.Message)
}

// fileWriter remembers the first error returned by the underlying
// writer. loggo writers can not return errors, so RunLog.Err is the
// only way callers learn the log file is no longer being written.
type fileWriter struct {
	out io.Writer
	err error
}

func (f *fileWriter) Write(entry loggo.Entry) {
	if f.err != nil {
		return
	}
	if _, err := fmt.Fprintln(f.out, FormatEntry(entry)); err != nil {
		f.err = err
	}
}

// RunLog is the logging context of a single run. It owns the run log
// file and sends every entry both to the console and to that file.
type RunLog struct {
	context *loggo.Context
	file    *os.File
	writer  *fileWriter
	path    string
}

// NewRunLog creates the log file for a run started at started inside
// dir, creating dir if needed. Entries below INFO are dropped unless
// verbose is set.
func NewRunLog(dir string, verbose bool, started time.Time, console io.Writer) (*RunLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating log dir")
	}
	logPath := filepath.Join(dir, LogFileName(started))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "opening log file")
	}

	level := loggo.INFO
	if verbose {
		level = loggo.DEBUG
	}
	ctx := loggo.NewContext(level)
	fw := &fileWriter{out: file}
	if err := ctx.AddWriter(consoleWriterName, loggo.NewSimpleWriter(console, FormatEntry)); err != nil {
		file.Close()
		return nil, errors.Wrap(err, "adding console writer")
	}
	if err := ctx.AddWriter(fileWriterName, fw); err != nil {
		file.Close()
		return nil, errors.Wrap(err, "adding file writer")
	}

	return &RunLog{
		context: ctx,
		file:    file,
		writer:  fw,
		path:    logPath,
	}, nil
}

// GetLogger returns a logger bound to this run.
func (r *RunLog) GetLogger(name string) loggo.Logger {
	return r.context.GetLogger(name)
}

// Path returns the path of the run log file.
func (r *RunLog) Path() string {
	return r.path
}

// Err returns the first error hit while writing the log file.
func (r *RunLog) Err() error {
	return r.writer.err
}

// Close detaches the writers and syncs and closes the log file.
func (r *RunLog) Close() error {
	r.context.RemoveWriter(consoleWriterName)
	r.context.RemoveWriter(fileWriterName)

	syncErr := r.file.Sync()
	if err := r.file.Close(); err != nil {
		return errors.Wrap(err, "closing log file")
	}
	if syncErr != nil {
		return errors.Wrap(syncErr, "syncing log file")
	}
	return r.Err()
}
