// Copyright 2024 Cloudbase Solutions SRL

package jsonl

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/gabriel-samfira/appservices-logs/logging"
)

// NewJSONLWriter creates (or truncates) path and returns a writer that
// stores one JSON document per line in it.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating output dir")
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "opening output file")
	}
	return &JSONLWriter{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

var _ logging.Writer = (*JSONLWriter)(nil)

// JSONLWriter dumps the retrieved records to a JSON lines file.
type JSONLWriter struct {
	file    *os.File
	enc     *json.Encoder
	written int
}

func (j *JSONLWriter) Write(rec logging.Record) error {
	if err := j.enc.Encode(rec); err != nil {
		return errors.Wrap(err, "writing record to output file")
	}
	j.written++
	return nil
}

// Written returns the number of records stored so far.
func (j *JSONLWriter) Written() int {
	return j.written
}

func (j *JSONLWriter) Close() error {
	if err := j.file.Sync(); err != nil {
		j.file.Close()
		return errors.Wrap(err, "syncing output file")
	}
	return j.file.Close()
}
