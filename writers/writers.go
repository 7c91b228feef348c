// Copyright 2024 Cloudbase Solutions SRL

package writers

import (
	"io"

	"github.com/pkg/errors"

	"github.com/gabriel-samfira/appservices-logs/logging"
	"github.com/gabriel-samfira/appservices-logs/writers/emitter"
	"github.com/gabriel-samfira/appservices-logs/writers/jsonl"
)

const emitterLoggerName = "appservices.records"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// GetWriters returns the writer every retrieved record goes to. Records
// are always emitted through runLog, and additionally stored in output
// when it is not empty. The returned Closer must be closed once the
// run is over.
func GetWriters(runLog *logging.RunLog, output string) (logging.Writer, io.Closer, error) {
	recordEmitter := emitter.NewEmitter(runLog.GetLogger(emitterLoggerName), runLog)
	if output == "" {
		return logging.NewAggregateWriter(recordEmitter), nopCloser{}, nil
	}

	outputWriter, err := jsonl.NewJSONLWriter(output)
	if err != nil {
		return nil, nil, errors.Wrap(err, "getting output writer")
	}
	return logging.NewAggregateWriter(recordEmitter, outputWriter), outputWriter, nil
}
