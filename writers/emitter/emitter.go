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

package emitter

import (
	"encoding/json"

	"github.com/juju/loggo"
	"github.com/pkg/errors"

	"github.com/gabriel-samfira/appservices-logs/logging"
)

// errorSource reports the first failure of the log file
// behind a logger.
type errorSource interface {
	Err() error
}

// NewEmitter returns a Writer that logs every record at INFO through
// log. Writes fail once sink reports an error.
func NewEmitter(log loggo.Logger, sink errorSource) logging.Writer {
	return &Emitter{
		log:  log,
		sink: sink,
	}
}

var _ logging.Writer = (*Emitter)(nil)

// Emitter writes records to the console and the run log file
type Emitter struct {
	log  loggo.Logger
	sink errorSource
}

func (e *Emitter) Write(rec logging.Record) error {
	asBytes, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshaling log record")
	}
	e.log.Infof("%s", asBytes)
	if err := e.sink.Err(); err != nil {
		return errors.Wrap(err, "writing log file")
	}
	return nil
}
