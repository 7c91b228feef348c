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
	"github.com/pkg/errors"
)

// Record is a single log entry as returned by the API. Fields are
// passed through untouched.
type Record map[string]interface{}

// ID returns the record "_id" field, if any.
func (r Record) ID() string {
	if val, ok := r["_id"].(string); ok {
		return val
	}
	return ""
}

type aggregateWriter struct {
	writers []Writer
}

// NewAggregateWriter returns a Writer that hands every record to each
// of the given writers in turn. The first failing writer stops the
// record from reaching the ones after it.
func NewAggregateWriter(writer ...Writer) Writer {
	wr := &aggregateWriter{
		writers: writer,
	}
	return wr
}

func (a *aggregateWriter) Write(rec Record) error {
	for _, val := range a.writers {
		if err := val.Write(rec); err != nil {
			return errors.Wrap(err, "writing log record")
		}
	}
	return nil
}
