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

package pager

import (
	"context"
	"fmt"

	"github.com/juju/loggo"
	"github.com/pkg/errors"

	"github.com/gabriel-samfira/appservices-logs/datastore"
	"github.com/gabriel-samfira/appservices-logs/logging"
	"github.com/gabriel-samfira/appservices-logs/params"
)

// State is the state of a Driver
type State int

const (
	Fetching State = iota
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// NewDriver returns a Driver that pages through every log matching q.
func NewDriver(fetcher datastore.PageFetcher, q params.QueryParams, log loggo.Logger) *Driver {
	return &Driver{
		fetcher: fetcher,
		query:   q,
		log:     log,
		state:   Fetching,
	}
}

// Driver walks the pages returned by a PageFetcher, one at a time,
// following the cursor returned with each page.
type Driver struct {
	fetcher datastore.PageFetcher
	query   params.QueryParams
	log     loggo.Logger

	state   State
	pages   int
	records int
}

// State returns the current state of the driver.
func (d *Driver) State() State {
	return d.state
}

// Pages returns the number of pages fetched so far.
func (d *Driver) Pages() int {
	return d.pages
}

// Records returns the number of records handed to the writer so far.
func (d *Driver) Records() int {
	return d.records
}

func (d *Driver) fail(err error) error {
	d.state = Failed
	return err
}

// Run fetches pages until the API reports no further page, or returns
// an empty one. Records reach w as soon as their page arrives. The
// first error from the fetcher or from w ends the run. Nothing is
// retried.
func (d *Driver) Run(ctx context.Context, w logging.Writer) error {
	if d.state != Fetching {
		return fmt.Errorf("driver already ran (state %s)", d.state)
	}

	var cursor *datastore.Cursor
	for {
		if err := ctx.Err(); err != nil {
			return d.fail(errors.Wrap(err, "fetching logs"))
		}

		page, err := d.fetcher.FetchPage(ctx, d.query, cursor)
		if err != nil {
			return d.fail(errors.Wrapf(err, "fetching page %d", d.pages+1))
		}
		d.pages++
		d.log.Debugf("page %d returned %d records", d.pages, len(page.Records))

		for _, rec := range page.Records {
			if err := w.Write(rec); err != nil {
				return d.fail(errors.Wrapf(err, "emitting record from page %d", d.pages))
			}
			d.records++
		}

		if len(page.Records) == 0 || page.Next == nil {
			d.state = Done
			return nil
		}
		cursor = page.Next
	}
}
