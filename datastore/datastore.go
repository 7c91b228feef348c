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

package datastore

import (
	"context"
	"fmt"

	"github.com/gabriel-samfira/appservices-logs/logging"
	"github.com/gabriel-samfira/appservices-logs/params"
)

// Cursor points at the page following the one it was returned with.
type Cursor struct {
	EndDate string
	Skip    int
}

// Page is one page of log records. A nil Next means there are no
// more pages.
type Page struct {
	Records []logging.Record
	Next    *Cursor
}

// PageFetcher fetches a single page of logs. A nil cursor requests
// the first page.
type PageFetcher interface {
	FetchPage(ctx context.Context, q params.QueryParams, cursor *Cursor) (Page, error)
}

// FetchError is returned when a page request fails. StatusCode is
// zero when no response was received.
type FetchError struct {
	StatusCode int
	Err        error
}

func (f *FetchError) Error() string {
	if f.StatusCode == 0 {
		return fmt.Sprintf("fetching logs: %v", f.Err)
	}
	return fmt.Sprintf("fetching logs (http %d): %v", f.StatusCode, f.Err)
}

func (f *FetchError) Unwrap() error {
	return f.Err
}
