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

package appservices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/juju/loggo"
	"github.com/pkg/errors"

	"github.com/gabriel-samfira/appservices-logs/config"
	"github.com/gabriel-samfira/appservices-logs/datastore"
	"github.com/gabriel-samfira/appservices-logs/httpclient"
	"github.com/gabriel-samfira/appservices-logs/logging"
	"github.com/gabriel-samfira/appservices-logs/params"
)

// logsPage is the body returned by the logs endpoint.
type logsPage struct {
	Logs        []logging.Record `json:"logs"`
	NextEndDate string           `json:"nextEndDate"`
	NextSkip    int              `json:"nextSkip"`
}

// NewPageFetcher returns a PageFetcher for the App Services logs
// endpoint, authenticating every request with token.
func NewPageFetcher(cfg config.API, token string, client *http.Client, log loggo.Logger) (datastore.PageFetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating api config")
	}
	if token == "" {
		return nil, fmt.Errorf("missing access token")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &AppServicesFetcher{
		cfg:    cfg,
		token:  token,
		client: client,
		log:    log,
	}, nil
}

var _ datastore.PageFetcher = (*AppServicesFetcher)(nil)

type AppServicesFetcher struct {
	cfg    config.API
	token  string
	client *http.Client
	log    loggo.Logger
}

func (a *AppServicesFetcher) logsURL(q params.QueryParams) string {
	return a.cfg.BaseURL.Join(
		"groups", url.PathEscape(q.ProjectID),
		"apps", url.PathEscape(q.AppID),
		"logs")
}

// queryValues encodes the filter and cursor. Once a cursor is in play
// its end date replaces the one from the filter.
func queryValues(q params.QueryParams, cursor *datastore.Cursor) url.Values {
	values := url.Values{}
	if q.StartDate != nil {
		values.Set("start_date", q.StartDate.Raw)
	}
	if cursor != nil {
		values.Set("end_date", cursor.EndDate)
		values.Set("skip", strconv.Itoa(cursor.Skip))
	} else if q.EndDate != nil {
		values.Set("end_date", q.EndDate.Raw)
	}
	if len(q.Types) > 0 {
		values.Set("type", q.TypesString())
	}
	if q.UserID != "" {
		values.Set("user_id", q.UserID)
	}
	if q.ErrorsOnly {
		values.Set("errors_only", "true")
	}
	return values
}

func (a *AppServicesFetcher) FetchPage(ctx context.Context, q params.QueryParams, cursor *datastore.Cursor) (datastore.Page, error) {
	reqURL := a.logsURL(q) + "?" + queryValues(q, cursor).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return datastore.Page{}, &datastore.FetchError{Err: errors.Wrap(err, "building request")}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)

	a.log.Debugf("GET %s", reqURL)
	resp, err := a.client.Do(req)
	if err != nil {
		return datastore.Page{}, &datastore.FetchError{Err: errors.Wrap(err, "sending request")}
	}
	defer resp.Body.Close()

	if !httpclient.IsSuccess(resp) {
		return datastore.Page{}, &datastore.FetchError{
			StatusCode: resp.StatusCode,
			Err:        httpclient.StatusError(resp),
		}
	}

	var page logsPage
	decoder := json.NewDecoder(resp.Body)
	// numbers stay as they were sent
	decoder.UseNumber()
	if err := decoder.Decode(&page); err != nil {
		return datastore.Page{}, &datastore.FetchError{
			StatusCode: resp.StatusCode,
			Err:        errors.Wrap(err, "decoding logs page"),
		}
	}

	ret := datastore.Page{
		Records: page.Logs,
	}
	if page.NextEndDate != "" {
		ret.Next = &datastore.Cursor{
			EndDate: page.NextEndDate,
			Skip:    page.NextSkip,
		}
	}
	a.log.Debugf("received %d records (next end date %q, skip %d)",
		len(page.Logs), page.NextEndDate, page.NextSkip)
	return ret, nil
}
