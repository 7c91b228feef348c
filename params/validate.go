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

package params

import (
	"regexp"
	"strings"
	"time"
)

const (
	// DateLayout is ISO 8601 with millisecond precision in UTC.
	DateLayout = "2006-01-02T15:04:05.000Z"

	// DefaultWindow is the range fetched when no dates are given.
	DefaultWindow = 24 * time.Hour

	reasonInvalidDate    = "invalid date format"
	reasonUnsupported    = "unsupported log type"
	reasonNotHex         = "not a valid hexadecimal string"
	reasonEmpty          = "must not be empty"
	reasonInvalidKey     = "not a valid private key format"
	reasonDatesUnordered = "start date is after end date"
)

var (
	hexRegex        = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	privateKeyRegex = regexp.MustCompile(`^[0-9a-fA-F-]+$`)
	dateRegex       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)
)

// RawQuery holds the unvalidated filter values from the command line.
// A nil pointer means the option was not given.
type RawQuery struct {
	ProjectID  string
	AppID      string
	StartDate  *string
	EndDate    *string
	Types      *string
	UserID     *string
	ErrorsOnly bool
}

// ValidateHex checks that value is a non empty hexadecimal string.
func ValidateHex(field, value string) error {
	if !hexRegex.MatchString(value) {
		return newValidationError(field, value, reasonNotHex)
	}
	return nil
}

// ValidateString checks that value is not blank.
func ValidateString(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return newValidationError(field, value, reasonEmpty)
	}
	return nil
}

// ValidatePrivateKey checks the hyphenated hex form of an API private key.
// The key itself is never echoed back in the error.
func ValidatePrivateKey(field, value string) error {
	if !privateKeyRegex.MatchString(value) {
		return newValidationError(field, "", reasonInvalidKey)
	}
	return nil
}

// ParseDate validates value against DateLayout.
func ParseDate(field, value string) (Date, error) {
	if !dateRegex.MatchString(value) {
		return Date{}, newValidationError(field, value, reasonInvalidDate)
	}
	tm, err := time.Parse(DateLayout, value)
	if err != nil {
		// matches the pattern but is not a calendar date (month 13 and the like)
		return Date{}, newValidationError(field, value, reasonInvalidDate)
	}
	return Date{Raw: value, Time: tm}, nil
}

// ParseLogTypes splits a comma separated list of log types. Repeated
// values are dropped, keeping the first occurrence.
func ParseLogTypes(field, value string) ([]LogType, error) {
	seen := map[LogType]bool{}
	ret := []LogType{}
	for _, val := range strings.Split(value, ",") {
		logType := LogType(strings.TrimSpace(val))
		if !logType.IsValid() {
			return nil, newValidationError(field, val, reasonUnsupported)
		}
		if seen[logType] {
			continue
		}
		seen[logType] = true
		ret = append(ret, logType)
	}
	return ret, nil
}

// NewDate returns a Date for tm, truncated to millisecond precision.
func NewDate(tm time.Time) Date {
	tm = tm.UTC().Truncate(time.Millisecond)
	return Date{
		Raw:  tm.Format(DateLayout),
		Time: tm,
	}
}

// NewQueryParams validates raw and returns the filter used for every
// page fetch. When neither date is given the filter covers the
// DefaultWindow ending at now. When only one is given, the other side
// stays open.
func NewQueryParams(raw RawQuery, now time.Time) (QueryParams, error) {
	if err := ValidateHex("project_id", raw.ProjectID); err != nil {
		return QueryParams{}, err
	}
	if err := ValidateString("app_id", raw.AppID); err != nil {
		return QueryParams{}, err
	}

	query := QueryParams{
		ProjectID:  raw.ProjectID,
		AppID:      raw.AppID,
		ErrorsOnly: raw.ErrorsOnly,
	}

	if raw.StartDate != nil {
		start, err := ParseDate("start_date", *raw.StartDate)
		if err != nil {
			return QueryParams{}, err
		}
		query.StartDate = &start
	}
	if raw.EndDate != nil {
		end, err := ParseDate("end_date", *raw.EndDate)
		if err != nil {
			return QueryParams{}, err
		}
		query.EndDate = &end
	}

	switch {
	case query.StartDate == nil && query.EndDate == nil:
		end := NewDate(now)
		start := NewDate(end.Time.Add(-DefaultWindow))
		query.StartDate = &start
		query.EndDate = &end
	case query.StartDate != nil && query.EndDate != nil:
		if query.StartDate.Time.After(query.EndDate.Time) {
			return QueryParams{}, newValidationError("start_date", query.StartDate.Raw, reasonDatesUnordered)
		}
	}

	if raw.Types != nil {
		types, err := ParseLogTypes("type", *raw.Types)
		if err != nil {
			return QueryParams{}, err
		}
		query.Types = types
	}

	if raw.UserID != nil {
		if err := ValidateString("user_id", *raw.UserID); err != nil {
			return QueryParams{}, err
		}
		query.UserID = *raw.UserID
	}
	return query, nil
}
