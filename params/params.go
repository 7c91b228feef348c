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
	"strings"
	"time"
)

// LogType is one of the log types the logs endpoint can filter on
type LogType string

const (
	TriggerFailure        LogType = "TRIGGER_FAILURE"
	TriggerErrorHandler   LogType = "TRIGGER_ERROR_HANDLER"
	DBTrigger             LogType = "DB_TRIGGER"
	AuthTrigger           LogType = "AUTH_TRIGGER"
	ScheduledTrigger      LogType = "SCHEDULED_TRIGGER"
	Function              LogType = "FUNCTION"
	ServiceFunction       LogType = "SERVICE_FUNCTION"
	StreamFunction        LogType = "STREAM_FUNCTION"
	ServiceStreamFunction LogType = "SERVICE_STREAM_FUNCTION"
	Auth                  LogType = "AUTH"
	Webhook               LogType = "WEBHOOK"
	Endpoint              LogType = "ENDPOINT"
	Push                  LogType = "PUSH"
	API                   LogType = "API"
	APIKey                LogType = "API_KEY"
	GraphQL               LogType = "GRAPHQL"
	SyncConnectionStart   LogType = "SYNC_CONNECTION_START"
	SyncConnectionEnd     LogType = "SYNC_CONNECTION_END"
	SyncSessionStart      LogType = "SYNC_SESSION_START"
	SyncSessionEnd        LogType = "SYNC_SESSION_END"
	SyncClientWrite       LogType = "SYNC_CLIENT_WRITE"
	SyncError             LogType = "SYNC_ERROR"
	SyncOther             LogType = "SYNC_OTHER"
	SchemaAdditiveChange  LogType = "SCHEMA_ADDITIVE_CHANGE"
	SchemaGeneration      LogType = "SCHEMA_GENERATION"
	SchemaValidation      LogType = "SCHEMA_VALIDATION"
	LogForwarder          LogType = "LOG_FORWARDER"
)

var logTypes = []LogType{
	TriggerFailure, TriggerErrorHandler, DBTrigger, AuthTrigger,
	ScheduledTrigger, Function, ServiceFunction, StreamFunction,
	ServiceStreamFunction, Auth, Webhook, Endpoint, Push, API, APIKey,
	GraphQL, SyncConnectionStart, SyncConnectionEnd, SyncSessionStart,
	SyncSessionEnd, SyncClientWrite, SyncError, SyncOther,
	SchemaAdditiveChange, SchemaGeneration, SchemaValidation, LogForwarder,
}

// LogTypes returns every supported log type.
func LogTypes() []LogType {
	ret := make([]LogType, len(logTypes))
	copy(ret, logTypes)
	return ret
}

func (l LogType) IsValid() bool {
	for _, val := range logTypes {
		if val == l {
			return true
		}
	}
	return false
}

// Date is a validated timestamp. Raw is sent to the API exactly as
// it was given.
type Date struct {
	Raw  string
	Time time.Time
}

func (d Date) String() string {
	return d.Raw
}

// QueryParams represents the log filter applied to every page fetch.
// A nil StartDate or EndDate leaves that side of the range open.
type QueryParams struct {
	ProjectID  string
	AppID      string
	StartDate  *Date
	EndDate    *Date
	Types      []LogType
	UserID     string
	ErrorsOnly bool
}

// TypesString returns the log types as the comma separated list
// the logs endpoint expects.
func (q QueryParams) TypesString() string {
	asStr := make([]string, len(q.Types))
	for idx, val := range q.Types {
		asStr[idx] = string(val)
	}
	return strings.Join(asStr, ",")
}
