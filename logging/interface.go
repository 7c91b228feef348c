// Copyright 2024 Cloudbase Solutions SRL

package logging

// Writer receives every log record retrieved from the API, in the
// order the API returned them.
type Writer interface {
	Write(rec Record) error
}
