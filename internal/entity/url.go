// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which maps a short code to the long URL it
// stands for, and the errors the storage layer reports.
package entity

import (
	"errors"
	"time"
)

// TimestampLayout is the ISO-8601 form used for timestamps in storage and
// API responses: UTC with millisecond precision, e.g. 2024-05-01T10:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrURLNotFound is returned when no URL is stored under the requested short code.
var ErrURLNotFound = errors.New("url not found")

// URL represents a shortened URL.
type URL struct {
	ID        int64     // ID is assigned by the store on insert and never exposed by the API.
	ShortURL  string    // ShortURL is the short code derived from LongURL.
	LongURL   string    // LongURL is the URL as submitted, stored verbatim.
	CreatedAt time.Time // CreatedAt is the time the URL was shortened.
	ExpiresAt time.Time // ExpiresAt is informational; nothing enforces it.
}

// StoreError wraps a failure of the underlying storage engine.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a timestamp produced by FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}
