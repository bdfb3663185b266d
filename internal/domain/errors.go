package domain

import (
	"errors"
	"fmt"
)

// TransportError reports a failed exchange with the feed endpoint: connection
// failures, timeouts and non-2xx responses.
type TransportError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feed request failed: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("feed request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a feed body that is not valid JSON for the feed schema.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MappingError reports required feed structure that cannot be defaulted.
type MappingError struct {
	Index  int // feature index, -1 for the payload itself
	Reason string
}

func (e *MappingError) Error() string {
	if e.Index < 0 {
		return "map feed: " + e.Reason
	}
	return fmt.Sprintf("map feed: feature %d: %s", e.Index, e.Reason)
}

// ErrorMessage returns a non-empty, human-readable message for err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}

// ErrorKind classifies err into "transport", "parse", "mapping" or "other".
func ErrorKind(err error) string {
	var transportErr *TransportError
	var parseErr *ParseError
	var mappingErr *MappingError
	switch {
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &mappingErr):
		return "mapping"
	default:
		return "other"
	}
}
