// Package errors holds the structured error handed back to HTTP clients and
// printed by the command line tools.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jdholdren/spdb/internal/spdb"
)

// Error pairs an error with the status it should be reported as.
type Error struct {
	Status  int
	Err     error // The error this wraps
	Details []Detail
}

type Detail struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%d: %s", e.Status, e.Err)
	}
	return fmt.Sprintf("%d: %s, details: %v", e.Status, e.Err, e.Details)
}

func (e *Error) Unwrap() error { return e.Err }

type transport struct {
	Message string   `json:"message"`
	Details []Detail `json:"details,omitempty"`
	Status  int      `json:"status"`
}

func (e *Error) MarshalJSON() ([]byte, error) {
	msg := http.StatusText(e.Status)
	if e.Err != nil {
		msg = e.Err.Error()
	}

	return json.Marshal(transport{
		Message: msg,
		Details: e.Details,
		Status:  e.Status,
	})
}

func (e *Error) UnmarshalJSON(byts []byte) error {
	t := transport{}
	if err := json.Unmarshal(byts, &t); err != nil {
		return err
	}

	e.Err = errors.New(t.Message)
	e.Details = t.Details
	e.Status = t.Status
	return nil
}

// E builds an [Error] out of whatever it's given: a string or error becomes the
// wrapped error, an int the status, and details are collected.
//
// The status defaults to a 500.
func E(args ...any) *Error {
	ret := &Error{
		Status: http.StatusInternalServerError,
	}

	for _, arg := range args {
		switch arg := arg.(type) {
		case string:
			ret.Err = errors.New(arg)
		case error:
			ret.Err = arg
		case int:
			ret.Status = arg
		case Detail:
			ret.Details = append(ret.Details, arg)
		case []Detail:
			ret.Details = append(ret.Details, arg...)
		}
	}

	return ret
}

// FromDomain coerces err into an [Error], picking the status from the domain
// sentinel it wraps. Errors that are already structured pass through.
func FromDomain(err error) *Error {
	if sErr := (&Error{}); errors.As(err, &sErr) {
		return sErr
	}

	switch {
	case errors.Is(err, spdb.ErrNotFound):
		return E(err, http.StatusNotFound)
	case errors.Is(err, spdb.ErrConflict):
		return E(err, http.StatusConflict)
	case errors.Is(err, spdb.ErrInvalidTag), errors.Is(err, spdb.ErrInvalidTimestamp):
		return E(err, http.StatusBadRequest)
	default:
		return E(err, http.StatusInternalServerError)
	}
}
