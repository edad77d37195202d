// Package source defines the upstream feed of raw delivery records.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Item is one raw list item as delivered by the upstream feed.
type Item = map[string]any

// Source fetches the raw items that may belong to day.
type Source interface {
	Fetch(ctx context.Context, day time.Time) ([]Item, error)
}

// ErrTransient is matched by errors worth retrying on the next tick.
var ErrTransient = errors.New("transient upstream failure")

// FetchError describes a failed upstream call.
type FetchError struct {
	Status    int
	Retryable bool
	Err       error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream returned %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("upstream unreachable: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes retryable failures match ErrTransient.
func (e *FetchError) Is(target error) bool {
	return target == ErrTransient && e.Retryable
}

// NewStatusError classifies an HTTP status. Authorisation and missing list
// errors need operator action; server errors and throttling are retried.
func NewStatusError(status int, err error) *FetchError {
	retry := status >= 500 || status == http.StatusTooManyRequests || status == http.StatusRequestTimeout
	return &FetchError{Status: status, Retryable: retry, Err: err}
}

// NewNetworkError wraps a transport failure, which is always retryable.
func NewNetworkError(err error) *FetchError {
	return &FetchError{Retryable: true, Err: err}
}
