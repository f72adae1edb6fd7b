package crawler

import (
	"context"
	"errors"
	"fmt"
)

// PageLoadError reports a page that could not be navigated to or whose
// listing never rendered.
type PageLoadError struct {
	URL string
	Err error
}

func (e *PageLoadError) Error() string {
	return fmt.Sprintf("failed to load page %s: %v", e.URL, e.Err)
}

func (e *PageLoadError) Unwrap() error { return e.Err }

// RowError reports a listing row that could not be read.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// TotalCountError reports a missing or malformed result-count element.
type TotalCountError struct {
	URL string
	Err error
}

func (e *TotalCountError) Error() string {
	return fmt.Sprintf("failed to read total count on %s: %v", e.URL, e.Err)
}

func (e *TotalCountError) Unwrap() error { return e.Err }

var (
	errNoLink  = errors.New("row has no link")
	errNoHref  = errors.New("link has no href")
	errNoTitle = errors.New("link has no title text")
)

// isFatal reports whether err means the harvest cannot go on: the caller
// gave up, or the session was closed under us.
func isFatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled)
}
