// SPDX-License-Identifier: MIT

package slideshow

import "errors"

var (
	// ErrNotStarted is returned by controls invoked before Start.
	ErrNotStarted = errors.New("slideshow engine not started")

	// ErrStopped is returned by controls invoked after Stop.
	ErrStopped = errors.New("slideshow engine stopped")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("slideshow engine already started")

	// ErrMissingFetcher is returned by New when no fetcher is supplied.
	ErrMissingFetcher = errors.New("slideshow engine requires a fetcher")
)
