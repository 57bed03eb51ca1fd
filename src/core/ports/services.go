package ports

import (
	"context"
	"net/url"
)

// DispatchRequest describes one call to a mechanic API.
type DispatchRequest struct {
	// Endpoint is the mechanic API URL as supplied by the caller.
	Endpoint string

	// Query is sent as the URL query string.
	Query url.Values

	// Authorization is forwarded verbatim when not empty.
	Authorization string

	// Repeats is how many extra attempts a failed call may make.
	Repeats int
}

// DispatchResult is the final answer of a mechanic API.
type DispatchResult struct {
	StatusCode int
	Body       any
	Attempts   int
}

// MechanicDispatcher calls mechanic APIs on behalf of merchants.
type MechanicDispatcher interface {
	Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error)
}
