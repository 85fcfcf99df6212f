package htb

import "errors"

var (
	// ErrRateLimited is returned when the rate-limit sentinel is still
	// present after every allowed retry.
	ErrRateLimited = errors.New("rate limit retries exhausted")

	// ErrMalformedResponse covers bodies that are not JSON or lack a field
	// the fetchers rely on.
	ErrMalformedResponse = errors.New("malformed API response")

	// ErrUnknownObjectType is returned for an activity entry whose
	// object_type the model does not know. The run must stop: silently
	// skipping it would corrupt the report.
	ErrUnknownObjectType = errors.New("unknown activity object_type")

	// ErrPageLimit is returned when a paginated listing never reports its
	// last page within the configured page cap.
	ErrPageLimit = errors.New("page limit exceeded")
)
