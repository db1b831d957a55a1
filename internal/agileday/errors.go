package agileday

import "errors"

var (
	// ErrMissingToken indicates no API token was provided.
	ErrMissingToken = errors.New("agileday api token is not set")
	// ErrUnauthorized indicates the API rejected the token.
	ErrUnauthorized = errors.New("agileday authentication failed")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("agileday resource not found")
)
