package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Provider errors
	ErrTokenExchangeFailed       = fmt.Errorf("token exchange failed")
	ErrProfileFetchFailed        = fmt.Errorf("user profile fetch failed")
	ErrProviderResponseMalformed = fmt.Errorf("malformed provider response")

	// Store errors
	ErrStoreOperationFailed = fmt.Errorf("store operation failed")
	ErrNotFound             = fmt.Errorf("record not found")
	ErrDuplicateRecord      = fmt.Errorf("duplicate record")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
