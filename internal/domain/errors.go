package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when a company has no QuickBooks connection.
	ErrNotConnected = errors.New("no quickbooks connection for this company")

	// ErrInvalidCallback is returned when the OAuth callback carries a
	// malformed state value or is missing required parameters.
	ErrInvalidCallback = errors.New("invalid oauth callback")

	// ErrNotFound is returned by repositories for missing records.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a uniqueness constraint would be
	// violated (duplicate email, account number, invoice number, connection).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized is returned for bad credentials or inactive accounts.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnbalancedTransaction is returned when a ledger transaction's debits
	// and credits do not match.
	ErrUnbalancedTransaction = errors.New("transaction debits and credits do not balance")
)

// ExternalAuthError indicates the platform token endpoint rejected an
// exchange or refresh. It is never retried automatically.
type ExternalAuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ExternalAuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quickbooks token endpoint: %v", e.Err)
	}
	return fmt.Sprintf("quickbooks token endpoint returned status %d: %s", e.StatusCode, e.Body)
}

func (e *ExternalAuthError) Unwrap() error { return e.Err }

// ExternalAPIError indicates the platform resource API rejected a proxied
// request. StatusCode carries the upstream status where available.
type ExternalAPIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ExternalAPIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quickbooks api: %v", e.Err)
	}
	return fmt.Sprintf("quickbooks api returned status %d: %s", e.StatusCode, e.Body)
}

func (e *ExternalAPIError) Unwrap() error { return e.Err }
