package domain

import "errors"

var (
	// ErrEmailTaken is returned when registering with an email that already exists
	ErrEmailTaken = errors.New("email already registered")

	// ErrPhoneTaken is returned when registering with a phone number that already exists
	ErrPhoneTaken = errors.New("phone number already registered")

	// ErrInactiveUser is returned when an otherwise valid subject has been deactivated
	ErrInactiveUser = errors.New("inactive user")

	// ErrExpiredToken is returned when a bearer token is past its expiry
	ErrExpiredToken = errors.New("token has expired")

	// ErrMalformedToken is returned when a bearer token fails signature or structural checks
	ErrMalformedToken = errors.New("malformed token")

	// ErrUnknownSubject is returned when a token's subject no longer resolves to an active user
	ErrUnknownSubject = errors.New("unknown token subject")

	// ErrNotFound is returned when a requested resource does not exist or is not owned by the caller
	ErrNotFound = errors.New("resource not found")

	// ErrNoLedgerRecord is returned when verifying a report that was never recorded on the ledger
	ErrNoLedgerRecord = errors.New("report has no ledger record")

	// ErrNoConsent is returned when a flow requiring data-processing consent is started without it
	ErrNoConsent = errors.New("data processing consent not given")

	// ErrLedgerUnavailable is returned by the live ledger client when the node cannot be reached
	ErrLedgerUnavailable = errors.New("ledger unavailable")
)
