package domain

import "errors"

// Failure taxonomy shared by the marketplace components.
var (
	// ErrUserDeclined is returned when the wallet user rejects a prompt.
	ErrUserDeclined = errors.New("user declined wallet request")

	// ErrMissingWallet is returned when no wallet provider is configured.
	ErrMissingWallet = errors.New("no wallet provider available")

	// ErrNotConnected is returned when a signing operation runs without an account.
	ErrNotConnected = errors.New("wallet not connected")

	// ErrUploadFailure is returned when the metadata store rejects or cannot take a document.
	ErrUploadFailure = errors.New("metadata upload failed")

	// ErrTransactionFailure is returned when signing, broadcast or execution of a transaction fails.
	ErrTransactionFailure = errors.New("transaction failed")

	// ErrResolutionFailure is returned when metadata for any item of a batch cannot be resolved.
	ErrResolutionFailure = errors.New("metadata resolution failed")

	// ErrIncompleteListing is returned when a listing request misses a field.
	ErrIncompleteListing = errors.New("listing request is incomplete")

	// ErrInvalidPrice is returned when a price cannot be converted losslessly.
	ErrInvalidPrice = errors.New("invalid price")
)
