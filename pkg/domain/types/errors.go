package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures of a copy run. None of them is recovered locally.
var (
	// ErrTagConfig marks missing or broken configuration, such as an unset credential
	ErrTagConfig = goerr.NewTag("config")

	// ErrTagInvalidInput marks malformed user input, such as a repository identifier without owner/name
	ErrTagInvalidInput = goerr.NewTag("invalid_input")

	// ErrTagNotFound marks a missing repository or release
	ErrTagNotFound = goerr.NewTag("not_found")

	// ErrTagUnauthorized marks a credential that is invalid or lacks scope
	ErrTagUnauthorized = goerr.NewTag("unauthorized")

	// ErrTagConflict marks a destination release that already exists for the tag
	ErrTagConflict = goerr.NewTag("conflict")

	// ErrTagTransfer marks a failed download or upload of an asset
	ErrTagTransfer = goerr.NewTag("transfer")
)
