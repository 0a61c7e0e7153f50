package model

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures for the HTTP layer. Attach with goerr.T and
// check with goerr.HasTag.
var (
	// ErrTagConfig marks a missing/invalid server-side configuration,
	// e.g. the provider credential is not set.
	ErrTagConfig = goerr.NewTag("config")

	// ErrTagValidation marks a malformed or missing request field.
	ErrTagValidation = goerr.NewTag("validation")

	// ErrTagProvider marks an upstream completion/embedding failure.
	ErrTagProvider = goerr.NewTag("provider")

	// ErrTagBadUpstream marks a provider response that could not be parsed.
	ErrTagBadUpstream = goerr.NewTag("bad_upstream")
)
