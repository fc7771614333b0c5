package core

import "errors"

var (
	// ErrValidation marks bad or missing input. Nothing was changed.
	ErrValidation = errors.New("validation failed")

	// ErrNotConfigured means the source-host credentials are incomplete.
	ErrNotConfigured = errors.New("source host not configured")

	// ErrAuth marks a rejected credential or token exchange.
	ErrAuth = errors.New("source host authentication failed")

	ErrNotFound = errors.New("environment not found")

	// ErrConflict marks a registry write that lost against a concurrent change
	// or an invalid status transition.
	ErrConflict = errors.New("environment conflict")

	// ErrProvision wraps provisioning backend failures.
	ErrProvision = errors.New("provisioning failed")

	// ErrDeploy wraps deployment failures that happen before any upload, such
	// as an artifact bucket that is not available yet. Retryable.
	ErrDeploy = errors.New("deployment failed")

	// ErrPartialDeploy is returned together with a DeployResult in which at
	// least one service was not uploaded.
	ErrPartialDeploy = errors.New("deployment partially failed")
)
