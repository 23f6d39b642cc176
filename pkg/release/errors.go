package release

import "fmt"

// VersionConflictError is returned when the store already has a binary with
// the release version and force replacement was not requested. Nothing has
// been mutated when this error comes back.
type VersionConflictError struct {
	Plugin  string
	Version string
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("plugin %s already has a binary for version %s, re-run with --force to replace it", e.Plugin, e.Version)
}

// ReviewRejectedError is returned when the store's review of the committed
// binary came back with any status other than "approved". Status and Comment
// carry the store's verdict verbatim. The binary itself stays saved.
type ReviewRejectedError struct {
	Plugin  string
	Version string
	Status  string
	Comment string
}

func (e *ReviewRejectedError) Error() string {
	msg := fmt.Sprintf("release of %s %s was not approved (status %q)", e.Plugin, e.Version, e.Status)
	if e.Comment != "" {
		msg += ": " + e.Comment
	}
	return msg
}
