package memory

import (
	"github.com/m-mizutani/goerr/v2"
)

// Error tags classify failures across the memory system.
// Callers should branch on tags rather than error strings.
var (
	// TagValidation marks rejected input: empty content, malformed filter
	// clauses, unsupported operators. Nothing is persisted when raised.
	TagValidation = goerr.NewTag("validation")

	// TagNotFound marks lookups of unknown record IDs on Get/Update.
	TagNotFound = goerr.NewTag("not_found")

	// TagProvider marks embedding failures: network, auth, or model load.
	TagProvider = goerr.NewTag("provider")

	// TagStorage marks I/O failures in the backing collection store.
	TagStorage = goerr.NewTag("storage")
)

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return goerr.HasTag(err, TagValidation)
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return goerr.HasTag(err, TagNotFound)
}

// IsProvider reports whether err came from the embedding provider.
func IsProvider(err error) bool {
	return goerr.HasTag(err, TagProvider)
}

// IsStorage reports whether err came from the storage layer.
func IsStorage(err error) bool {
	return goerr.HasTag(err, TagStorage)
}
