package core

import "fmt"

// InvalidPathError reports a malformed entry path
type InvalidPathError struct {
	Raw    string
	Reason string
}

// Error implements the error interface
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Raw, e.Reason)
}

// MalformedManifestError reports a bad record or line in a local entry source.
// Record is the zero-based index for manifest sources; Line is the one-based
// line number for dotenv sources. Only one of them is set.
type MalformedManifestError struct {
	Record int // -1 when not applicable
	Line   int // 0 when not applicable
	Reason string
}

// Error implements the error interface
func (e *MalformedManifestError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("malformed manifest: line %d: %s", e.Line, e.Reason)
	case e.Record >= 0:
		return fmt.Sprintf("malformed manifest: record %d: %s", e.Record, e.Reason)
	default:
		return fmt.Sprintf("malformed manifest: %s", e.Reason)
	}
}
