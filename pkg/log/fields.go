package log

// Field keys shared across packages so log lines can be filtered consistently.
const (
	FieldKeyEntity  = "entity"
	FieldKeyLibrary = "library"
	FieldKeyPath    = "path"
	FieldKeyVersion = "version"
	FieldKeyState   = "state"
)

// Fields is passed to `WithFields`.
type Fields map[string]any
