package server

import "regexp"

// namePattern matches the identifiers accepted as path segments for
// both projects and files. Anything else (separators, control bytes,
// oversized names) never reaches the storage layer.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,100}$`)

func isValidName(name string) bool {
	return namePattern.MatchString(name)
}
