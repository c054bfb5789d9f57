// Package server implements the HTTP surface of the repository: the
// shared-secret gate, the upload, catalog and retrieval handlers, and
// the uniform JSON envelope every response is rendered as.
package server
