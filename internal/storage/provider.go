// Package storage defines the blob storage abstraction used for PDF bytes
// and checkpoint mirrors. Implementations exist for the local filesystem,
// Google Cloud Storage, and memory (tests).
package storage

import "context"

// Provider abstracts writing and probing blobs.
type Provider interface {
	// Put writes data under path and returns a location URI.
	Put(ctx context.Context, path string, contentType string, data []byte) (string, error)
	// Exists reports whether an object is already present at path.
	Exists(ctx context.Context, path string) (bool, error)
}

// NoOp is a Provider that discards writes; useful for dry runs.
type NoOp struct{}

// Put discards the data and returns an empty URI.
func (NoOp) Put(context.Context, string, string, []byte) (string, error) {
	return "", nil
}

// Exists always reports absent.
func (NoOp) Exists(context.Context, string) (bool, error) {
	return false, nil
}
