// Package storage wraps the external object-storage provider behind a small
// client interface so handlers never talk to the provider's REST API directly.
package storage

import "context"

// Client is the object-storage surface the application depends on.
type Client interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Download(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}
