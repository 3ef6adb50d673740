// Package media wraps the remote object store that holds uploaded item photos.
package media

import "context"

// Object identifies an uploaded file on the remote host.
type Object struct {
	URL string
	Key string
}

// Store is the persistence boundary for image bytes. Uploads are a single
// attempt; callers decide whether a Delete failure aborts the surrounding
// operation.
type Store interface {
	Upload(ctx context.Context, folder, filename, contentType string, content []byte) (Object, error)
	Delete(ctx context.Context, key string) error
}
