// Package storage wraps the object store used for tree images.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/omardr777/ai-dashboard/models"
)

// ObjectStore is the subset of object storage the dashboard needs.
type ObjectStore interface {
	// Exists reports whether key is present. A missing object is not an error.
	Exists(ctx context.Context, bucket, key string) (bool, error)
	// Copy copies srcKey to dstKey inside bucket.
	Copy(ctx context.Context, bucket, srcKey, dstKey string) error
	// Delete removes key.
	Delete(ctx context.Context, bucket, key string) error
	// List returns one page of keys and folders directly under prefix.
	List(ctx context.Context, bucket, prefix string, maxKeys int32) (*Listing, error)
}

// Listing is a single page of a delimited listing.
type Listing struct {
	Folders     []string
	Objects     []models.ObjectInfo
	IsTruncated bool
}

// ErrObjectNotFound indicates that the requested object does not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// Error adds bucket and key context to a storage failure.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("s3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("s3.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the service error code carried by err, if any.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
