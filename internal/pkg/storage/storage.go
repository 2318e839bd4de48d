// Package storage keeps store logos in an S3-compatible bucket.
package storage

import (
	"context"
	"io"
)

// Storage is the object store used for uploaded files.
type Storage interface {
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
}

// Config for the S3 client. Endpoint is set for MinIO or R2; leave it
// empty for AWS.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}
