// Package objectstore provides access to tabular datasets in S3-style
// object storage.
package objectstore

import (
	"context"
	"fmt"
	"strings"
)

// Scheme is the URI scheme for object locations.
const Scheme = "s3://"

// Object describes one stored object under a listed prefix.
type Object struct {
	Location string
	Size     int64
}

// Store is the object storage collaborator: list objects under a prefix,
// read an object, write a text object. Locations are always expressed as
// scheme-qualified strings ("s3://bucket/path").
type Store interface {
	List(ctx context.Context, prefix string, max int32) ([]Object, error)
	Get(ctx context.Context, location string) ([]byte, error)
	Put(ctx context.Context, location string, body []byte, contentType string) error
}

// ParseLocation splits an "s3://bucket/key" location into bucket and key.
func ParseLocation(location string) (bucket, key string, err error) {
	if !strings.HasPrefix(location, Scheme) {
		return "", "", fmt.Errorf("location must start with %q: %s", Scheme, location)
	}

	rest := strings.TrimPrefix(location, Scheme)
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("location has no bucket: %s", location)
	}

	bucket = parts[0]
	if len(parts) == 2 {
		key = parts[1]
	}
	return bucket, key, nil
}

// JoinLocation builds an "s3://bucket/key" location.
func JoinLocation(bucket, key string) string {
	return Scheme + bucket + "/" + strings.TrimPrefix(key, "/")
}

// SupportedDataFile reports whether the location points at a readable
// tabular encoding.
func SupportedDataFile(location string) bool {
	switch {
	case strings.HasSuffix(location, ".csv"),
		strings.HasSuffix(location, ".json"),
		strings.HasSuffix(location, ".parquet"):
		return true
	default:
		return false
	}
}
