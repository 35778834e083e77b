// Package objectstore uploads media objects to a bucket and reports the
// public URL each object is served from.
//
// Three implementations share the Store interface:
//   - S3Store: any S3-compatible endpoint (Cloudflare R2, MinIO, AWS) via aws-sdk-go-v2;
//   - R2APIStore: the Cloudflare REST API with a bearer token;
//   - MemoryStore: keeps objects in memory, for dry runs and tests.
package objectstore

import (
	"context"
	"strings"
)

// Store puts objects into a bucket.
type Store interface {
	// Put stores body under key and returns the object's public URL.
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)

	// Ping checks that the bucket is reachable with the configured credentials.
	Ping(ctx context.Context) error
}

// PublicURL joins the public base URL and an object key.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
