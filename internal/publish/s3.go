// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"context"
	"fmt"
)

// objectStore is the subset of storage.Client the S3 driver needs.
type objectStore interface {
	PutPublic(ctx context.Context, key, contentType string, body []byte) error
	FileURL(key string) string
}

// S3Publisher writes each site to <siteName>/index.html in the public bucket.
type S3Publisher struct {
	store objectStore
}

// NewS3 creates a publisher over the given object store.
func NewS3(store objectStore) *S3Publisher {
	return &S3Publisher{store: store}
}

// Publish uploads the page and returns its public URL.
func (p *S3Publisher) Publish(ctx context.Context, siteName, html string) (*Result, error) {
	key := siteName + "/index.html"
	if err := p.store.PutPublic(ctx, key, "text/html; charset=utf-8", []byte(html)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return &Result{Status: true, URL: p.store.FileURL(key)}, nil
}
