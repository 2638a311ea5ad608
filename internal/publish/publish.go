// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publish uploads generated sites to the CDN. Two drivers exist: an
// HTTP upload gateway and direct S3-compatible object storage.
package publish

import (
	"context"
	"errors"
)

// ErrPublish is returned for any failed upload. The cause is wrapped.
var ErrPublish = errors.New("publish: upload failed")

// Result is the outcome reported by the CDN.
type Result struct {
	Status  bool
	Message string
	URL     string // public URL when the driver knows it
}

// Publisher uploads a site's HTML under its name.
type Publisher interface {
	Publish(ctx context.Context, siteName, html string) (*Result, error)
}
