// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Site is a generated website persisted after a successful CDN publish.
// SiteName doubles as the unique key and the public subdomain. Records are
// never updated by the application.
type Site struct {
	ID        uuid.UUID `json:"id"`
	SiteName  string    `json:"siteName"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Size returns the length of the stored HTML document in bytes.
func (s *Site) Size() int {
	return len(s.HTML)
}
