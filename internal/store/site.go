// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the database access layer for generated sites.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"brixi/internal/models"
)

// ErrDuplicateName is returned by Create when another writer already holds
// the site name. The unique constraint on sites.site_name is the
// authoritative guard; any check made before the insert is advisory.
var ErrDuplicateName = errors.New("store: site name already exists")

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// SiteStore handles all site-related database operations.
type SiteStore struct {
	db *sql.DB
}

// NewSiteStore creates a new SiteStore with the given database connection.
func NewSiteStore(db *sql.DB) *SiteStore {
	return &SiteStore{db: db}
}

// ExistsByName reports whether a site with the given name is stored.
func (s *SiteStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sites WHERE site_name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("site exists by name: %w", err)
	}
	return exists, nil
}

// Create inserts a new site record and returns it with the generated ID and
// timestamps. Returns ErrDuplicateName on a unique violation.
func (s *SiteStore) Create(ctx context.Context, name, html string) (*models.Site, error) {
	site := &models.Site{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sites (site_name, html)
		VALUES ($1, $2)
		RETURNING id, site_name, html, created_at, updated_at
	`, name, html).Scan(
		&site.ID, &site.SiteName, &site.HTML, &site.CreatedAt, &site.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("create site: %w", err)
	}
	return site, nil
}

// FindByName retrieves a site by its name. Returns nil if not found.
func (s *SiteStore) FindByName(ctx context.Context, name string) (*models.Site, error) {
	site := &models.Site{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, site_name, html, created_at, updated_at
		FROM sites WHERE site_name = $1
	`, name).Scan(
		&site.ID, &site.SiteName, &site.HTML, &site.CreatedAt, &site.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find site by name: %w", err)
	}
	return site, nil
}
