// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sitebuilder turns a validated form into a published landing page.
//
// A request moves through these stages, each logged at debug level:
//
//	validated -> composing -> awaiting_ai -> extracting -> sanitizing ->
//	checking_uniqueness -> publishing -> persisting -> done
//
// and may stop early as declined, duplicate, publish_failed or failed.
package sitebuilder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"brixi/internal/cache"
	"brixi/internal/extract"
	"brixi/internal/metrics"
	"brixi/internal/models"
	"brixi/internal/prompt"
	"brixi/internal/publish"
	"brixi/internal/store"
)

// CreatedMessage is returned to the client after a successful build.
const CreatedMessage = "Your website has been created"

// Generator produces a completion for a prompt. *ai.Registry satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Cleaner sanitizes extracted HTML. *sanitize.Sanitizer satisfies it.
type Cleaner interface {
	Clean(html string) (string, error)
}

// SiteRepository persists sites. *store.SiteStore satisfies it.
type SiteRepository interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name, html string) (*models.Site, error)
}

// Result is the success payload.
type Result struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// Deps wires a Service. URLPattern is optional; when set, "%s" is replaced
// with the site name to build the public URL.
type Deps struct {
	AI         Generator
	Sanitizer  Cleaner
	Sites      SiteRepository
	Publisher  publish.Publisher
	Locker     cache.NameLocker
	URLPattern string
}

// Service runs the site generation pipeline.
type Service struct {
	ai         Generator
	sanitizer  Cleaner
	sites      SiteRepository
	publisher  publish.Publisher
	locker     cache.NameLocker
	urlPattern string
}

// NewService creates a Service. A nil Locker falls back to an in-process one.
func NewService(d Deps) *Service {
	if d.Locker == nil {
		d.Locker = cache.NewLocalLocker()
	}
	return &Service{
		ai:         d.AI,
		sanitizer:  d.Sanitizer,
		sites:      d.Sites,
		publisher:  d.Publisher,
		locker:     d.Locker,
		urlPattern: d.URLPattern,
	}
}

// Generate validates req, asks the AI for a page, cleans it, publishes it to
// the CDN and stores it. Errors are one of *ValidationError, *DeclinedError
// or a wrapped sentinel from errors.go.
func (s *Service) Generate(ctx context.Context, req *Request) (*Result, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		metrics.Generations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	log := slog.With("site_name", req.SiteName)
	log.Debug("site generation", "state", "validated")

	log.Debug("site generation", "state", "composing")
	text := prompt.Compose(req.Fields())

	log.Debug("site generation", "state", "awaiting_ai")
	start := time.Now()
	completion, err := s.ai.Generate(ctx, text)
	metrics.StageDuration.WithLabelValues("ai").Observe(time.Since(start).Seconds())
	if err != nil {
		log.Warn("ai generation failed", "error", err)
		metrics.Generations.WithLabelValues(metrics.OutcomeAIError).Inc()
		return nil, fmt.Errorf("%w: %w", ErrAIUnavailable, err)
	}

	log.Debug("site generation", "state", "extracting")
	html, ok := extract.HTML(completion)
	if !ok {
		log.Info("site generation", "state", "declined")
		metrics.Generations.WithLabelValues(metrics.OutcomeDeclined).Inc()
		return nil, &DeclinedError{Message: strings.TrimSpace(completion)}
	}

	log.Debug("site generation", "state", "sanitizing", "bytes", len(html))
	html, err = s.sanitizer.Clean(html)
	if err != nil {
		log.Error("sanitize failed", "error", err)
		metrics.Generations.WithLabelValues(metrics.OutcomeInternal).Inc()
		return nil, fmt.Errorf("%w: %w", ErrSanitize, err)
	}

	log.Debug("site generation", "state", "checking_uniqueness")
	release, err := s.reserve(ctx, req.SiteName)
	if err != nil {
		metrics.Generations.WithLabelValues(outcomeFor(err)).Inc()
		return nil, err
	}
	defer release()

	log.Debug("site generation", "state", "publishing")
	start = time.Now()
	published, err := s.publisher.Publish(ctx, req.SiteName, html)
	metrics.StageDuration.WithLabelValues("publish").Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("site generation", "state", "publish_failed", "error", err)
		metrics.Generations.WithLabelValues(metrics.OutcomePublishFail).Inc()
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}

	log.Debug("site generation", "state", "persisting")
	start = time.Now()
	_, err = s.sites.Create(ctx, req.SiteName, html)
	metrics.StageDuration.WithLabelValues("persist").Observe(time.Since(start).Seconds())
	if err != nil {
		// The page is already live on the CDN at this point.
		log.Error("site published but not persisted", "error", err)
		if errors.Is(err, store.ErrDuplicateName) {
			metrics.Generations.WithLabelValues(metrics.OutcomeDuplicate).Inc()
			return nil, fmt.Errorf("%w: %w", ErrDuplicateName, err)
		}
		metrics.Generations.WithLabelValues(metrics.OutcomeInternal).Inc()
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	log.Info("site generation", "state", "done")
	metrics.Generations.WithLabelValues(metrics.OutcomeCreated).Inc()

	return &Result{
		Status:  true,
		Message: CreatedMessage,
		URL:     s.siteURL(req.SiteName, published),
	}, nil
}

// reserve holds the name for the rest of the request and checks the store.
// A name another request is building counts as taken.
func (s *Service) reserve(ctx context.Context, name string) (func(), error) {
	release, ok, err := s.locker.Acquire(ctx, name)
	switch {
	case err != nil:
		// The unique index still guards the insert; only the CDN upload
		// loses its protection against a concurrent builder.
		slog.Warn("name reservation unavailable, continuing without it", "site_name", name, "error", err)
		release = func() {}
	case !ok:
		return nil, ErrDuplicateName
	}

	exists, err := s.sites.ExistsByName(ctx, name)
	if err != nil {
		release()
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if exists {
		release()
		return nil, ErrDuplicateName
	}
	return release, nil
}

// Availability reports whether name is free to use.
func (s *Service) Availability(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if err := ValidateSiteName(name); err != nil {
		return false, err
	}
	exists, err := s.sites.ExistsByName(ctx, name)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return !exists, nil
}

func (s *Service) siteURL(name string, published *publish.Result) string {
	if s.urlPattern != "" {
		return fmt.Sprintf(s.urlPattern, name)
	}
	if published != nil {
		return published.URL
	}
	return ""
}

func outcomeFor(err error) string {
	if errors.Is(err, ErrDuplicateName) {
		return metrics.OutcomeDuplicate
	}
	return metrics.OutcomeInternal
}
