// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP endpoints of the site builder.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"brixi/internal/middleware"
	"brixi/internal/sitebuilder"
)

// MaxBodyBytes caps the size of a generation request body.
const MaxBodyBytes = 1 << 20

// Client-facing messages.
const (
	msgDuplicate     = "This subdomain is already taken, please choose another subdomain."
	msgAIUnavailable = "Oops! Looks like our AI is not available at the moment."
	msgPublish       = "We could not publish your website right now, please try again later."
	msgInternal      = "Internal server error"
)

// siteService is the part of sitebuilder.Service the handlers use.
type siteService interface {
	Generate(ctx context.Context, req *sitebuilder.Request) (*sitebuilder.Result, error)
	Availability(ctx context.Context, name string) (bool, error)
}

// SiteBuilder groups the site generation endpoints.
type SiteBuilder struct {
	service siteService
}

// NewSiteBuilder creates a new SiteBuilder handler group.
func NewSiteBuilder(service siteService) *SiteBuilder {
	return &SiteBuilder{service: service}
}

// Generate handles POST /sitebuilder. It decodes the form, runs the
// generation pipeline and answers 201 with {status, message, url}.
func (h *SiteBuilder) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req sitebuilder.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body is too large")
			return
		}
		writeError(w, http.StatusBadRequest, []string{"Request body must be a valid JSON object"})
		return
	}

	result, err := h.service.Generate(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Availability handles GET /sitebuilder/{siteName}/availability.
func (h *SiteBuilder) Availability(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "siteName"))

	available, err := h.service.Availability(r.Context(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"siteName":  name,
		"available": available,
	})
}

// fail maps a pipeline error onto a status code and client message.
// Internal causes are logged, never returned.
func (h *SiteBuilder) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *sitebuilder.ValidationError
	var declined *sitebuilder.DeclinedError

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Messages)
	case errors.As(err, &declined):
		writeError(w, http.StatusUnprocessableEntity, declined.Message)
	case errors.Is(err, sitebuilder.ErrDuplicateName):
		writeError(w, http.StatusConflict, msgDuplicate)
	case errors.Is(err, sitebuilder.ErrAIUnavailable):
		writeError(w, http.StatusServiceUnavailable, msgAIUnavailable)
	case errors.Is(err, sitebuilder.ErrPublish):
		writeError(w, http.StatusBadGateway, msgPublish)
	default:
		slog.Error("site builder request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
