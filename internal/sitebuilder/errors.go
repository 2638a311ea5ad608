// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sitebuilder

import "errors"

// Pipeline failures. Handlers map these onto HTTP statuses; causes are
// wrapped for logging and never shown to clients.
var (
	ErrDuplicateName = errors.New("site name already taken")
	ErrAIUnavailable = errors.New("ai unavailable")
	ErrPublish       = errors.New("publish failed")
	ErrPersistence   = errors.New("persistence failed")
	ErrSanitize      = errors.New("sanitize failed")
)

// DeclinedError carries the model's explanation when it refused to build a
// page. Message is shown to the user as is.
type DeclinedError struct {
	Message string
}

func (e *DeclinedError) Error() string {
	return "ai declined: " + e.Message
}
